//
// Copyright (c) 2014-2019 Cesanta Software Limited
// All rights reserved
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
package hiffy

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/golang/glog"
	"github.com/juju/errors"

	"github.com/mongoose-os/hifctl/cli/hubris"
	"github.com/mongoose-os/hifctl/cli/probe/common"
)

const (
	SymText     = "HIFFY_TEXT"
	SymData     = "HIFFY_DATA"
	SymRStack   = "HIFFY_RSTACK"
	SymKick     = "HIFFY_KICK"
	SymReady    = "HIFFY_READY"
	SymRequests = "HIFFY_REQUESTS"
	SymErrors   = "HIFFY_ERRORS"
	SymFailure  = "HIFFY_FAILURE"
)

// Context executes programs on the interpreter of one attached target.
// Only one program can be in flight at a time.
type Context struct {
	tmrw      common.TargetMemReaderWriter
	functions Functions
	timeout   time.Duration
	now       func() time.Time

	text, data, rstack          hubris.Symbol
	kick, ready                 hubris.Symbol
	reqCount, errCount, failure hubris.Symbol
	haveFailure                 bool

	running   bool
	kicked    time.Time
	calls     []uint32
	nRequests uint32
	nErrors   uint32
}

// NewContext prepares execution on the target described by the archive.
// timeout bounds how long a program may run before Done reports a timeout.
func NewContext(a *hubris.Archive, tmrw common.TargetMemReaderWriter, timeout time.Duration) (*Context, error) {
	c := &Context{
		tmrw:      tmrw,
		functions: FunctionsFromArchive(a),
		timeout:   timeout,
		now:       time.Now,
	}
	for _, s := range []struct {
		name string
		sym  *hubris.Symbol
	}{
		{SymText, &c.text},
		{SymData, &c.data},
		{SymRStack, &c.rstack},
		{SymKick, &c.kick},
		{SymReady, &c.ready},
		{SymRequests, &c.reqCount},
		{SymErrors, &c.errCount},
	} {
		sym, err := a.LookupSymbol(s.name)
		if err != nil {
			return nil, errors.Annotatef(err, "archive does not support HIF")
		}
		if sym.Addr%4 != 0 {
			return nil, errors.NotValidf("unaligned %s (%s)", s.name, sym)
		}
		*s.sym = sym
	}
	if sym, err := a.LookupSymbol(SymFailure); err == nil {
		c.failure, c.haveFailure = sym, true
	}
	return c, nil
}

func (c *Context) Functions() Functions {
	return c.functions
}

func (c *Context) Timeout() time.Duration {
	return c.timeout
}

func (c *Context) readCounters(ctx context.Context) (uint32, uint32, error) {
	nr, err := c.tmrw.ReadTargetReg(ctx, c.reqCount.Addr)
	if err != nil {
		return 0, 0, errors.Annotatef(err, "failed to read %s", SymRequests)
	}
	ne, err := c.tmrw.ReadTargetReg(ctx, c.errCount.Addr)
	if err != nil {
		return 0, 0, errors.Annotatef(err, "failed to read %s", SymErrors)
	}
	return nr, ne, nil
}

// Execute loads the program and optional data and kicks the interpreter.
// It returns as soon as the program is started; use Done to wait for completion.
func (c *Context) Execute(ctx context.Context, ops []Op, data []byte) error {
	if c.running {
		return errors.Errorf("a program is already running")
	}
	calls, err := validateProgram(ops)
	if err != nil {
		return errors.Trace(err)
	}
	for _, id := range calls {
		if c.functions.ByID(id) == nil {
			return errors.NotValidf("call to unknown function %d", id)
		}
	}
	text, err := EncodeOps(ops)
	if err != nil {
		return errors.Trace(err)
	}
	if len(text) > int(c.text.Size) {
		return errors.NotValidf("program of %d bytes (%s is %d)", len(text), SymText, c.text.Size)
	}
	if len(data) > int(c.data.Size) {
		return errors.NotValidf("data of %d bytes (%s is %d)", len(data), SymData, c.data.Size)
	}
	ready, err := c.tmrw.ReadTargetReg(ctx, c.ready.Addr)
	if err != nil {
		return errors.Annotatef(err, "failed to read %s", SymReady)
	}
	if ready != 1 {
		return errors.Errorf("HIF execution facility unavailable (%s = %d)", SymReady, ready)
	}
	if c.nRequests, c.nErrors, err = c.readCounters(ctx); err != nil {
		return errors.Trace(err)
	}
	glog.V(2).Infof("Program %s => %s", FormatOps(ops), hex.EncodeToString(text))
	if err := common.WriteTargetBytes(ctx, c.tmrw, c.text.Addr, text); err != nil {
		return errors.Annotatef(err, "failed to write program")
	}
	if len(data) > 0 {
		glog.V(2).Infof("Data (%d): %s", len(data), hex.EncodeToString(data))
		if err := common.WriteTargetBytes(ctx, c.tmrw, c.data.Addr, data); err != nil {
			return errors.Annotatef(err, "failed to write data")
		}
	}
	if err := c.tmrw.WriteTargetReg(ctx, c.kick.Addr, 1); err != nil {
		return errors.Annotatef(err, "failed to kick the interpreter")
	}
	c.running = true
	c.kicked = c.now()
	c.calls = calls
	glog.V(1).Infof("Kicked, requests %d errors %d", c.nRequests, c.nErrors)
	return nil
}

// Done checks whether the running program has finished.
// Once the timeout has elapsed without completion, it fails with a timeout error.
func (c *Context) Done(ctx context.Context) (bool, error) {
	if !c.running {
		return false, errors.Errorf("no program running")
	}
	nr, ne, err := c.readCounters(ctx)
	if err != nil {
		return false, errors.Trace(err)
	}
	if nr != c.nRequests || ne != c.nErrors {
		glog.V(1).Infof("Done after %s, requests %d errors %d", c.now().Sub(c.kicked), nr, ne)
		return true, nil
	}
	if elapsed := c.now().Sub(c.kicked); c.timeout > 0 && elapsed > c.timeout {
		c.running = false
		return false, errors.Timeoutf("HIF operation (%s)", c.timeout)
	}
	return false, nil
}

// Results collects the results of a finished program, one per Call in program order.
func (c *Context) Results(ctx context.Context) ([]Result, error) {
	if !c.running {
		return nil, errors.Errorf("no program running")
	}
	c.running = false
	_, ne, err := c.readCounters(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if ne != c.nErrors {
		if !c.haveFailure {
			return nil, errors.Errorf("interpreter failed")
		}
		f, err := c.tmrw.ReadTargetReg(ctx, c.failure.Addr)
		if err != nil {
			return nil, errors.Annotatef(err, "interpreter failed, and failed to read %s", SymFailure)
		}
		return nil, errors.Errorf("interpreter failed (%s = 0x%x)", SymFailure, f)
	}
	rstack, err := common.ReadTargetBytes(ctx, c.tmrw, c.rstack.Addr, int(c.rstack.Size))
	if err != nil {
		return nil, errors.Annotatef(err, "failed to read %s", SymRStack)
	}
	res, err := decodeResults(rstack, len(c.calls))
	if err != nil {
		return nil, errors.Annotatef(err, "failed to decode results")
	}
	for i := range res {
		if res[i].Failed {
			res[i].ErrName = c.functions.ByID(c.calls[i]).ErrorName(res[i].Code)
		}
	}
	glog.V(2).Infof("Results: %s", res)
	return res, nil
}
