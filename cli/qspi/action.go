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
// Package qspi implements QSPI flash operations on a target through the HIF interpreter.
package qspi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/juju/errors"

	"github.com/mongoose-os/hifctl/common/multierror"
)

// Action is one QSPI operation. Exactly one action is performed per request.
type Action interface {
	fmt.Stringer
	isAction()
}

type ReadStatus struct{}

type ReadID struct{}

type SectorErase struct {
	Addr uint32
}

type BulkErase struct{}

type Read struct {
	Addr   uint32
	Length uint32
}

type Write struct {
	Addr uint32
	Data []byte
}

func (ReadStatus) isAction()  {}
func (ReadID) isAction()      {}
func (SectorErase) isAction() {}
func (BulkErase) isAction()   {}
func (Read) isAction()        {}
func (Write) isAction()       {}

func (ReadStatus) String() string { return "read status" }
func (ReadID) String() string     { return "read id" }
func (a SectorErase) String() string {
	return fmt.Sprintf("sector erase @ 0x%x", a.Addr)
}
func (BulkErase) String() string { return "bulk erase" }
func (a Read) String() string {
	return fmt.Sprintf("read %d @ 0x%x", a.Length, a.Addr)
}
func (a Write) String() string {
	return fmt.Sprintf("write %d @ 0x%x", len(a.Data), a.Addr)
}

// Args are the command line selections the action is built from.
type Args struct {
	Status    bool
	ID        bool
	Erase     bool
	BulkErase bool
	Read      bool
	// Write is the comma-separated list of bytes to write. HasWrite tells an empty list from no write.
	Write    string
	HasWrite bool

	Addr    uint32
	HasAddr bool
	NBytes  uint32
	HasLen  bool
}

// notValidf returns an error satisfying errors.IsNotValid with exactly the given message.
func notValidf(format string, args ...interface{}) error {
	return errors.NewNotValid(errors.Errorf(format, args...), "")
}

// ParseArgs validates the selection and returns the action it describes.
func ParseArgs(args *Args) (Action, error) {
	var selected []string
	for _, s := range []struct {
		set  bool
		name string
	}{
		{args.Status, "status"},
		{args.ID, "id"},
		{args.Erase, "erase"},
		{args.BulkErase, "bulkerase"},
		{args.Read, "read"},
		{args.HasWrite, "write"},
	} {
		if s.set {
			selected = append(selected, "--"+s.name)
		}
	}
	switch len(selected) {
	case 0:
		return nil, notValidf("expected an operation")
	case 1:
	default:
		return nil, notValidf("conflicting operations: %s", strings.Join(selected, ", "))
	}

	var errs error
	requireAddr := func() {
		if !args.HasAddr {
			errs = multierror.Append(errs, errors.Errorf("--addr is required for %s", selected[0]))
		}
	}

	switch {
	case args.Status:
		return ReadStatus{}, nil
	case args.ID:
		return ReadID{}, nil
	case args.BulkErase:
		return BulkErase{}, nil
	case args.Erase:
		requireAddr()
		if errs != nil {
			return nil, errors.NewNotValid(errs, "")
		}
		return SectorErase{Addr: args.Addr}, nil
	case args.Read:
		requireAddr()
		if !args.HasLen {
			errs = multierror.Append(errs, errors.Errorf("--nbytes is required for --read"))
		}
		if errs != nil {
			return nil, errors.NewNotValid(errs, "")
		}
		return Read{Addr: args.Addr, Length: args.NBytes}, nil
	}

	requireAddr()
	data, err := ParseBytes(args.Write)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	if errs != nil {
		return nil, errors.NewNotValid(errs, "")
	}
	return Write{Addr: args.Addr, Data: data}, nil
}

// ParseBytes parses a comma-separated list of byte values.
// Values may use 0x, 0o and 0b prefixes. Whitespace around values and empty items are ignored.
func ParseBytes(s string) ([]byte, error) {
	var res []byte
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseUint(tok, 0, 8)
		if err != nil {
			return nil, notValidf("invalid byte %s", tok)
		}
		res = append(res, byte(v))
	}
	if len(res) == 0 {
		return nil, notValidf("no bytes to write")
	}
	return res, nil
}
