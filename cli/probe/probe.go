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
package probe

import (
	"context"
	"fmt"

	"github.com/golang/glog"
	"github.com/juju/errors"

	"github.com/mongoose-os/hifctl/cli/probe/cmsis-dap/dap"
	"github.com/mongoose-os/hifctl/cli/probe/cmsis-dap/dp"
	"github.com/mongoose-os/hifctl/cli/probe/cmsis-dap/memap"
	"github.com/mongoose-os/hifctl/cli/probe/common"
	"github.com/mongoose-os/hifctl/cli/probe/cortex"
)

const (
	// DAPLink firmware uses NXP VID.
	DefaultVID = 0x0d28
	DefaultPID = 0x0204

	DefaultSWDClockHz = 4000000
)

type Opts struct {
	VID, PID   uint16
	Serial     string
	APSel      uint8
	SWDClockHz uint32
	// AllowHalted permits attaching to a core that is halted or locked up.
	// The HIF interpreter only runs on a live target, so callers executing
	// programs should leave it unset.
	AllowHalted bool
}

type ProbeInfo struct {
	Vendor, Product, Serial, Version string
	TargetVendor, TargetName         string
}

func (pi ProbeInfo) String() string {
	return fmt.Sprintf("CMSIS-DAP probe %s %s v%s S/N %s; board %s %s",
		pi.Vendor, pi.Product, pi.Version, pi.Serial, pi.TargetVendor, pi.TargetName)
}

// Target is a live target attached through a CMSIS-DAP probe.
type Target struct {
	common.TargetMemReaderWriter

	Probe     ProbeInfo
	DPIDR     dp.DPIDRValue
	CoreName  string
	CoreState cortex.CoreState

	dapc dap.DAPClient
}

func getProbeInfo(ctx context.Context, dapc dap.DAPClient) ProbeInfo {
	s := func(id dap.InfoID) string {
		v, err := dapc.GetInfoString(ctx, id)
		if err != nil {
			glog.V(1).Infof("info 0x%02x: %s", id, err)
		}
		return v
	}
	return ProbeInfo{
		Vendor:       s(dap.InfoVendorID),
		Product:      s(dap.InfoProductID),
		Serial:       s(dap.InfoSerialNumber),
		Version:      s(dap.InfoFirmwareVersion),
		TargetVendor: s(dap.InfoTargetVendor),
		TargetName:   s(dap.InfoTargetName),
	}
}

func swdLineReset(ctx context.Context, dapc dap.DAPClient) error {
	// 50+ cycles with SWDIO high followed by at least two idle cycles.
	if err := dapc.SWJSequence(ctx, 64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(dapc.SWJSequence(ctx, 16, []byte{0, 0}))
}

func initSWD(ctx context.Context, dapc dap.DAPClient, clockHz uint32) error {
	if err := dapc.Connect(ctx, dap.ConnectModeSWD); err != nil {
		return errors.Annotatef(err, "failed to connect to debug probe in SWD mode")
	}
	if err := dapc.SWJClock(ctx, clockHz); err != nil {
		return errors.Annotatef(err, "failed to set clock")
	}
	if err := dapc.SWDConfigure(ctx, 0); err != nil {
		return errors.Annotatef(err, "failed to configure SWD")
	}
	if err := swdLineReset(ctx, dapc); err != nil {
		return errors.Annotatef(err, "SWD reset sequence failed")
	}
	// JTAG-to-SWD switch sequence.
	if err := dapc.SWJSequence(ctx, 16, []byte{0x9e, 0xe7}); err != nil {
		return errors.Annotatef(err, "JTAG-to-SWD sequence failed")
	}
	if err := swdLineReset(ctx, dapc); err != nil {
		return errors.Annotatef(err, "SWD reset sequence failed")
	}
	return errors.Annotatef(dapc.TransferConfigure(ctx, 0, 100, 100), "failed to configure transfers")
}

// Attach connects to the target's MEM-AP without resetting or halting the core.
func Attach(ctx context.Context, opts *Opts) (*Target, error) {
	dapc, err := dap.NewClient(ctx, opts.VID, opts.PID, opts.Serial)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to open debug probe")
	}
	tgt, err := attach(ctx, dapc, opts)
	if err != nil {
		dapc.Disconnect(ctx)
		dapc.Close(ctx)
		return nil, errors.Trace(err)
	}
	return tgt, nil
}

func attach(ctx context.Context, dapc dap.DAPClient, opts *Opts) (*Target, error) {
	tgt := &Target{dapc: dapc, Probe: getProbeInfo(ctx, dapc)}
	glog.Infof("%s", tgt.Probe)
	clockHz := opts.SWDClockHz
	if clockHz == 0 {
		clockHz = DefaultSWDClockHz
	}
	if err := initSWD(ctx, dapc, clockHz); err != nil {
		return nil, errors.Trace(err)
	}
	dpc := dp.NewDPClient(dapc)
	if err := dpc.Init(ctx); err != nil {
		return nil, errors.Annotatef(err, "failed to init DP, is the target connected and powered on?")
	}
	dpidr, err := dpc.GetIDR(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	tgt.DPIDR = dpidr
	mapc := memap.NewMemAPClient(dpc, opts.APSel)
	if err := mapc.Init(ctx); err != nil {
		return nil, errors.Annotatef(err, "failed to init AP")
	}
	tgt.TargetMemReaderWriter = mapc
	if tgt.CoreName, err = cortex.GetTargetName(ctx, mapc); err != nil {
		return nil, errors.Annotatef(err, "failed to get target name")
	}
	if tgt.CoreState, err = cortex.GetCoreState(ctx, mapc); err != nil {
		return nil, errors.Trace(err)
	}
	glog.Infof("Core: %s (%s), DP v%d rev%d (%s), minimal? %t",
		tgt.CoreName, tgt.CoreState, dpidr.Version(), dpidr.Revision(), dpidr.Designer(), dpidr.Minimal())
	if !opts.AllowHalted && (tgt.CoreState.Halted || tgt.CoreState.Lockup) {
		return nil, errors.Errorf("target is %s, a running target is required", tgt.CoreState)
	}
	if err := dapc.SetHostStatus(ctx, dap.StatusConnected, true); err != nil {
		glog.V(1).Infof("SetHostStatus: %s", err)
	}
	return tgt, nil
}

func (t *Target) Close(ctx context.Context) error {
	if t.dapc == nil {
		return nil
	}
	t.dapc.SetHostStatus(ctx, dap.StatusConnected, false)
	t.dapc.Disconnect(ctx)
	err := t.dapc.Close(ctx)
	t.dapc = nil
	return errors.Trace(err)
}
