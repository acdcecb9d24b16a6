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
package cortex

// Doc: ARM v7-M Architecture Reference Manual

import (
	"context"
	"fmt"

	"github.com/golang/glog"
	"github.com/juju/errors"

	"github.com/mongoose-os/hifctl/cli/probe/common"
)

const (
	regCPUID uint32 = 0xE000ED00
	regDHCSR uint32 = 0xE000EDF0
	regPID0  uint32 = 0xE000EFE0

	dhcsrCDebugEn = 1 << 0
	dhcsrSHalt    = 1 << 17
	dhcsrSLockup  = 1 << 19
)

var partNames = map[uint32]string{
	0xc20: "Cortex-M0",
	0xc60: "Cortex-M0+",
	0xc21: "Cortex-M1",
	0xc23: "Cortex-M3",
	0xc24: "Cortex-M4",
	0xc27: "Cortex-M7",
	0xd20: "Cortex-M23",
	0xd21: "Cortex-M33",
}

func TargetName(cpuid, pid0 uint32) string {
	glog.V(1).Infof("CPUID: 0x%08x, PID0: 0x%08x", cpuid, pid0)
	vendor := ""
	if cpuid>>24 == 0x41 {
		vendor = "ARM"
	}
	part, ok := partNames[(cpuid>>4)&0xfff]
	if !ok {
		part = fmt.Sprintf("part 0x%03x", (cpuid>>4)&0xfff)
	}
	fpu := ""
	if pid0 == 0xc {
		fpu = "F"
	}
	return fmt.Sprintf("%s %s%s r%dp%d", vendor, part, fpu, (cpuid>>20)&0xf, cpuid&0xf)
}

func GetTargetName(ctx context.Context, tmr common.TargetMemReader) (string, error) {
	cpuid, err := tmr.ReadTargetReg(ctx, regCPUID)
	if err != nil {
		return "", errors.Annotatef(err, "failed to get CPUID")
	}
	pid0, err := tmr.ReadTargetReg(ctx, regPID0)
	if err != nil {
		return "", errors.Annotatef(err, "failed to get PID0")
	}
	return TargetName(cpuid, pid0), nil
}

type CoreState struct {
	DebugEnabled bool
	Halted       bool
	Lockup       bool
}

func (s CoreState) String() string {
	switch {
	case s.Lockup:
		return "locked up"
	case s.Halted:
		return "halted"
	}
	return "running"
}

// GetCoreState reads DHCSR without disturbing the core.
func GetCoreState(ctx context.Context, tmr common.TargetMemReader) (CoreState, error) {
	dhcsr, err := tmr.ReadTargetReg(ctx, regDHCSR)
	if err != nil {
		return CoreState{}, errors.Annotatef(err, "failed to get DHCSR")
	}
	glog.V(3).Infof("DHCSR 0x%08x", dhcsr)
	return CoreState{
		DebugEnabled: dhcsr&dhcsrCDebugEn != 0,
		Halted:       dhcsr&dhcsrSHalt != 0,
		Lockup:       dhcsr&dhcsrSLockup != 0,
	}, nil
}
