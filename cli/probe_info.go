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
package main

import (
	"context"
	"fmt"

	"github.com/juju/errors"

	"github.com/mongoose-os/hifctl/cli/flags"
	"github.com/mongoose-os/hifctl/cli/probe"
)

func probeInfoCmd(ctx context.Context) error {
	opts := flags.ProbeOpts()
	// Only describing the target, its state does not matter.
	opts.AllowHalted = true
	tgt, err := probe.Attach(ctx, opts)
	if err != nil {
		return errors.Annotatef(err, "failed to attach to target")
	}
	defer tgt.Close(ctx)
	fmt.Printf("Probe: %s\n", tgt.Probe)
	fmt.Printf("DP: designer %s, version %d, part 0x%02x, rev %d (DPIDR 0x%08x)\n",
		tgt.DPIDR.Designer(), tgt.DPIDR.Version(), tgt.DPIDR.PartNumber(), tgt.DPIDR.Revision(), uint32(tgt.DPIDR))
	fmt.Printf("Core: %s, %s\n", tgt.CoreName, tgt.CoreState)
	return nil
}

func probesCmd(ctx context.Context) error {
	probes, err := probe.ListUSBProbes(*flags.ProbeVID, *flags.ProbePID)
	if err != nil {
		return errors.Trace(err)
	}
	if len(probes) == 0 {
		return errors.NotFoundf("probes with VID:PID %04x:%04x", *flags.ProbeVID, *flags.ProbePID)
	}
	for _, p := range probes {
		fmt.Println(p)
	}
	return nil
}
