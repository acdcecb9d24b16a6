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
package flags

import (
	"time"

	flag "github.com/spf13/pflag"

	"github.com/mongoose-os/hifctl/cli/probe"
	"github.com/mongoose-os/hifctl/cli/qspi"
)

var (
	Archive = flag.String("archive", "", "Firmware archive manifest (YAML) with the symbol and HIF function tables")
	Config  = flag.String("config", "", "Config file with flag defaults, section [hifctl]")

	ProbeVID    = flag.Uint16("probe-vid", probe.DefaultVID, "USB vendor ID of the debug probe")
	ProbePID    = flag.Uint16("probe-pid", probe.DefaultPID, "USB product ID of the debug probe")
	ProbeSerial = flag.String("probe-serial", "", "Serial number of the debug probe to use, if several are connected")
	AP          = flag.Uint8("ap", 0, "Index of the MEM-AP to use")
	SWDClock    = flag.Uint32("swd-clock", probe.DefaultSWDClockHz, "SWD clock frequency, Hz")
	AllowHalted = flag.Bool("allow-halted", false, "Do not refuse a halted target")

	Progress     = flag.Bool("progress", false, "Show a spinner while waiting for the operation to complete")
	PollInterval = flag.Duration("poll-interval", qspi.DefaultPollInterval, "Interval between completion checks")

	// qspi
	Status    = flag.BoolP("status", "s", false, "Read the status register")
	ID        = flag.BoolP("id", "i", false, "Read the device ID")
	Erase     = flag.BoolP("erase", "e", false, "Erase the sector at --addr")
	BulkErase = flag.BoolP("bulkerase", "E", false, "Erase the whole device")
	Read      = flag.BoolP("read", "r", false, "Read --nbytes bytes at --addr")
	Write     = flag.StringP("write", "w", "", "Write a comma-separated list of bytes at --addr")
	Addr      = flag.Uint32P("addr", "a", 0, "Address")
	NBytes    = flag.Uint32P("nbytes", "n", 0, "Number of bytes")
	TimeoutMs = flag.Uint32P("timeout", "T", 5000, "Operation timeout, ms")
)

func init() {
	flag.CommandLine.MarkHidden("poll-interval")
	flag.CommandLine.MarkHidden("allow-halted")
}

// Timeout returns the operation timeout.
func Timeout() time.Duration {
	return time.Duration(*TimeoutMs) * time.Millisecond
}

// ProbeOpts returns probe attachment options from flags.
func ProbeOpts() *probe.Opts {
	return &probe.Opts{
		VID:         *ProbeVID,
		PID:         *ProbePID,
		Serial:      *ProbeSerial,
		APSel:       *AP,
		SWDClockHz:  *SWDClock,
		AllowHalted: *AllowHalted,
	}
}

// QSPIArgs returns the qspi operation selection from flags.
func QSPIArgs() *qspi.Args {
	return &qspi.Args{
		Status:    *Status,
		ID:        *ID,
		Erase:     *Erase,
		BulkErase: *BulkErase,
		Read:      *Read,
		Write:     *Write,
		HasWrite:  flag.CommandLine.Changed("write"),
		Addr:      *Addr,
		HasAddr:   flag.CommandLine.Changed("addr"),
		NBytes:    *NBytes,
		HasLen:    flag.CommandLine.Changed("nbytes"),
	}
}
