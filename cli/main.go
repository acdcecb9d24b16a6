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
	"os"

	"github.com/golang/glog"
	"github.com/juju/errors"
	flag "github.com/spf13/pflag"

	"github.com/mongoose-os/hifctl/cli/config"
	"github.com/mongoose-os/hifctl/cli/flags"
	"github.com/mongoose-os/hifctl/common/flagenv"
	"github.com/mongoose-os/hifctl/version"
)

const (
	envPrefix = "HIFCTL_"
)

var (
	versionFlag = flag.Bool("version", false, "Print version and exit")
	helpFull    = flag.Bool("helpfull", false, "Show full help, including advanced flags")
)

type command struct {
	name     string
	handler  handler
	short    string
	required []string
	optional []string
	extended bool
}

type handler func(ctx context.Context) error

var commands []command

func init() {
	commands = []command{
		{"qspi", qspiCmd, `Perform a QSPI flash operation on the target`, []string{"archive"}, []string{"status", "id", "erase", "bulkerase", "read", "write", "addr", "nbytes", "timeout"}, false},
		{"functions", functionsCmd, `List the HIF functions the firmware provides`, []string{"archive"}, []string{}, false},
		{"probe-info", probeInfoCmd, `Attach to the target and describe the probe and the core`, []string{}, []string{"probe-vid", "probe-pid", "probe-serial", "swd-clock"}, false},
		{"probes", probesCmd, `List debug probes connected over USB`, []string{}, []string{"probe-vid", "probe-pid"}, false},
		{"help", showHelp, `Show help. Adding --helpfull will show the full list of flags`, []string{}, []string{}, false},
	}
}

func showHelp(ctx context.Context) error {
	usage()
	return nil
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage()
		return nil
	}
	for _, c := range commands {
		if c.name == args[0] {
			if err := checkFlags(c.required); err != nil {
				return errors.Trace(err)
			}
			return errors.Trace(c.handler(ctx))
		}
	}
	return errors.NotFoundf("command %q", args[0])
}

func main() {
	initFlags()
	flag.Parse()

	if err := flagenv.Parse(envPrefix); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if err := config.Apply(flag.CommandLine, *flags.Config); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if *helpFull {
		unhideFlags()
		usage()
		return
	} else if *versionFlag {
		fmt.Printf("The HIF QSPI tool\n%s", version.String())
		return
	}

	if err := run(context.Background(), flag.Args()); err != nil {
		glog.Infof("Error: %s", errors.ErrorStack(err))
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}
