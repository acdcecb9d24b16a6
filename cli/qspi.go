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
	"os"

	"github.com/fatih/color"
	"github.com/golang/glog"
	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"

	"github.com/mongoose-os/hifctl/cli/flags"
	"github.com/mongoose-os/hifctl/cli/hiffy"
	"github.com/mongoose-os/hifctl/cli/hubris"
	"github.com/mongoose-os/hifctl/cli/ourutil"
	"github.com/mongoose-os/hifctl/cli/probe"
	"github.com/mongoose-os/hifctl/cli/qspi"
)

func loadArchive() (*hubris.Archive, error) {
	a, err := hubris.Load(*flags.Archive)
	return a, errors.Trace(err)
}

func attach(ctx context.Context) (*probe.Target, error) {
	tgt, err := probe.Attach(ctx, flags.ProbeOpts())
	if err != nil {
		return nil, errors.Annotatef(err, "failed to attach to target")
	}
	glog.Infof("%s; %s (%s)", tgt.Probe, tgt.CoreName, tgt.CoreState)
	return tgt, nil
}

func qspiCmd(ctx context.Context) error {
	action, err := qspi.ParseArgs(flags.QSPIArgs())
	if err != nil {
		return errors.Trace(err)
	}
	a, err := loadArchive()
	if err != nil {
		return errors.Trace(err)
	}
	// The program is built before touching the target so that a firmware
	// without the required functions is rejected without side effects.
	op, err := qspi.Build(action, hiffy.FunctionsFromArchive(a))
	if err != nil {
		return errors.Trace(err)
	}
	glog.V(1).Infof("%s: %s", action, op)

	tgt, err := attach(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	defer tgt.Close(ctx)

	hc, err := hiffy.NewContext(a, tgt, flags.Timeout())
	if err != nil {
		return errors.Trace(err)
	}

	opts := &qspi.RunOpts{PollInterval: *flags.PollInterval}
	if *flags.Progress {
		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(action.String()),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
		opts.OnPoll = func() { bar.Add(1) }
		defer bar.Finish()
	} else if _, ok := action.(qspi.BulkErase); ok {
		ourutil.Reportf("Erasing the whole device, this may take a while...")
	}

	res, err := qspi.Execute(ctx, hc, op, opts)
	if err != nil {
		return errors.Trace(err)
	}
	printResults(res)
	return nil
}

func printResults(res []hiffy.Result) {
	c := color.New(color.FgGreen)
	for _, r := range res {
		if r.Failed {
			c = color.New(color.FgRed)
		}
	}
	c.Fprintln(color.Output, qspi.FormatResults(res))
}
