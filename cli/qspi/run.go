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
package qspi

import (
	"context"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/juju/errors"

	"github.com/mongoose-os/hifctl/cli/hiffy"
)

const DefaultPollInterval = 100 * time.Millisecond

// Executor runs programs on the target. *hiffy.Context implements it.
type Executor interface {
	Execute(ctx context.Context, ops []hiffy.Op, data []byte) error
	Done(ctx context.Context) (bool, error)
	Results(ctx context.Context) ([]hiffy.Result, error)
}

type RunOpts struct {
	PollInterval time.Duration
	// Sleep is used between polls, time.Sleep if not set.
	Sleep func(time.Duration)
	// OnPoll, if set, is invoked after every poll that found the program still running.
	OnPoll func()
}

// Run performs the action: it builds the program, executes it and waits for the results.
// Errors reported by the remote function are returned as failed results, not as an error.
func Run(ctx context.Context, exec Executor, funcs FunctionTable, action Action, opts *RunOpts) ([]hiffy.Result, error) {
	op, err := Build(action, funcs)
	if err != nil {
		return nil, errors.Trace(err)
	}
	glog.V(1).Infof("%s: %s", action, op)
	return Execute(ctx, exec, op, opts)
}

// Execute submits a built operation and waits for it to complete.
func Execute(ctx context.Context, exec Executor, op *Operation, opts *RunOpts) ([]hiffy.Result, error) {
	if opts == nil {
		opts = &RunOpts{}
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	if err := exec.Execute(ctx, op.Ops, op.Data); err != nil {
		return nil, errors.Annotatef(err, "failed to execute")
	}
	polls := 0
	for {
		done, err := exec.Done(ctx)
		if err != nil {
			return nil, errors.Trace(err)
		}
		polls++
		if done {
			break
		}
		if opts.OnPoll != nil {
			opts.OnPoll()
		}
		sleep(interval)
	}
	glog.V(1).Infof("Completed after %d polls", polls)
	res, err := exec.Results(ctx)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to get results")
	}
	return res, nil
}

// FormatResults renders results the way they are printed to the user, e.g. [Ok([1, 2, ff])].
func FormatResults(res []hiffy.Result) string {
	s := make([]string, len(res))
	for i, r := range res {
		s[i] = r.String()
	}
	return "[" + strings.Join(s, ", ") + "]"
}
