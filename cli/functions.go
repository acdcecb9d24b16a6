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
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/juju/errors"

	"github.com/mongoose-os/hifctl/cli/hiffy"
)

func functionsCmd(ctx context.Context) error {
	a, err := loadArchive()
	if err != nil {
		return errors.Trace(err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tARGS\tERRORS\n")
	for _, f := range hiffy.FunctionsFromArchive(a).Sorted() {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", f.ID, f, len(f.Args), errorNames(f))
	}
	return errors.Trace(w.Flush())
}

func errorNames(f *hiffy.Function) string {
	codes := make([]int, 0, len(f.Errors))
	for code := range f.Errors {
		codes = append(codes, int(code))
	}
	sort.Ints(codes)
	names := make([]string, len(codes))
	for i, code := range codes {
		names[i] = fmt.Sprintf("%s=%d", f.Errors[uint32(code)], code)
	}
	return strings.Join(names, ", ")
}
