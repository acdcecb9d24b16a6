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
	"fmt"
	"sort"
	"strings"

	"github.com/mongoose-os/hifctl/cli/hubris"
)

// Function is a function the interpreter can Call.
type Function struct {
	ID     uint32
	Name   string
	Args   []hubris.FunctionArg
	Errors map[uint32]string
}

func (f *Function) String() string {
	var args []string
	for _, a := range f.Args {
		if a.Type != "" {
			args = append(args, a.Name+": "+a.Type)
		} else {
			args = append(args, a.Name)
		}
	}
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(args, ", "))
}

// ErrorName returns the symbolic name of an error code, if the function declares one.
func (f *Function) ErrorName(code uint32) string {
	if f == nil {
		return ""
	}
	return f.Errors[code]
}

// Functions is the interpreter's function table, keyed by name.
type Functions map[string]*Function

// FunctionsFromArchive builds the function table. Ids are positions in the archive's table.
func FunctionsFromArchive(a *hubris.Archive) Functions {
	res := Functions{}
	for i, f := range a.Functions {
		res[f.Name] = &Function{
			ID:     uint32(i),
			Name:   f.Name,
			Args:   f.Args,
			Errors: f.Errors,
		}
	}
	return res
}

func (fs Functions) Lookup(name string) (*Function, bool) {
	f, ok := fs[name]
	return f, ok
}

func (fs Functions) ByID(id uint32) *Function {
	for _, f := range fs {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// Sorted returns functions ordered by id.
func (fs Functions) Sorted() []*Function {
	res := make([]*Function, 0, len(fs))
	for _, f := range fs {
		res = append(res, f)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}
