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
// Package hubris loads the description of a firmware build: where the HIF
// interpreter keeps its buffers and which functions it exposes.
package hubris

import (
	"fmt"
	"io/ioutil"
	"sort"

	"github.com/golang/glog"
	"github.com/juju/errors"
	yaml "gopkg.in/yaml.v2"
)

type Symbol struct {
	Addr uint32 `yaml:"addr"`
	Size uint32 `yaml:"size"`
}

func (s Symbol) String() string {
	return fmt.Sprintf("0x%08x+%d", s.Addr, s.Size)
}

type FunctionArg struct {
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"`
}

type Function struct {
	Name string        `yaml:"name"`
	Args []FunctionArg `yaml:"args,omitempty"`
	// Errors maps error codes returned by the function to their names.
	Errors map[uint32]string `yaml:"errors,omitempty"`
}

type Archive struct {
	Name      string            `yaml:"name"`
	Symbols   map[string]Symbol `yaml:"symbols"`
	Functions []Function        `yaml:"functions"`

	path string
}

func Parse(data []byte) (*Archive, error) {
	a := &Archive{}
	if err := yaml.UnmarshalStrict(data, a); err != nil {
		return nil, errors.Annotatef(err, "invalid archive")
	}
	if err := a.validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return a, nil
}

func Load(path string) (*Archive, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to read archive")
	}
	a, err := Parse(data)
	if err != nil {
		return nil, errors.Annotatef(err, "%s", path)
	}
	a.path = path
	glog.V(1).Infof("Loaded archive %q from %s: %d symbols, %d functions", a.Name, path, len(a.Symbols), len(a.Functions))
	return a, nil
}

func (a *Archive) validate() error {
	seen := map[string]bool{}
	for i, f := range a.Functions {
		if f.Name == "" {
			return errors.NotValidf("function %d: empty name", i)
		}
		if seen[f.Name] {
			return errors.NotValidf("duplicate function %s", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

func (a *Archive) Path() string {
	return a.path
}

func (a *Archive) LookupSymbol(name string) (Symbol, error) {
	s, ok := a.Symbols[name]
	if !ok {
		return Symbol{}, errors.NotFoundf("symbol %s in archive %q", name, a.Name)
	}
	return s, nil
}

// SymbolNames returns names of all symbols, sorted.
func (a *Archive) SymbolNames() []string {
	var res []string
	for name := range a.Symbols {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}
