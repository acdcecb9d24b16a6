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
	"fmt"

	"github.com/juju/errors"

	"github.com/mongoose-os/hifctl/cli/hiffy"
)

// Names of the QSPI functions in the interpreter's function table.
const (
	FuncReadStatus  = "QspiReadStatus"
	FuncReadID      = "QspiReadId"
	FuncSectorErase = "QspiSectorErase"
	FuncBulkErase   = "QspiBulkErase"
	FuncRead        = "QspiRead"
	FuncPageProgram = "QspiPageProgram"
)

// FunctionTable resolves interpreter functions by name.
type FunctionTable interface {
	Lookup(name string) (*hiffy.Function, bool)
}

// Operation is a program ready to be executed, with the data it consumes.
type Operation struct {
	Ops  []hiffy.Op
	Data []byte
}

func (op *Operation) String() string {
	if len(op.Data) > 0 {
		return fmt.Sprintf("%s + %d bytes", hiffy.FormatOps(op.Ops), len(op.Data))
	}
	return hiffy.FormatOps(op.Ops)
}

func lookupFunc(funcs FunctionTable, name string, nargs int) (*hiffy.Function, error) {
	f, ok := funcs.Lookup(name)
	if !ok {
		return nil, errors.NewNotFound(errors.Errorf("did not find %s function", name), "")
	}
	if len(f.Args) != nargs {
		return nil, notValidf("mismatched function signature on %s (want %d args, firmware has %d)", name, nargs, len(f.Args))
	}
	return f, nil
}

// Build translates the action into a program calling the corresponding function.
// The function must exist and take exactly the arguments the program pushes.
func Build(action Action, funcs FunctionTable) (*Operation, error) {
	var name string
	var args []uint32
	var data []byte
	switch a := action.(type) {
	case ReadStatus:
		name = FuncReadStatus
	case ReadID:
		name = FuncReadID
	case SectorErase:
		name, args = FuncSectorErase, []uint32{a.Addr}
	case BulkErase:
		name = FuncBulkErase
	case Read:
		name, args = FuncRead, []uint32{a.Addr, a.Length}
	case Write:
		// The length pushed is that of the data so the two cannot disagree.
		name, args, data = FuncPageProgram, []uint32{a.Addr, uint32(len(a.Data))}, a.Data
	default:
		return nil, errors.NotSupportedf("action %v", action)
	}
	f, err := lookupFunc(funcs, name, len(args))
	if err != nil {
		return nil, errors.Trace(err)
	}
	op := &Operation{Data: data}
	for _, arg := range args {
		op.Ops = append(op.Ops, hiffy.Push32(arg))
	}
	op.Ops = append(op.Ops, hiffy.Call(f.ID), hiffy.Done())
	return op, nil
}
