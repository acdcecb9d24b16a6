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
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mongoose-os/hifctl/cli/hiffy"
	"github.com/mongoose-os/hifctl/cli/hubris"
)

func testFunctions() hiffy.Functions {
	arg := func(names ...string) []hubris.FunctionArg {
		var res []hubris.FunctionArg
		for _, n := range names {
			res = append(res, hubris.FunctionArg{Name: n, Type: "u32"})
		}
		return res
	}
	return hiffy.Functions{
		FuncReadStatus:  {ID: 0, Name: FuncReadStatus},
		FuncReadID:      {ID: 1, Name: FuncReadID},
		FuncSectorErase: {ID: 2, Name: FuncSectorErase, Args: arg("addr")},
		FuncBulkErase:   {ID: 3, Name: FuncBulkErase},
		FuncRead:        {ID: 4, Name: FuncRead, Args: arg("addr", "nbytes")},
		FuncPageProgram: {ID: 5, Name: FuncPageProgram, Args: arg("addr", "nbytes")},
	}
}

func TestBuild(t *testing.T) {
	cases := []struct {
		action Action
		ops    []hiffy.Op
		data   []byte
	}{
		{ReadStatus{}, []hiffy.Op{hiffy.Call(0), hiffy.Done()}, nil},
		{ReadID{}, []hiffy.Op{hiffy.Call(1), hiffy.Done()}, nil},
		{SectorErase{Addr: 0x1000}, []hiffy.Op{hiffy.Push32(0x1000), hiffy.Call(2), hiffy.Done()}, nil},
		{BulkErase{}, []hiffy.Op{hiffy.Call(3), hiffy.Done()}, nil},
		{
			Read{Addr: 0, Length: 256},
			[]hiffy.Op{hiffy.Push32(0), hiffy.Push32(256), hiffy.Call(4), hiffy.Done()},
			nil,
		},
		{
			Write{Addr: 0x2000, Data: []byte{1, 2, 255}},
			[]hiffy.Op{hiffy.Push32(0x2000), hiffy.Push32(3), hiffy.Call(5), hiffy.Done()},
			[]byte{1, 2, 255},
		},
	}
	funcs := testFunctions()
	for _, c := range cases {
		t.Run(c.action.String(), func(t *testing.T) {
			op, err := Build(c.action, funcs)
			require.NoError(t, err)
			assert.Equal(t, c.ops, op.Ops)
			assert.Equal(t, c.data, op.Data)
		})
	}
}

func TestBuildMissingFunction(t *testing.T) {
	funcs := testFunctions()
	delete(funcs, FuncBulkErase)
	_, err := Build(BulkErase{}, funcs)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(errors.Cause(err)))
	assert.Equal(t, "did not find QspiBulkErase function", err.Error())
}

func TestBuildSignatureMismatch(t *testing.T) {
	funcs := testFunctions()
	funcs[FuncSectorErase].Args = nil
	_, err := Build(SectorErase{Addr: 0x1000}, funcs)
	require.Error(t, err)
	assert.True(t, errors.IsNotValid(errors.Cause(err)))
	assert.Contains(t, err.Error(), "mismatched function signature on QspiSectorErase")
}

func TestOperationString(t *testing.T) {
	op, err := Build(Write{Addr: 0x10, Data: []byte{0xaa}}, testFunctions())
	require.NoError(t, err)
	assert.Equal(t, "[Push32(0x10), Push32(0x1), Call(5), Done] + 1 bytes", op.String())
}
