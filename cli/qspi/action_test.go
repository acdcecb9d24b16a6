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
)

func TestParseArgs(t *testing.T) {
	cases := []struct {
		args Args
		want Action
		err  string
	}{
		{args: Args{Status: true}, want: ReadStatus{}},
		{args: Args{ID: true}, want: ReadID{}},
		{args: Args{BulkErase: true}, want: BulkErase{}},
		{args: Args{Erase: true, Addr: 0x1000, HasAddr: true}, want: SectorErase{Addr: 0x1000}},
		{args: Args{Read: true, Addr: 0x10, HasAddr: true, NBytes: 256, HasLen: true}, want: Read{Addr: 0x10, Length: 256}},
		{args: Args{HasWrite: true, Write: "1,2,255", Addr: 0x2000, HasAddr: true}, want: Write{Addr: 0x2000, Data: []byte{1, 2, 255}}},
		{args: Args{HasWrite: true, Write: " 0x10, 0b11 ,,0o7, ", Addr: 0, HasAddr: true}, want: Write{Data: []byte{0x10, 3, 7}}},

		{args: Args{}, err: "expected an operation"},
		{args: Args{Status: true, Read: true}, err: "conflicting operations: --status, --read"},
		{args: Args{Erase: true, BulkErase: true, Addr: 1, HasAddr: true}, err: "conflicting operations: --erase, --bulkerase"},
		{args: Args{Erase: true}, err: "--addr is required for --erase"},
		{args: Args{Read: true, HasLen: true}, err: "--addr is required for --read"},
		{args: Args{Read: true, HasAddr: true}, err: "--nbytes is required for --read"},
		{args: Args{Read: true}, err: "2 error(s) occurred:\n--addr is required for --read\n--nbytes is required for --read"},
		{args: Args{HasWrite: true, Write: "1,2"}, err: "--addr is required for --write"},
		{args: Args{HasWrite: true, Write: "1,zz,3", HasAddr: true}, err: "invalid byte zz"},
		{args: Args{HasWrite: true, Write: "1,256", HasAddr: true}, err: "invalid byte 256"},
		{args: Args{HasWrite: true, Write: " , ", HasAddr: true}, err: "no bytes to write"},
		{args: Args{HasWrite: true, Write: "", HasAddr: true}, err: "no bytes to write"},
	}
	for _, c := range cases {
		a, err := ParseArgs(&c.args)
		if c.err != "" {
			require.Errorf(t, err, "%+v", c.args)
			assert.Equalf(t, c.err, err.Error(), "%+v", c.args)
			assert.Truef(t, errors.IsNotValid(err), "%+v: %T", c.args, errors.Cause(err))
			assert.Nil(t, a)
			continue
		}
		require.NoErrorf(t, err, "%+v", c.args)
		assert.Equalf(t, c.want, a, "%+v", c.args)
	}
}

func TestParseBytes(t *testing.T) {
	data, err := ParseBytes("0xde,0xad, 190 ,0xef")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, data)

	_, err = ParseBytes("1,2,-3")
	require.Error(t, err)
	assert.Equal(t, "invalid byte -3", err.Error())
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "sector erase @ 0x1000", SectorErase{Addr: 0x1000}.String())
	assert.Equal(t, "read 16 @ 0x20", Read{Addr: 0x20, Length: 16}.String())
	assert.Equal(t, "write 3 @ 0x2000", Write{Addr: 0x2000, Data: []byte{1, 2, 3}}.String())
	assert.Equal(t, "bulk erase", BulkErase{}.String())
}
