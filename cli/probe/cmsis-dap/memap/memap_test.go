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
package memap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mongoose-os/hifctl/cli/probe/cmsis-dap/dp"
)

// fakeDP emulates a MEM-AP in front of a word-addressed memory.
type fakeDP struct {
	dp.DPClient

	csw uint32
	tar uint32
	mem map[uint32]uint32

	runs []int
}

func (f *fakeDP) ReadAPReg(ctx context.Context, apSel, apReg uint8) (uint32, error) {
	switch MemAPReg(apReg) {
	case CSW:
		return f.csw, nil
	case DRW:
		return f.mem[f.tar], nil
	}
	return 0, nil
}

func (f *fakeDP) WriteAPReg(ctx context.Context, apSel, apReg uint8, value uint32) error {
	switch MemAPReg(apReg) {
	case CSW:
		f.csw = value
	case TAR:
		f.tar = value
	case DRW:
		f.mem[f.tar] = value
	}
	return nil
}

func (f *fakeDP) ReadAPRegMulti(ctx context.Context, apSel, apReg uint8, length int) ([]uint32, error) {
	f.runs = append(f.runs, length)
	var res []uint32
	for i := 0; i < length; i++ {
		res = append(res, f.mem[f.tar])
		f.tar += 4
	}
	return res, nil
}

func (f *fakeDP) WriteAPRegMulti(ctx context.Context, apSel, apReg uint8, values []uint32) error {
	f.runs = append(f.runs, len(values))
	for _, v := range values {
		f.mem[f.tar] = v
		f.tar += 4
	}
	return nil
}

func TestInit(t *testing.T) {
	ctx := context.Background()
	f := &fakeDP{mem: map[uint32]uint32{}}
	mapc := NewMemAPClient(f, 0)
	assert.Error(t, mapc.Init(ctx))
	f.csw = CSW_DeviceEn
	require.NoError(t, mapc.Init(ctx))
	assert.Equal(t, uint32(cswWordAutoInc), f.csw)
}

func TestReadWriteAcrossBlocks(t *testing.T) {
	ctx := context.Background()
	f := &fakeDP{mem: map[uint32]uint32{}}
	mapc := NewMemAPClient(f, 0)

	data := []uint32{1, 2, 3, 4, 5}
	require.NoError(t, mapc.WriteTargetMem(ctx, 0x200003f8, data))
	assert.Equal(t, []int{2, 3}, f.runs)
	assert.Equal(t, uint32(3), f.mem[0x20000400])

	f.runs = nil
	got, err := mapc.ReadTargetMem(ctx, 0x200003f8, 5)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, []int{2, 3}, f.runs)

	require.NoError(t, mapc.WriteTargetReg(ctx, 0x20001000, 0xfeedface))
	v, err := mapc.ReadTargetReg(ctx, 0x20001000)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xfeedface), v)

	_, err = mapc.ReadTargetMem(ctx, 0x20000002, 1)
	assert.Error(t, err)
}
