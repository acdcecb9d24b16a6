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
package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wordMem map[uint32]uint32

func (m wordMem) ReadTargetReg(ctx context.Context, addr uint32) (uint32, error) {
	return m[addr], nil
}

func (m wordMem) ReadTargetMem(ctx context.Context, addr uint32, length int) ([]uint32, error) {
	var res []uint32
	for i := 0; i < length; i++ {
		res = append(res, m[addr+uint32(i*4)])
	}
	return res, nil
}

func (m wordMem) WriteTargetReg(ctx context.Context, addr uint32, value uint32) error {
	m[addr] = value
	return nil
}

func (m wordMem) WriteTargetMem(ctx context.Context, addr uint32, data []uint32) error {
	for i, w := range data {
		m[addr+uint32(i*4)] = w
	}
	return nil
}

func TestToWords(t *testing.T) {
	assert.Equal(t, []uint32{0x04030201}, ToWords([]byte{1, 2, 3, 4}, 0))
	assert.Equal(t, []uint32{0x04030201, 0xffffff05}, ToWords([]byte{1, 2, 3, 4, 5}, 0xff))
	assert.Empty(t, ToWords(nil, 0))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 0, 0, 0}, FromWords(ToWords([]byte{1, 2, 3, 4, 5}, 0)))
}

func TestTargetBytes(t *testing.T) {
	ctx := context.Background()
	m := wordMem{}
	require.NoError(t, WriteTargetBytes(ctx, m, 0x100, []byte{0xde, 0xad, 0xbe, 0xef, 0x01}))
	assert.Equal(t, uint32(0xefbeadde), m[0x100])
	assert.Equal(t, uint32(0x01), m[0x104])
	data, err := ReadTargetBytes(ctx, m, 0x100, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef, 0x01}, data)
	data, err = ReadTargetBytes(ctx, m, 0x100, 0)
	require.NoError(t, err)
	assert.Empty(t, data)
}
