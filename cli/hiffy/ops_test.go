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
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeOps(t *testing.T) {
	ops := []Op{Push32(0x2000), Push32(3), Call(5), Done()}
	text, err := EncodeOps(ops)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x80, 0x40, 0x01, 0x03, 0x02, 0x05, 0x00}, text)

	got, err := DecodeOps(append(text, 0xaa, 0xbb))
	require.NoError(t, err)
	assert.Equal(t, ops, got)
	assert.Equal(t, "[Push32(0x2000), Push32(0x3), Call(5), Done]", FormatOps(got))

	text, err = EncodeOps([]Op{Push32(0xffffffff), Done()})
	require.NoError(t, err)
	got, err = DecodeOps(text)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xffffffff), got[0].Arg)

	_, err = EncodeOps([]Op{{Kind: 0x7f}})
	assert.True(t, errors.IsNotValid(err))
}

func TestDecodeOpsInvalid(t *testing.T) {
	for _, text := range [][]byte{
		nil,
		{0x01, 0x05},
		{0x02},
		{0x09, 0x00},
		{0x01, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01, 0x00},
	} {
		_, err := DecodeOps(text)
		assert.Errorf(t, err, "%x", text)
	}
}

func TestValidateProgram(t *testing.T) {
	calls, err := validateProgram([]Op{Push32(1), Call(2), Call(7), Done()})
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 7}, calls)

	_, err = validateProgram(nil)
	assert.True(t, errors.IsNotValid(err))
	_, err = validateProgram([]Op{Call(1)})
	assert.True(t, errors.IsNotValid(err))
	_, err = validateProgram([]Op{Done(), Call(1), Done()})
	assert.True(t, errors.IsNotValid(err))
}
