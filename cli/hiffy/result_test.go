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
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeResults is what the interpreter leaves on the return stack.
func encodeResults(results []Result) []byte {
	buf := &bytes.Buffer{}
	var vb [binary.MaxVarintLen64]byte
	for _, r := range results {
		if r.Failed {
			buf.WriteByte(resultTagErr)
			buf.Write(vb[:binary.PutUvarint(vb[:], uint64(r.Code))])
		} else {
			buf.WriteByte(resultTagOk)
			buf.Write(vb[:binary.PutUvarint(vb[:], uint64(len(r.Value)))])
			buf.Write(r.Value)
		}
	}
	return buf.Bytes()
}

func TestDecodeResults(t *testing.T) {
	want := []Result{Ok([]byte{1, 2, 0xff}), Err(300), Ok([]byte{})}
	rstack := append(encodeResults(want), 0, 0, 0, 0)
	got, err := decodeResults(rstack, 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = decodeResults(rstack, 1)
	require.NoError(t, err)
	assert.Equal(t, want[:1], got)

	_, err = decodeResults(encodeResults(want), 4)
	assert.Error(t, err)
	_, err = decodeResults([]byte{0x00, 0x10, 0x01}, 1)
	assert.Error(t, err)
	_, err = decodeResults([]byte{0x05, 0x00}, 1)
	assert.Error(t, err)
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "Ok([1, 2, ff])", Ok([]byte{1, 2, 0xff}).String())
	assert.Equal(t, "Ok([])", Ok(nil).String())
	assert.Equal(t, "Err(0x3)", Err(3).String())
	r := Err(3)
	r.ErrName = "BadAddress"
	assert.Equal(t, "Err(BadAddress)", r.String())
}
