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
	"bytes"
	"context"
	"encoding/binary"

	"github.com/juju/errors"
)

// ToWords packs data into little-endian words, padding the tail with padWith.
func ToWords(data []byte, padWith byte) []uint32 {
	if len(data)%4 != 0 {
		data2 := make([]byte, (len(data)+3) & ^3)
		copy(data2, data)
		for i := len(data); i < len(data2); i++ {
			data2[i] = padWith
		}
		data = data2
	}
	var w uint32
	dataWords := make([]uint32, 0, len(data)/4)
	fb := bytes.NewBuffer(data)
	for binary.Read(fb, binary.LittleEndian, &w) == nil {
		dataWords = append(dataWords, w)
	}
	return dataWords
}

// FromWords is the inverse of ToWords.
func FromWords(words []uint32) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, len(words)*4))
	binary.Write(buf, binary.LittleEndian, words)
	return buf.Bytes()
}

// ReadTargetBytes reads length bytes starting at the word-aligned addr.
func ReadTargetBytes(ctx context.Context, tmr TargetMemReader, addr uint32, length int) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	words, err := tmr.ReadTargetMem(ctx, addr, (length+3)/4)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to read %d @ 0x%08x", length, addr)
	}
	return FromWords(words)[:length], nil
}

// WriteTargetBytes writes data starting at the word-aligned addr. The last word is padded with zeroes.
func WriteTargetBytes(ctx context.Context, tmw TargetMemWriter, addr uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := tmw.WriteTargetMem(ctx, addr, ToWords(data, 0)); err != nil {
		return errors.Annotatef(err, "failed to write %d @ 0x%08x", len(data), addr)
	}
	return nil
}
