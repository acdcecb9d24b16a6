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
	"fmt"
	"strings"

	"github.com/juju/errors"
)

const (
	resultTagOk  = 0x00
	resultTagErr = 0x01
)

// Result is the outcome of one Call: either a value or an error code reported by the function.
type Result struct {
	Value  []byte
	Failed bool
	Code   uint32
	// ErrName is the function's name for Code, if known.
	ErrName string
}

func Ok(value []byte) Result {
	return Result{Value: value}
}

func Err(code uint32) Result {
	return Result{Failed: true, Code: code}
}

func (r Result) String() string {
	if r.Failed {
		if r.ErrName != "" {
			return fmt.Sprintf("Err(%s)", r.ErrName)
		}
		return fmt.Sprintf("Err(0x%x)", r.Code)
	}
	s := make([]string, len(r.Value))
	for i, b := range r.Value {
		s[i] = fmt.Sprintf("%x", b)
	}
	return "Ok([" + strings.Join(s, ", ") + "])"
}

// decodeResults parses n entries off the return stack. An entry is a tag byte
// followed either by a varint length and that many bytes, or by a varint error code.
func decodeResults(rstack []byte, n int) ([]Result, error) {
	r := bytes.NewReader(rstack)
	res := make([]Result, 0, n)
	for i := 0; i < n; i++ {
		tag, err := r.ReadByte()
		if err != nil {
			return nil, errors.Errorf("result %d: return stack overrun", i)
		}
		v, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, errors.Errorf("result %d: truncated", i)
		}
		switch tag {
		case resultTagOk:
			if v > uint64(r.Len()) {
				return nil, errors.Errorf("result %d: length %d exceeds return stack", i, v)
			}
			value := make([]byte, v)
			r.Read(value)
			res = append(res, Ok(value))
		case resultTagErr:
			if v > 0xffffffff {
				return nil, errors.Errorf("result %d: invalid error code", i)
			}
			res = append(res, Err(uint32(v)))
		default:
			return nil, errors.Errorf("result %d: invalid tag 0x%02x", i, tag)
		}
	}
	return res, nil
}
