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
// Package hiffy drives the HIF bytecode interpreter that runs as a task on the
// target: programs are written into its text buffer, kicked, and their results
// read back from the return stack once the interpreter reports completion.
package hiffy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/juju/errors"
)

type Kind uint8

// Kind values double as wire tags. A zeroed text buffer decodes as Done.
const (
	KindDone   Kind = 0x00
	KindPush32 Kind = 0x01
	KindCall   Kind = 0x02
)

func (k Kind) String() string {
	switch k {
	case KindDone:
		return "Done"
	case KindPush32:
		return "Push32"
	case KindCall:
		return "Call"
	}
	return fmt.Sprintf("Kind(0x%02x)", uint8(k))
}

// Op is a single interpreter instruction.
type Op struct {
	Kind Kind
	// Arg is the constant for Push32 and the function id for Call.
	Arg uint32
}

func Push32(v uint32) Op {
	return Op{Kind: KindPush32, Arg: v}
}

func Call(id uint32) Op {
	return Op{Kind: KindCall, Arg: id}
}

func Done() Op {
	return Op{Kind: KindDone}
}

func (op Op) String() string {
	switch op.Kind {
	case KindDone:
		return "Done"
	case KindPush32:
		return fmt.Sprintf("Push32(0x%x)", op.Arg)
	}
	return fmt.Sprintf("%s(%d)", op.Kind, op.Arg)
}

func FormatOps(ops []Op) string {
	s := make([]string, len(ops))
	for i, op := range ops {
		s[i] = op.String()
	}
	return "[" + strings.Join(s, ", ") + "]"
}

// EncodeOps serializes a program: each op is a tag byte followed, for ops
// that carry one, by the argument as an unsigned LEB128 varint.
func EncodeOps(ops []Op) ([]byte, error) {
	buf := &bytes.Buffer{}
	var vb [binary.MaxVarintLen32]byte
	for i, op := range ops {
		switch op.Kind {
		case KindDone:
			buf.WriteByte(byte(op.Kind))
		case KindPush32, KindCall:
			buf.WriteByte(byte(op.Kind))
			n := binary.PutUvarint(vb[:], uint64(op.Arg))
			buf.Write(vb[:n])
		default:
			return nil, errors.NotValidf("op %d (%s)", i, op.Kind)
		}
	}
	return buf.Bytes(), nil
}

// DecodeOps parses a program up to and including the first Done.
func DecodeOps(text []byte) ([]Op, error) {
	r := bytes.NewReader(text)
	var ops []Op
	for {
		tag, err := r.ReadByte()
		if err != nil {
			return nil, errors.Errorf("program is not terminated")
		}
		op := Op{Kind: Kind(tag)}
		switch op.Kind {
		case KindDone:
			return append(ops, op), nil
		case KindPush32, KindCall:
			v, err := binary.ReadUvarint(r)
			if err != nil || v > 0xffffffff {
				return nil, errors.Errorf("op %d (%s): invalid argument", len(ops), op.Kind)
			}
			op.Arg = uint32(v)
		default:
			return nil, errors.Errorf("op %d: invalid tag 0x%02x", len(ops), tag)
		}
		ops = append(ops, op)
	}
}

// validateProgram checks that ops is a terminated program and returns the ids of the functions it calls.
func validateProgram(ops []Op) ([]uint32, error) {
	if len(ops) == 0 || ops[len(ops)-1].Kind != KindDone {
		return nil, errors.NotValidf("program without terminator")
	}
	var calls []uint32
	for i, op := range ops[:len(ops)-1] {
		switch op.Kind {
		case KindDone:
			return nil, errors.NotValidf("program with terminator at %d of %d", i, len(ops))
		case KindCall:
			calls = append(calls, op.Arg)
		}
	}
	return calls, nil
}
