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
package dap

import (
	"bytes"
	"context"

	"github.com/juju/errors"
)

// DAPClient is the subset of CMSIS-DAP commands needed to reach target memory over SWD.
type DAPClient interface {
	GetInfo(ctx context.Context, info InfoID) (*bytes.Buffer, error)
	GetInfoString(ctx context.Context, info InfoID) (string, error)

	SetHostStatus(ctx context.Context, st StatusType, value bool) error
	Connect(ctx context.Context, mode ConnectMode) error
	Disconnect(ctx context.Context) error
	TransferConfigure(ctx context.Context, idleCycles uint8, waitRetry uint16, matchRetry uint16) error
	Transfer(ctx context.Context, dapIndex uint8, reqs []TransferRequest) (TransferStatus, []uint32, error)
	GetTransferBlockMaxSize() int
	TransferBlockRead(ctx context.Context, dapIndex uint8, ap bool, reg uint8, length int) ([]uint32, error)
	TransferBlockWrite(ctx context.Context, dapIndex uint8, ap bool, reg uint8, data []uint32) error
	SWJClock(ctx context.Context, clockHz uint32) error
	SWJSequence(ctx context.Context, numBits int, data []uint8) error
	SWDConfigure(ctx context.Context, config uint8) error

	Close(ctx context.Context) error
}

type InfoID uint8

const (
	InfoVendorID        InfoID = 0x01
	InfoProductID       InfoID = 0x02
	InfoSerialNumber    InfoID = 0x03
	InfoFirmwareVersion InfoID = 0x04
	InfoTargetVendor    InfoID = 0x05
	InfoTargetName      InfoID = 0x06
	InfoMaxPacketSize   InfoID = 0xff
)

type StatusType uint8

const (
	StatusConnected StatusType = 0x00
	StatusRunning   StatusType = 0x01
)

type ConnectMode uint8

const (
	ConnectModeAuto ConnectMode = 0x00
	ConnectModeSWD  ConnectMode = 0x01
	ConnectModeJTAG ConnectMode = 0x02
)

type TransferOp uint8

const (
	OpRead       TransferOp = 0
	OpReadMatch  TransferOp = 1
	OpWrite      TransferOp = 2
	OpWriteMatch TransferOp = 3
)

type TransferRequest struct {
	Op   TransferOp
	AP   bool
	Reg  uint8
	Data uint32
}

// hasData reports whether the request carries a data word on the wire.
func (req TransferRequest) hasData() bool {
	return req.Op != OpRead
}

type TransferStatus uint8

const (
	TransferStatusOK   TransferStatus = 1
	TransferStatusWait TransferStatus = 2
)

func (ts TransferStatus) Ok() bool {
	return ts.AckValue() == 1 && !ts.SWDError() && !ts.ValueMismatch()
}

func (ts TransferStatus) AckValue() uint8 {
	return uint8(ts & 7)
}

func (ts TransferStatus) SWDError() bool {
	return ts&8 != 0
}

func (ts TransferStatus) ValueMismatch() bool {
	return ts&0x10 != 0
}

func transferRequestByte(ap bool, reg uint8, op TransferOp) (uint8, error) {
	if reg&3 != 0 {
		return 0, errors.Errorf("invalid reg 0x%x", reg)
	}
	treq := reg & 0xc
	if ap {
		treq |= 1 << 0
	}
	switch op {
	case OpRead:
		treq |= 1 << 1
	case OpReadMatch:
		treq |= 1<<1 | 1<<4
	case OpWriteMatch:
		treq |= 1 << 5
	}
	return treq, nil
}
