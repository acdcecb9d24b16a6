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
	"fmt"

	"github.com/golang/glog"
	"github.com/juju/errors"

	"github.com/mongoose-os/hifctl/cli/probe/cmsis-dap/dp"
	"github.com/mongoose-os/hifctl/cli/probe/common"
)

type MemAPReg uint8

const (
	CSW  MemAPReg = 0x00
	TAR  MemAPReg = 0x04
	DRW  MemAPReg = 0x0c
	BASE MemAPReg = 0xf8
	IDR  MemAPReg = 0xfc
)

const (
	CSW_DeviceEn = 0x40
	// Word access, single increment, basic mode, DbgSwEnable and HPROT for a data access.
	cswWordAutoInc = 0x23000052

	// TAR auto-increment is only guaranteed within a 1KB block.
	tarAutoIncBlock = 0x400
)

type MemAPClient interface {
	common.TargetMemReaderWriter

	Init(ctx context.Context) error
	ReadReg(ctx context.Context, reg MemAPReg) (uint32, error)
	WriteReg(ctx context.Context, reg MemAPReg, value uint32) error
}

type memAPClient struct {
	dpc   dp.DPClient
	apSel uint8
}

func NewMemAPClient(dpc dp.DPClient, apSel uint8) MemAPClient {
	return &memAPClient{dpc: dpc, apSel: apSel}
}

func (mapc *memAPClient) ReadReg(ctx context.Context, reg MemAPReg) (uint32, error) {
	value, err := mapc.dpc.ReadAPReg(ctx, mapc.apSel, uint8(reg))
	glog.V(4).Infof("%s == 0x%08x", reg, value)
	return value, errors.Trace(err)
}

func (mapc *memAPClient) WriteReg(ctx context.Context, reg MemAPReg, value uint32) error {
	glog.V(4).Infof("%s = 0x%08x", reg, value)
	return errors.Trace(mapc.dpc.WriteAPReg(ctx, mapc.apSel, uint8(reg), value))
}

func (mapc *memAPClient) Init(ctx context.Context) error {
	csw, err := mapc.ReadReg(ctx, CSW)
	if err != nil {
		return errors.Annotatef(err, "failed to read CSW of AP %d", mapc.apSel)
	}
	if csw&CSW_DeviceEn == 0 {
		return errors.Errorf("MEM-AP %d is disabled", mapc.apSel)
	}
	return errors.Trace(mapc.WriteReg(ctx, CSW, cswWordAutoInc))
}

func (mapc *memAPClient) ReadTargetReg(ctx context.Context, addr uint32) (uint32, error) {
	if err := mapc.WriteReg(ctx, TAR, addr); err != nil {
		return 0, errors.Trace(err)
	}
	value, err := mapc.ReadReg(ctx, DRW)
	glog.V(4).Infof("ReadTargetReg(0x%08x) == 0x%08x", addr, value)
	return value, errors.Trace(err)
}

func (mapc *memAPClient) WriteTargetReg(ctx context.Context, addr uint32, value uint32) error {
	glog.V(4).Infof("WriteTargetReg(0x%08x, 0x%08x)", addr, value)
	if err := mapc.WriteReg(ctx, TAR, addr); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(mapc.WriteReg(ctx, DRW, value))
}

// forEachBlock splits a transfer of numWords words at addr into runs that
// stay within one auto-increment block, setting TAR before each run.
func (mapc *memAPClient) forEachBlock(ctx context.Context, addr uint32, numWords int, f func(offset, count int) error) error {
	if addr%4 != 0 {
		return errors.NotValidf("unaligned address 0x%x", addr)
	}
	for i := 0; i < numWords; {
		if err := mapc.WriteReg(ctx, TAR, addr); err != nil {
			return errors.Trace(err)
		}
		cl := int((tarAutoIncBlock - addr&(tarAutoIncBlock-1)) / 4)
		if cl > numWords-i {
			cl = numWords - i
		}
		if err := f(i, cl); err != nil {
			return errors.Annotatef(err, "@ 0x%08x", addr)
		}
		addr += uint32(cl * 4)
		i += cl
	}
	return nil
}

func (mapc *memAPClient) ReadTargetMem(ctx context.Context, addr uint32, length int) ([]uint32, error) {
	glog.V(4).Infof("ReadTargetMem(0x%08x, %d)", addr, length)
	res := make([]uint32, 0, length)
	err := mapc.forEachBlock(ctx, addr, length, func(offset, count int) error {
		values, err := mapc.dpc.ReadAPRegMulti(ctx, mapc.apSel, uint8(DRW), count)
		res = append(res, values...)
		return err
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return res, nil
}

func (mapc *memAPClient) WriteTargetMem(ctx context.Context, addr uint32, data []uint32) error {
	glog.V(4).Infof("WriteTargetMem(0x%08x, %d)", addr, len(data))
	return mapc.forEachBlock(ctx, addr, len(data), func(offset, count int) error {
		return mapc.dpc.WriteAPRegMulti(ctx, mapc.apSel, uint8(DRW), data[offset:offset+count])
	})
}

func (r MemAPReg) String() string {
	switch r {
	case CSW:
		return "CSW"
	case TAR:
		return "TAR"
	case DRW:
		return "DRW"
	case BASE:
		return "BASE"
	case IDR:
		return "IDR"
	}
	return fmt.Sprintf("0x%x", uint8(r))
}
