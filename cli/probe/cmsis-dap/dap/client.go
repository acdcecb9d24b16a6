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
//go:build !no_libudev
// +build !no_libudev

package dap

// CMSIS-DAP v1 (HID) client, command reference:
// https://arm-software.github.io/CMSIS_5/DAP/html/group__DAP__Commands__gr.html

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"

	"github.com/cesanta/hid"
	"github.com/golang/glog"
	"github.com/juju/errors"
)

type cmd uint8

const (
	cmdInfo              cmd = 0x00
	cmdSetHostStatus     cmd = 0x01
	cmdConnect           cmd = 0x02
	cmdDisconnect        cmd = 0x03
	cmdTransferConfigure cmd = 0x04
	cmdTransfer          cmd = 0x05
	cmdTransferBlock     cmd = 0x06
	cmdSWJClock          cmd = 0x11
	cmdSWJSequence       cmd = 0x12
	cmdSWDConfigure      cmd = 0x13
)

const transferWaitRetries = 5

type dapClient struct {
	d             hid.Device
	di            *hid.DeviceInfo
	maxPacketSize int
}

// NewClient opens the first CMSIS-DAP probe with the given VID:PID.
// If serial is not empty, probes reporting a different serial number are skipped.
func NewClient(ctx context.Context, vid, pid uint16, serial string) (DAPClient, error) {
	devs, err := hid.Devices()
	if err != nil {
		return nil, errors.Annotatef(err, "failed to enumerate HID devices")
	}
	for i, di := range devs {
		glog.V(1).Infof("%d: %04x:%04x %s", i, di.VendorID, di.ProductID, di.Path)
		if di.VendorID != vid || di.ProductID != pid {
			continue
		}
		dapc, err := openClient(ctx, di)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if serial != "" {
			sn, err := dapc.GetInfoString(ctx, InfoSerialNumber)
			if err != nil || sn != serial {
				glog.V(1).Infof("%s: serial %q, want %q", di.Path, sn, serial)
				dapc.Close(ctx)
				continue
			}
		}
		return dapc, nil
	}
	if serial != "" {
		return nil, errors.NotFoundf("probe %04x:%04x S/N %s", vid, pid, serial)
	}
	return nil, errors.NotFoundf("probe %04x:%04x", vid, pid)
}

func openClient(ctx context.Context, di *hid.DeviceInfo) (*dapClient, error) {
	d, err := di.Open()
	if err != nil {
		return nil, errors.Annotatef(err, "failed to open device %04x:%04x (%s)", di.VendorID, di.ProductID, di.Path)
	}
	glog.Infof("Opened %04x:%04x (%s)", di.VendorID, di.ProductID, di.Path)
	dapc := &dapClient{
		di:            di,
		d:             d,
		maxPacketSize: 8, // Until the probe tells us otherwise.
	}
	resp, err := dapc.GetInfo(ctx, InfoMaxPacketSize)
	if err != nil {
		dapc.Close(ctx)
		return nil, errors.Annotatef(err, "failed to get max packet size")
	}
	var rl uint8
	var mps uint16
	if binary.Read(resp, binary.LittleEndian, &rl) != nil || binary.Read(resp, binary.LittleEndian, &mps) != nil {
		dapc.Close(ctx)
		return nil, errors.Errorf("invalid max packet size response")
	}
	dapc.maxPacketSize = int(mps)
	glog.V(2).Infof("max packet size: %d", dapc.maxPacketSize)
	return dapc, nil
}

func newCmd(c cmd) *bytes.Buffer {
	return bytes.NewBuffer([]uint8{
		0, // HID report number (unused)
		uint8(c),
	})
}

func (dapc *dapClient) exec(ctx context.Context, args *bytes.Buffer) (*bytes.Buffer, error) {
	req := args.Bytes()
	glog.V(4).Infof(" => %s", hex.EncodeToString(req[1:]))
	if len(req) > dapc.maxPacketSize {
		return nil, errors.Errorf("packet too long (max %d, got %d)", dapc.maxPacketSize, len(req))
	}
	if err := dapc.d.Write(req); err != nil {
		return nil, errors.Annotatef(err, "device write failed")
	}
	select {
	case <-ctx.Done():
		return nil, errors.Annotatef(ctx.Err(), "DAP exec")
	case resp, ok := <-dapc.d.ReadCh():
		if !ok {
			return nil, errors.Annotatef(dapc.d.ReadError(), "device read failed")
		}
		glog.V(4).Infof("<=  %s", hex.EncodeToString(resp))
		if len(resp) == 0 || resp[0] != req[1] {
			return nil, errors.Errorf("response to wrong command (want 0x%02x, got %s)", req[1], hex.EncodeToString(resp))
		}
		return bytes.NewBuffer(resp[1:]), nil
	}
}

func (dapc *dapClient) execCheckStatus(ctx context.Context, args *bytes.Buffer) error {
	c := args.Bytes()[1]
	resp, err := dapc.exec(ctx, args)
	if err != nil {
		return errors.Trace(err)
	}
	status, err := resp.ReadByte()
	if err != nil {
		return errors.Errorf("command 0x%02x: empty response", c)
	}
	if status != 0 {
		return errors.Errorf("command 0x%02x returned error (0x%02x)", c, status)
	}
	return nil
}

func (dapc *dapClient) GetInfo(ctx context.Context, info InfoID) (*bytes.Buffer, error) {
	glog.V(3).Infof("GetInfo(0x%02x)", info)
	args := newCmd(cmdInfo)
	args.WriteByte(uint8(info))
	resp, err := dapc.exec(ctx, args)
	return resp, errors.Annotatef(err, "failed to get info 0x%02x", info)
}

func (dapc *dapClient) GetInfoString(ctx context.Context, info InfoID) (string, error) {
	resp, err := dapc.GetInfo(ctx, info)
	if err != nil {
		return "", errors.Trace(err)
	}
	sl, err := resp.ReadByte()
	if err != nil {
		return "", errors.Errorf("info 0x%02x: response is too short", info)
	}
	s := resp.Next(int(sl))
	// Strings are NUL-terminated and the terminator is included in the length.
	return string(bytes.TrimRight(s, "\x00")), nil
}

func (dapc *dapClient) SetHostStatus(ctx context.Context, st StatusType, value bool) error {
	args := newCmd(cmdSetHostStatus)
	args.WriteByte(uint8(st))
	if value {
		args.WriteByte(1)
	} else {
		args.WriteByte(0)
	}
	return errors.Trace(dapc.execCheckStatus(ctx, args))
}

func (dapc *dapClient) Connect(ctx context.Context, mode ConnectMode) error {
	glog.V(3).Infof("Connect(%d)", mode)
	args := newCmd(cmdConnect)
	args.WriteByte(uint8(mode))
	resp, err := dapc.exec(ctx, args)
	if err != nil {
		return errors.Trace(err)
	}
	if m, err := resp.ReadByte(); err != nil || m == 0 {
		return errors.Errorf("connect error")
	}
	return nil
}

func (dapc *dapClient) Disconnect(ctx context.Context) error {
	return errors.Trace(dapc.execCheckStatus(ctx, newCmd(cmdDisconnect)))
}

func (dapc *dapClient) TransferConfigure(ctx context.Context, idleCycles uint8, waitRetry uint16, matchRetry uint16) error {
	glog.V(3).Infof("TransferConfigure(%d, %d, %d)", idleCycles, waitRetry, matchRetry)
	args := newCmd(cmdTransferConfigure)
	binary.Write(args, binary.LittleEndian, idleCycles)
	binary.Write(args, binary.LittleEndian, waitRetry)
	binary.Write(args, binary.LittleEndian, matchRetry)
	return errors.Trace(dapc.execCheckStatus(ctx, args))
}

func (dapc *dapClient) doTransfer(ctx context.Context, dapIndex uint8, reqs []TransferRequest) (TransferStatus, []uint32, error) {
	args := newCmd(cmdTransfer)
	args.WriteByte(dapIndex)
	args.WriteByte(uint8(len(reqs)))
	for i, req := range reqs {
		treq, err := transferRequestByte(req.AP, req.Reg, req.Op)
		if err != nil {
			return 0, nil, errors.Annotatef(err, "treq %d", i)
		}
		args.WriteByte(treq)
		if req.hasData() {
			binary.Write(args, binary.LittleEndian, req.Data)
		}
	}
	resp, err := dapc.exec(ctx, args)
	if err != nil {
		return 0, nil, errors.Trace(err)
	}
	var tc uint8
	var st TransferStatus
	if binary.Read(resp, binary.LittleEndian, &tc) != nil ||
		binary.Read(resp, binary.LittleEndian, &st) != nil {
		return st, nil, errors.Errorf("response is too short")
	}
	if !st.Ok() {
		return st, nil, errors.Errorf("transfer failed (tc %d/%d st 0x%02x)", tc, len(reqs), st)
	}
	if int(tc) != len(reqs) {
		return st, nil, errors.Errorf("not all transfers completed (%d/%d)", tc, len(reqs))
	}
	var data []uint32
	for _, req := range reqs {
		if req.Op != OpRead {
			continue
		}
		var d uint32
		if binary.Read(resp, binary.LittleEndian, &d) != nil {
			return st, nil, errors.Errorf("response is too short")
		}
		data = append(data, d)
	}
	return st, data, nil
}

func (dapc *dapClient) Transfer(ctx context.Context, dapIndex uint8, reqs []TransferRequest) (TransferStatus, []uint32, error) {
	for i := 0; i < transferWaitRetries; i++ {
		st, res, err := dapc.doTransfer(ctx, dapIndex, reqs)
		if err != nil && st.AckValue() == uint8(TransferStatusWait) {
			continue
		}
		return st, res, err
	}
	return TransferStatusWait, nil, errors.Timeoutf("transfer (WAIT x%d)", transferWaitRetries)
}

func (dapc *dapClient) GetTransferBlockMaxSize() int {
	headerLen := 1 /* op */ + 1 /* dap index */ + 2 /* transfer count */ + 1 /* request */
	return (dapc.maxPacketSize - headerLen) / 4
}

func (dapc *dapClient) transferBlock(ctx context.Context, dapIndex uint8, ap bool, reg uint8, op TransferOp, count int, data []uint32) (*bytes.Buffer, error) {
	if count > dapc.GetTransferBlockMaxSize() {
		return nil, errors.Errorf("request too big (max %d, got %d)", dapc.GetTransferBlockMaxSize(), count)
	}
	treq, err := transferRequestByte(ap, reg, op)
	if err != nil {
		return nil, errors.Trace(err)
	}
	args := newCmd(cmdTransferBlock)
	args.WriteByte(dapIndex)
	binary.Write(args, binary.LittleEndian, uint16(count))
	args.WriteByte(treq)
	binary.Write(args, binary.LittleEndian, data)
	resp, err := dapc.exec(ctx, args)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var tc uint16
	var st TransferStatus
	if binary.Read(resp, binary.LittleEndian, &tc) != nil ||
		binary.Read(resp, binary.LittleEndian, &st) != nil {
		return nil, errors.Errorf("response is too short")
	}
	if !st.Ok() {
		return nil, errors.Errorf("transfer failed (tc %d/%d st 0x%02x)", tc, count, st)
	}
	if int(tc) != count {
		return nil, errors.Errorf("not all transfers completed (%d/%d)", tc, count)
	}
	return resp, nil
}

func (dapc *dapClient) TransferBlockRead(ctx context.Context, dapIndex uint8, ap bool, reg uint8, length int) ([]uint32, error) {
	glog.V(3).Infof("TransferBlockRead(%d, %t, 0x%x, %d)", dapIndex, ap, reg, length)
	resp, err := dapc.transferBlock(ctx, dapIndex, ap, reg, OpRead, length, nil)
	if err != nil {
		return nil, errors.Trace(err)
	}
	res := make([]uint32, length)
	if binary.Read(resp, binary.LittleEndian, res) != nil {
		return nil, errors.Errorf("response is too short")
	}
	return res, nil
}

func (dapc *dapClient) TransferBlockWrite(ctx context.Context, dapIndex uint8, ap bool, reg uint8, data []uint32) error {
	glog.V(3).Infof("TransferBlockWrite(%d, %t, 0x%x, %d)", dapIndex, ap, reg, len(data))
	_, err := dapc.transferBlock(ctx, dapIndex, ap, reg, OpWrite, len(data), data)
	return errors.Trace(err)
}

func (dapc *dapClient) SWJClock(ctx context.Context, clockHz uint32) error {
	glog.V(3).Infof("SWJClock(%d)", clockHz)
	args := newCmd(cmdSWJClock)
	binary.Write(args, binary.LittleEndian, clockHz)
	return errors.Trace(dapc.execCheckStatus(ctx, args))
}

func (dapc *dapClient) SWJSequence(ctx context.Context, numBits int, data []uint8) error {
	glog.V(3).Infof("SWJSequence(%d, %v)", numBits, data)
	if numBits < 1 || numBits > 256 {
		return errors.Errorf("length must be between 1 and 256 (got %d)", numBits)
	}
	args := newCmd(cmdSWJSequence)
	// 256 is encoded as 0.
	args.WriteByte(uint8(numBits))
	args.Write(data)
	return errors.Trace(dapc.execCheckStatus(ctx, args))
}

func (dapc *dapClient) SWDConfigure(ctx context.Context, config uint8) error {
	glog.V(3).Infof("SWDConfigure(0x%02x)", config)
	args := newCmd(cmdSWDConfigure)
	args.WriteByte(config)
	return errors.Trace(dapc.execCheckStatus(ctx, args))
}

func (dapc *dapClient) Close(ctx context.Context) error {
	if dapc.d != nil {
		dapc.d.Close()
		dapc.d = nil
	}
	return nil
}
