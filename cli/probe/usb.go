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

package probe

import (
	"github.com/golang/glog"
	"github.com/google/gousb"
	"github.com/juju/errors"
)

// ListUSBProbes enumerates USB devices with the given VID and, if pid is not 0, PID.
func ListUSBProbes(vid, pid uint16) ([]USBProbe, error) {
	uctx := gousb.NewContext()
	defer uctx.Close()
	devs, err := uctx.OpenDevices(func(dd *gousb.DeviceDesc) bool {
		glog.V(1).Infof("Dev %+v", dd)
		return dd.Vendor == gousb.ID(vid) && (pid == 0 || dd.Product == gousb.ID(pid))
	})
	// OpenDevices may fail overall but still return results. Only fail if no devices were returned.
	if err != nil && len(devs) == 0 {
		return nil, errors.Annotatef(err, "failed to enumerate USB devices")
	}
	var res []USBProbe
	for _, dev := range devs {
		p := USBProbe{
			VID:     uint16(dev.Desc.Vendor),
			PID:     uint16(dev.Desc.Product),
			Bus:     dev.Desc.Bus,
			Address: dev.Desc.Address,
		}
		// String descriptors are optional, missing ones are left blank.
		p.Manufacturer, _ = dev.Manufacturer()
		p.Product, _ = dev.Product()
		p.Serial, _ = dev.SerialNumber()
		dev.Close()
		res = append(res, p)
	}
	return res, nil
}
