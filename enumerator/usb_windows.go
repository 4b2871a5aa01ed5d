//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// Device setup classes holding serial ports
var (
	guidDevClassPorts = windows.GUID{Data1: 0x4d36e978, Data2: 0xe325, Data3: 0x11ce, Data4: [8]byte{0xbf, 0xc1, 0x08, 0x00, 0x2b, 0xe1, 0x03, 0x18}}
	guidDevClassModem = windows.GUID{Data1: 0x4d36e96d, Data2: 0xe325, Data3: 0x11ce, Data4: [8]byte{0xbf, 0xc1, 0x08, 0x00, 0x2b, 0xe1, 0x03, 0x18}}
)

var friendlyNameSuffix = regexp.MustCompile(`\s*\((COM|LPT)\d+\)$`)

func nativeAvailablePorts() ([]SerialPortInfo, error) {
	ports := []SerialPortInfo{}
	for _, guid := range []*windows.GUID{&guidDevClassPorts, &guidDevClassModem} {
		found, err := scanDeviceClass(guid)
		if err != nil {
			return nil, &PortEnumerationError{causedBy: err}
		}
		ports = append(ports, found...)
	}
	return ports, nil
}

func scanDeviceClass(guid *windows.GUID) ([]SerialPortInfo, error) {
	set, err := windows.SetupDiGetClassDevsEx(guid, "", 0, windows.DIGCF_PRESENT, 0, "")
	if err != nil {
		return nil, err
	}
	defer set.Close()

	var ports []SerialPortInfo
	for i := 0; ; i++ {
		data, err := set.EnumDeviceInfo(i)
		if errors.Is(err, windows.ERROR_NO_MORE_ITEMS) {
			break
		}
		if err != nil {
			continue
		}
		if port, ok := inspectDevice(set, data); ok {
			ports = append(ports, port)
		}
	}
	return ports, nil
}

func inspectDevice(set windows.DevInfo, data *windows.DevInfoData) (SerialPortInfo, bool) {
	name, ok := portName(set, data)
	if !ok || strings.HasPrefix(name, "LPT") {
		return SerialPortInfo{}, false
	}
	port := SerialPortInfo{PortName: name, PortType: UnknownPort}

	instanceID, err := set.DeviceInstanceID(data)
	if err != nil {
		return port, true
	}
	info, isUSB := usbInfoFromDevice(instanceID, data.DevInst)
	if !isUSB {
		switch upper := strings.ToUpper(instanceID); {
		case strings.HasPrefix(upper, `BTHENUM\`):
			port.PortType = BluetoothPort
		case strings.HasPrefix(upper, `PCI\`):
			port.PortType = PCIPort
		}
		return port, true
	}

	info.Manufacturer = stringProperty(set, data, windows.SPDRP_MFG)
	info.Product = friendlyNameSuffix.ReplaceAllString(stringProperty(set, data, windows.SPDRP_FRIENDLYNAME), "")
	port.PortType = USBPort
	port.USB = info
	return port, true
}

// portName reads the COMn name from the device registry key.
func portName(set windows.DevInfo, data *windows.DevInfoData) (string, bool) {
	h, err := set.OpenDevRegKey(data, windows.DICS_FLAG_GLOBAL, 0, windows.DIREG_DEV, windows.KEY_READ)
	if err != nil {
		return "", false
	}
	key := registry.Key(h)
	defer key.Close()
	name, _, err := key.GetStringValue("PortName")
	if err != nil || name == "" {
		return "", false
	}
	return name, true
}

func stringProperty(set windows.DevInfo, data *windows.DevInfoData, property windows.SPDRP) string {
	value, err := set.DeviceRegistryProperty(data, property)
	if err != nil {
		return ""
	}
	s, _ := value.(string)
	return s
}

// usbInfoFromDevice decodes the instance id of the device. Drivers of
// composite devices and some vendor buses hide the USB identity, or at
// least the serial number, in an ancestor so the parent chain is searched
// too.
func usbInfoFromDevice(instanceID string, devInst windows.DEVINST) (*UsbPortInfo, bool) {
	info, ok := parseDeviceID(instanceID)
	if ok && info.SerialNumber != "" {
		return info, true
	}
	for parent := range parentInstances(devInst) {
		id, err := deviceID(parent)
		if err != nil {
			break
		}
		parentInfo, parentOk := parseDeviceID(id)
		if !parentOk {
			continue
		}
		if !ok {
			info, ok = parentInfo, true
		} else if parentInfo.VID == info.VID && parentInfo.PID == info.PID && parentInfo.SerialNumber != "" {
			info.SerialNumber = parentInfo.SerialNumber
		}
		if info.SerialNumber != "" {
			break
		}
	}
	return info, ok
}

// parentInstances yields the ancestors of devInst. Any status other than
// CR_SUCCESS ends the chain since CM_Get_Parent does not tell the root
// apart from a failure.
func parentInstances(devInst windows.DEVINST) func(yield func(windows.DEVINST) bool) {
	return func(yield func(windows.DEVINST) bool) {
		current := devInst
		for {
			var parent windows.DEVINST
			if cmGetParent(&parent, current, 0) != windows.CR_SUCCESS {
				return
			}
			if !yield(parent) {
				return
			}
			current = parent
		}
	}
}

func deviceID(devInst windows.DEVINST) (string, error) {
	buf := make([]uint16, maxDeviceIDLen+1)
	if ret := cmGetDeviceID(devInst, &buf[0], uint32(len(buf)), 0); ret != windows.CR_SUCCESS {
		return "", ret
	}
	return windows.UTF16ToString(buf), nil
}
