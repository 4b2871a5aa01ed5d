//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// deviceProperties is a set of KEY=VALUE pairs as found in sysfs uevent
// files and in the udev database.
type deviceProperties map[string]string

// parseUevent reads a sysfs uevent file, one KEY=VALUE per line.
func parseUevent(r io.Reader) deviceProperties {
	return parseProperties(r, "")
}

// parseUdevDB reads a udev database entry, where the device properties
// are the lines starting with "E:".
func parseUdevDB(r io.Reader) deviceProperties {
	return parseProperties(r, "E:")
}

func parseProperties(r io.Reader, prefix string) deviceProperties {
	props := deviceProperties{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		key, value, ok := strings.Cut(line[len(prefix):], "=")
		if !ok || key == "" {
			continue
		}
		props[key] = value
	}
	return props
}

func (p deviceProperties) get(key string) (string, bool) {
	v, ok := p[key]
	return v, ok
}

func (p deviceProperties) hex16(key string) (uint16, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	return parseHex16(v)
}

func (p deviceProperties) hex8(key string) *uint8 {
	v, ok := p[key]
	if !ok {
		return nil
	}
	n, err := strconv.ParseUint(v, 16, 8)
	if err != nil {
		return nil
	}
	res := uint8(n)
	return &res
}

// encodedOrReplaced returns the value of encodedKey decoded from udev
// escapes, or else the value of replacedKey. In both cases the '_' udev
// puts in place of whitespace are turned back to spaces.
func (p deviceProperties) encodedOrReplaced(encodedKey, replacedKey string) (string, bool) {
	if v, ok := p[encodedKey]; ok {
		return restoreSpaces(decodeUdevEscapes(v)), true
	}
	if v, ok := p[replacedKey]; ok {
		return restoreSpaces(v), true
	}
	return "", false
}

// decodeUdevEscapes expands the \xNN sequences udev uses in *_ENC
// properties. Malformed sequences are kept as they are.
func decodeUdevEscapes(s string) string {
	if !strings.Contains(s, `\x`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+4 <= len(s) && s[i+1] == 'x' {
			if n, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
				b.WriteByte(byte(n))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func restoreSpaces(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

// classifyUdev builds the port description from the udev properties of
// a tty device. The boolean is false when ID_BUS is missing, in that case
// the caller must look at the sysfs parents. An error is returned when the
// USB ids are present but malformed.
func classifyUdev(name string, props deviceProperties) (SerialPortInfo, bool, error) {
	bus, ok := props.get("ID_BUS")
	if !ok {
		return SerialPortInfo{}, false, nil
	}
	switch bus {
	case "usb":
		vid, ok := props.hex16("ID_VENDOR_ID")
		if !ok {
			return SerialPortInfo{}, true, enumerationError("%s: invalid ID_VENDOR_ID", name)
		}
		pid, ok := props.hex16("ID_MODEL_ID")
		if !ok {
			return SerialPortInfo{}, true, enumerationError("%s: invalid ID_MODEL_ID", name)
		}
		info := &UsbPortInfo{
			VID:          vid,
			PID:          pid,
			SerialNumber: props["ID_SERIAL_SHORT"],
			Interface:    props.hex8("ID_USB_INTERFACE_NUM"),
		}
		var found bool
		if info.Manufacturer, found = props.encodedOrReplaced("ID_VENDOR_ENC", "ID_VENDOR"); !found {
			info.Manufacturer = props["ID_VENDOR_FROM_DATABASE"]
		}
		if info.Product, found = props.encodedOrReplaced("ID_MODEL_ENC", "ID_MODEL"); !found {
			info.Product = props["ID_MODEL_FROM_DATABASE"]
		}
		return usbPort(name, info), true, nil

	case "pci":
		// USB adapters sitting on a PCI bus report their identity with
		// ID_USB_* properties
		for _, key := range []string{"ID_USB_VENDOR_ID", "ID_USB_MODEL_ID", "ID_USB_VENDOR", "ID_USB_MODEL", "ID_USB_SERIAL_SHORT"} {
			if _, ok := props[key]; !ok {
				return SerialPortInfo{PortName: name, PortType: PCIPort}, true, nil
			}
		}
		vid, ok := props.hex16("ID_USB_VENDOR_ID")
		if !ok {
			return SerialPortInfo{}, true, enumerationError("%s: invalid ID_USB_VENDOR_ID", name)
		}
		pid, ok := props.hex16("ID_USB_MODEL_ID")
		if !ok {
			return SerialPortInfo{}, true, enumerationError("%s: invalid ID_USB_MODEL_ID", name)
		}
		info := &UsbPortInfo{
			VID:          vid,
			PID:          pid,
			SerialNumber: props["ID_USB_SERIAL_SHORT"],
			Interface:    props.hex8("ID_USB_INTERFACE_NUM"),
		}
		info.Manufacturer, _ = props.encodedOrReplaced("ID_USB_VENDOR_ENC", "ID_USB_VENDOR")
		info.Product, _ = props.encodedOrReplaced("ID_USB_MODEL_ENC", "ID_USB_MODEL")
		return usbPort(name, info), true, nil

	case "bluetooth":
		return SerialPortInfo{PortName: name, PortType: BluetoothPort}, true, nil
	}
	return SerialPortInfo{PortName: name, PortType: UnknownPort}, true, nil
}
