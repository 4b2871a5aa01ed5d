//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Filesystem roots, tests point them to a fake tree.
var (
	sysClassTTY = "/sys/class/tty"
	devDir      = "/dev"
	udevDataDir = "/run/udev/data"
)

// serialStruct mirrors the head of the kernel struct serial_struct, the
// padding leaves room for the rest of it.
type serialStruct struct {
	Type int32
	Line int32
	_    [120]byte
}

// portUnknown is PORT_UNKNOWN from linux/serial.h
const portUnknown = 0

// probe8250 tells if a port driven by serial8250 is backed by a real
// UART. The kernel creates a fixed number of those nodes and the
// placeholders report PORT_UNKNOWN.
var probe8250 = func(path string) bool {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return false
	}
	defer unix.Close(fd)
	var ss serialStruct
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), unix.TIOCGSERIAL, uintptr(unsafe.Pointer(&ss))); errno != 0 {
		return false
	}
	return ss.Type != portUnknown
}

// maxParentDepth is how far up the sysfs tree a usb_interface is searched.
const maxParentDepth = 3

func nativeAvailablePorts() ([]SerialPortInfo, error) {
	entries, err := os.ReadDir(sysClassTTY)
	if err != nil {
		return nil, &PortEnumerationError{causedBy: err}
	}

	ports := []SerialPortInfo{}
	for _, entry := range entries {
		port, ok := inspectTTY(entry.Name())
		if ok {
			ports = append(ports, port)
		}
	}
	return ports, nil
}

// inspectTTY describes the tty called name. Virtual terminals and devices
// that cannot be inspected are reported with ok == false.
func inspectTTY(name string) (SerialPortInfo, bool) {
	classDir := filepath.Join(sysClassTTY, name)
	if strings.HasPrefix(name, "rfcomm") {
		devnode := filepath.Join(devDir, name)
		if _, err := os.Stat(devnode); err != nil {
			return SerialPortInfo{}, false
		}
		return SerialPortInfo{PortName: devnode, PortType: BluetoothPort}, true
	}
	deviceDir, err := filepath.EvalSymlinks(filepath.Join(classDir, "device"))
	if err != nil {
		// no backing device: console, ptys and friends
		return SerialPortInfo{}, false
	}
	devnode := filepath.Join(devDir, name)
	if _, err := os.Stat(devnode); err != nil {
		return SerialPortInfo{}, false
	}

	if driver, err := os.Readlink(filepath.Join(deviceDir, "driver")); err == nil {
		if filepath.Base(driver) == "serial8250" && !probe8250(devnode) {
			return SerialPortInfo{}, false
		}
	}

	props := readUdevProperties(classDir)
	port, classified, err := classifyUdev(devnode, props)
	if err != nil {
		return SerialPortInfo{}, false
	}
	if classified {
		return port, true
	}

	if info, ok := usbInfoFromParents(deviceDir); ok {
		return usbPort(devnode, info), true
	}
	return SerialPortInfo{PortName: devnode, PortType: UnknownPort}, true
}

// readUdevProperties loads the udev database entry of a tty, it is named
// after the "major:minor" pair found in the sysfs dev attribute.
func readUdevProperties(classDir string) deviceProperties {
	dev, err := os.ReadFile(filepath.Join(classDir, "dev"))
	if err != nil {
		return deviceProperties{}
	}
	f, err := os.Open(filepath.Join(udevDataDir, "c"+string(bytes.TrimSpace(dev))))
	if err != nil {
		return deviceProperties{}
	}
	defer f.Close()
	return parseUdevDB(f)
}

func readUevent(dir string) (deviceProperties, error) {
	f, err := os.Open(filepath.Join(dir, "uevent"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseUevent(f), nil
}

// usbInfoFromParents walks up from the tty device looking for the
// usb_interface it belongs to and decodes its MODALIAS. Strings are read
// from the attributes of the owning usb_device.
func usbInfoFromParents(deviceDir string) (*UsbPortInfo, bool) {
	dir := deviceDir
	var props deviceProperties
	for i := 0; i < maxParentDepth; i++ {
		p, err := readUevent(dir)
		if err == nil && p["DEVTYPE"] == "usb_interface" {
			props = p
			break
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, false
		}
		dir = parent
	}
	if props == nil {
		return nil, false
	}
	info, ok := parseModalias(props["MODALIAS"])
	if !ok {
		return nil, false
	}

	usbDevice := filepath.Dir(dir)
	info.SerialNumber = readAttribute(usbDevice, "serial")
	info.Manufacturer = readAttribute(usbDevice, "manufacturer")
	info.Product = readAttribute(usbDevice, "product")
	return info, true
}

func readAttribute(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
