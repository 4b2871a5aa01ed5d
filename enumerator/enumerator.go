//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

//go:generate go run golang.org/x/sys/windows/mkwinsyscall -output zsyscall_windows.go syscall_windows.go

import "fmt"

// PortType is the kind of bus a serial port is attached to.
type PortType int

const (
	// UnknownPort the bus could not be determined
	UnknownPort PortType = iota
	// USBPort a USB serial adapter or CDC device, see SerialPortInfo.USB
	USBPort
	// PCIPort a PCI(e) or on-board UART
	PCIPort
	// BluetoothPort a Bluetooth serial link
	BluetoothPort
)

func (t PortType) String() string {
	switch t {
	case USBPort:
		return "USB"
	case PCIPort:
		return "PCI"
	case BluetoothPort:
		return "Bluetooth"
	}
	return "Unknown"
}

// UsbPortInfo contains the USB identity of a port. Strings are empty when
// the platform did not report them.
type UsbPortInfo struct {
	VID          uint16
	PID          uint16
	SerialNumber string
	Manufacturer string

	// Product is an OS-dependent string that describes the serial port, it may
	// be not always available and it may be different across OS.
	Product string

	// Interface is the USB interface number of composite devices, nil when
	// unknown.
	Interface *uint8
}

// SerialPortInfo describes a serial port found by AvailablePorts.
type SerialPortInfo struct {
	// PortName is the name to pass to serialport.New
	PortName string
	PortType PortType
	// USB is set only when PortType is USBPort
	USB *UsbPortInfo
}

// AvailablePorts scans the system for serial ports. The scan is
// permissive: ports that cannot be fully identified are reported as
// UnknownPort and a device that fails to be inspected is skipped. An error
// is returned only when the scan as a whole fails.
func AvailablePorts() ([]SerialPortInfo, error) {
	return nativeAvailablePorts()
}

func usbPort(name string, info *UsbPortInfo) SerialPortInfo {
	return SerialPortInfo{PortName: name, PortType: USBPort, USB: info}
}

// PortEnumerationError is the error type for serial ports enumeration
type PortEnumerationError struct {
	causedBy error
}

// Error returns the complete error code with details on the cause of the error
func (e PortEnumerationError) Error() string {
	reason := "Error while enumerating serial ports"
	if e.causedBy != nil {
		reason += ": " + e.causedBy.Error()
	}
	return reason
}

// Unwrap returns the underlying cause
func (e PortEnumerationError) Unwrap() error {
	return e.causedBy
}

func enumerationError(format string, args ...any) *PortEnumerationError {
	return &PortEnumerationError{causedBy: fmt.Errorf(format, args...)}
}
