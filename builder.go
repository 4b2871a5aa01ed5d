//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package serialport

import (
	"fmt"
	"time"
)

// Builder accumulates the settings of a serial port before opening it.
// Every setter returns a modified copy: a Builder value can be reused as a
// template.
type Builder struct {
	path        string
	baudRate    uint32
	dataBits    DataBits
	flowControl FlowControl
	parity      Parity
	stopBits    StopBits
	timeout     time.Duration
}

// New creates a Builder for the device at path with the given baud rate,
// 8 data bits, no parity, 1 stop bit, no flow control and a zero timeout.
func New(path string, baudRate uint32) Builder {
	return Builder{
		path:        path,
		baudRate:    baudRate,
		dataBits:    Eight,
		flowControl: FlowNone,
		parity:      NoParity,
		stopBits:    OneStopBit,
	}
}

// Path sets the device path.
func (b Builder) Path(path string) Builder {
	b.path = path
	return b
}

// BaudRate sets the baud rate.
func (b Builder) BaudRate(baudRate uint32) Builder {
	b.baudRate = baudRate
	return b
}

// DataBits sets the character size.
func (b Builder) DataBits(dataBits DataBits) Builder {
	b.dataBits = dataBits
	return b
}

// FlowControl sets the flow control mode.
func (b Builder) FlowControl(flowControl FlowControl) Builder {
	b.flowControl = flowControl
	return b
}

// Parity sets the parity mode.
func (b Builder) Parity(parity Parity) Builder {
	b.parity = parity
	return b
}

// StopBits sets the number of stop bits.
func (b Builder) StopBits(stopBits StopBits) Builder {
	b.stopBits = stopBits
	return b
}

// Timeout sets the read/write timeout.
func (b Builder) Timeout(timeout time.Duration) Builder {
	b.timeout = timeout
	return b
}

// Open opens and configures the port. The path must name an existing
// serial device, otherwise a NoDevice error is returned; settings rejected
// by the driver produce an InvalidInput error.
func (b Builder) Open() (Port, error) {
	return nativeOpen(b)
}

func (b Builder) String() string {
	return fmt.Sprintf("%s@%d %s%s%s flow=%s timeout=%s",
		b.path, b.baudRate, b.dataBits, b.parity.String()[:1], b.stopBits,
		b.flowControl, b.timeout)
}

// validate rejects values outside the enumerations before touching the
// device.
func (b Builder) validate() error {
	if _, err := DataBitsFromInt(int(b.dataBits)); err != nil {
		return err
	}
	if _, err := StopBitsFromInt(int(b.stopBits)); err != nil {
		return err
	}
	if _, ok := parityNames[b.parity]; !ok {
		return newError(InvalidInput, fmt.Sprintf("invalid parity %d", int(b.parity)))
	}
	switch b.flowControl {
	case FlowNone, FlowSoftware, FlowHardware:
	default:
		return newError(InvalidInput, fmt.Sprintf("invalid flow control %d", int(b.flowControl)))
	}
	if b.timeout < 0 {
		return newError(InvalidInput, "negative timeout")
	}
	return nil
}
