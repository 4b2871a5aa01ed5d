//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package serialport

import (
	"io"
	"time"

	"github.com/abakum/serialport/enumerator"
)

// Port is the interface for a serial Port
type Port interface {
	// Read stores data received from the serial port into p and returns the
	// number of bytes read. It returns as soon as at least one byte is
	// available; if nothing arrives within the configured timeout it returns
	// 0 and an error satisfying errors.Is(err, os.ErrDeadlineExceeded).
	// A zero timeout does not wait at all.
	Read(p []byte) (n int, err error)

	// Write sends p to the serial port. It blocks until the data has been
	// accepted by the driver's transmit queue, not until it has been
	// physically sent: use Drain for that.
	Write(p []byte) (n int, err error)

	// Close releases the native handle. It is safe to call more than once.
	Close() error

	// Name returns the device path the port was opened with, or an empty
	// string when it is not known (e.g. a port built from a raw handle).
	Name() string

	// BaudRate returns the current baud rate. Some drivers report the rate
	// actually achieved, which may differ slightly from the requested one.
	BaudRate() (uint32, error)
	// DataBits returns the character size. An unrepresentable state of the
	// line is reported with an Unknown error.
	DataBits() (DataBits, error)
	// FlowControl returns the current flow control mode.
	FlowControl() (FlowControl, error)
	// Parity returns the current parity mode.
	Parity() (Parity, error)
	// StopBits returns the current number of stop bits.
	StopBits() (StopBits, error)
	// Timeout returns the read/write timeout, after clamping to MaxTimeout.
	Timeout() time.Duration

	// SetBaudRate applies a baud rate to the device. Rates rejected by the
	// driver fail with InvalidInput.
	SetBaudRate(baudRate uint32) error
	// SetDataBits applies the character size.
	SetDataBits(dataBits DataBits) error
	// SetFlowControl applies the flow control mode.
	SetFlowControl(flowControl FlowControl) error
	// SetParity applies the parity mode.
	SetParity(parity Parity) error
	// SetStopBits applies the number of stop bits.
	SetStopBits(stopBits StopBits) error
	// SetTimeout sets the timeout used by Read and Write.
	SetTimeout(timeout time.Duration) error

	// SetRTS sets the modem status bit RequestToSend
	SetRTS(rts bool) error
	// SetDTR sets the modem status bit DataTerminalReady
	SetDTR(dtr bool) error
	// ReadCTS reads the ClearToSend line
	ReadCTS() (bool, error)
	// ReadDSR reads the DataSetReady line
	ReadDSR() (bool, error)
	// ReadRI reads the RingIndicator line
	ReadRI() (bool, error)
	// ReadCD reads the CarrierDetect line
	ReadCD() (bool, error)
	// GetModemStatusBits returns a ModemStatusBits structure containing the
	// modem status bits for the serial port (CTS, DSR, etc...)
	GetModemStatusBits() (*ModemStatusBits, error)

	// BytesToRead returns the number of bytes received and not yet read.
	BytesToRead() (uint32, error)
	// BytesToWrite returns the number of bytes written and not yet sent.
	BytesToWrite() (uint32, error)
	// Clear discards the content of the selected buffers.
	Clear(buffer ClearBuffer) error

	// SetBreak starts transmitting a break. Calling it while a break is
	// already active is a no-op.
	SetBreak() error
	// ClearBreak stops transmitting a break. Calling it with no break
	// active is a no-op.
	ClearBreak() error

	// Drain waits until all the data written has been transmitted.
	Drain() error

	// TryClone returns an independent Port referencing the same device.
	//
	// Settings such as the timeout are cached in each Port value, not in
	// the device: changing settings through two clones at the same time can
	// leave their cached view out of sync with the device. Callers that keep
	// several clones alive must coordinate so that only one of them changes
	// settings.
	TryClone() (Port, error)
}

var _ io.ReadWriteCloser = Port(nil)

// GetPortsList retrieve the list of available serial ports
func GetPortsList() ([]string, error) {
	ports, err := enumerator.AvailablePorts()
	if err != nil {
		return nil, wrapError(Unknown, "could not enumerate serial ports", err)
	}
	list := make([]string, 0, len(ports))
	for _, p := range ports {
		list = append(list, p.PortName)
	}
	return list, nil
}

// Borrow returns a Port forwarding every call to p except Close, which does
// nothing. It lets code that expects to own a Port work on a handle owned by
// someone else.
func Borrow(p Port) Port {
	return &borrowedPort{p: p}
}

type borrowedPort struct {
	p Port
}

func (b *borrowedPort) Read(p []byte) (int, error)                    { return b.p.Read(p) }
func (b *borrowedPort) Write(p []byte) (int, error)                   { return b.p.Write(p) }
func (b *borrowedPort) Close() error                                  { return nil }
func (b *borrowedPort) Name() string                                  { return b.p.Name() }
func (b *borrowedPort) BaudRate() (uint32, error)                     { return b.p.BaudRate() }
func (b *borrowedPort) DataBits() (DataBits, error)                   { return b.p.DataBits() }
func (b *borrowedPort) FlowControl() (FlowControl, error)             { return b.p.FlowControl() }
func (b *borrowedPort) Parity() (Parity, error)                       { return b.p.Parity() }
func (b *borrowedPort) StopBits() (StopBits, error)                   { return b.p.StopBits() }
func (b *borrowedPort) Timeout() time.Duration                        { return b.p.Timeout() }
func (b *borrowedPort) SetBaudRate(baudRate uint32) error             { return b.p.SetBaudRate(baudRate) }
func (b *borrowedPort) SetDataBits(dataBits DataBits) error           { return b.p.SetDataBits(dataBits) }
func (b *borrowedPort) SetFlowControl(fc FlowControl) error           { return b.p.SetFlowControl(fc) }
func (b *borrowedPort) SetParity(parity Parity) error                 { return b.p.SetParity(parity) }
func (b *borrowedPort) SetStopBits(stopBits StopBits) error           { return b.p.SetStopBits(stopBits) }
func (b *borrowedPort) SetTimeout(timeout time.Duration) error        { return b.p.SetTimeout(timeout) }
func (b *borrowedPort) SetRTS(rts bool) error                         { return b.p.SetRTS(rts) }
func (b *borrowedPort) SetDTR(dtr bool) error                         { return b.p.SetDTR(dtr) }
func (b *borrowedPort) ReadCTS() (bool, error)                        { return b.p.ReadCTS() }
func (b *borrowedPort) ReadDSR() (bool, error)                        { return b.p.ReadDSR() }
func (b *borrowedPort) ReadRI() (bool, error)                         { return b.p.ReadRI() }
func (b *borrowedPort) ReadCD() (bool, error)                         { return b.p.ReadCD() }
func (b *borrowedPort) GetModemStatusBits() (*ModemStatusBits, error) { return b.p.GetModemStatusBits() }
func (b *borrowedPort) BytesToRead() (uint32, error)                  { return b.p.BytesToRead() }
func (b *borrowedPort) BytesToWrite() (uint32, error)                 { return b.p.BytesToWrite() }
func (b *borrowedPort) Clear(buffer ClearBuffer) error                { return b.p.Clear(buffer) }
func (b *borrowedPort) SetBreak() error                               { return b.p.SetBreak() }
func (b *borrowedPort) ClearBreak() error                             { return b.p.ClearBreak() }
func (b *borrowedPort) Drain() error                                  { return b.p.Drain() }
func (b *borrowedPort) TryClone() (Port, error)                       { return b.p.TryClone() }
