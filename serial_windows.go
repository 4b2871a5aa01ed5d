//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package serialport

/*

// MSDN article on Serial Communications:
// http://msdn.microsoft.com/en-us/library/ff802693.aspx
// (alternative link) https://msdn.microsoft.com/en-us/library/ms810467.aspx

// Arduino Playground article on serial communication with Windows API:
// http://playground.arduino.cc/Interfacing/CPPWindows

*/

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/windows"
)

// MaxTimeout is the longest timeout a COMPort honours: COMMTIMEOUTS counts
// milliseconds in a DWORD and MAXDWORD has a special meaning.
const MaxTimeout = time.Duration(maxDWORD-1) * time.Millisecond

// COMPort is a serial port on Windows.
type COMPort struct {
	handle    windows.Handle
	name      string
	timeout   time.Duration
	closeLock sync.RWMutex
	opened    uint32
}

func nativeOpen(b Builder) (Port, error) {
	port, err := openCOM(b)
	if err != nil {
		return nil, err
	}
	return port, nil
}

// OpenNative opens the port and returns the concrete COMPort, giving access
// to the Windows specific functions.
func (b Builder) OpenNative() (*COMPort, error) {
	return openCOM(b)
}

func openCOM(b Builder) (*COMPort, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	path := b.path
	if !strings.HasPrefix(path, `\\.\`) {
		// COM10 and above are only reachable through the device namespace
		path = `\\.\` + path
	}
	path16, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, wrapError(InvalidInput, b.path, err)
	}
	handle, err := windows.CreateFile(
		path16,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0, nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_OVERLAPPED,
		0)
	if err != nil {
		return nil, winToPortError(b.path, err)
	}
	port := newCOMPort(handle, b.path)
	if err := port.configure(b); err != nil {
		port.Close()
		return nil, err
	}
	return port, nil
}

func newCOMPort(handle windows.Handle, name string) *COMPort {
	port := &COMPort{
		handle: handle,
		name:   name,
		opened: 1,
	}
	runtime.SetFinalizer(port, (*COMPort).Close)
	return port
}

// FromRawHandle builds a COMPort taking ownership of handle. The handle must
// have been opened with FILE_FLAG_OVERLAPPED. The timeout starts at zero.
func FromRawHandle(handle windows.Handle, name string) (*COMPort, error) {
	port := newCOMPort(handle, name)
	if err := port.SetTimeout(0); err != nil {
		runtime.SetFinalizer(port, nil)
		return nil, err
	}
	return port, nil
}

func (port *COMPort) configure(b Builder) error {
	params, err := port.getCommState()
	if err != nil {
		return err
	}
	params.BaudRate = b.baudRate
	params.ByteSize = byte(b.dataBits)
	setDCBParity(b.parity, params)
	setDCBStopBits(b.stopBits, params)
	setDCBFlowControl(b.flowControl, params)
	params.Flags |= dcbBinary
	params.Flags &= dcbDTRControlDisableMask
	params.Flags |= dcbDTRControlEnable
	params.Flags &^= dcbDSRSensitivity
	params.Flags |= dcbTXContinueOnXOFF
	params.Flags &^= dcbErrorChar
	params.Flags &^= dcbNull
	params.Flags &^= dcbAbortOnError
	params.XonLim = 2048
	params.XoffLim = 512
	params.XonChar = 17  // DC1
	params.XoffChar = 19 // DC3
	if err := port.setCommState(params); err != nil {
		return err
	}
	return port.SetTimeout(b.timeout)
}

// Name returns the name the port was opened with.
func (port *COMPort) Name() string {
	return port.name
}

// Handle returns the native handle. The port keeps its ownership.
func (port *COMPort) Handle() windows.Handle {
	return port.handle
}

// IntoRawHandle releases the ownership of the handle to the caller, who
// becomes responsible for closing it. The COMPort becomes unusable.
func (port *COMPort) IntoRawHandle() (windows.Handle, error) {
	if !atomic.CompareAndSwapUint32(&port.opened, 1, 0) {
		return windows.InvalidHandle, errPortClosed
	}
	runtime.SetFinalizer(port, nil)
	port.closeLock.Lock()
	defer port.closeLock.Unlock()
	return port.handle, nil
}

// Close the serial port. Closing an already closed port does nothing.
func (port *COMPort) Close() error {
	if !atomic.CompareAndSwapUint32(&port.opened, 1, 0) {
		return nil
	}
	runtime.SetFinalizer(port, nil)
	// Abort pending Read and Write
	windows.CancelIoEx(port.handle, nil)

	port.closeLock.Lock()
	defer port.closeLock.Unlock()
	if err := windows.CloseHandle(port.handle); err != nil {
		return wrapError(Io, "close", err)
	}
	return nil
}

func (port *COMPort) withHandle(f func(h windows.Handle) error) error {
	port.closeLock.RLock()
	defer port.closeLock.RUnlock()
	if atomic.LoadUint32(&port.opened) != 1 {
		return errPortClosed
	}
	return f(port.handle)
}

func (port *COMPort) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, port.withHandle(func(windows.Handle) error { return nil })
	}
	var n uint32
	err := port.withHandle(func(h windows.Handle) error {
		return overlappedIO(h, func(ov *windows.Overlapped) error {
			return windows.ReadFile(h, p, &n, ov)
		}, &n)
	})
	if err != nil {
		return int(n), port.ioError("read", err)
	}
	if n == 0 {
		return 0, errTimeout
	}
	return int(n), nil
}

func (port *COMPort) Write(p []byte) (int, error) {
	var n uint32
	err := port.withHandle(func(h windows.Handle) error {
		return overlappedIO(h, func(ov *windows.Overlapped) error {
			return windows.WriteFile(h, p, &n, ov)
		}, &n)
	})
	if err != nil {
		return int(n), port.ioError("write", err)
	}
	if int(n) < len(p) {
		return int(n), errTimeout
	}
	return int(n), nil
}

// overlappedIO runs op with a fresh event and waits for its completion.
func overlappedIO(h windows.Handle, op func(*windows.Overlapped) error, n *uint32) error {
	ev, err := windows.CreateEvent(nil, 1, 0, nil)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(ev)
	ov := &windows.Overlapped{HEvent: ev}
	err = op(ov)
	if err == nil {
		return nil
	}
	if err != windows.ERROR_IO_PENDING {
		return err
	}
	return windows.GetOverlappedResult(h, ov, n, true)
}

func (port *COMPort) ioError(op string, err error) error {
	if err == errPortClosed || (err == windows.ERROR_OPERATION_ABORTED && atomic.LoadUint32(&port.opened) != 1) {
		return errPortClosed
	}
	return winToPortError(op, err)
}

// Timeout returns the configured read/write timeout.
func (port *COMPort) Timeout() time.Duration {
	return port.timeout
}

// SetTimeout programs COMMTIMEOUTS so that a read returns as soon as some
// data is available or the timeout expires, and a write fails when it
// could not complete in time. A zero timeout makes reads return at once
// and writes wait forever.
func (port *COMPort) SetTimeout(timeout time.Duration) error {
	if timeout < 0 {
		return newError(InvalidInput, "negative timeout")
	}
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}
	ms := uint32((timeout + time.Millisecond - 1) / time.Millisecond)
	timeouts := &windows.CommTimeouts{
		ReadIntervalTimeout:       maxDWORD,
		WriteTotalTimeoutConstant: ms,
	}
	if ms > 0 {
		timeouts.ReadTotalTimeoutMultiplier = maxDWORD
		timeouts.ReadTotalTimeoutConstant = ms
	}
	err := port.withHandle(func(h windows.Handle) error {
		return windows.SetCommTimeouts(h, timeouts)
	})
	if err != nil {
		return winToPortError("set timeouts", err)
	}
	port.timeout = timeout
	return nil
}

// BaudRate returns the current baud rate.
func (port *COMPort) BaudRate() (uint32, error) {
	params, err := port.getCommState()
	if err != nil {
		return 0, err
	}
	return params.BaudRate, nil
}

// DataBits returns the current character size.
func (port *COMPort) DataBits() (DataBits, error) {
	params, err := port.getCommState()
	if err != nil {
		return 0, err
	}
	bits, err := DataBitsFromInt(int(params.ByteSize))
	if err != nil {
		return 0, newError(Unknown, fmt.Sprintf("unrecognized character size %d", params.ByteSize))
	}
	return bits, nil
}

// FlowControl returns the current flow control mode.
func (port *COMPort) FlowControl() (FlowControl, error) {
	params, err := port.getCommState()
	if err != nil {
		return FlowNone, err
	}
	hardware := params.Flags&dcbOutXCTSFlow != 0
	software := params.Flags&(dcbOutX|dcbInX) != 0
	switch {
	case hardware && software:
		return FlowNone, newError(Unknown, "both hardware and software flow control are enabled")
	case hardware:
		return FlowHardware, nil
	case software:
		return FlowSoftware, nil
	}
	return FlowNone, nil
}

// Parity returns the current parity mode.
func (port *COMPort) Parity() (Parity, error) {
	params, err := port.getCommState()
	if err != nil {
		return NoParity, err
	}
	switch params.Parity {
	case windows.NOPARITY:
		return NoParity, nil
	case windows.ODDPARITY:
		return OddParity, nil
	case windows.EVENPARITY:
		return EvenParity, nil
	case windows.MARKPARITY:
		return MarkParity, nil
	case windows.SPACEPARITY:
		return SpaceParity, nil
	}
	return NoParity, newError(Unknown, fmt.Sprintf("unrecognized parity %d", params.Parity))
}

// StopBits returns the current number of stop bits.
func (port *COMPort) StopBits() (StopBits, error) {
	params, err := port.getCommState()
	if err != nil {
		return OneStopBit, err
	}
	switch params.StopBits {
	case windows.ONESTOPBIT:
		return OneStopBit, nil
	case windows.TWOSTOPBITS:
		return TwoStopBits, nil
	}
	return OneStopBit, newError(Unknown, "unrecognized stop bits")
}

// SetBaudRate applies a baud rate. The driver decides which rates it
// accepts.
func (port *COMPort) SetBaudRate(baudRate uint32) error {
	return port.updateCommState(func(params *windows.DCB) error {
		params.BaudRate = baudRate
		return nil
	})
}

// SetDataBits applies the character size.
func (port *COMPort) SetDataBits(dataBits DataBits) error {
	if _, err := DataBitsFromInt(int(dataBits)); err != nil {
		return err
	}
	return port.updateCommState(func(params *windows.DCB) error {
		params.ByteSize = byte(dataBits)
		return nil
	})
}

// SetFlowControl applies the flow control mode.
func (port *COMPort) SetFlowControl(flowControl FlowControl) error {
	switch flowControl {
	case FlowNone, FlowSoftware, FlowHardware:
	default:
		return newError(InvalidInput, fmt.Sprintf("invalid flow control %d", int(flowControl)))
	}
	return port.updateCommState(func(params *windows.DCB) error {
		setDCBFlowControl(flowControl, params)
		return nil
	})
}

// SetParity applies the parity mode.
func (port *COMPort) SetParity(parity Parity) error {
	if _, ok := parityNames[parity]; !ok {
		return newError(InvalidInput, fmt.Sprintf("invalid parity %d", int(parity)))
	}
	return port.updateCommState(func(params *windows.DCB) error {
		setDCBParity(parity, params)
		return nil
	})
}

// SetStopBits applies the number of stop bits.
func (port *COMPort) SetStopBits(stopBits StopBits) error {
	if _, err := StopBitsFromInt(int(stopBits)); err != nil {
		return err
	}
	return port.updateCommState(func(params *windows.DCB) error {
		setDCBStopBits(stopBits, params)
		return nil
	})
}

// SetRTS sets the modem status bit RequestToSend
func (port *COMPort) SetRTS(rts bool) error {
	if rts {
		return port.escapeCommFunction(windows.SETRTS)
	}
	return port.escapeCommFunction(windows.CLRRTS)
}

// SetDTR sets the modem status bit DataTerminalReady
func (port *COMPort) SetDTR(dtr bool) error {
	if dtr {
		return port.escapeCommFunction(windows.SETDTR)
	}
	return port.escapeCommFunction(windows.CLRDTR)
}

// ReadCTS reads the ClearToSend line
func (port *COMPort) ReadCTS() (bool, error) {
	return port.readModemLine(msCTSOn)
}

// ReadDSR reads the DataSetReady line
func (port *COMPort) ReadDSR() (bool, error) {
	return port.readModemLine(msDSROn)
}

// ReadRI reads the RingIndicator line
func (port *COMPort) ReadRI() (bool, error) {
	return port.readModemLine(msRingOn)
}

// ReadCD reads the CarrierDetect line
func (port *COMPort) ReadCD() (bool, error) {
	return port.readModemLine(msRLSDOn)
}

// GetModemStatusBits returns the state of all the input lines.
func (port *COMPort) GetModemStatusBits() (*ModemStatusBits, error) {
	bits, err := port.modemStatus()
	if err != nil {
		return nil, err
	}
	return &ModemStatusBits{
		CTS: bits&msCTSOn != 0,
		DSR: bits&msDSROn != 0,
		RI:  bits&msRingOn != 0,
		DCD: bits&msRLSDOn != 0,
	}, nil
}

func (port *COMPort) readModemLine(line uint32) (bool, error) {
	bits, err := port.modemStatus()
	if err != nil {
		return false, err
	}
	return bits&line != 0, nil
}

func (port *COMPort) modemStatus() (uint32, error) {
	var bits uint32
	err := port.withHandle(func(h windows.Handle) error {
		return windows.GetCommModemStatus(h, &bits)
	})
	if err != nil {
		return 0, winToPortError("read modem status", err)
	}
	return bits, nil
}

func (port *COMPort) escapeCommFunction(function uint32) error {
	err := port.withHandle(func(h windows.Handle) error {
		return windows.EscapeCommFunction(h, function)
	})
	return winToPortError("escape function", err)
}

// BytesToRead returns the number of bytes waiting in the input queue.
func (port *COMPort) BytesToRead() (uint32, error) {
	stat, err := port.comStat()
	if err != nil {
		return 0, err
	}
	return stat.CBInQue, nil
}

// BytesToWrite returns the number of bytes waiting in the output queue.
func (port *COMPort) BytesToWrite() (uint32, error) {
	stat, err := port.comStat()
	if err != nil {
		return 0, err
	}
	return stat.CBOutQue, nil
}

func (port *COMPort) comStat() (*windows.ComStat, error) {
	var errs uint32
	stat := &windows.ComStat{}
	err := port.withHandle(func(h windows.Handle) error {
		return windows.ClearCommError(h, &errs, stat)
	})
	if err != nil {
		return nil, winToPortError("queue status", err)
	}
	return stat, nil
}

// Clear discards the selected queues.
func (port *COMPort) Clear(buffer ClearBuffer) error {
	var flags uint32
	switch buffer {
	case ClearInput:
		flags = windows.PURGE_RXABORT | windows.PURGE_RXCLEAR
	case ClearOutput:
		flags = windows.PURGE_TXABORT | windows.PURGE_TXCLEAR
	case ClearAll:
		flags = windows.PURGE_RXABORT | windows.PURGE_RXCLEAR | windows.PURGE_TXABORT | windows.PURGE_TXCLEAR
	default:
		return newError(InvalidInput, fmt.Sprintf("invalid buffer selector %d", int(buffer)))
	}
	err := port.withHandle(func(h windows.Handle) error {
		return windows.PurgeComm(h, flags)
	})
	return winToPortError("clear", err)
}

// SetBreak starts transmitting a break.
func (port *COMPort) SetBreak() error {
	err := port.withHandle(windows.SetCommBreak)
	return winToPortError("set break", err)
}

// ClearBreak stops transmitting a break.
func (port *COMPort) ClearBreak() error {
	err := port.withHandle(windows.ClearCommBreak)
	return winToPortError("clear break", err)
}

// Drain waits until all the output has been transmitted.
func (port *COMPort) Drain() error {
	err := port.withHandle(windows.FlushFileBuffers)
	return winToPortError("drain", err)
}

// TryClone duplicates the handle into a new COMPort.
func (port *COMPort) TryClone() (Port, error) {
	clone, err := port.TryCloneNative()
	if err != nil {
		return nil, err
	}
	return clone, nil
}

// TryCloneNative is like TryClone but returns the concrete type.
func (port *COMPort) TryCloneNative() (*COMPort, error) {
	var dup windows.Handle
	err := port.withHandle(func(h windows.Handle) error {
		process := windows.CurrentProcess()
		return windows.DuplicateHandle(process, h, process, &dup, 0, false, windows.DUPLICATE_SAME_ACCESS)
	})
	if err != nil {
		return nil, winToPortError("duplicate", err)
	}
	clone := newCOMPort(dup, port.name)
	clone.timeout = port.timeout
	return clone, nil
}

func setDCBParity(parity Parity, params *windows.DCB) {
	switch parity {
	case OddParity:
		params.Parity = windows.ODDPARITY
	case EvenParity:
		params.Parity = windows.EVENPARITY
	case MarkParity:
		params.Parity = windows.MARKPARITY
	case SpaceParity:
		params.Parity = windows.SPACEPARITY
	default:
		params.Parity = windows.NOPARITY
	}
	if parity == NoParity {
		params.Flags &^= dcbParity
	} else {
		params.Flags |= dcbParity
	}
}

func setDCBStopBits(stopBits StopBits, params *windows.DCB) {
	if stopBits == TwoStopBits {
		params.StopBits = windows.TWOSTOPBITS
	} else {
		params.StopBits = windows.ONESTOPBIT
	}
}

func setDCBFlowControl(flowControl FlowControl, params *windows.DCB) {
	params.Flags &^= dcbOutXCTSFlow | dcbOutXDSRFlow | dcbOutX | dcbInX
	params.Flags &= dcbRTSControlDisableMask
	switch flowControl {
	case FlowHardware:
		params.Flags |= dcbOutXCTSFlow | dcbRTSControlHandshake
	case FlowSoftware:
		params.Flags |= dcbOutX | dcbInX | dcbRTSControlEnable
	default:
		params.Flags |= dcbRTSControlEnable
	}
}

func (port *COMPort) getCommState() (*windows.DCB, error) {
	params := &windows.DCB{}
	params.DCBlength = 28
	err := port.withHandle(func(h windows.Handle) error {
		return windows.GetCommState(h, params)
	})
	if err != nil {
		return nil, winToPortError("get settings", err)
	}
	return params, nil
}

func (port *COMPort) setCommState(params *windows.DCB) error {
	err := port.withHandle(func(h windows.Handle) error {
		return windows.SetCommState(h, params)
	})
	return commStateError(err)
}

// commStateError classifies a SetCommState failure. USB adapters answer an
// unsupported rate or byte size with ERROR_GEN_FAILURE or
// ERROR_NOT_SUPPORTED as well as ERROR_INVALID_PARAMETER, so anything but a
// vanished device is a rejected setting.
func commStateError(err error) error {
	if err == nil {
		return nil
	}
	var portErr *PortError
	if errors.As(err, &portErr) {
		return portErr
	}
	if deviceGone(err) {
		return wrapError(NoDevice, "set settings", err)
	}
	return wrapError(InvalidInput, "settings rejected by the driver", err)
}

func deviceGone(err error) bool {
	switch err {
	case windows.ERROR_FILE_NOT_FOUND, windows.ERROR_PATH_NOT_FOUND,
		windows.ERROR_DEV_NOT_EXIST, windows.ERROR_DEVICE_NOT_CONNECTED,
		windows.ERROR_BAD_COMMAND:
		return true
	}
	return false
}

func (port *COMPort) updateCommState(update func(*windows.DCB) error) error {
	params, err := port.getCommState()
	if err != nil {
		return err
	}
	if err := update(params); err != nil {
		return err
	}
	return port.setCommState(params)
}

// winToPortError classifies a failed Win32 call. Errors that are already a
// *PortError pass through.
func winToPortError(op string, err error) error {
	if err == nil {
		return nil
	}
	var portErr *PortError
	if errors.As(err, &portErr) {
		return portErr
	}
	switch {
	case deviceGone(err), err == windows.ERROR_GEN_FAILURE:
		return wrapError(NoDevice, op, err)
	case err == windows.ERROR_INVALID_PARAMETER:
		return wrapError(InvalidInput, op, err)
	}
	return wrapError(Io, op, err)
}
