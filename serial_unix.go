//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

//go:build linux || darwin || freebsd || netbsd || openbsd

package serialport

import (
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abakum/serialport/unixutils"
	"golang.org/x/sys/unix"
)

// MaxTimeout is the longest timeout a TTYPort honours. Reads and writes
// wait through select, so any time.Duration is representable.
const MaxTimeout = time.Duration(math.MaxInt64)

// vtimeCap is the longest timeout expressible with VMIN/VTIME (255 ds).
const vtimeCap = 255 * 100 * time.Millisecond

// TTYPort is a serial port on a POSIX system, driven through termios.
type TTYPort struct {
	handle      int
	name        string
	timeout     time.Duration
	exclusive   bool
	baudRate    uint32 // last rate applied outside termios, see nativeBaudRate
	closeLock   sync.RWMutex
	closeSignal *unixutils.Pipe
	opened      uint32
}

func nativeOpen(b Builder) (Port, error) {
	port, err := openTTY(b)
	if err != nil {
		return nil, err
	}
	return port, nil
}

// OpenNative opens the port and returns the concrete TTYPort, giving access
// to the POSIX specific functions.
func (b Builder) OpenNative() (*TTYPort, error) {
	return openTTY(b)
}

func openTTY(b Builder) (*TTYPort, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	h, err := unix.Open(b.path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		switch err {
		case unix.ENOENT, unix.ENXIO, unix.ENODEV, unix.ENOTDIR, unix.EISDIR:
			return nil, wrapError(NoDevice, b.path, err)
		}
		return nil, wrapError(Io, b.path, err)
	}
	if err := requireCharDevice(h, b.path); err != nil {
		unix.Close(h)
		return nil, err
	}
	port, err := newTTYPort(h, b.path)
	if err != nil {
		unix.Close(h)
		return nil, err
	}
	if err := port.configure(b); err != nil {
		port.Close()
		return nil, err
	}
	return port, nil
}

func requireCharDevice(h int, name string) error {
	var st unix.Stat_t
	if err := unix.Fstat(h, &st); err != nil {
		return wrapError(Io, name, err)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFCHR {
		return newError(NoDevice, fmt.Sprintf("%s is not a character device", name))
	}
	return nil
}

// newTTYPort takes ownership of h after checking that it is a terminal.
func newTTYPort(h int, name string) (*TTYPort, error) {
	if _, err := unix.IoctlGetTermios(h, ioctlTcgetattr); err != nil {
		return nil, wrapError(NoDevice, fmt.Sprintf("%s is not a serial device", name), err)
	}
	closeSignal, err := unixutils.NewPipe()
	if err != nil {
		return nil, wrapError(Io, "could not create close signal", err)
	}
	port := &TTYPort{
		handle:      h,
		name:        name,
		closeSignal: closeSignal,
		opened:      1,
	}
	runtime.SetFinalizer(port, (*TTYPort).Close)
	return port, nil
}

func (port *TTYPort) configure(b Builder) error {
	if err := port.acquireExclusiveAccess(); err != nil {
		return errnoToPortError("exclusive access", err)
	}
	port.exclusive = true

	settings, err := port.getTermSettings()
	if err != nil {
		return err
	}
	setRawMode(settings)
	setTermSettingsDataBits(b.dataBits, settings)
	if err := setTermSettingsParity(b.parity, settings); err != nil {
		return err
	}
	setTermSettingsStopBits(b.stopBits, settings)
	setTermSettingsFlowControl(b.flowControl, settings)
	standard := setTermSettingsBaudrate(b.baudRate, settings)
	timeout := clampTimeout(b.timeout)
	setTermSettingsTimeout(timeout, settings)
	if err := port.setTermSettings(settings); err != nil {
		return err
	}
	if !standard {
		if err := port.setSpecialBaudrate(b.baudRate); err != nil {
			return baudRateError(b.baudRate, err)
		}
	}
	port.timeout = timeout
	return nil
}

// Name returns the device path.
func (port *TTYPort) Name() string {
	return port.name
}

// Fd returns the file descriptor of the port. The port keeps its ownership.
func (port *TTYPort) Fd() int {
	return port.handle
}

// IntoRawFd releases the ownership of the file descriptor to the caller,
// who becomes responsible for closing it. The TTYPort becomes unusable.
func (port *TTYPort) IntoRawFd() (int, error) {
	if !atomic.CompareAndSwapUint32(&port.opened, 1, 0) {
		return -1, errPortClosed
	}
	runtime.SetFinalizer(port, nil)
	port.closeSignal.Write([]byte{0})
	port.closeLock.Lock()
	defer port.closeLock.Unlock()
	port.closeSignal.Close()
	return port.handle, nil
}

// FromRawFd builds a TTYPort taking ownership of fd, which must refer to a
// terminal. The timeout starts at zero.
func FromRawFd(fd int, name string) (*TTYPort, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, errnoToPortError("set non-blocking", err)
	}
	return newTTYPort(fd, name)
}

// Close the serial port. Closing an already closed port does nothing.
func (port *TTYPort) Close() error {
	if !atomic.CompareAndSwapUint32(&port.opened, 1, 0) {
		return nil
	}
	runtime.SetFinalizer(port, nil)

	// Wake up any pending Read or Write
	port.closeSignal.Write([]byte{0})

	port.closeLock.Lock()
	defer port.closeLock.Unlock()
	if port.exclusive {
		port.releaseExclusiveAccess()
	}
	err := unix.Close(port.handle)
	port.closeSignal.Close()
	if err != nil {
		return wrapError(Io, "close", err)
	}
	return nil
}

// withHandle runs f while holding the port open.
func (port *TTYPort) withHandle(f func(fd int) error) error {
	port.closeLock.RLock()
	defer port.closeLock.RUnlock()
	if atomic.LoadUint32(&port.opened) != 1 {
		return errPortClosed
	}
	return f(port.handle)
}

func (port *TTYPort) Read(p []byte) (int, error) {
	port.closeLock.RLock()
	defer port.closeLock.RUnlock()
	if atomic.LoadUint32(&port.opened) != 1 {
		return 0, errPortClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	deadline := time.Now().Add(port.timeout)
	fds := unixutils.NewFDSet(port.handle, port.closeSignal.ReadFD())
	for {
		res, err := unixutils.SelectUntil(fds, nil, fds, deadline)
		if err != nil {
			return 0, wrapError(Io, "select", err)
		}
		if res.IsReadable(port.closeSignal.ReadFD()) {
			return 0, errPortClosed
		}
		if !res.IsReadable(port.handle) && !res.IsError(port.handle) {
			return 0, errTimeout
		}
		n, err := unix.Read(port.handle, p)
		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}
		if err != nil {
			return 0, errnoToPortError("read", err)
		}
		if n == 0 {
			// readable with nothing to read: the line hung up
			return 0, io.EOF
		}
		return n, nil
	}
}

func (port *TTYPort) Write(p []byte) (int, error) {
	port.closeLock.RLock()
	defer port.closeLock.RUnlock()
	if atomic.LoadUint32(&port.opened) != 1 {
		return 0, errPortClosed
	}

	var deadline time.Time
	if port.timeout > 0 {
		deadline = time.Now().Add(port.timeout)
	}
	closeFDs := unixutils.NewFDSet(port.closeSignal.ReadFD())
	written := 0
	for written < len(p) {
		n, err := unix.Write(port.handle, p[written:])
		if n > 0 {
			written += n
		}
		switch {
		case err == nil, err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			res, err := unixutils.SelectUntil(closeFDs, unixutils.NewFDSet(port.handle), nil, deadline)
			if err != nil {
				return written, wrapError(Io, "select", err)
			}
			if res.IsReadable(port.closeSignal.ReadFD()) {
				return written, errPortClosed
			}
			if !res.IsWritable(port.handle) {
				return written, errTimeout
			}
		default:
			return written, errnoToPortError("write", err)
		}
	}
	return written, nil
}

// Timeout returns the configured read/write timeout.
func (port *TTYPort) Timeout() time.Duration {
	return port.timeout
}

// SetTimeout sets the read/write timeout. Values up to 25.5 seconds are
// also programmed into VMIN/VTIME so that the descriptor behaves the same
// when handed out with IntoRawFd and switched to blocking mode.
func (port *TTYPort) SetTimeout(timeout time.Duration) error {
	if timeout < 0 {
		return newError(InvalidInput, "negative timeout")
	}
	timeout = clampTimeout(timeout)
	err := port.updateTermSettings(func(settings *unix.Termios) error {
		setTermSettingsTimeout(timeout, settings)
		return nil
	})
	if err != nil {
		return err
	}
	port.timeout = timeout
	return nil
}

// BaudRate returns the current baud rate.
func (port *TTYPort) BaudRate() (uint32, error) {
	settings, err := port.getTermSettings()
	if err != nil {
		return 0, err
	}
	return port.nativeBaudRate(settings)
}

// DataBits returns the current character size.
func (port *TTYPort) DataBits() (DataBits, error) {
	settings, err := port.getTermSettings()
	if err != nil {
		return 0, err
	}
	return termiosDataBits(settings)
}

func termiosDataBits(settings *unix.Termios) (DataBits, error) {
	switch settings.Cflag & unix.CSIZE {
	case unix.CS5:
		return Five, nil
	case unix.CS6:
		return Six, nil
	case unix.CS7:
		return Seven, nil
	case unix.CS8:
		return Eight, nil
	}
	return 0, newError(Unknown, "unrecognized character size")
}

// FlowControl returns the current flow control mode.
func (port *TTYPort) FlowControl() (FlowControl, error) {
	settings, err := port.getTermSettings()
	if err != nil {
		return FlowNone, err
	}
	return termiosFlowControl(settings)
}

func termiosFlowControl(settings *unix.Termios) (FlowControl, error) {
	hardware := settings.Cflag&unix.CRTSCTS != 0
	software := settings.Iflag&(unix.IXON|unix.IXOFF) != 0
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
func (port *TTYPort) Parity() (Parity, error) {
	settings, err := port.getTermSettings()
	if err != nil {
		return NoParity, err
	}
	return termiosParity(settings), nil
}

func termiosParity(settings *unix.Termios) Parity {
	if settings.Cflag&unix.PARENB == 0 {
		return NoParity
	}
	odd := settings.Cflag&unix.PARODD != 0
	if tcCMSPAR != 0 && settings.Cflag&tcCMSPAR != 0 {
		if odd {
			return MarkParity
		}
		return SpaceParity
	}
	if odd {
		return OddParity
	}
	return EvenParity
}

// StopBits returns the current number of stop bits.
func (port *TTYPort) StopBits() (StopBits, error) {
	settings, err := port.getTermSettings()
	if err != nil {
		return OneStopBit, err
	}
	return termiosStopBits(settings), nil
}

func termiosStopBits(settings *unix.Termios) StopBits {
	if settings.Cflag&unix.CSTOPB != 0 {
		return TwoStopBits
	}
	return OneStopBit
}

// SetBaudRate applies a baud rate, trying the standard rates first and the
// platform specific arbitrary rate path after.
func (port *TTYPort) SetBaudRate(baudRate uint32) error {
	standard := false
	err := port.updateTermSettings(func(settings *unix.Termios) error {
		standard = setTermSettingsBaudrate(baudRate, settings)
		if standard {
			port.baudRate = 0
		}
		return nil
	})
	if err != nil {
		return baudRateError(baudRate, err)
	}
	if standard {
		return nil
	}
	if err := port.setSpecialBaudrate(baudRate); err != nil {
		return baudRateError(baudRate, err)
	}
	return nil
}

// SetDataBits applies the character size.
func (port *TTYPort) SetDataBits(dataBits DataBits) error {
	if _, err := DataBitsFromInt(int(dataBits)); err != nil {
		return err
	}
	return port.updateTermSettings(func(settings *unix.Termios) error {
		setTermSettingsDataBits(dataBits, settings)
		return nil
	})
}

// SetFlowControl applies the flow control mode.
func (port *TTYPort) SetFlowControl(flowControl FlowControl) error {
	switch flowControl {
	case FlowNone, FlowSoftware, FlowHardware:
	default:
		return newError(InvalidInput, fmt.Sprintf("invalid flow control %d", int(flowControl)))
	}
	return port.updateTermSettings(func(settings *unix.Termios) error {
		setTermSettingsFlowControl(flowControl, settings)
		return nil
	})
}

// SetParity applies the parity mode.
func (port *TTYPort) SetParity(parity Parity) error {
	return port.updateTermSettings(func(settings *unix.Termios) error {
		return setTermSettingsParity(parity, settings)
	})
}

// SetStopBits applies the number of stop bits.
func (port *TTYPort) SetStopBits(stopBits StopBits) error {
	if _, err := StopBitsFromInt(int(stopBits)); err != nil {
		return err
	}
	return port.updateTermSettings(func(settings *unix.Termios) error {
		setTermSettingsStopBits(stopBits, settings)
		return nil
	})
}

// SetRTS sets the modem status bit RequestToSend
func (port *TTYPort) SetRTS(rts bool) error {
	return port.setModemLine(unix.TIOCM_RTS, rts)
}

// SetDTR sets the modem status bit DataTerminalReady
func (port *TTYPort) SetDTR(dtr bool) error {
	return port.setModemLine(unix.TIOCM_DTR, dtr)
}

// ReadCTS reads the ClearToSend line
func (port *TTYPort) ReadCTS() (bool, error) {
	return port.readModemLine(unix.TIOCM_CTS)
}

// ReadDSR reads the DataSetReady line
func (port *TTYPort) ReadDSR() (bool, error) {
	return port.readModemLine(unix.TIOCM_DSR)
}

// ReadRI reads the RingIndicator line
func (port *TTYPort) ReadRI() (bool, error) {
	return port.readModemLine(unix.TIOCM_RI)
}

// ReadCD reads the CarrierDetect line
func (port *TTYPort) ReadCD() (bool, error) {
	return port.readModemLine(unix.TIOCM_CD)
}

// GetModemStatusBits returns the state of all the input lines.
func (port *TTYPort) GetModemStatusBits() (*ModemStatusBits, error) {
	var status int
	err := port.withHandle(func(fd int) (err error) {
		status, err = unix.IoctlGetInt(fd, unix.TIOCMGET)
		return err
	})
	if err != nil {
		return nil, errnoToPortError("read modem status", err)
	}
	return &ModemStatusBits{
		CTS: status&unix.TIOCM_CTS != 0,
		DSR: status&unix.TIOCM_DSR != 0,
		RI:  status&unix.TIOCM_RI != 0,
		DCD: status&unix.TIOCM_CD != 0,
	}, nil
}

func (port *TTYPort) setModemLine(line int, level bool) error {
	req := uint(unix.TIOCMBIC)
	if level {
		req = unix.TIOCMBIS
	}
	err := port.withHandle(func(fd int) error {
		return unix.IoctlSetPointerInt(fd, req, line)
	})
	return errnoToPortError("set modem line", err)
}

func (port *TTYPort) readModemLine(line int) (bool, error) {
	var status int
	err := port.withHandle(func(fd int) (err error) {
		status, err = unix.IoctlGetInt(fd, unix.TIOCMGET)
		return err
	})
	if err != nil {
		return false, errnoToPortError("read modem line", err)
	}
	return status&line != 0, nil
}

// BytesToRead returns the number of bytes waiting in the input queue.
func (port *TTYPort) BytesToRead() (uint32, error) {
	return port.queueSize(ioctlInq)
}

// BytesToWrite returns the number of bytes waiting in the output queue.
func (port *TTYPort) BytesToWrite() (uint32, error) {
	return port.queueSize(ioctlOutq)
}

func (port *TTYPort) queueSize(req uint) (uint32, error) {
	var n int
	err := port.withHandle(func(fd int) (err error) {
		n, err = unix.IoctlGetInt(fd, req)
		return err
	})
	if err != nil {
		return 0, errnoToPortError("queue size", err)
	}
	return uint32(n), nil
}

// Clear discards the selected queues.
func (port *TTYPort) Clear(buffer ClearBuffer) error {
	switch buffer {
	case ClearInput, ClearOutput, ClearAll:
	default:
		return newError(InvalidInput, fmt.Sprintf("invalid buffer selector %d", int(buffer)))
	}
	err := port.withHandle(func(fd int) error {
		return flushQueues(fd, buffer)
	})
	return errnoToPortError("clear", err)
}

// SetBreak starts transmitting a break.
func (port *TTYPort) SetBreak() error {
	err := port.withHandle(func(fd int) error {
		return unix.IoctlSetInt(fd, unix.TIOCSBRK, 0)
	})
	return errnoToPortError("set break", err)
}

// ClearBreak stops transmitting a break.
func (port *TTYPort) ClearBreak() error {
	err := port.withHandle(func(fd int) error {
		return unix.IoctlSetInt(fd, unix.TIOCCBRK, 0)
	})
	return errnoToPortError("clear break", err)
}

// Drain waits until all the output has been transmitted.
func (port *TTYPort) Drain() error {
	err := port.withHandle(func(fd int) error {
		for {
			err := drain(fd)
			if err != unix.EINTR {
				return err
			}
		}
	})
	return errnoToPortError("drain", err)
}

// TryClone duplicates the file descriptor into a new TTYPort.
func (port *TTYPort) TryClone() (Port, error) {
	clone, err := port.TryCloneNative()
	if err != nil {
		return nil, err
	}
	return clone, nil
}

// TryCloneNative is like TryClone but returns the concrete type.
func (port *TTYPort) TryCloneNative() (*TTYPort, error) {
	var h int
	err := port.withHandle(func(fd int) (err error) {
		h, err = unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
		return err
	})
	if err != nil {
		return nil, errnoToPortError("duplicate", err)
	}
	clone, err := newTTYPort(h, port.name)
	if err != nil {
		unix.Close(h)
		return nil, err
	}
	// TIOCEXCL belongs to the device: only the owner that set it clears it
	clone.timeout = port.timeout
	clone.baudRate = port.baudRate
	return clone, nil
}

// Exclusive reports whether the port was put in exclusive mode.
func (port *TTYPort) Exclusive() bool {
	return port.exclusive
}

// SetExclusive toggles the exclusive mode (TIOCEXCL). In exclusive mode
// further opens of the device by non-root users fail with EBUSY. Ports are
// opened in exclusive mode.
func (port *TTYPort) SetExclusive(exclusive bool) error {
	var err error
	if exclusive {
		err = port.acquireExclusiveAccess()
	} else {
		err = port.releaseExclusiveAccess()
	}
	if err != nil {
		return errnoToPortError("exclusive access", err)
	}
	port.exclusive = exclusive
	return nil
}

// termios manipulation functions

func setTermSettingsParity(parity Parity, settings *unix.Termios) error {
	switch parity {
	case NoParity:
		settings.Cflag &^= unix.PARENB | unix.PARODD | tcCMSPAR
		settings.Iflag &^= unix.INPCK
	case OddParity:
		settings.Cflag |= unix.PARENB | unix.PARODD
		settings.Cflag &^= tcCMSPAR
		settings.Iflag |= unix.INPCK
	case EvenParity:
		settings.Cflag &^= unix.PARODD | tcCMSPAR
		settings.Cflag |= unix.PARENB
		settings.Iflag |= unix.INPCK
	case MarkParity:
		if tcCMSPAR == 0 {
			return newError(InvalidInput, "mark parity is not supported on this platform")
		}
		settings.Cflag |= unix.PARENB | unix.PARODD | tcCMSPAR
		settings.Iflag |= unix.INPCK
	case SpaceParity:
		if tcCMSPAR == 0 {
			return newError(InvalidInput, "space parity is not supported on this platform")
		}
		settings.Cflag &^= unix.PARODD
		settings.Cflag |= unix.PARENB | tcCMSPAR
		settings.Iflag |= unix.INPCK
	default:
		return newError(InvalidInput, fmt.Sprintf("invalid parity %d", int(parity)))
	}
	return nil
}

func setTermSettingsDataBits(bits DataBits, settings *unix.Termios) {
	settings.Cflag &^= unix.CSIZE
	switch bits {
	case Five:
		settings.Cflag |= unix.CS5
	case Six:
		settings.Cflag |= unix.CS6
	case Seven:
		settings.Cflag |= unix.CS7
	default:
		settings.Cflag |= unix.CS8
	}
}

func setTermSettingsStopBits(bits StopBits, settings *unix.Termios) {
	if bits == TwoStopBits {
		settings.Cflag |= unix.CSTOPB
	} else {
		settings.Cflag &^= unix.CSTOPB
	}
}

func setTermSettingsFlowControl(flow FlowControl, settings *unix.Termios) {
	switch flow {
	case FlowSoftware:
		settings.Cflag &^= unix.CRTSCTS
		settings.Iflag |= unix.IXON | unix.IXOFF
	case FlowHardware:
		settings.Cflag |= unix.CRTSCTS
		settings.Iflag &^= unix.IXON | unix.IXOFF | unix.IXANY
	default:
		settings.Cflag &^= unix.CRTSCTS
		settings.Iflag &^= unix.IXON | unix.IXOFF | unix.IXANY
	}
}

func setTermSettingsTimeout(timeout time.Duration, settings *unix.Termios) {
	vmin, vtime := timeoutToVTime(timeout)
	settings.Cc[unix.VMIN] = vmin
	settings.Cc[unix.VTIME] = vtime
}

// timeoutToVTime returns the VMIN/VTIME pair for timeouts that fit in the
// deciseconds VTIME can count, rounding up. Longer timeouts are left to
// select and return a non-blocking pair.
func timeoutToVTime(timeout time.Duration) (vmin, vtime uint8) {
	if timeout <= 0 || timeout > vtimeCap {
		return 0, 0
	}
	ds := (timeout + 100*time.Millisecond - 1) / (100 * time.Millisecond)
	return 0, uint8(ds)
}

func clampTimeout(timeout time.Duration) time.Duration {
	if timeout > MaxTimeout {
		return MaxTimeout
	}
	return timeout
}

func setRawMode(settings *unix.Termios) {
	// Set local mode
	settings.Cflag |= unix.CREAD | unix.CLOCAL

	// Set raw mode
	settings.Lflag &^= unix.ICANON | unix.ECHO | unix.ECHOE | unix.ECHOK |
		unix.ECHONL | unix.ECHOCTL | unix.ECHOPRT | unix.ECHOKE | unix.ISIG | unix.IEXTEN
	settings.Iflag &^= unix.IXON | unix.IXOFF | unix.IXANY | unix.INPCK |
		unix.IGNPAR | unix.PARMRK | unix.ISTRIP | unix.IGNBRK | unix.BRKINT | unix.INLCR |
		unix.IGNCR | unix.ICRNL | tcIUCLC
	settings.Oflag &^= unix.OPOST
}

// native syscall wrapper functions

func (port *TTYPort) getTermSettings() (*unix.Termios, error) {
	var settings *unix.Termios
	err := port.withHandle(func(fd int) (err error) {
		settings, err = unix.IoctlGetTermios(fd, ioctlTcgetattr)
		return err
	})
	if err != nil {
		return nil, errnoToPortError("get settings", err)
	}
	return settings, nil
}

func (port *TTYPort) setTermSettings(settings *unix.Termios) error {
	err := port.withHandle(func(fd int) error {
		return unix.IoctlSetTermios(fd, ioctlTcsetattr, settings)
	})
	return errnoToPortError("set settings", err)
}

func (port *TTYPort) updateTermSettings(update func(*unix.Termios) error) error {
	settings, err := port.getTermSettings()
	if err != nil {
		return err
	}
	if err := update(settings); err != nil {
		return err
	}
	if err := port.setTermSettings(settings); err != nil {
		return err
	}
	if port.baudRate != 0 {
		// tcsetattr resets a rate applied outside termios
		return port.setSpecialBaudrate(port.baudRate)
	}
	return nil
}

func (port *TTYPort) acquireExclusiveAccess() error {
	return port.withHandle(func(fd int) error {
		return unix.IoctlSetInt(fd, unix.TIOCEXCL, 0)
	})
}

func (port *TTYPort) releaseExclusiveAccess() error {
	return unix.IoctlSetInt(port.handle, unix.TIOCNXCL, 0)
}

// errnoToPortError classifies a failed native call. Errors that are already
// a *PortError pass through.
func errnoToPortError(op string, err error) error {
	if err == nil {
		return nil
	}
	var portErr *PortError
	if errors.As(err, &portErr) {
		return portErr
	}
	var errno unix.Errno
	if errors.As(err, &errno) {
		switch errno {
		case unix.ENXIO, unix.ENODEV, unix.ENOENT, unix.EIO:
			return wrapError(NoDevice, op, err)
		case unix.EINVAL:
			return wrapError(InvalidInput, op, err)
		}
	}
	return wrapError(Io, op, err)
}

func baudRateError(baudRate uint32, err error) error {
	var portErr *PortError
	if errors.As(err, &portErr) && portErr.Kind() != Io {
		return portErr
	}
	return wrapError(InvalidInput, fmt.Sprintf("baud rate %d not supported", baudRate), err)
}
