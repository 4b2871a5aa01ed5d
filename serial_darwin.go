//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package serialport

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

var baudrateMap = map[uint32]uint64{
	50:     unix.B50,
	75:     unix.B75,
	110:    unix.B110,
	134:    unix.B134,
	150:    unix.B150,
	200:    unix.B200,
	300:    unix.B300,
	600:    unix.B600,
	1200:   unix.B1200,
	1800:   unix.B1800,
	2400:   unix.B2400,
	4800:   unix.B4800,
	7200:   unix.B7200,
	9600:   unix.B9600,
	14400:  unix.B14400,
	19200:  unix.B19200,
	28800:  unix.B28800,
	38400:  unix.B38400,
	57600:  unix.B57600,
	76800:  unix.B76800,
	115200: unix.B115200,
	230400: unix.B230400,
}

// IOSSIOSPEED is _IOW('T', 2, speed_t) from IOKit/serial/ioss.h
const ioctlIOSSIOSPEED = 0x80085402

func setTermSettingsBaudrate(speed uint32, settings *unix.Termios) bool {
	baudrate, ok := baudrateMap[speed]
	if !ok {
		return false
	}
	settings.Ispeed = baudrate
	settings.Ospeed = baudrate
	return true
}

// setSpecialBaudrate programs an arbitrary rate through IOSSIOSPEED. The
// driver forgets it on the next tcsetattr, so the rate is cached and
// applied again after every settings change.
func (port *TTYPort) setSpecialBaudrate(speed uint32) error {
	err := port.withHandle(func(fd int) error {
		s := uint64(speed)
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), ioctlIOSSIOSPEED, uintptr(unsafe.Pointer(&s)))
		if errno != 0 {
			return errno
		}
		return nil
	})
	if err != nil {
		return errnoToPortError("set baud rate", err)
	}
	port.baudRate = speed
	return nil
}

func (port *TTYPort) nativeBaudRate(settings *unix.Termios) (uint32, error) {
	if port.baudRate != 0 {
		return port.baudRate, nil
	}
	return uint32(settings.Ospeed), nil
}
