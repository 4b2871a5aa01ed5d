//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

//go:build linux && !ppc64le && !ppc64 && !ppc

package serialport

import "golang.org/x/sys/unix"

func (port *TTYPort) setSpecialBaudrate(speed uint32) error {
	err := port.withHandle(func(fd int) error {
		settings, err := unix.IoctlGetTermios(fd, unix.TCGETS2)
		if err != nil {
			return err
		}
		settings.Cflag &^= unix.CBAUD
		settings.Cflag |= unix.BOTHER
		settings.Ispeed = speed
		settings.Ospeed = speed
		return unix.IoctlSetTermios(fd, unix.TCSETS2, settings)
	})
	if err != nil {
		return errnoToPortError("set baud rate", err)
	}
	port.baudRate = speed
	return nil
}

// nativeBaudRate reads the output speed through termios2, which reports
// arbitrary rates as well as the standard ones.
func (port *TTYPort) nativeBaudRate(_ *unix.Termios) (uint32, error) {
	var speed uint32
	err := port.withHandle(func(fd int) error {
		settings, err := unix.IoctlGetTermios(fd, unix.TCGETS2)
		if err != nil {
			return err
		}
		speed = settings.Ospeed
		return nil
	})
	if err != nil {
		return 0, errnoToPortError("get baud rate", err)
	}
	return speed, nil
}
