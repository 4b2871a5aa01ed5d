//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package serialport

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Pair creates a pseudo terminal and returns both ends as ports in raw
// mode: whatever is written on one end can be read on the other. It is
// mostly useful for testing code that talks to a serial device.
func Pair() (*TTYPort, *TTYPort, error) {
	mfd, err := unix.Open("/dev/ptmx", unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, nil, wrapError(NoDevice, "/dev/ptmx", err)
	}
	if err := unix.IoctlSetPointerInt(mfd, unix.TIOCSPTLCK, 0); err != nil {
		unix.Close(mfd)
		return nil, nil, errnoToPortError("unlock pty", err)
	}
	n, err := unix.IoctlGetUint32(mfd, unix.TIOCGPTN)
	if err != nil {
		unix.Close(mfd)
		return nil, nil, errnoToPortError("pty number", err)
	}
	master, err := newTTYPort(mfd, "/dev/ptmx")
	if err != nil {
		unix.Close(mfd)
		return nil, nil, err
	}

	slave, err := New(fmt.Sprintf("/dev/pts/%d", n), 9600).OpenNative()
	if err != nil {
		master.Close()
		return nil, nil, err
	}
	err = master.updateTermSettings(func(settings *unix.Termios) error {
		setRawMode(settings)
		return nil
	})
	if err != nil {
		master.Close()
		slave.Close()
		return nil, nil, err
	}
	return master, slave, nil
}
