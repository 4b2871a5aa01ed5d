//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package serialport

import "golang.org/x/sys/unix"

var baudrateMap = map[uint32]uint32{
	50:      unix.B50,
	75:      unix.B75,
	110:     unix.B110,
	134:     unix.B134,
	150:     unix.B150,
	200:     unix.B200,
	300:     unix.B300,
	600:     unix.B600,
	1200:    unix.B1200,
	1800:    unix.B1800,
	2400:    unix.B2400,
	4800:    unix.B4800,
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	500000:  unix.B500000,
	576000:  unix.B576000,
	921600:  unix.B921600,
	1000000: unix.B1000000,
	1152000: unix.B1152000,
	1500000: unix.B1500000,
	2000000: unix.B2000000,
	2500000: unix.B2500000,
	3000000: unix.B3000000,
	3500000: unix.B3500000,
	4000000: unix.B4000000,
}

const tcCMSPAR = unix.CMSPAR
const tcIUCLC = unix.IUCLC

const ioctlTcgetattr = unix.TCGETS
const ioctlTcsetattr = unix.TCSETS

const ioctlInq = unix.TIOCINQ
const ioctlOutq = unix.TIOCOUTQ

// setTermSettingsBaudrate stores a standard rate in settings and reports
// false, leaving settings untouched, for rates that need the BOTHER path.
func setTermSettingsBaudrate(speed uint32, settings *unix.Termios) bool {
	baudrate, ok := baudrateMap[speed]
	if !ok {
		return false
	}
	settings.Cflag &^= unix.CBAUD
	settings.Cflag |= baudrate
	settings.Ispeed = baudrate
	settings.Ospeed = baudrate
	return true
}

func flushQueues(fd int, buffer ClearBuffer) error {
	queue := unix.TCIOFLUSH
	switch buffer {
	case ClearInput:
		queue = unix.TCIFLUSH
	case ClearOutput:
		queue = unix.TCOFLUSH
	}
	return unix.IoctlSetInt(fd, unix.TCFLSH, queue)
}

// drain is tcdrain(3): TCSBRK with a non-zero argument waits for the
// output queue without sending a break.
func drain(fd int) error {
	return unix.IoctlSetInt(fd, unix.TCSBRK, 1)
}
