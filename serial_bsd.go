//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

//go:build darwin || freebsd || netbsd || openbsd

package serialport

import "golang.org/x/sys/unix"

const tcCMSPAR = 0 // may be CMSPAR or PAREXT
const tcIUCLC = 0

const ioctlTcgetattr = unix.TIOCGETA
const ioctlTcsetattr = unix.TIOCSETA

// FIONREAD is _IOR('f', 127, int), not exported by x/sys on every BSD.
const ioctlInq = 0x4004667f
const ioctlOutq = unix.TIOCOUTQ

// Flags for TIOCFLUSH, from sys/fcntl.h
const (
	fREAD  = 0x1
	fWRITE = 0x2
)

func flushQueues(fd int, buffer ClearBuffer) error {
	queue := fREAD | fWRITE
	switch buffer {
	case ClearInput:
		queue = fREAD
	case ClearOutput:
		queue = fWRITE
	}
	return unix.IoctlSetPointerInt(fd, unix.TIOCFLUSH, queue)
}

func drain(fd int) error {
	return unix.IoctlSetInt(fd, unix.TIOCDRAIN, 0)
}
