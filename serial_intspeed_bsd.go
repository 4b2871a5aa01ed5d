//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

//go:build netbsd || openbsd

package serialport

import (
	"fmt"
	"math"

	"golang.org/x/sys/unix"
)

// setTermSettingsBaudrate stores the rate as is: like FreeBSD the speed
// values are the rates themselves, but the termios fields are int32.
// See cfsetspeed(3).
func setTermSettingsBaudrate(speed uint32, settings *unix.Termios) bool {
	if speed > math.MaxInt32 {
		return false
	}
	settings.Ispeed = int32(speed)
	settings.Ospeed = int32(speed)
	return true
}

func (port *TTYPort) setSpecialBaudrate(speed uint32) error {
	return newError(InvalidInput, fmt.Sprintf("baud rate %d not supported", speed))
}

func (port *TTYPort) nativeBaudRate(settings *unix.Termios) (uint32, error) {
	if settings.Ospeed < 0 {
		return 0, newError(Unknown, fmt.Sprintf("invalid output speed %d", settings.Ospeed))
	}
	return uint32(settings.Ospeed), nil
}
