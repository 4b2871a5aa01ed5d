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

// setTermSettingsBaudrate stores the rate as is: FreeBSD speed values are
// the rates themselves and the driver decides which ones it accepts.
func setTermSettingsBaudrate(speed uint32, settings *unix.Termios) bool {
	settings.Ispeed = speed
	settings.Ospeed = speed
	return true
}

func (port *TTYPort) setSpecialBaudrate(speed uint32) error {
	return newError(InvalidInput, fmt.Sprintf("baud rate %d not supported", speed))
}

func (port *TTYPort) nativeBaudRate(settings *unix.Termios) (uint32, error) {
	return settings.Ospeed, nil
}
