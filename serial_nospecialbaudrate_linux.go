//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

//go:build linux && (ppc64le || ppc64 || ppc)

package serialport

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// termios2 is not available on PowerPC, only the standard rates work.
func (port *TTYPort) setSpecialBaudrate(speed uint32) error {
	return newError(InvalidInput, fmt.Sprintf("baud rate %d not supported on this platform", speed))
}

func (port *TTYPort) nativeBaudRate(settings *unix.Termios) (uint32, error) {
	code := settings.Cflag & unix.CBAUD
	for rate, c := range baudrateMap {
		if c == code {
			return rate, nil
		}
	}
	return 0, newError(Unknown, "unrecognized baud rate")
}
