//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows

package serialport

import (
	"math"
	"time"
)

// MaxTimeout is the longest timeout a port honours.
const MaxTimeout = time.Duration(math.MaxInt64)

func nativeOpen(b Builder) (Port, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	return nil, newError(Unknown, "serial ports are not supported on this platform")
}
