//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

//go:build !linux && !darwin && !windows && !freebsd

package enumerator

import "errors"

func nativeAvailablePorts() ([]SerialPortInfo, error) {
	return nil, &PortEnumerationError{causedBy: errors.New("not implemented for this OS")}
}
