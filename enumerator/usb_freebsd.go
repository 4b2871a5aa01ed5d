//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

import (
	"os"
	"path/filepath"
	"strings"
)

var devDir = "/dev"

// FreeBSD names call-out devices cuau (uart), cuaU (USB) and cuad (legacy
// sio). The .init and .lock nodes hold the initial and locked termios.
func nativeAvailablePorts() ([]SerialPortInfo, error) {
	entries, err := os.ReadDir(devDir)
	if err != nil {
		return nil, &PortEnumerationError{causedBy: err}
	}
	ports := []SerialPortInfo{}
	for _, entry := range entries {
		if isCalloutDevice(entry.Name()) {
			ports = append(ports, SerialPortInfo{
				PortName: filepath.Join(devDir, entry.Name()),
				PortType: UnknownPort,
			})
		}
	}
	return ports, nil
}

func isCalloutDevice(name string) bool {
	if !strings.HasPrefix(name, "cuaU") && !strings.HasPrefix(name, "cuau") && !strings.HasPrefix(name, "cuad") {
		return false
	}
	return !strings.HasSuffix(name, ".init") && !strings.HasSuffix(name, ".lock")
}
