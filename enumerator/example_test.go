//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator_test

import (
	"fmt"
	"log"

	"github.com/abakum/serialport/enumerator"
)

func ExampleAvailablePorts() {
	ports, err := enumerator.AvailablePorts()
	if err != nil {
		log.Fatal(err)
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found!")
		return
	}
	for _, port := range ports {
		fmt.Printf("Found port: %s (%s)\n", port.PortName, port.PortType)
		if port.USB != nil {
			fmt.Printf("   USB ID     %04X:%04X\n", port.USB.VID, port.USB.PID)
			fmt.Printf("   USB serial %s\n", port.USB.SerialNumber)
		}
	}
}
