//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// serialport is a tool to list, inspect and exercise serial ports.
// Just run it and it will produce an output like:
//
//	$ serialport list
//	Port: /dev/cu.Bluetooth-Incoming-Port
//	   Type       Bluetooth
//	Port: /dev/cu.usbmodemFD121
//	   USB ID     2341:8053
//	   USB serial FB7B6060504B5952302E314AFF08191A
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/abakum/serialport/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
