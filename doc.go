//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

/*
Package serialport is a cross-platform serial port library for the go language.

It is possible to get the list of available serial ports with the
GetPortsList function:

	ports, err := serialport.GetPortsList()
	if err != nil {
		log.Fatal(err)
	}
	if len(ports) == 0 {
		log.Fatal("No serial ports found!")
	}
	for _, port := range ports {
		fmt.Printf("Found port: %v\n", port)
	}

The enumerator subpackage gives more details, such as the USB VID/PID and
serial number of each port.

A port is configured with a Builder and then opened:

	port, err := serialport.New("/dev/ttyUSB0", 115200).
		Timeout(500 * time.Millisecond).
		Open()
	if err != nil {
		log.Fatal(err)
	}

If not specified the port is opened as 8N1 without flow control. The
following snippet shows how to open a port at 57600_E71:

	port, err := serialport.New("/dev/ttyUSB0", 57600).
		DataBits(serialport.Seven).
		Parity(serialport.EvenParity).
		Open()

The settings can be changed at any time with the Port setters:

	if err := port.SetBaudRate(9600); err != nil {
		log.Fatal(err)
	}

The port object implements the io.ReadWriteCloser interface, so we can use
the usual Read, Write and Close functions to send and receive data from the
serial port. Read returns as soon as some data is available; when nothing
arrives within the timeout it fails with an error that satisfies
errors.Is(err, os.ErrDeadlineExceeded):

	n, err := port.Write([]byte("10,20,30\n\r"))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Sent %v bytes\n", n)

	buff := make([]byte, 100)
	for {
		n, err := port.Read(buff)
		if errors.Is(err, os.ErrDeadlineExceeded) {
			continue
		}
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%v", string(buff[:n]))
	}

Errors returned by the package are *PortError values; their Kind tells
apart a missing device, a rejected setting and an I/O failure.

This library doesn't make use of cgo and "C" package, so it's a pure go library
that can be easily cross compiled.
*/
package serialport
