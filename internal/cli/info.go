//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package cli

import (
	"fmt"
	"io"

	"github.com/abakum/serialport"
	"github.com/abakum/serialport/enumerator"
	"github.com/spf13/cobra"
)

func newInfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info [port]",
		Short: "Display detailed information about a serial port",
		Long: `Display what the system reports about a serial port and the line
settings it is currently configured with.

Examples:
  serialport info /dev/ttyUSB0
  serialport info COM3 --baud 115200

For USB devices this displays vendor/product IDs, serial number, interface
number, manufacturer and product strings.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, log, err := a.open(args)
			if err != nil {
				return err
			}
			defer port.Close()

			fmt.Fprintf(a.out, "Port Information: %s\n\n", port.Name())
			ports, err := a.listPorts()
			if err != nil {
				log.WithError(err).Warn("port enumeration failed")
			}
			for _, p := range ports {
				if p.PortName == port.Name() {
					printPortInfo(a.out, p)
					break
				}
			}
			return printSettings(a.out, port)
		},
	}
}

func printPortInfo(w io.Writer, p enumerator.SerialPortInfo) {
	fmt.Fprintf(w, "  Type:         %s\n", p.PortType)
	usb := p.USB
	if usb == nil {
		return
	}
	fmt.Fprintln(w, "\nUSB Device Information:")
	fmt.Fprintf(w, "  Vendor ID:    %04X\n", usb.VID)
	fmt.Fprintf(w, "  Product ID:   %04X\n", usb.PID)
	if usb.SerialNumber != "" {
		fmt.Fprintf(w, "  Serial:       %s\n", usb.SerialNumber)
	}
	if usb.Interface != nil {
		fmt.Fprintf(w, "  Interface:    %d\n", *usb.Interface)
	}
	if usb.Manufacturer != "" {
		fmt.Fprintf(w, "  Manufacturer: %s\n", usb.Manufacturer)
	}
	if usb.Product != "" {
		fmt.Fprintf(w, "  Product:      %s\n", usb.Product)
	}
}

func printSettings(w io.Writer, port serialport.Port) error {
	baud, err := port.BaudRate()
	if err != nil {
		return err
	}
	dataBits, err := port.DataBits()
	if err != nil {
		return err
	}
	parity, err := port.Parity()
	if err != nil {
		return err
	}
	stopBits, err := port.StopBits()
	if err != nil {
		return err
	}
	flow, err := port.FlowControl()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\nLine Settings:")
	fmt.Fprintf(w, "  Baud rate:    %d\n", baud)
	fmt.Fprintf(w, "  Framing:      %s%s%s\n", dataBits, parity.String()[:1], stopBits)
	fmt.Fprintf(w, "  Flow control: %s\n", flow)
	fmt.Fprintf(w, "  Timeout:      %s\n", port.Timeout())
	return nil
}
