//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/abakum/serialport/enumerator"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newListCommand(a *app) *cobra.Command {
	var tableFormat bool
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available serial ports",
		Long: `List all the serial ports found on the system.

USB ports are annotated with their vendor and product ids, serial number,
manufacturer and product strings when the operating system reports them.

Examples:
  serialport list
  serialport list --table
  serialport list --filter usb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := a.listPorts()
			if err != nil {
				return err
			}
			ports, err = filterPorts(ports, filter)
			if err != nil {
				return err
			}
			if len(ports) == 0 {
				fmt.Fprintln(a.out, "No serial ports found")
				return nil
			}
			sort.Slice(ports, func(i, j int) bool { return ports[i].PortName < ports[j].PortName })
			if tableFormat {
				renderTable(a.out, ports)
			} else {
				renderSimple(a.out, ports)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&tableFormat, "table", false, "display output in a styled table")
	cmd.Flags().StringVar(&filter, "filter", "", "show only one port type: usb, pci, bluetooth or unknown")
	return cmd
}

// filterPorts keeps the ports of the given type, an empty filter keeps
// them all.
func filterPorts(ports []enumerator.SerialPortInfo, filter string) ([]enumerator.SerialPortInfo, error) {
	if filter == "" || filter == "all" {
		return ports, nil
	}
	var want enumerator.PortType
	switch strings.ToLower(filter) {
	case "usb":
		want = enumerator.USBPort
	case "pci":
		want = enumerator.PCIPort
	case "bluetooth", "bt":
		want = enumerator.BluetoothPort
	case "unknown":
		want = enumerator.UnknownPort
	default:
		return nil, fmt.Errorf("invalid filter %q", filter)
	}
	var filtered []enumerator.SerialPortInfo
	for _, port := range ports {
		if port.PortType == want {
			filtered = append(filtered, port)
		}
	}
	return filtered, nil
}

func renderSimple(w io.Writer, ports []enumerator.SerialPortInfo) {
	for _, port := range ports {
		fmt.Fprintf(w, "Port: %s\n", port.PortName)
		if port.USB != nil {
			fmt.Fprintf(w, "   USB ID     %04X:%04X\n", port.USB.VID, port.USB.PID)
			if port.USB.SerialNumber != "" {
				fmt.Fprintf(w, "   USB serial %s\n", port.USB.SerialNumber)
			}
		} else {
			fmt.Fprintf(w, "   Type       %s\n", port.PortType)
		}
	}
}

func renderTable(w io.Writer, ports []enumerator.SerialPortInfo) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Port", "Type", "VID:PID", "Serial", "Description").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, port := range ports {
		ids, serial, desc := "", "", ""
		if usb := port.USB; usb != nil {
			ids = fmt.Sprintf("%04X:%04X", usb.VID, usb.PID)
			serial = usb.SerialNumber
			desc = strings.TrimSpace(usb.Manufacturer + " " + usb.Product)
		}
		t.Row(port.PortName, port.PortType.String(), ids, serial, desc)
	}
	fmt.Fprintf(w, "Found %d serial port(s):\n", len(ports))
	fmt.Fprintln(w, t.Render())
}
