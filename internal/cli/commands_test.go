//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/abakum/serialport"
	"github.com/abakum/serialport/enumerator"
	"github.com/stretchr/testify/require"
)

func samplePorts() ([]enumerator.SerialPortInfo, error) {
	iface := uint8(0)
	return []enumerator.SerialPortInfo{
		{PortName: "/dev/ttyS0", PortType: enumerator.PCIPort},
		{PortName: "/dev/ttyFAKE0", PortType: enumerator.USBPort, USB: &enumerator.UsbPortInfo{
			VID: 0x2341, PID: 0x0043, SerialNumber: "6493234373835191F1F1",
			Manufacturer: "Arduino (www.arduino.cc)", Product: "Uno", Interface: &iface,
		}},
		{PortName: "/dev/rfcomm0", PortType: enumerator.BluetoothPort},
	}, nil
}

func TestListCommand(t *testing.T) {
	h := newHarness(t)
	h.app.listPorts = samplePorts
	require.NoError(t, h.run("list"))
	out := h.out.String()
	require.Contains(t, out, "Port: /dev/ttyFAKE0\n   USB ID     2341:0043\n   USB serial 6493234373835191F1F1\n")
	require.Contains(t, out, "Port: /dev/ttyS0\n   Type       PCI\n")
	// sorted by name
	require.Less(t, strings.Index(out, "/dev/rfcomm0"), strings.Index(out, "/dev/ttyS0"))
}

func TestListCommandTable(t *testing.T) {
	h := newHarness(t)
	h.app.listPorts = samplePorts
	require.NoError(t, h.run("list", "--table"))
	out := h.out.String()
	require.Contains(t, out, "Found 3 serial port(s):")
	require.Contains(t, out, "VID:PID")
	require.Contains(t, out, "2341:0043")
	require.Contains(t, out, "Arduino (www.arduino.cc) Uno")
}

func TestListCommandFilter(t *testing.T) {
	h := newHarness(t)
	h.app.listPorts = samplePorts
	require.NoError(t, h.run("list", "--filter", "bluetooth"))
	require.Equal(t, "Port: /dev/rfcomm0\n   Type       Bluetooth\n", h.out.String())

	h = newHarness(t)
	require.NoError(t, h.run("list", "--filter", "usb"))
	require.Equal(t, "No serial ports found\n", h.out.String())

	require.Error(t, h.run("list", "--filter", "parallel"))
}

func TestListCommandEnumerationError(t *testing.T) {
	h := newHarness(t)
	h.app.listPorts = func() ([]enumerator.SerialPortInfo, error) {
		return nil, errors.New("boom")
	}
	require.EqualError(t, h.run("list"), "boom")
}

func TestInfoCommand(t *testing.T) {
	h := newHarness(t)
	h.app.listPorts = samplePorts
	require.NoError(t, h.run("info", "/dev/ttyFAKE0", "--baud", "115200"))
	out := h.out.String()
	require.Contains(t, out, "Port Information: /dev/ttyFAKE0")
	require.Contains(t, out, "Type:         USB")
	require.Contains(t, out, "Vendor ID:    2341")
	require.Contains(t, out, "Interface:    0")
	require.Contains(t, out, "Framing:      8N1")
	require.Equal(t, "/dev/ttyFAKE0@115200 8N1 flow=None timeout=1s", h.port.builder.String())
	require.True(t, h.port.closed)
}

func TestInfoCommandWithoutPort(t *testing.T) {
	h := newHarness(t)
	require.ErrorContains(t, h.run("info"), "no serial port given")
}

func TestSignalsCommand(t *testing.T) {
	h := newHarness(t)
	h.port.status = serialport.ModemStatusBits{CTS: true, DCD: true}
	require.NoError(t, h.run("signals", "/dev/ttyFAKE0"))
	out := h.out.String()
	require.Contains(t, out, "CTS (Clear To Send):       HIGH")
	require.Contains(t, out, "DSR (Data Set Ready):      LOW")
	require.Contains(t, out, "DCD (Data Carrier Detect): HIGH")
}

func TestPinsCommand(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("pins", "/dev/ttyFAKE0", "--rts", "on", "--dtr", "LOW", "--break", "1ms"))
	require.Equal(t, []bool{true}, h.port.rts)
	require.Equal(t, []bool{false}, h.port.dtr)
	require.Equal(t, 1, h.port.breaks)

	h = newHarness(t)
	require.Error(t, h.run("pins", "/dev/ttyFAKE0", "--rts", "maybe"))
	require.Empty(t, h.port.rts)
}

func TestSendCommand(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("send", "-p", "/dev/ttyS3", "hello", "--newline"))
	require.Equal(t, "hello\r\n", h.port.written.String())
	require.True(t, h.port.drained)
	require.True(t, strings.HasPrefix(h.port.builder.String(), "/dev/ttyS3@9600"))
}

func TestSendCommandHexAndStdin(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("send", "-p", "/dev/ttyS3", "--hex", "de ad BE EF", "--no-drain"))
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, h.port.written.Bytes())
	require.False(t, h.port.drained)

	h = newHarness(t)
	h.app.in = strings.NewReader("from stdin")
	require.NoError(t, h.run("send", "-p", "/dev/ttyS3"))
	require.Equal(t, "from stdin", h.port.written.String())

	h = newHarness(t)
	require.Error(t, h.run("send", "-p", "/dev/ttyS3", "--hex", "xyz"))
	require.Zero(t, h.port.written.Len())
}

func TestReceiveCommand(t *testing.T) {
	h := newHarness(t)
	h.port.rx = []byte("abcdef")
	require.NoError(t, h.run("receive", "/dev/ttyFAKE0"))
	require.Equal(t, "abcdef", h.out.String())

	h = newHarness(t)
	h.port.rx = []byte("abcdef")
	require.NoError(t, h.run("receive", "/dev/ttyFAKE0", "-n", "4"))
	require.Equal(t, "abcd", h.out.String())

	h = newHarness(t)
	h.port.rx = []byte("AB")
	require.NoError(t, h.run("receive", "/dev/ttyFAKE0", "--hex"))
	require.Contains(t, h.out.String(), "41 42")
}

func TestLoopbackCommand(t *testing.T) {
	h := newHarness(t)
	h.port.echo = true
	require.NoError(t, h.run("loopback", "/dev/ttyFAKE0", "--rounds", "3", "--size", "200"))
	require.Contains(t, h.out.String(), "3 round(s) of 200 bytes OK")
	require.Equal(t, 600, h.port.written.Len())

	h = newHarness(t)
	require.ErrorContains(t, h.run("loopback", "/dev/ttyFAKE0"), "read back 0 of")

	require.Error(t, h.run("loopback", "/dev/ttyFAKE0", "--size", "0"))
}

func TestFirstMismatch(t *testing.T) {
	require.Equal(t, -1, firstMismatch([]byte("abc"), []byte("abc")))
	require.Equal(t, 1, firstMismatch([]byte("abc"), []byte("axc")))
	require.Equal(t, 2, firstMismatch([]byte("abc"), []byte("ab")))
}

func TestBaudCommand(t *testing.T) {
	h := newHarness(t)
	h.port.adjust = func(rate uint32) (uint32, error) {
		switch rate {
		case 250000:
			return 0, serialport.NewError(serialport.InvalidInput, "unsupported")
		case 921600:
			return 923077, nil
		case 31250:
			return 30000, nil
		}
		return rate, nil
	}
	require.NoError(t, h.run("baud", "/dev/ttyFAKE0", "--rates", "9600,250000,921600,31250"))
	lines := strings.Split(strings.TrimRight(h.out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "     9600  ok (9600, +0.00%)", lines[0])
	require.Equal(t, "   250000  rejected", lines[1])
	require.Equal(t, "   921600  ok (923077, +0.16%)", lines[2])
	require.Equal(t, "    31250  got 30000 (-4.00%) out of tolerance", lines[3])

	require.Error(t, h.run("baud", "/dev/ttyFAKE0", "--rates", "-5"))
}

func TestWithinTolerance(t *testing.T) {
	require.True(t, withinTolerance(115200, 115200))
	require.True(t, withinTolerance(115200, 115384))
	require.False(t, withinTolerance(115200, 117647))
	require.True(t, withinTolerance(2000000, 2050000))
	require.False(t, withinTolerance(2000000, 2100000))
}

func TestFlowCommand(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("flow", "/dev/ttyFAKE0"))
	require.Equal(t, "flow control: Hardware\nflow control: Software\nflow control: Hardware\nflow control: None\n", h.out.String())
	require.Equal(t, serialport.FlowNone, h.port.flow)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger("debug", &buf)
	require.NoError(t, err)
	log.WithField("port", "/dev/ttyS0").Debug("opening port")
	require.Contains(t, buf.String(), "level=debug")
	require.Contains(t, buf.String(), `msg="opening port"`)
	require.Contains(t, buf.String(), "port=/dev/ttyS0")

	_, err = newLogger("loud", &buf)
	require.Error(t, err)

	h := newHarness(t)
	require.Error(t, h.run("--log-level", "loud", "list"))
}
