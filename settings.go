//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package serialport

import (
	"fmt"
	"strings"
)

// DataBits is the number of bits used to transmit a single character.
type DataBits int

const (
	// Five data bits per character
	Five DataBits = 5
	// Six data bits per character
	Six DataBits = 6
	// Seven data bits per character
	Seven DataBits = 7
	// Eight data bits per character (default)
	Eight DataBits = 8
)

// DataBitsFromInt converts an integer in the range 5..8 into DataBits.
func DataBitsFromInt(n int) (DataBits, error) {
	switch n {
	case 5, 6, 7, 8:
		return DataBits(n), nil
	}
	return 0, newError(InvalidInput, fmt.Sprintf("invalid data bits %d", n))
}

func (d DataBits) String() string {
	switch d {
	case Five, Six, Seven, Eight:
		return fmt.Sprintf("%d", int(d))
	}
	return fmt.Sprintf("DataBits(%d)", int(d))
}

// Parity describes a serial port parity setting
type Parity int

const (
	// NoParity disable parity control (default)
	NoParity Parity = iota
	// OddParity enable odd-parity check
	OddParity
	// EvenParity enable even-parity check
	EvenParity
	// MarkParity enable mark-parity (always 1) check
	MarkParity
	// SpaceParity enable space-parity (always 0) check
	SpaceParity
)

var parityNames = map[Parity]string{
	NoParity:    "None",
	OddParity:   "Odd",
	EvenParity:  "Even",
	MarkParity:  "Mark",
	SpaceParity: "Space",
}

func (p Parity) String() string {
	if s, ok := parityNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Parity(%d)", int(p))
}

// ParseParity parses the textual form of a parity setting. It accepts the
// full names and their first letter, in any case.
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "n":
		return NoParity, nil
	case "odd", "o":
		return OddParity, nil
	case "even", "e":
		return EvenParity, nil
	case "mark", "m":
		return MarkParity, nil
	case "space", "s":
		return SpaceParity, nil
	}
	return NoParity, newError(InvalidInput, fmt.Sprintf("invalid parity %q", s))
}

// MarshalText implements encoding.TextMarshaler.
func (p Parity) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(p.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Parity) UnmarshalText(text []byte) error {
	v, err := ParseParity(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// StopBits describe a serial port stop bits setting
type StopBits int

const (
	// OneStopBit sets 1 stop bit (default)
	OneStopBit StopBits = 1
	// TwoStopBits sets 2 stop bits
	TwoStopBits StopBits = 2
)

// StopBitsFromInt converts 1 or 2 into StopBits.
func StopBitsFromInt(n int) (StopBits, error) {
	switch n {
	case 1, 2:
		return StopBits(n), nil
	}
	return 0, newError(InvalidInput, fmt.Sprintf("invalid stop bits %d", n))
}

func (s StopBits) String() string {
	switch s {
	case OneStopBit, TwoStopBits:
		return fmt.Sprintf("%d", int(s))
	}
	return fmt.Sprintf("StopBits(%d)", int(s))
}

// FlowControl is the handshaking mode used to pace the data stream.
type FlowControl int

const (
	// FlowNone disables flow control (default)
	FlowNone FlowControl = iota
	// FlowSoftware uses XON/XOFF bytes in the data stream
	FlowSoftware
	// FlowHardware uses the RTS/CTS signals
	FlowHardware
)

func (f FlowControl) String() string {
	switch f {
	case FlowNone:
		return "None"
	case FlowSoftware:
		return "Software"
	case FlowHardware:
		return "Hardware"
	}
	return fmt.Sprintf("FlowControl(%d)", int(f))
}

// ParseFlowControl parses the case-insensitive textual form of a flow
// control mode: "none"/"n", "software"/"sw"/"s" or "hardware"/"hw"/"h".
func ParseFlowControl(s string) (FlowControl, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "n":
		return FlowNone, nil
	case "software", "sw", "s":
		return FlowSoftware, nil
	case "hardware", "hw", "h":
		return FlowHardware, nil
	}
	return FlowNone, newError(InvalidInput, fmt.Sprintf("invalid flow control %q", s))
}

// MarshalText implements encoding.TextMarshaler.
func (f FlowControl) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(f.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FlowControl) UnmarshalText(text []byte) error {
	v, err := ParseFlowControl(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ClearBuffer selects which queued buffer Port.Clear discards.
type ClearBuffer int

const (
	// ClearInput discards received but unread data
	ClearInput ClearBuffer = iota
	// ClearOutput discards written but not yet transmitted data
	ClearOutput
	// ClearAll discards both
	ClearAll
)

// ModemStatusBits contains all the modem status bits for a serial port (CTS, DSR, etc...).
// It can be retrieved with the Port.GetModemStatusBits() method.
type ModemStatusBits struct {
	CTS bool // ClearToSend status
	DSR bool // DataSetReady status
	RI  bool // RingIndicator status
	DCD bool // DataCarrierDetect status
}

// ParseFraming parses the classic data bits, parity, stop bits shorthand
// such as "8N1" or "7E2".
func ParseFraming(s string) (DataBits, Parity, StopBits, error) {
	if len(s) != 3 {
		return 0, 0, 0, newError(InvalidInput, fmt.Sprintf("invalid framing %q", s))
	}
	dataBits, err := DataBitsFromInt(int(s[0]) - '0')
	if err != nil {
		return 0, 0, 0, err
	}
	parity, err := ParseParity(s[1:2])
	if err != nil {
		return 0, 0, 0, err
	}
	stopBits, err := StopBitsFromInt(int(s[2]) - '0')
	if err != nil {
		return 0, 0, 0, err
	}
	return dataBits, parity, stopBits, nil
}
