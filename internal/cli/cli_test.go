//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package cli

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abakum/serialport"
	"github.com/abakum/serialport/enumerator"
)

// fakePort implements the parts of serialport.Port the commands use,
// anything else panics through the nil embedded interface.
type fakePort struct {
	serialport.Port

	mu      sync.Mutex
	name    string
	builder serialport.Builder
	written bytes.Buffer
	rx      []byte
	echo    bool
	drained bool
	closed  bool
	baud    uint32
	flow    serialport.FlowControl
	rts     []bool
	dtr     []bool
	breaks  int
	status  serialport.ModemStatusBits
	adjust  func(uint32) (uint32, error)
}

func (p *fakePort) Name() string { return p.name }

func (p *fakePort) Read(b []byte) (int, error) {
	deadline := time.Now().Add(time.Second)
	for {
		p.mu.Lock()
		if len(p.rx) > 0 {
			n := copy(b, p.rx)
			p.rx = p.rx[n:]
			p.mu.Unlock()
			return n, nil
		}
		p.mu.Unlock()
		if !p.echo || time.Now().After(deadline) {
			return 0, os.ErrDeadlineExceeded
		}
		time.Sleep(time.Millisecond)
	}
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.written.Write(b)
	if p.echo {
		p.rx = append(p.rx, b...)
	}
	return len(b), nil
}

func (p *fakePort) Close() error        { p.closed = true; return nil }
func (p *fakePort) Drain() error        { p.drained = true; return nil }
func (p *fakePort) SetBreak() error     { p.breaks++; return nil }
func (p *fakePort) ClearBreak() error   { return nil }
func (p *fakePort) SetRTS(v bool) error { p.rts = append(p.rts, v); return nil }
func (p *fakePort) SetDTR(v bool) error { p.dtr = append(p.dtr, v); return nil }

func (p *fakePort) Clear(serialport.ClearBuffer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rx = nil
	return nil
}

func (p *fakePort) GetModemStatusBits() (*serialport.ModemStatusBits, error) {
	status := p.status
	return &status, nil
}

func (p *fakePort) SetBaudRate(rate uint32) error {
	actual := rate
	if p.adjust != nil {
		var err error
		if actual, err = p.adjust(rate); err != nil {
			return err
		}
	}
	p.baud = actual
	return nil
}

func (p *fakePort) BaudRate() (uint32, error)                    { return p.baud, nil }
func (p *fakePort) DataBits() (serialport.DataBits, error)       { return serialport.Eight, nil }
func (p *fakePort) Parity() (serialport.Parity, error)           { return serialport.NoParity, nil }
func (p *fakePort) StopBits() (serialport.StopBits, error)       { return serialport.OneStopBit, nil }
func (p *fakePort) Timeout() time.Duration                       { return time.Second }
func (p *fakePort) FlowControl() (serialport.FlowControl, error) { return p.flow, nil }

func (p *fakePort) SetFlowControl(f serialport.FlowControl) error {
	p.flow = f
	return nil
}

type harness struct {
	app    *app
	port   *fakePort
	out    bytes.Buffer
	errOut bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix+"_") {
			key, _, _ := strings.Cut(env, "=")
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
	h := &harness{port: &fakePort{name: "/dev/ttyFAKE0", baud: 9600}}
	h.app = &app{
		in:     strings.NewReader(""),
		out:    &h.out,
		errOut: &h.errOut,
		listPorts: func() ([]enumerator.SerialPortInfo, error) {
			return nil, nil
		},
		openPort: func(b serialport.Builder) (serialport.Port, error) {
			h.port.builder = b
			return h.port, nil
		},
	}
	return h
}

func (h *harness) run(args ...string) error {
	cmd := newRootCommand(h.app)
	cmd.SetArgs(args)
	return cmd.Execute()
}
