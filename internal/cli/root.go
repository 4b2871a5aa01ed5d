//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package cli implements the serialport command line tool.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/abakum/serialport"
	"github.com/abakum/serialport/enumerator"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app is the state shared by all the commands of one invocation.
type app struct {
	v   *viper.Viper
	log *logrus.Entry

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// replaced by tests
	listPorts func() ([]enumerator.SerialPortInfo, error)
	openPort  func(serialport.Builder) (serialport.Port, error)
}

func newApp() *app {
	return &app{
		in:        os.Stdin,
		out:       os.Stdout,
		errOut:    os.Stderr,
		listPorts: enumerator.AvailablePorts,
		openPort:  serialport.Builder.Open,
	}
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "serialport",
		Short: "Inspect and talk to serial ports",
		Long: `serialport lists the serial ports of the system and opens them to send,
receive, probe baud rates or drive the modem control lines.

Line settings come from flags, from SERIALPORT_* environment variables
(e.g. SERIALPORT_BAUD=115200) or from a YAML config file, in this order of
priority:

  port: /dev/ttyUSB0
  baud: 115200
  framing: "8N1"
  flow-control: hardware
  timeout: 2s`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd.Flags())
			if err != nil {
				return err
			}
			log, err := newLogger(v.GetString(keyLogLevel), a.errOut)
			if err != nil {
				return err
			}
			a.v = v
			a.log = log
			return nil
		},
	}
	rootCmd.SetIn(a.in)
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)
	addPortFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newListCommand(a),
		newInfoCommand(a),
		newSignalsCommand(a),
		newPinsCommand(a),
		newSendCommand(a),
		newReceiveCommand(a),
		newLoopbackCommand(a),
		newBaudCommand(a),
		newFlowCommand(a),
	)
	return rootCmd
}

// Execute runs the command line and returns the process exit code.
// Cancelling ctx stops the long running commands.
func Execute(ctx context.Context) int {
	a := newApp()
	if err := newRootCommand(a).ExecuteContext(ctx); err != nil {
		if a.log == nil {
			a.log, _ = newLogger("info", a.errOut)
		}
		a.log.WithError(err).Error("command failed")
		return 1
	}
	return 0
}

// open opens the port named by the optional argument or by the
// configuration. The returned logger carries the port field.
func (a *app) open(args []string) (serialport.Port, *logrus.Entry, error) {
	cfg, err := loadPortConfig(a.v)
	if err != nil {
		return nil, a.log, err
	}
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	b, err := cfg.builder(path)
	if err != nil {
		return nil, a.log, err
	}
	log := a.log.WithField("port", b.String())
	log.Debug("opening port")
	port, err := a.openPort(b)
	if err != nil {
		return nil, log, err
	}
	return port, log, nil
}
