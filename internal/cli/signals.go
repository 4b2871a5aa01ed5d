//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newSignalsCommand(a *app) *cobra.Command {
	var watch time.Duration
	cmd := &cobra.Command{
		Use:   "signals [port]",
		Short: "Display current modem signal states",
		Long: `Display the current state of the modem status lines.

Examples:
  serialport signals /dev/ttyUSB0
  serialport signals /dev/ttyACM0 --watch 500ms

Signal meanings:
  CTS - Clear To Send (input)
  DSR - Data Set Ready (input)
  RI  - Ring Indicator (input)
  DCD - Data Carrier Detect (input)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, log, err := a.open(args)
			if err != nil {
				return err
			}
			defer port.Close()

			fmt.Fprintf(a.out, "Modem Signals for %s:\n\n", port.Name())
			for {
				signals, err := port.GetModemStatusBits()
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "  CTS (Clear To Send):       %s\n", formatSignalState(signals.CTS))
				fmt.Fprintf(a.out, "  DSR (Data Set Ready):      %s\n", formatSignalState(signals.DSR))
				fmt.Fprintf(a.out, "  RI  (Ring Indicator):      %s\n", formatSignalState(signals.RI))
				fmt.Fprintf(a.out, "  DCD (Data Carrier Detect): %s\n", formatSignalState(signals.DCD))
				if watch <= 0 {
					return nil
				}
				log.Debug("waiting for next poll")
				select {
				case <-cmd.Context().Done():
					return nil
				case <-time.After(watch):
				}
				fmt.Fprintln(a.out)
			}
		},
	}
	cmd.Flags().DurationVar(&watch, "watch", 0, "poll the signals at this interval until interrupted")
	return cmd
}

func formatSignalState(state bool) string {
	if state {
		return "HIGH"
	}
	return "LOW"
}
