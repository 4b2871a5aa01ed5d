//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newPinsCommand(a *app) *cobra.Command {
	var rts, dtr string
	var breakFor time.Duration
	cmd := &cobra.Command{
		Use:   "pins [port]",
		Short: "Drive the RTS and DTR lines or send a break",
		Long: `Set the RTS and DTR output lines and optionally hold the line in the
break state for a while. Lines not mentioned are left untouched.

Examples:
  serialport pins /dev/ttyUSB0 --dtr off --rts on
  serialport pins /dev/ttyUSB0 --break 250ms`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, log, err := a.open(args)
			if err != nil {
				return err
			}
			defer port.Close()

			if rts != "" {
				level, err := strconv.ParseBool(onOff(rts))
				if err != nil {
					return fmt.Errorf("invalid RTS level %q", rts)
				}
				if err := port.SetRTS(level); err != nil {
					return err
				}
				log.WithField("rts", level).Info("RTS set")
			}
			if dtr != "" {
				level, err := strconv.ParseBool(onOff(dtr))
				if err != nil {
					return fmt.Errorf("invalid DTR level %q", dtr)
				}
				if err := port.SetDTR(level); err != nil {
					return err
				}
				log.WithField("dtr", level).Info("DTR set")
			}
			if breakFor > 0 {
				if err := port.SetBreak(); err != nil {
					return err
				}
				time.Sleep(breakFor)
				if err := port.ClearBreak(); err != nil {
					return err
				}
				log.WithField("duration", breakFor).Info("break sent")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rts, "rts", "", "RTS level: on/off, high/low, 1/0")
	cmd.Flags().StringVar(&dtr, "dtr", "", "DTR level: on/off, high/low, 1/0")
	cmd.Flags().DurationVar(&breakFor, "break", 0, "hold the break condition for this long")
	return cmd
}

// onOff maps the usual names of line levels to ParseBool syntax.
func onOff(s string) string {
	switch s {
	case "on", "high", "ON", "HIGH":
		return "true"
	case "off", "low", "OFF", "LOW":
		return "false"
	}
	return s
}
