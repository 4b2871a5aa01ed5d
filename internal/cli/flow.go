//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package cli

import (
	"fmt"

	"github.com/abakum/serialport"
	"github.com/spf13/cobra"
)

func newFlowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "flow [port]",
		Short: "Cycle through the flow control modes",
		Long: `Switch the port through hardware, software and no flow control,
reading the mode back after every change. Useful to check that a driver
honours the flow control settings.

Example:
  serialport flow /dev/ttyUSB0 --flow-control hardware`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, log, err := a.open(args)
			if err != nil {
				return err
			}
			defer port.Close()

			initial, err := port.FlowControl()
			if err != nil {
				return err
			}
			log.WithField("flow", initial).Info("flow control on open")

			for _, mode := range []serialport.FlowControl{serialport.FlowHardware, serialport.FlowSoftware, serialport.FlowHardware, serialport.FlowNone} {
				if err := port.SetFlowControl(mode); err != nil {
					return err
				}
				got, err := port.FlowControl()
				if err != nil {
					return err
				}
				if got != mode {
					return fmt.Errorf("flow control set to %s but reads back %s", mode, got)
				}
				fmt.Fprintf(a.out, "flow control: %s\n", got)
			}
			return nil
		},
	}
}
