//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package cli

import (
	"fmt"
	"math"

	"github.com/abakum/serialport"
	"github.com/spf13/cobra"
)

var defaultProbeRates = []int{1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200, 230400, 250000, 460800, 500000, 921600, 1000000}

func newBaudCommand(a *app) *cobra.Command {
	var rates []int
	cmd := &cobra.Command{
		Use:   "baud [port]",
		Short: "Probe which baud rates a port accepts",
		Long: `Apply each baud rate to the port and read it back.

Drivers may round a rate to what their clock allows: the reported rate is
accepted when it is within 0.5% of the requested one (3% above 1 Mbaud).
The port is left at the last accepted rate.

Examples:
  serialport baud /dev/ttyUSB0
  serialport baud /dev/ttyUSB0 --rates 31250,74880,250000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, log, err := a.open(args)
			if err != nil {
				return err
			}
			defer port.Close()

			failures := 0
			for _, rate := range rates {
				if rate <= 0 || uint64(rate) > math.MaxUint32 {
					return fmt.Errorf("invalid baud rate %d", rate)
				}
				result := probeBaudRate(port, uint32(rate))
				if !result.ok {
					failures++
				}
				if result.err != nil {
					log.WithError(result.err).WithField("baud", rate).Debug("baud rate rejected")
				}
				fmt.Fprintln(a.out, result)
			}
			if failures > 0 {
				log.WithField("failures", failures).Warn("some baud rates are not supported")
			}
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&rates, "rates", defaultProbeRates, "baud rates to probe")
	return cmd
}

type baudProbe struct {
	requested uint32
	actual    uint32
	ok        bool
	err       error
}

func (p baudProbe) String() string {
	switch {
	case p.err != nil:
		return fmt.Sprintf("%9d  rejected", p.requested)
	case !p.ok:
		return fmt.Sprintf("%9d  got %d (%+.2f%%) out of tolerance", p.requested, p.actual, deviation(p.requested, p.actual))
	}
	return fmt.Sprintf("%9d  ok (%d, %+.2f%%)", p.requested, p.actual, deviation(p.requested, p.actual))
}

func probeBaudRate(port serialport.Port, rate uint32) baudProbe {
	res := baudProbe{requested: rate}
	if err := port.SetBaudRate(rate); err != nil {
		res.err = err
		return res
	}
	actual, err := port.BaudRate()
	if err != nil {
		res.err = err
		return res
	}
	res.actual = actual
	res.ok = withinTolerance(rate, actual)
	return res
}

func deviation(requested, actual uint32) float64 {
	return (float64(actual) - float64(requested)) * 100 / float64(requested)
}

// withinTolerance accepts 0.5% up to 1 Mbaud and 3% above, where USB
// adapters derive the rate from coarse clock dividers.
func withinTolerance(requested, actual uint32) bool {
	tolerance := 0.5
	if requested > 1000000 {
		tolerance = 3
	}
	return math.Abs(deviation(requested, actual)) <= tolerance
}
