//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package cli

import (
	"encoding/hex"
	"errors"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newReceiveCommand(a *app) *cobra.Command {
	var count int
	var duration time.Duration
	var hexMode bool
	cmd := &cobra.Command{
		Use:   "receive [port]",
		Short: "Copy the data received from a serial port to stdout",
		Long: `Read from a serial port and copy the data to stdout.

Reading stops after --count bytes, after --duration, when nothing arrives
within the port timeout or when interrupted.

Examples:
  serialport receive /dev/ttyUSB0 --timeout 5s
  serialport receive /dev/ttyUSB0 --count 16 --hex`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, log, err := a.open(args)
			if err != nil {
				return err
			}
			defer port.Close()

			out := a.out
			if hexMode {
				dumper := hex.Dumper(a.out)
				defer dumper.Close()
				out = dumper
			}

			var deadline time.Time
			if duration > 0 {
				deadline = time.Now().Add(duration)
			}
			total := 0
			buf := make([]byte, 1024)
			for count <= 0 || total < count {
				if cmd.Context().Err() != nil {
					break
				}
				if !deadline.IsZero() && time.Now().After(deadline) {
					break
				}
				want := len(buf)
				if count > 0 && count-total < want {
					want = count - total
				}
				n, err := port.Read(buf[:want])
				if n > 0 {
					if _, werr := out.Write(buf[:n]); werr != nil {
						return werr
					}
					total += n
				}
				if errors.Is(err, os.ErrDeadlineExceeded) {
					if deadline.IsZero() {
						break
					}
					continue
				}
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}
			}
			log.WithField("bytes", total).Debug("receive finished")
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "stop after this many bytes")
	cmd.Flags().DurationVar(&duration, "duration", 0, "keep reading for this long, ignoring timeouts")
	cmd.Flags().BoolVar(&hexMode, "hex", false, "print a hex dump")
	return cmd
}
