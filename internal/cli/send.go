//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newSendCommand(a *app) *cobra.Command {
	var newline, hexMode, noDrain bool
	cmd := &cobra.Command{
		Use:   "send [data]",
		Short: "Send data to a serial port",
		Long: `Send data to the configured serial port and wait until it has been
transmitted. Data is taken from the argument or, when missing, from stdin.

Examples:
  serialport send -p /dev/ttyUSB0 "AT+GMR" --newline
  serialport send -p /dev/ttyUSB0 --hex "DEADBEEF"
  echo "test" | serialport send -p /dev/ttyUSB0`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			if len(args) == 1 {
				data = []byte(args[0])
			} else {
				in, err := io.ReadAll(a.in)
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				data = in
			}
			data, err := encodePayload(data, hexMode, newline)
			if err != nil {
				return err
			}

			port, log, err := a.open(nil)
			if err != nil {
				return err
			}
			defer port.Close()

			n, err := port.Write(data)
			if err != nil {
				return err
			}
			if !noDrain {
				if err := port.Drain(); err != nil {
					return err
				}
			}
			log.WithField("bytes", n).Info("data sent")
			return nil
		},
	}
	cmd.Flags().BoolVar(&newline, "newline", false, "append CR LF to the data")
	cmd.Flags().BoolVar(&hexMode, "hex", false, "data is hex encoded, spaces are ignored")
	cmd.Flags().BoolVar(&noDrain, "no-drain", false, "do not wait for the data to leave the output queue")
	return cmd
}

func encodePayload(data []byte, hexMode, newline bool) ([]byte, error) {
	if hexMode {
		clean := strings.Join(strings.Fields(string(data)), "")
		decoded, err := hex.DecodeString(clean)
		if err != nil {
			return nil, fmt.Errorf("invalid hex data: %w", err)
		}
		data = decoded
	}
	if newline {
		data = append(data, '\r', '\n')
	}
	return data, nil
}
