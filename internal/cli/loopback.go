//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package cli

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/abakum/serialport"
	"github.com/spf13/cobra"
)

// loopbackPattern is the printable ASCII run, it shows framing and bit
// errors clearly.
var loopbackPattern = []byte("0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~")

func newLoopbackCommand(a *app) *cobra.Command {
	var rounds, size int
	cmd := &cobra.Command{
		Use:   "loopback [port]",
		Short: "Check a port whose TX and RX lines are wired together",
		Long: `Write a test pattern and verify it is read back unchanged. The port
must have its TX line connected to its RX line, with a jumper or a
loopback plug.

Examples:
  serialport loopback /dev/ttyUSB0 --baud 115200
  serialport loopback COM4 --rounds 10 --size 4096`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if size <= 0 || rounds <= 0 {
				return fmt.Errorf("size and rounds must be positive")
			}
			port, log, err := a.open(args)
			if err != nil {
				return err
			}
			defer port.Close()

			if err := port.Clear(serialport.ClearAll); err != nil {
				return err
			}
			msg := bytes.Repeat(loopbackPattern, size/len(loopbackPattern)+1)[:size]
			start := time.Now()
			for i := 0; i < rounds; i++ {
				if err := loopbackRound(port, msg); err != nil {
					return fmt.Errorf("round %d: %w", i+1, err)
				}
			}
			elapsed := time.Since(start)
			rate := float64(size*rounds) / elapsed.Seconds()
			log.WithField("elapsed", elapsed).Debug("loopback done")
			fmt.Fprintf(a.out, "%d round(s) of %d bytes OK, %.0f bytes/s\n", rounds, size, rate)
			return nil
		},
	}
	cmd.Flags().IntVar(&rounds, "rounds", 1, "number of write/read rounds")
	cmd.Flags().IntVar(&size, "size", len(loopbackPattern), "bytes per round")
	return cmd
}

func loopbackRound(port serialport.Port, msg []byte) error {
	errCh := make(chan error, 1)
	go func() {
		_, err := port.Write(msg)
		errCh <- err
	}()
	got := make([]byte, len(msg))
	n, readErr := io.ReadFull(port, got)
	if err := <-errCh; err != nil {
		return err
	}
	if readErr != nil {
		return fmt.Errorf("read back %d of %d bytes: %w", n, len(msg), readErr)
	}
	if i := firstMismatch(msg, got); i >= 0 {
		return fmt.Errorf("mismatch at byte %d: sent 0x%02X, received 0x%02X", i, msg[i], got[i])
	}
	return nil
}

func firstMismatch(a, b []byte) int {
	for i := range a {
		if i >= len(b) || a[i] != b[i] {
			return i
		}
	}
	return -1
}
