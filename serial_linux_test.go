//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// Testing code idea and fix thanks to @angri
// https://github.com/bugst/go-serial/pull/42
//

package serialport

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type ttyProc struct {
	t    *testing.T
	cmd  *exec.Cmd
	path string
}

func (tp *ttyProc) Close() error {
	err := tp.cmd.Process.Signal(os.Interrupt)
	require.NoError(tp.t, err)
	return tp.cmd.Wait()
}

func (tp *ttyProc) waitForPort() {
	for {
		_, err := os.Stat(tp.path)
		if err == nil {
			return
		}
		if !errors.Is(err, os.ErrNotExist) {
			require.NoError(tp.t, err)
		}
		time.Sleep(time.Millisecond)
	}
}

func startSocatAndWaitForPort(t *testing.T, ctx context.Context) (io.Closer, string) {
	if _, err := exec.LookPath("socat"); err != nil {
		t.Skip("socat not available")
	}
	ttyPath := filepath.Join(t.TempDir(), "faketty")
	cmd := exec.CommandContext(ctx, "socat", "STDIO", "pty,link="+ttyPath)
	require.NoError(t, cmd.Start())
	socat := &ttyProc{
		t:    t,
		cmd:  cmd,
		path: ttyPath,
	}
	socat.waitForPort()
	return socat, ttyPath
}

func TestSerialReadAndCloseConcurrency(t *testing.T) {

	// Run this test with race detector to actually test that
	// the correct multitasking behaviour is happening.

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	socat, ttyPath := startSocatAndWaitForPort(t, ctx)
	defer socat.Close()

	port, err := New(ttyPath, 9600).Timeout(time.Minute).Open()
	require.NoError(t, err)
	defer port.Close()

	buf := make([]byte, 100)
	go port.Read(buf)
	// let port.Read to start
	time.Sleep(time.Millisecond * 1)
}

func TestDoubleCloseIsNoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	socat, ttyPath := startSocatAndWaitForPort(t, ctx)
	defer socat.Close()

	port, err := New(ttyPath, 9600).Open()
	require.NoError(t, err)
	require.NoError(t, port.Close())
	require.NoError(t, port.Close())
}

func openPair(t *testing.T) (*TTYPort, *TTYPort) {
	master, slave, err := Pair()
	if err != nil {
		t.Skipf("pseudo terminals not available: %v", err)
	}
	t.Cleanup(func() {
		master.Close()
		slave.Close()
	})
	return master, slave
}

func TestPairWriteRead(t *testing.T) {
	master, slave := openPair(t)
	require.NoError(t, slave.SetTimeout(time.Second))
	require.NoError(t, master.SetTimeout(time.Second))

	n, err := master.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	buf := make([]byte, 16)
	got := []byte{}
	for len(got) < 5 {
		n, err := slave.Read(buf)
		require.NoError(t, err)
		got = append(got, buf[:n]...)
	}
	require.Equal(t, "hello", string(got))

	_, err = slave.Write([]byte{0x00, 0xff, '\r', '\n'})
	require.NoError(t, err)
	n, err = io.ReadAtLeast(master, buf, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0xff, '\r', '\n'}, buf[:n])
}

func TestReadTimeout(t *testing.T) {
	_, slave := openPair(t)
	require.NoError(t, slave.SetTimeout(50*time.Millisecond))

	start := time.Now()
	n, err := slave.Read(make([]byte, 8))
	elapsed := time.Since(start)
	require.Zero(t, n)
	require.ErrorIs(t, err, os.ErrDeadlineExceeded)
	require.True(t, err.(*PortError).Timeout())
	require.GreaterOrEqual(t, elapsed, 45*time.Millisecond)
	require.Less(t, elapsed, time.Second)
}

func TestZeroTimeoutReadDoesNotWait(t *testing.T) {
	_, slave := openPair(t)
	require.Zero(t, slave.Timeout())

	start := time.Now()
	_, err := slave.Read(make([]byte, 8))
	require.ErrorIs(t, err, os.ErrDeadlineExceeded)
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestCloseWakesPendingRead(t *testing.T) {
	_, slave := openPair(t)
	require.NoError(t, slave.SetTimeout(time.Minute))

	done := make(chan error)
	go func() {
		_, err := slave.Read(make([]byte, 8))
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case err := <-done:
		require.Fail(t, "expected reading to be in-progress", "%v", err)
	default:
	}

	require.NoError(t, slave.Close())
	select {
	case err := <-done:
		require.ErrorIs(t, err, os.ErrClosed)
	case <-time.After(time.Second):
		require.Fail(t, "expected reading to be done")
	}

	_, err := slave.Read(make([]byte, 8))
	require.ErrorIs(t, err, os.ErrClosed)
	_, err = slave.Write([]byte("x"))
	require.ErrorIs(t, err, os.ErrClosed)
	_, err = slave.BaudRate()
	require.ErrorIs(t, err, os.ErrClosed)
	require.NoError(t, slave.Close())
}

func TestSettingsRoundTrip(t *testing.T) {
	_, slave := openPair(t)

	baud, err := slave.BaudRate()
	require.NoError(t, err)
	require.Equal(t, uint32(9600), baud)

	require.NoError(t, slave.SetBaudRate(115200))
	baud, err = slave.BaudRate()
	require.NoError(t, err)
	require.Equal(t, uint32(115200), baud)

	// the pty driver forces CS8 without parity, so only the calls are
	// checked here; the termios mapping is covered by TestTermiosParity
	require.NoError(t, slave.SetDataBits(Seven))
	require.NoError(t, slave.SetParity(EvenParity))
	_, err = slave.DataBits()
	require.NoError(t, err)
	_, err = slave.Parity()
	require.NoError(t, err)

	for _, s := range []StopBits{TwoStopBits, OneStopBit} {
		require.NoError(t, slave.SetStopBits(s))
		got, err := slave.StopBits()
		require.NoError(t, err)
		require.Equal(t, s, got)
	}

	for _, f := range []FlowControl{FlowHardware, FlowSoftware, FlowNone} {
		require.NoError(t, slave.SetFlowControl(f))
		got, err := slave.FlowControl()
		require.NoError(t, err)
		require.Equal(t, f, got)
	}

	require.ErrorIs(t, slave.SetDataBits(DataBits(9)), os.ErrInvalid)
	require.ErrorIs(t, slave.SetTimeout(-time.Second), os.ErrInvalid)
}

func TestArbitraryBaudRate(t *testing.T) {
	_, slave := openPair(t)
	switch runtime.GOARCH {
	case "ppc64", "ppc64le":
		// no termios2: only the standard rates exist
		require.ErrorIs(t, slave.SetBaudRate(250000), os.ErrInvalid)
		baud, err := slave.BaudRate()
		require.NoError(t, err)
		require.Equal(t, uint32(9600), baud)
		return
	}
	require.NoError(t, slave.SetBaudRate(250000))
	baud, err := slave.BaudRate()
	require.NoError(t, err)
	require.Equal(t, uint32(250000), baud)

	// the arbitrary rate survives a settings change
	require.NoError(t, slave.SetParity(EvenParity))
	baud, err = slave.BaudRate()
	require.NoError(t, err)
	require.Equal(t, uint32(250000), baud)
}

func TestQueuesAndClear(t *testing.T) {
	master, slave := openPair(t)

	_, err := master.Write([]byte("0123456789"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		n, err := slave.BytesToRead()
		return err == nil && n == 10
	}, time.Second, time.Millisecond)

	require.NoError(t, slave.Clear(ClearInput))
	n, err := slave.BytesToRead()
	require.NoError(t, err)
	require.Zero(t, n)

	out, err := slave.BytesToWrite()
	require.NoError(t, err)
	require.Zero(t, out)
	require.NoError(t, slave.Clear(ClearAll))
	require.ErrorIs(t, slave.Clear(ClearBuffer(7)), os.ErrInvalid)
}

func TestBreakAndDrain(t *testing.T) {
	_, slave := openPair(t)
	require.NoError(t, slave.SetBreak())
	require.NoError(t, slave.SetBreak())
	require.NoError(t, slave.ClearBreak())
	require.NoError(t, slave.ClearBreak())
	require.NoError(t, slave.Drain())
}

func TestTryClone(t *testing.T) {
	master, slave := openPair(t)
	require.NoError(t, slave.SetTimeout(time.Second))

	clone, err := slave.TryClone()
	require.NoError(t, err)
	defer clone.Close()
	require.Equal(t, slave.Name(), clone.Name())
	require.Equal(t, time.Second, clone.Timeout())
	require.True(t, slave.Exclusive())
	require.False(t, clone.(*TTYPort).Exclusive())

	// closing the original leaves the clone usable
	require.NoError(t, slave.Close())
	_, err = master.Write([]byte("ping"))
	require.NoError(t, err)
	buf := make([]byte, 4)
	n, err := io.ReadFull(clone, buf)
	require.NoError(t, err)
	require.Equal(t, "ping", string(buf[:n]))
}

func TestCloseCloneKeepsExclusiveMode(t *testing.T) {
	_, slave := openPair(t)
	clone, err := slave.TryCloneNative()
	require.NoError(t, err)
	require.NoError(t, clone.Close())

	excl, err := unix.IoctlGetInt(slave.Fd(), unix.TIOCGEXCL)
	require.NoError(t, err)
	require.Equal(t, 1, excl)
}

func TestRawFdHandOver(t *testing.T) {
	_, slave := openPair(t)
	name := slave.Name()

	fd, err := slave.IntoRawFd()
	require.NoError(t, err)
	_, err = slave.IntoRawFd()
	require.ErrorIs(t, err, os.ErrClosed)
	require.NoError(t, slave.Close())

	port, err := FromRawFd(fd, name)
	require.NoError(t, err)
	defer port.Close()
	require.Equal(t, fd, port.Fd())
	require.Equal(t, name, port.Name())
	require.Zero(t, port.Timeout())
	_, err = port.BaudRate()
	require.NoError(t, err)
}

func TestExclusiveToggle(t *testing.T) {
	_, slave := openPair(t)
	require.True(t, slave.Exclusive())
	require.NoError(t, slave.SetExclusive(false))
	require.False(t, slave.Exclusive())
	require.NoError(t, slave.SetExclusive(true))
	require.True(t, slave.Exclusive())
}
