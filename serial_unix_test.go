//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

//go:build linux || darwin || freebsd || netbsd || openbsd

package serialport

import (
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestTimeoutToVTime(t *testing.T) {
	cases := []struct {
		timeout time.Duration
		vtime   uint8
	}{
		{0, 0},
		{time.Millisecond, 1},
		{100 * time.Millisecond, 1},
		{101 * time.Millisecond, 2},
		{time.Second, 10},
		{25500 * time.Millisecond, 255},
		{25501 * time.Millisecond, 0},
		{time.Hour, 0},
	}
	for _, c := range cases {
		vmin, vtime := timeoutToVTime(c.timeout)
		require.Zero(t, vmin, c.timeout.String())
		require.Equal(t, c.vtime, vtime, c.timeout.String())
	}
}

func TestErrnoClassification(t *testing.T) {
	require.Nil(t, errnoToPortError("op", nil))
	for _, errno := range []unix.Errno{unix.ENOENT, unix.ENXIO, unix.ENODEV, unix.EIO} {
		err := errnoToPortError("op", errno)
		require.ErrorIs(t, err, fs.ErrNotExist, errno.Error())
		require.ErrorIs(t, err, errno)
	}
	require.ErrorIs(t, errnoToPortError("op", unix.EINVAL), fs.ErrInvalid)

	err := errnoToPortError("op", unix.EBUSY)
	require.Equal(t, Io, err.(*PortError).Kind())
	require.Same(t, errPortClosed, errnoToPortError("op", errPortClosed))

	require.ErrorIs(t, baudRateError(12345, unix.EINVAL), fs.ErrInvalid)
	require.ErrorIs(t, baudRateError(12345, errnoToPortError("op", unix.ENOTTY)), fs.ErrInvalid)
	require.ErrorIs(t, baudRateError(12345, errnoToPortError("op", unix.EIO)), fs.ErrNotExist)
}

func TestRawModeSettings(t *testing.T) {
	settings := &unix.Termios{}
	settings.Lflag = unix.ICANON | unix.ECHO | unix.ISIG
	settings.Iflag = unix.ICRNL | unix.IXON
	settings.Oflag = unix.OPOST
	setRawMode(settings)
	require.Zero(t, settings.Lflag&(unix.ICANON|unix.ECHO|unix.ISIG))
	require.Zero(t, settings.Iflag&(unix.ICRNL|unix.IXON))
	require.Zero(t, settings.Oflag&unix.OPOST)
	require.NotZero(t, settings.Cflag&unix.CREAD)
	require.NotZero(t, settings.Cflag&unix.CLOCAL)
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := New("/dev/this-serial-port-does-not-exist", 9600).Open()
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.Equal(t, NoDevice, err.(*PortError).Kind())
}

func TestOpenNotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "notatty")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = New(f.Name(), 9600).Open()
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.Equal(t, NoDevice, err.(*PortError).Kind())
}

func TestOpenDirectory(t *testing.T) {
	_, err := New(t.TempDir(), 9600).Open()
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.Equal(t, NoDevice, err.(*PortError).Kind())
}

func TestTermiosDataBits(t *testing.T) {
	for _, bits := range []DataBits{Five, Six, Seven, Eight} {
		settings := &unix.Termios{Cflag: unix.CS8 | unix.CREAD}
		setTermSettingsDataBits(bits, settings)
		got, err := termiosDataBits(settings)
		require.NoError(t, err)
		require.Equal(t, bits, got)
		require.NotZero(t, settings.Cflag&unix.CREAD)
	}
}

func TestTermiosParity(t *testing.T) {
	parities := []Parity{OddParity, EvenParity, NoParity}
	if tcCMSPAR != 0 {
		parities = append(parities, MarkParity, SpaceParity, OddParity, NoParity)
	}
	settings := &unix.Termios{}
	for _, parity := range parities {
		require.NoError(t, setTermSettingsParity(parity, settings))
		require.Equal(t, parity, termiosParity(settings), parity.String())
		if parity == NoParity {
			require.Zero(t, settings.Iflag&unix.INPCK)
		} else {
			require.NotZero(t, settings.Iflag&unix.INPCK)
		}
	}
	if tcCMSPAR == 0 {
		require.ErrorIs(t, setTermSettingsParity(MarkParity, settings), fs.ErrInvalid)
		require.ErrorIs(t, setTermSettingsParity(SpaceParity, settings), fs.ErrInvalid)
	}
	require.ErrorIs(t, setTermSettingsParity(Parity(42), settings), fs.ErrInvalid)
}

func TestTermiosStopBitsAndFlow(t *testing.T) {
	settings := &unix.Termios{}
	setTermSettingsStopBits(TwoStopBits, settings)
	require.Equal(t, TwoStopBits, termiosStopBits(settings))
	setTermSettingsStopBits(OneStopBit, settings)
	require.Equal(t, OneStopBit, termiosStopBits(settings))

	for _, flow := range []FlowControl{FlowHardware, FlowSoftware, FlowNone} {
		setTermSettingsFlowControl(flow, settings)
		got, err := termiosFlowControl(settings)
		require.NoError(t, err)
		require.Equal(t, flow, got)
	}

	settings.Cflag |= unix.CRTSCTS
	settings.Iflag |= unix.IXON
	_, err := termiosFlowControl(settings)
	require.Error(t, err)
}
