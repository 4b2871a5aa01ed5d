//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

//go:build netbsd || openbsd

package serialport

import (
	"io/fs"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestIntSpeedBaudrate(t *testing.T) {
	port := &TTYPort{}
	settings := &unix.Termios{}
	for _, speed := range []uint32{9600, 250000, math.MaxInt32} {
		require.True(t, setTermSettingsBaudrate(speed, settings))
		require.Equal(t, int32(speed), settings.Ispeed)
		got, err := port.nativeBaudRate(settings)
		require.NoError(t, err)
		require.Equal(t, speed, got)
	}

	require.False(t, setTermSettingsBaudrate(math.MaxInt32+1, settings))
	require.Equal(t, int32(math.MaxInt32), settings.Ospeed)
	require.ErrorIs(t, port.setSpecialBaudrate(math.MaxInt32+1), fs.ErrInvalid)

	settings.Ospeed = -1
	_, err := port.nativeBaudRate(settings)
	require.Error(t, err)
}
