//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package serialport

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPortErrorMessage(t *testing.T) {
	err := NewError(InvalidInput, "baud rate 7 not supported")
	require.Equal(t, "Invalid input: baud rate 7 not supported", err.Error())
	require.Equal(t, InvalidInput, err.Kind())
	require.Equal(t, "baud rate 7 not supported", err.Description())

	wrapped := wrapError(NoDevice, "/dev/ttyUSB9", fs.ErrNotExist)
	require.Equal(t, "Serial device not found: /dev/ttyUSB9: file does not exist", wrapped.Error())
	require.Equal(t, "Unknown error", NewError(Unknown, "").Error())
}

func TestPortErrorIs(t *testing.T) {
	require.ErrorIs(t, NewError(NoDevice, "gone"), fs.ErrNotExist)
	require.ErrorIs(t, NewError(InvalidInput, "bad"), fs.ErrInvalid)
	require.NotErrorIs(t, NewError(Unknown, "?"), fs.ErrNotExist)
	require.NotErrorIs(t, NewError(Io, "io"), fs.ErrInvalid)

	require.ErrorIs(t, errTimeout, os.ErrDeadlineExceeded)
	require.True(t, errTimeout.Timeout())
	require.ErrorIs(t, errPortClosed, os.ErrClosed)
	require.False(t, errPortClosed.Timeout())
}

func TestIOErrorConversion(t *testing.T) {
	hostErr := NewError(NoDevice, "unplugged").IOError()
	require.ErrorIs(t, hostErr, fs.ErrNotExist)
	require.Equal(t, "unplugged", hostErr.Error())

	require.ErrorIs(t, NewError(InvalidInput, "bad").IOError(), fs.ErrInvalid)

	other := NewError(Unknown, "weird").IOError()
	require.Equal(t, "weird", other.Error())
	require.Nil(t, errors.Unwrap(other))

	require.Same(t, io.ErrUnexpectedEOF, wrapError(Io, "read", io.ErrUnexpectedEOF).IOError())
}

func TestFromIOError(t *testing.T) {
	require.Nil(t, FromIOError(nil))

	err := FromIOError(io.ErrClosedPipe)
	require.Equal(t, Io, err.Kind())
	require.ErrorIs(t, err, io.ErrClosedPipe)
	require.Equal(t, "I/O error: io: read/write on closed pipe", err.Error())

	orig := NewError(InvalidInput, "x")
	require.Same(t, orig, FromIOError(orig))

	// round trip through the host domain keeps the classification
	back := FromIOError(NewError(NoDevice, "gone").IOError())
	require.ErrorIs(t, back, fs.ErrNotExist)
}
