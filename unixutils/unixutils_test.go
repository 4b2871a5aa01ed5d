//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

//go:build linux || darwin || freebsd || netbsd || openbsd

package unixutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSelectWakesOnPipeWrite(t *testing.T) {
	p, err := NewPipe()
	require.NoError(t, err)
	defer p.Close()

	go func() {
		time.Sleep(10 * time.Millisecond)
		p.Write([]byte{0})
	}()

	res, err := SelectUntil(NewFDSet(p.ReadFD()), nil, nil, time.Now().Add(5*time.Second))
	require.NoError(t, err)
	require.True(t, res.IsReadable(p.ReadFD()))

	buf := make([]byte, 1)
	n, err := p.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestSelectTimeout(t *testing.T) {
	p, err := NewPipe()
	require.NoError(t, err)
	defer p.Close()

	start := time.Now()
	res, err := Select(NewFDSet(p.ReadFD()), nil, nil, 20*time.Millisecond)
	require.NoError(t, err)
	require.False(t, res.IsReadable(p.ReadFD()))
	require.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestSelectWritable(t *testing.T) {
	p, err := NewPipe()
	require.NoError(t, err)
	defer p.Close()

	res, err := Select(nil, NewFDSet(p.WriteFD()), nil, 0)
	require.NoError(t, err)
	require.True(t, res.IsWritable(p.WriteFD()))
}

func TestPipeClosed(t *testing.T) {
	p, err := NewPipe()
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.Equal(t, -1, p.ReadFD())
	require.Equal(t, -1, p.WriteFD())
	_, err = p.Write([]byte{1})
	require.ErrorIs(t, err, ErrPipeClosed)
	require.ErrorIs(t, p.Close(), ErrPipeClosed)
}
