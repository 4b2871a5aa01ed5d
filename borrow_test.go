//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package serialport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// countingPort records the calls that reach it. Methods it does not
// override panic through the nil embedded Port.
type countingPort struct {
	Port
	closes int
	writes int
	dtr    []bool
}

func (p *countingPort) Close() error {
	p.closes++
	return nil
}

func (p *countingPort) Write(b []byte) (int, error) {
	p.writes++
	return len(b), nil
}

func (p *countingPort) SetDTR(dtr bool) error {
	p.dtr = append(p.dtr, dtr)
	return nil
}

func (p *countingPort) Name() string { return "counting" }

func TestBorrowDoesNotClose(t *testing.T) {
	owner := &countingPort{}
	borrowed := Borrow(owner)

	n, err := borrowed.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.NoError(t, borrowed.SetDTR(true))
	require.Equal(t, "counting", borrowed.Name())

	require.NoError(t, borrowed.Close())
	require.NoError(t, borrowed.Close())
	require.Equal(t, 0, owner.closes)
	require.Equal(t, 1, owner.writes)
	require.Equal(t, []bool{true}, owner.dtr)
}
