//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsCalloutDevice(t *testing.T) {
	for _, name := range []string{"cuaU0", "cuau1", "cuad0", "cuaU0.1"} {
		require.True(t, isCalloutDevice(name), name)
	}
	for _, name := range []string{"cuaU0.init", "cuau1.lock", "ttyU0", "tty", "cua"} {
		require.False(t, isCalloutDevice(name), name)
	}
}

func TestAvailablePortsFakeDev(t *testing.T) {
	old := devDir
	t.Cleanup(func() { devDir = old })
	devDir = t.TempDir()
	for _, name := range []string{"cuaU0", "cuaU0.init", "cuaU0.lock", "ttyU0", "cuau0"} {
		require.NoError(t, os.WriteFile(filepath.Join(devDir, name), nil, 0o644))
	}

	ports, err := AvailablePorts()
	require.NoError(t, err)
	require.Equal(t, []SerialPortInfo{
		{PortName: filepath.Join(devDir, "cuaU0"), PortType: UnknownPort},
		{PortName: filepath.Join(devDir, "cuau0"), PortType: UnknownPort},
	}, ports)
}
