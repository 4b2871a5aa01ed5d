//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

//sys cmGetParent(parent *windows.DEVINST, devInst windows.DEVINST, flags uint32) (ret windows.CONFIGRET) = cfgmgr32.CM_Get_Parent
//sys cmGetDeviceID(devInst windows.DEVINST, buffer *uint16, bufferLen uint32, flags uint32) (ret windows.CONFIGRET) = cfgmgr32.CM_Get_Device_IDW

// maxDeviceIDLen is MAX_DEVICE_ID_LEN from cfgmgr32.h
const maxDeviceIDLen = 200
