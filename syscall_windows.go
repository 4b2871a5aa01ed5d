//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package serialport

// Bits of the DCB.Flags bitfield
//
//	fBinary            :1
//	fParity            :1
//	fOutxCtsFlow       :1
//	fOutxDsrFlow       :1
//	fDtrControl        :2
//	fDsrSensitivity    :1
//	fTXContinueOnXoff  :1
//	fOutX              :1
//	fInX               :1
//	fErrorChar         :1
//	fNull              :1
//	fRtsControl        :2
//	fAbortOnError      :1
//	fDummy2            :17
const (
	dcbBinary                uint32 = 0x00000001
	dcbParity                       = 0x00000002
	dcbOutXCTSFlow                  = 0x00000004
	dcbOutXDSRFlow                  = 0x00000008
	dcbDTRControlDisableMask        = ^uint32(0x00000030)
	dcbDTRControlEnable             = 0x00000010
	dcbDTRControlHandshake          = 0x00000020
	dcbDSRSensitivity               = 0x00000040
	dcbTXContinueOnXOFF             = 0x00000080
	dcbOutX                         = 0x00000100
	dcbInX                          = 0x00000200
	dcbErrorChar                    = 0x00000400
	dcbNull                         = 0x00000800
	dcbRTSControlDisableMask        = ^uint32(0x00003000)
	dcbRTSControlEnable             = 0x00001000
	dcbRTSControlHandshake          = 0x00002000
	dcbRTSControlToggle             = 0x00003000
	dcbAbortOnError                 = 0x00004000
)

// GetCommModemStatus bits
const (
	msCTSOn  = 0x0010
	msDSROn  = 0x0020
	msRingOn = 0x0040
	msRLSDOn = 0x0080
)

const maxDWORD = 0xFFFFFFFF
