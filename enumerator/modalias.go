//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

import (
	"strconv"
	"strings"
)

// parseModalias extracts the USB identity from a kernel modalias such as
//
//	usb:v303Ap1001d0101dcEFdsc02dp01ic02isc02ip00in00
//
// where v is the vendor, p the product and in the interface number. It
// never fails on malformed input, it just reports false.
func parseModalias(modalias string) (*UsbPortInfo, bool) {
	start := strings.Index(modalias, "usb:v")
	if start < 0 {
		return nil, false
	}
	tail := modalias[start+5:]
	if len(tail) < 4 {
		return nil, false
	}
	vid, ok := parseHex16(tail[:4])
	if !ok {
		return nil, false
	}
	tail = tail[4:]

	p := strings.IndexByte(tail, 'p')
	if p < 0 || len(tail) < p+5 {
		return nil, false
	}
	pid, ok := parseHex16(tail[p+1 : p+5])
	if !ok {
		return nil, false
	}
	info := &UsbPortInfo{VID: vid, PID: pid}

	tail = tail[p+5:]
	if i := strings.Index(tail, "in"); i >= 0 && len(tail) >= i+4 {
		if n, err := strconv.ParseUint(tail[i+2:i+4], 16, 8); err == nil {
			iface := uint8(n)
			info.Interface = &iface
		}
	}
	return info, true
}

func parseHex16(s string) (uint16, bool) {
	n, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}
