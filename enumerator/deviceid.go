//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

import (
	"regexp"
	"strconv"
	"strings"
)

var deviceIDRegExp = regexp.MustCompile(`(?i)^([[:alnum:]]+)\\VID_([[:xdigit:]]{4})[&+]PID_([[:xdigit:]]{4})(?:&MI_([[:xdigit:]]{2}))?(?:[\\+]([^\\]+))?`)

// parseDeviceID decodes a Windows device instance id such as
//
//	USB\VID_2341&PID_0043\6493234373835191F1F1
//	FTDIBUS\VID_0403+PID_6001+A6004CCFA\0000
//	USB\VID_2341&PID_804E&MI_00\6&279A3900&0&0000
//
// The trailing component is a serial number only when it does not contain
// '&', otherwise it is an instance id generated by the OS.
func parseDeviceID(deviceID string) (*UsbPortInfo, bool) {
	group := deviceIDRegExp.FindStringSubmatch(deviceID)
	if group == nil {
		return nil, false
	}
	vid, _ := parseHex16(group[2])
	pid, _ := parseHex16(group[3])
	info := &UsbPortInfo{VID: vid, PID: pid}
	if group[4] != "" {
		if n, err := strconv.ParseUint(group[4], 16, 8); err == nil {
			iface := uint8(n)
			info.Interface = &iface
		}
	}
	if !strings.Contains(group[5], "&") {
		info.SerialNumber = group[5]
	}
	return info, true
}
