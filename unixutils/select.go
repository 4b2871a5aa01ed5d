//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

//go:build linux || darwin || freebsd || netbsd || openbsd

package unixutils

import (
	"errors"
	"time"

	"github.com/creack/goselect"
	"golang.org/x/sys/unix"
)

// FDSet is a set of file descriptors suitable for a select call
type FDSet struct {
	set goselect.FDSet
	max int
}

// NewFDSet creates a set of file descriptors suitable for a Select call.
func NewFDSet(fds ...int) *FDSet {
	s := &FDSet{max: -1}
	s.Add(fds...)
	return s
}

// Add adds the file descriptors passed as parameter to the FDSet.
func (s *FDSet) Add(fds ...int) {
	for _, fd := range fds {
		s.set.Set(uintptr(fd))
		if fd > s.max {
			s.max = fd
		}
	}
}

// FDResultSets contains the result of a Select operation.
type FDResultSets struct {
	readable  goselect.FDSet
	writeable goselect.FDSet
	errors    goselect.FDSet
}

// IsReadable test if a file descriptor is ready to be read.
func (r *FDResultSets) IsReadable(fd int) bool {
	return r.readable.IsSet(uintptr(fd))
}

// IsWritable test if a file descriptor is ready to be written.
func (r *FDResultSets) IsWritable(fd int) bool {
	return r.writeable.IsSet(uintptr(fd))
}

// IsError test if a file descriptor is in error state.
func (r *FDResultSets) IsError(fd int) bool {
	return r.errors.IsSet(uintptr(fd))
}

// Select performs a select system call,
// file descriptors in the rd set are tested for read-events,
// file descriptors in the wd set are tested for write-events and
// file descriptors in the er set are tested for error-events.
// The function will block until an event happens or the timeout expires.
// A negative timeout blocks forever.
// The function return an FDResultSets that contains all the file descriptor
// that have a pending read/write/error event.
func Select(rd, wr, er *FDSet, timeout time.Duration) (FDResultSets, error) {
	max := -1
	res := FDResultSets{}
	if rd != nil {
		res.readable = rd.set
		max = rd.max
	}
	if wr != nil {
		res.writeable = wr.set
		if wr.max > max {
			max = wr.max
		}
	}
	if er != nil {
		res.errors = er.set
		if er.max > max {
			max = er.max
		}
	}
	err := goselect.Select(max+1, &res.readable, &res.writeable, &res.errors, timeout)
	return res, err
}

// SelectUntil behaves like Select but keeps waiting across EINTR until the
// deadline passes. A zero deadline blocks forever. When the deadline passes
// without events all the result sets are empty and the error is nil.
func SelectUntil(rd, wr, er *FDSet, deadline time.Time) (FDResultSets, error) {
	for {
		timeout := time.Duration(-1)
		if !deadline.IsZero() {
			timeout = time.Until(deadline)
			if timeout < 0 {
				timeout = 0
			}
		}
		res, err := Select(rd, wr, er, timeout)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return res, err
	}
}
