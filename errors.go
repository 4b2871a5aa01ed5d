//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package serialport

import (
	"errors"
	"io/fs"
	"os"
)

// PortError is a platform independent error type for serial ports
type PortError struct {
	kind        PortErrorKind
	description string
	causedBy    error
}

// PortErrorKind is a code to easily identify the type of error.
// New kinds may be appended in future versions.
type PortErrorKind int

const (
	// NoDevice the device is not present or has been disconnected
	NoDevice PortErrorKind = iota
	// InvalidInput a configuration value was rejected
	InvalidInput
	// Unknown the platform returned an unexpected status or a state that
	// could not be classified
	Unknown
	// Io an error from the operating system I/O layer, see Unwrap
	Io
)

func newError(kind PortErrorKind, description string) *PortError {
	return &PortError{kind: kind, description: description}
}

func wrapError(kind PortErrorKind, description string, cause error) *PortError {
	return &PortError{kind: kind, description: description, causedBy: cause}
}

// NewError creates a PortError of the given kind.
func NewError(kind PortErrorKind, description string) *PortError {
	return newError(kind, description)
}

// FromIOError wraps an error of the host I/O layer into a PortError of
// kind Io. A PortError is returned unchanged.
func FromIOError(err error) *PortError {
	if err == nil {
		return nil
	}
	var portErr *PortError
	if errors.As(err, &portErr) {
		return portErr
	}
	return &PortError{kind: Io, causedBy: err}
}

// EncodedErrorString returns a string explaining the error kind
func (e PortError) EncodedErrorString() string {
	switch e.kind {
	case NoDevice:
		return "Serial device not found"
	case InvalidInput:
		return "Invalid input"
	case Io:
		return "I/O error"
	default:
		return "Unknown error"
	}
}

// Error returns the complete error code with details on the cause of the error
func (e PortError) Error() string {
	reason := e.EncodedErrorString()
	if e.description != "" {
		reason += ": " + e.description
	}
	if e.causedBy != nil {
		reason += ": " + e.causedBy.Error()
	}
	return reason
}

// Kind returns an identifier for the kind of error occurred
func (e PortError) Kind() PortErrorKind {
	return e.kind
}

// Description returns the human readable detail of the error, if any.
func (e PortError) Description() string {
	return e.description
}

// Unwrap returns the underlying cause
func (e PortError) Unwrap() error {
	return e.causedBy
}

// Is reports NoDevice errors as fs.ErrNotExist and InvalidInput errors as
// fs.ErrInvalid, so callers can test them with errors.Is.
func (e PortError) Is(target error) bool {
	switch target {
	case fs.ErrNotExist:
		return e.kind == NoDevice
	case fs.ErrInvalid:
		return e.kind == InvalidInput
	}
	return false
}

// Timeout reports whether the error is a read or write timeout.
func (e PortError) Timeout() bool {
	return errors.Is(e.causedBy, os.ErrDeadlineExceeded)
}

// hostError is the "other" category of the host I/O error domain
type hostError struct {
	msg    string
	target error
}

func (e *hostError) Error() string { return e.msg }

func (e *hostError) Unwrap() error { return e.target }

// IOError converts the error into the nearest host I/O error: NoDevice
// matches fs.ErrNotExist, InvalidInput matches fs.ErrInvalid, Unknown is a
// plain error and Io returns the wrapped cause. The kind is lost.
func (e *PortError) IOError() error {
	msg := e.description
	if msg == "" {
		msg = e.Error()
	}
	switch e.kind {
	case NoDevice:
		return &hostError{msg: msg, target: fs.ErrNotExist}
	case InvalidInput:
		return &hostError{msg: msg, target: fs.ErrInvalid}
	case Io:
		if e.causedBy != nil {
			return e.causedBy
		}
	}
	return &hostError{msg: msg}
}

var errTimeout = wrapError(Io, "operation timed out", os.ErrDeadlineExceeded)

var errPortClosed = wrapError(Io, "port has been closed", os.ErrClosed)
