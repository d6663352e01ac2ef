// go-cfa63x
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-cfa63x.
//
// go-cfa63x is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-cfa63x is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-cfa63x.  If not, see <http://www.gnu.org/licenses/>.

// Package transport is the byte-stream side of the driver: a small
// open/poll/drain/write contract and its implementation on top of
// go.bug.st/serial.
package transport

import (
	"errors"
	"strings"
)

// ErrNotOpen is returned by operations that need an open port.
var ErrNotOpen = errors.New("transport not open")

// Transport is what the driver needs from a serial connection. Write must
// put all of p on the wire as one operation; the other methods are only
// called from the driver's reader goroutine.
type Transport interface {
	Open(portName string, baudRate int) error
	IsOpen() bool
	// BytesAvailable reports how many received bytes are buffered.
	BytesAvailable() (int, error)
	// ReadAvailable drains and returns everything currently buffered
	// without waiting for more.
	ReadAvailable() ([]byte, error)
	// DiscardInput drops anything buffered on the receive side.
	DiscardInput() error
	Write(p []byte) error
	Close() error
	SetBaudRate(baudRate int) error
}

// IsDisconnectionError reports whether err looks like the device went away
// rather than a configuration or permission problem.
func IsDisconnectionError(err error) bool {
	if err == nil {
		return false
	}

	if code, ok := portErrorCode(err); ok {
		return isDisconnectCode(code)
	}

	// OS level errors that reach us unwrapped
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "device not configured") ||
		strings.Contains(errStr, "input/output error") ||
		strings.Contains(errStr, "no such device") ||
		strings.Contains(errStr, "device not found") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "port has been closed")
}
