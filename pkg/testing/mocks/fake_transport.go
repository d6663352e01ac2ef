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

package mocks

import (
	"github.com/ZaparooProject/go-cfa63x/pkg/helpers/syncutil"
	"github.com/ZaparooProject/go-cfa63x/pkg/lcd/transport"
)

// FakeTransport is a scripted transport.Transport for driving the reader
// and supervisor through connect, fault and reconnect cycles.
type FakeTransport struct {
	pollErr    error
	readErr    error
	openErrs   []error
	rx         [][]byte
	written    [][]byte
	opens      int
	closes     int
	discards   int
	baudRate   int
	mu         syncutil.Mutex
	open       bool
	emptyDrain bool
}

func NewFakeTransport() *FakeTransport {
	return &FakeTransport{}
}

// FailOpens makes the next len(errs) Open calls fail with errs in order.
func (f *FakeTransport) FailOpens(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openErrs = append(f.openErrs, errs...)
}

// FailPolls makes BytesAvailable fail until the next successful Open.
func (f *FakeTransport) FailPolls(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pollErr = err
}

// FailReads makes ReadAvailable fail until the next successful Open.
func (f *FakeTransport) FailReads(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
}

// SimulateEmptyDrain makes the next poll report data that the following
// drain does not return.
func (f *FakeTransport) SimulateEmptyDrain() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emptyDrain = true
}

// Push queues one burst of received bytes.
func (f *FakeTransport) Push(chunk []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rx = append(f.rx, append([]byte(nil), chunk...))
}

func (f *FakeTransport) Open(_ string, baudRate int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.openErrs) > 0 {
		err := f.openErrs[0]
		f.openErrs = f.openErrs[1:]
		if err != nil {
			return err
		}
	}
	f.opens++
	f.open = true
	f.baudRate = baudRate
	f.pollErr = nil
	f.readErr = nil
	return nil
}

func (f *FakeTransport) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *FakeTransport) BytesAvailable() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return 0, transport.ErrNotOpen
	}
	if f.pollErr != nil {
		return 0, f.pollErr
	}
	if f.emptyDrain {
		return 1, nil
	}
	if len(f.rx) == 0 {
		return 0, nil
	}
	return len(f.rx[0]), nil
}

func (f *FakeTransport) ReadAvailable() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return nil, transport.ErrNotOpen
	}
	if f.readErr != nil {
		return nil, f.readErr
	}
	if f.emptyDrain {
		f.emptyDrain = false
		return nil, nil
	}
	if len(f.rx) == 0 {
		return nil, nil
	}
	chunk := f.rx[0]
	f.rx = f.rx[1:]
	return chunk, nil
}

// DiscardInput drops every queued burst.
func (f *FakeTransport) DiscardInput() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discards++
	f.rx = nil
	return nil
}

func (f *FakeTransport) Write(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return transport.ErrNotOpen
	}
	f.written = append(f.written, append([]byte(nil), p...))
	return nil
}

func (f *FakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.open {
		f.closes++
	}
	f.open = false
	return nil
}

func (f *FakeTransport) SetBaudRate(baudRate int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.baudRate = baudRate
	return nil
}

func (f *FakeTransport) Opens() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

func (f *FakeTransport) Closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

func (f *FakeTransport) Discards() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.discards
}

func (f *FakeTransport) BaudRate() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.baudRate
}

// Written returns a copy of every packet written so far.
func (f *FakeTransport) Written() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.written))
	copy(out, f.written)
	return out
}
