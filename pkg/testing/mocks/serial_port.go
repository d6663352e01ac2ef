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
	"errors"
	"time"

	"github.com/ZaparooProject/go-cfa63x/pkg/helpers/syncutil"
	"go.bug.st/serial"
)

// MockSerialPort is an in-memory transport.Port. Bytes queued with Feed are
// handed out by Read; everything written is recorded.
type MockSerialPort struct {
	ReadError   error
	WriteError  error
	CloseError  error
	TimeoutErr  error
	ModeErr     error
	Mode        *serial.Mode
	pending     []byte
	written     [][]byte
	ReadTimeout time.Duration
	InputResets int
	DTR         bool
	RTS         bool
	Closed      bool
	mu          syncutil.Mutex
}

// NewMockSerialPort creates a new mock serial port for testing.
func NewMockSerialPort() *MockSerialPort {
	return &MockSerialPort{}
}

// Feed queues bytes to be returned by subsequent reads.
func (m *MockSerialPort) Feed(p []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, p...)
}

// FailReads makes the next read return err, as an unplugged device does.
func (m *MockSerialPort) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadError = err
}

// Read returns queued bytes, or waits briefly and returns nothing, like a
// port with a short read timeout.
func (m *MockSerialPort) Read(p []byte) (n int, err error) {
	m.mu.Lock()
	if m.Closed {
		m.mu.Unlock()
		return 0, errors.New("port has been closed")
	}
	if m.ReadError != nil {
		readErr := m.ReadError
		m.mu.Unlock()
		return 0, readErr
	}
	if len(m.pending) > 0 {
		n = copy(p, m.pending)
		m.pending = m.pending[n:]
		m.mu.Unlock()
		return n, nil
	}
	m.mu.Unlock()

	time.Sleep(time.Millisecond)
	return 0, nil
}

func (m *MockSerialPort) Write(p []byte) (n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Closed {
		return 0, errors.New("port closed")
	}
	if m.WriteError != nil {
		return 0, m.WriteError
	}
	m.written = append(m.written, append([]byte(nil), p...))
	return len(p), nil
}

// Written returns a copy of every buffer passed to Write.
func (m *MockSerialPort) Written() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.written))
	copy(out, m.written)
	return out
}

func (m *MockSerialPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return m.CloseError
}

func (m *MockSerialPort) SetReadTimeout(t time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadTimeout = t
	return m.TimeoutErr
}

func (m *MockSerialPort) SetMode(mode *serial.Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ModeErr != nil {
		return m.ModeErr
	}
	m.Mode = mode
	return nil
}

func (m *MockSerialPort) ResetInputBuffer() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InputResets++
	m.pending = nil
	return nil
}

func (m *MockSerialPort) SetDTR(dtr bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DTR = dtr
	return nil
}

func (m *MockSerialPort) SetRTS(rts bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RTS = rts
	return nil
}

// IsClosed returns true if the port has been closed.
func (m *MockSerialPort) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Closed
}

// Resets returns how many times the input buffer was reset.
func (m *MockSerialPort) Resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.InputResets
}

// CurrentMode returns the last mode applied with SetMode.
func (m *MockSerialPort) CurrentMode() *serial.Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Mode
}
