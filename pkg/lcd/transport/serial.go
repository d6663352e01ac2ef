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

package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/go-cfa63x/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

const (
	// pumpReadTimeout bounds each blocking read so Close never waits long
	// for the pump goroutine.
	pumpReadTimeout = 20 * time.Millisecond
	pumpChunkSize   = 256
	// maxBuffered caps the receive buffer; the oldest bytes are dropped
	// if nobody drains it.
	maxBuffered = 4096
)

// Port is the subset of serial.Port used by SerialTransport.
type Port interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error
	SetReadTimeout(t time.Duration) error
	SetMode(mode *serial.Mode) error
	ResetInputBuffer() error
	SetDTR(dtr bool) error
	SetRTS(rts bool) error
}

// PortFactory opens a serial port. Tests swap it for a mock.
type PortFactory func(path string, mode *serial.Mode) (Port, error)

// DefaultPortFactory opens a real serial port.
func DefaultPortFactory(path string, mode *serial.Mode) (Port, error) {
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	return port, nil
}

func serialMode(baudRate int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// SerialTransport implements Transport on a go.bug.st/serial port. The
// library has no "bytes available" query, so a pump goroutine reads into an
// internal buffer which BytesAvailable and ReadAvailable work against.
type SerialTransport struct {
	port     Port
	factory  PortFactory
	readErr  error
	pumpDone chan struct{}
	path     string
	buf      []byte
	baudRate int
	mu       syncutil.Mutex // protects everything above
	writeMu  syncutil.Mutex
}

func NewSerialTransport() *SerialTransport {
	return NewSerialTransportWithFactory(DefaultPortFactory)
}

func NewSerialTransportWithFactory(factory PortFactory) *SerialTransport {
	return &SerialTransport{factory: factory}
}

func (t *SerialTransport) Open(portName string, baudRate int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port != nil {
		return nil
	}

	port, err := t.factory(portName, serialMode(baudRate))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", portName, err)
	}

	if err := port.SetReadTimeout(pumpReadTimeout); err != nil {
		_ = port.Close()
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	// some USB bridges reject modem control lines; the display does not
	// need them to talk
	if err := port.SetDTR(true); err != nil {
		log.Debug().Err(err).Str("port", portName).Msg("failed to assert DTR")
	}
	if err := port.SetRTS(true); err != nil {
		log.Debug().Err(err).Str("port", portName).Msg("failed to assert RTS")
	}

	t.port = port
	t.path = portName
	t.baudRate = baudRate
	t.buf = nil
	t.readErr = nil
	t.pumpDone = make(chan struct{})

	go t.pump(port, t.pumpDone)

	return nil
}

func (t *SerialTransport) pump(port Port, done chan struct{}) {
	defer close(done)

	chunk := make([]byte, pumpChunkSize)
	for {
		n, err := port.Read(chunk)

		t.mu.Lock()
		if t.port != port {
			t.mu.Unlock()
			return
		}
		if n > 0 {
			t.buf = append(t.buf, chunk[:n]...)
			if len(t.buf) > maxBuffered {
				t.buf = t.buf[len(t.buf)-maxBuffered:]
			}
		}
		if err != nil {
			t.readErr = err
			path := t.path
			t.mu.Unlock()
			log.Debug().Err(err).Str("port", path).Msg("serial read failed")
			return
		}
		t.mu.Unlock()
	}
}

func (t *SerialTransport) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil
}

func (t *SerialTransport) BytesAvailable() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return 0, ErrNotOpen
	}
	if len(t.buf) > 0 {
		return len(t.buf), nil
	}
	if t.readErr != nil {
		return 0, fmt.Errorf("serial read failed: %w", t.readErr)
	}
	return 0, nil
}

func (t *SerialTransport) ReadAvailable() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil, ErrNotOpen
	}
	if len(t.buf) == 0 && t.readErr != nil {
		return nil, fmt.Errorf("serial read failed: %w", t.readErr)
	}

	out := t.buf
	t.buf = nil
	return out, nil
}

func (t *SerialTransport) DiscardInput() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return ErrNotOpen
	}
	t.buf = nil
	if err := t.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("failed to reset input buffer: %w", err)
	}
	return nil
}

func (t *SerialTransport) Write(p []byte) error {
	t.mu.Lock()
	port := t.port
	t.mu.Unlock()

	if port == nil {
		return ErrNotOpen
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	n, err := port.Write(p)
	if err != nil {
		return fmt.Errorf("failed to write to port: %w", err)
	}
	if n != len(p) {
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(p))
	}
	return nil
}

// Close releases the port and waits for the pump goroutine. Closing a
// closed transport is a no-op.
func (t *SerialTransport) Close() error {
	t.mu.Lock()
	port := t.port
	done := t.pumpDone
	t.port = nil
	t.buf = nil
	t.mu.Unlock()

	if port == nil {
		return nil
	}

	err := port.Close()
	<-done
	if err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

// SetBaudRate switches the live port to baudRate. The rate is remembered
// even when the port is closed.
func (t *SerialTransport) SetBaudRate(baudRate int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.baudRate = baudRate
	if t.port == nil {
		return nil
	}
	if err := t.port.SetMode(serialMode(baudRate)); err != nil {
		return fmt.Errorf("failed to set baud rate %d: %w", baudRate, err)
	}
	return nil
}

// BaudRate returns the last rate the port was opened or switched to.
func (t *SerialTransport) BaudRate() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.baudRate
}

func portErrorCode(err error) (serial.PortErrorCode, bool) {
	var portErr serial.PortError
	if errors.As(err, &portErr) {
		return portErr.Code(), true
	}
	var portErrPtr *serial.PortError
	if errors.As(err, &portErrPtr) && portErrPtr != nil {
		return portErrPtr.Code(), true
	}
	return 0, false
}

func isDisconnectCode(code serial.PortErrorCode) bool {
	switch code {
	case serial.PortNotFound, serial.PortClosed, serial.InvalidSerialPort:
		return true
	case serial.PortBusy, serial.PermissionDenied, serial.InvalidSpeed,
		serial.InvalidDataBits, serial.InvalidParity, serial.InvalidStopBits,
		serial.InvalidTimeoutValue, serial.ErrorEnumeratingPorts,
		serial.FunctionNotImplemented:
		return false
	default:
		return false
	}
}
