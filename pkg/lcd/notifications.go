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

package lcd

import (
	"maps"
	"slices"

	"github.com/ZaparooProject/go-cfa63x/pkg/lcd/frame"
	"github.com/rs/zerolog/log"
)

// Notification is one event raised by a Display. The concrete type is one
// of the structs in this file.
type Notification interface {
	// Kind is a short stable label used in logs.
	Kind() string
}

// Connected is raised each time the port is (re)opened.
type Connected struct {
	Port string
}

// FirmwareVersion carries the hardware/firmware string, e.g.
// "CFA635:h1.0,c1.5".
type FirmwareVersion struct {
	Version string
}

// UserFlashRead carries the contents of the 16 byte user flash area.
type UserFlashRead struct {
	Data []byte
}

// MemoryBlockRead carries 8 bytes of controller memory and the address
// they were read from.
type MemoryBlockRead struct {
	Data    []byte
	Address byte
}

// Bitmask is a byte of per-channel flags from the status report.
type Bitmask byte

// Has reports whether bit n (0-7) is set.
func (b Bitmask) Has(n uint) bool {
	return n < 8 && b&(1<<n) != 0
}

// StatusReport is the reporting and status snapshot.
type StatusReport struct {
	Fans            Bitmask
	Sensors1To8     Bitmask
	Sensors9To15    Bitmask
	Sensors16To23   Bitmask
	Sensors24To32   Bitmask
	KeyPresses      byte
	KeyReleases     byte
	ATXPowerSwitch  Bitmask
	WatchdogCounter byte
	Fan1Glitch      byte
	Fan2Glitch      byte
	Fan3Glitch      byte
	Fan4Glitch      byte
	Contrast        byte
	Backlight       byte
}

// Key is a keypad key.
type Key byte

const (
	KeyUp Key = iota + 1
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyExit
)

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyEnter:
		return "enter"
	case KeyExit:
		return "exit"
	default:
		return "unknown"
	}
}

// KeyReleased is raised when a key is let go. Presses are not reported.
type KeyReleased struct {
	Key Key
}

// RawFrame is raised for every decoded frame before any other
// notification for it.
type RawFrame struct {
	Frame frame.Frame
}

// BaudRateChanged is raised after the device acknowledged a baud rate
// change and the port was switched.
type BaudRateChanged struct {
	BaudRate int
}

// StateChanged is raised on every connection state transition.
type StateChanged struct {
	From ConnectionState
	To   ConnectionState
}

func (Connected) Kind() string       { return "connected" }
func (FirmwareVersion) Kind() string { return "firmware_version" }
func (UserFlashRead) Kind() string   { return "user_flash_read" }
func (MemoryBlockRead) Kind() string { return "memory_block_read" }
func (StatusReport) Kind() string    { return "status_report" }
func (KeyReleased) Kind() string     { return "key_released" }
func (RawFrame) Kind() string        { return "raw_frame" }
func (BaudRateChanged) Kind() string { return "baud_rate_changed" }
func (StateChanged) Kind() string    { return "state_changed" }

// Handler receives notifications. Calls never overlap, but they come from
// more than one goroutine: the first connect is reported from the goroutine
// Start launched, frames and reconnects from the reader goroutine, and the
// final StateChanged from the goroutine calling Close. A slow handler
// delays the next frame. It must not call Close.
type Handler func(Notification)

// Subscribe registers h and returns an id for Unsubscribe. Handlers are
// called in registration order.
func (d *Display) Subscribe(h Handler) int {
	d.subMu.Lock()
	defer d.subMu.Unlock()

	id := d.nextSubID
	d.nextSubID++
	d.subscribers[id] = h

	log.Debug().Int("subscriber_id", id).Msg("new subscriber registered")
	return id
}

// Unsubscribe removes a handler. It is safe to call more than once, and
// from inside a handler.
func (d *Display) Unsubscribe(id int) {
	d.subMu.Lock()
	defer d.subMu.Unlock()

	if _, ok := d.subscribers[id]; ok {
		delete(d.subscribers, id)
		log.Debug().Int("subscriber_id", id).Msg("subscriber unsubscribed")
	}
}

func (d *Display) publish(n Notification) {
	d.subMu.RLock()
	ids := slices.Sorted(maps.Keys(d.subscribers))
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, d.subscribers[id])
	}
	d.subMu.RUnlock()

	for _, h := range handlers {
		h(n)
	}
}
