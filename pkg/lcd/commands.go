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
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-cfa63x/pkg/lcd/frame"
	"github.com/ZaparooProject/go-cfa63x/pkg/lcd/transport"
	"github.com/rs/zerolog/log"
)

const (
	userFlashSize     = 16
	customCharCount   = 8
	customCharSize    = 8
	maxLines          = 4
	maxBacklight      = 100
	maxContrast       = 255
	baudCode19200     = 0
	baudCode115200    = 1
	baudRate19200     = 19200
	baudRate115200    = 115200
	maxControllerData = frame.MaxPayload - 1
)

// CursorStyle selects how the cursor is drawn.
type CursorStyle byte

const (
	CursorNone CursorStyle = iota
	CursorBlinkingBlock
	CursorUnderscore
	CursorBlinkingUnderscore
)

// ControllerRegister selects the HD44780 register for
// SendRawControllerCommand.
type ControllerRegister byte

const (
	RegisterControl ControllerRegister = iota
	RegisterData
)

// BaudRateForCode returns the line rate selected by a SetBaudRate code.
func BaudRateForCode(code int) (int, bool) {
	switch code {
	case baudCode19200:
		return baudRate19200, true
	case baudCode115200:
		return baudRate115200, true
	default:
		return 0, false
	}
}

// send encodes and writes one command. Only Ping is written while the port
// is closed. Write failures are logged and counted, never returned; the
// reader notices a dead port on its own.
func (d *Display) send(command byte, payload []byte) error {
	name := frame.CommandName(command)

	packet, err := frame.Encode(command, payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	if command != frame.CmdPing && !d.transport.IsOpen() {
		log.Debug().Str("command", name).Msg("port closed, dropping command")
		return nil
	}

	if err := d.transport.Write(packet); err != nil {
		d.metrics.WriteErrorsTotal.Inc()
		ev := log.Warn()
		if errors.Is(err, transport.ErrNotOpen) {
			ev = log.Debug()
		}
		ev.Err(err).Str("command", name).Msg("failed to write command")
		return nil
	}

	d.metrics.CommandsTotal.WithLabelValues(name).Inc()
	log.Trace().Str("command", name).Hex("packet", packet).Msg("command sent")
	return nil
}

// Ping sends text to be echoed back. It is written even while the port is
// believed closed.
func (d *Display) Ping(text string) error {
	payload := make([]byte, 0, len(text))
	for _, r := range text {
		if r > 0x7F {
			r = '?'
		}
		payload = append(payload, byte(r))
	}
	return d.send(frame.CmdPing, payload)
}

// GetFirmwareVersion asks for the hardware and firmware version; the answer
// arrives as a FirmwareVersion notification.
func (d *Display) GetFirmwareVersion() error {
	return d.send(frame.CmdGetFirmwareVersion, nil)
}

// WriteUserFlash stores 16 bytes in the user flash area.
func (d *Display) WriteUserFlash(data []byte) error {
	if len(data) != userFlashSize {
		return fmt.Errorf("%w: user flash takes %d bytes, got %d",
			ErrArgumentOutOfRange, userFlashSize, len(data))
	}
	return d.send(frame.CmdWriteUserFlash, data)
}

// ReadUserFlash asks for the user flash area; the answer arrives as a
// UserFlashRead notification.
func (d *Display) ReadUserFlash() error {
	return d.send(frame.CmdReadUserFlash, nil)
}

// StoreBootState saves the current screen and settings as the power-on
// state.
func (d *Display) StoreBootState() error {
	return d.send(frame.CmdStoreBootState, nil)
}

func (d *Display) ClearScreen() error {
	return d.send(frame.CmdClearScreen, nil)
}

// SetCustomCharacter defines the 5x8 glyph for character code index (0-7).
// Each of the 8 bytes is one pixel row.
func (d *Display) SetCustomCharacter(index byte, data []byte) error {
	if index >= customCharCount {
		return fmt.Errorf("%w: custom character index %d, must be 0-%d",
			ErrArgumentOutOfRange, index, customCharCount-1)
	}
	if len(data) != customCharSize {
		return fmt.Errorf("%w: custom character takes %d bytes, got %d",
			ErrArgumentOutOfRange, customCharSize, len(data))
	}
	payload := make([]byte, 0, 1+customCharSize)
	payload = append(payload, index)
	payload = append(payload, data...)
	return d.send(frame.CmdSetCustomCharacter, payload)
}

// ReadMemoryBlock asks for 8 bytes of controller memory at address; the
// answer arrives as a MemoryBlockRead notification.
func (d *Display) ReadMemoryBlock(address byte) error {
	return d.send(frame.CmdReadMemory, []byte{address})
}

// SetCursorPosition moves the cursor. Bounds come from the display model.
func (d *Display) SetCursorPosition(column, row int) error {
	if column < 0 || column >= d.spec.Columns {
		return fmt.Errorf("%w: column %d, must be 0-%d",
			ErrArgumentOutOfRange, column, d.spec.Columns-1)
	}
	if row < 0 || row >= d.spec.Rows {
		return fmt.Errorf("%w: row %d, %s has %d rows",
			ErrArgumentOutOfRange, row, d.opts.Model, d.spec.Rows)
	}
	return d.send(frame.CmdSetCursorPosition, []byte{byte(column), byte(row)})
}

func (d *Display) SetCursorStyle(style CursorStyle) error {
	if style > CursorBlinkingUnderscore {
		return fmt.Errorf("%w: cursor style %d", ErrArgumentOutOfRange, style)
	}
	return d.send(frame.CmdSetCursorStyle, []byte{byte(style)})
}

// SetContrast sets the LCD contrast, 0 (light) to 255 (dark).
func (d *Display) SetContrast(contrast int) error {
	if contrast < 0 || contrast > maxContrast {
		return fmt.Errorf("%w: contrast %d, must be 0-%d", ErrArgumentOutOfRange, contrast, maxContrast)
	}
	return d.send(frame.CmdSetContrast, []byte{byte(contrast)})
}

// SetBacklight sets LCD and keypad backlight brightness: 0 is off, 100 is
// full.
func (d *Display) SetBacklight(brightness int) error {
	if brightness < 0 || brightness > maxBacklight {
		return fmt.Errorf("%w: backlight %d, must be 0-%d", ErrArgumentOutOfRange, brightness, maxBacklight)
	}
	return d.send(frame.CmdSetBacklight, []byte{byte(brightness)})
}

// SendRawControllerCommand writes data straight to the LCD controller's
// control or data register.
func (d *Display) SendRawControllerCommand(register ControllerRegister, data []byte) error {
	if register > RegisterData {
		return fmt.Errorf("%w: controller register %d", ErrArgumentOutOfRange, register)
	}
	if len(data) > maxControllerData {
		return fmt.Errorf("%w: %d bytes of controller data", ErrArgumentOutOfRange, len(data))
	}
	payload := make([]byte, 0, 1+len(data))
	payload = append(payload, byte(register))
	payload = append(payload, data...)
	return d.send(frame.CmdSendControllerCommand, payload)
}

// ReadStatus asks for the reporting and status snapshot; the answer
// arrives as a StatusReport notification.
func (d *Display) ReadStatus() error {
	return d.send(frame.CmdReadReportingAndStatus, nil)
}

// WriteLine writes text to line (0-3) starting at column x. See EncodeLine
// for escapes, truncation and padding.
func (d *Display) WriteLine(line int, text string, x int, padded bool) error {
	if line < 0 || line >= maxLines {
		return fmt.Errorf("%w: line %d, must be 0-%d", ErrArgumentOutOfRange, line, maxLines-1)
	}
	if x < 0 || x >= d.spec.Columns {
		return fmt.Errorf("%w: column %d, must be 0-%d", ErrArgumentOutOfRange, x, d.spec.Columns-1)
	}

	encoded, err := EncodeLine(text, d.opts.LineWidth, padded)
	if err != nil {
		return fmt.Errorf("failed to encode line %d: %w", line, err)
	}

	payload := make([]byte, 0, 2+len(encoded))
	payload = append(payload, byte(x), byte(line))
	payload = append(payload, encoded...)
	return d.send(frame.CmdSendData, payload)
}

// SetBaudRate asks the device to change line rate: code 0 is 19200, 1 is
// 115200. The port keeps its current rate until the device acknowledges,
// at which point BaudRateChanged is raised. A second call before the
// acknowledgment replaces the pending rate.
func (d *Display) SetBaudRate(code int) error {
	rate, ok := BaudRateForCode(code)
	if !ok {
		return fmt.Errorf("%w: baud rate code %d, must be %d or %d",
			ErrArgumentOutOfRange, code, baudCode19200, baudCode115200)
	}

	d.baudMu.Lock()
	d.pendingBaud = rate
	d.baudMu.Unlock()

	return d.send(frame.CmdSetBaudRate, []byte{byte(code)})
}
