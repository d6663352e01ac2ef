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
	"bytes"
	"fmt"

	"github.com/ZaparooProject/go-cfa63x/pkg/lcd/frame"
	"github.com/rs/zerolog/log"
)

const (
	statusReportLength = 15
	keyReleaseOffset   = 6
	maxKeyCode         = 12
)

// dispatch raises the notifications for one decoded frame.
func (d *Display) dispatch(f frame.Frame) {
	name := frame.CommandName(f.Command)
	d.metrics.FramesTotal.WithLabelValues(name).Inc()
	d.publish(RawFrame{Frame: f})

	if f.Command == frame.RespSetBaudRate {
		d.applyPendingBaudRate()
		return
	}

	if frame.IsError(f.Command) {
		log.Debug().Str("command", name).Hex("data", f.Data).Msg("device reported command error")
		return
	}

	n, err := Classify(f)
	if err != nil {
		d.metrics.DroppedTotal.WithLabelValues("malformed").Inc()
		log.Debug().Err(err).Stringer("frame", f).Msg("dropping malformed frame")
		return
	}
	if n != nil {
		d.publish(n)
	}
}

// applyPendingBaudRate switches the port to the rate requested by the last
// SetBaudRate, now that the device has acknowledged it.
func (d *Display) applyPendingBaudRate() {
	d.baudMu.Lock()
	pending := d.pendingBaud
	d.pendingBaud = 0
	if pending == 0 {
		d.baudMu.Unlock()
		log.Debug().Msg("baud rate acknowledgment with no change pending")
		return
	}
	if err := d.transport.SetBaudRate(pending); err != nil {
		d.baudMu.Unlock()
		log.Error().Err(err).Int("baud_rate", pending).Msg("failed to switch port baud rate")
		return
	}
	d.baudRate = pending
	d.baudMu.Unlock()

	log.Info().Int("baud_rate", pending).Msg("display baud rate changed")
	d.publish(BaudRateChanged{BaudRate: pending})
}

// Classify maps a decoded frame to its notification. Frames that carry
// nothing of interest, including key presses and unknown key codes, return
// nil and no error. Payloads too short for their command return
// ErrMalformedFrame.
func Classify(f frame.Frame) (Notification, error) {
	switch f.Command {
	case frame.RespFirmwareVersion:
		return FirmwareVersion{
			Version: string(bytes.TrimRight(f.Data, "\x00")),
		}, nil
	case frame.RespReadUserFlash:
		return UserFlashRead{Data: bytes.Clone(f.Data)}, nil
	case frame.RespReadMemory:
		if len(f.Data) < 1 {
			return nil, fmt.Errorf("%w: memory read with no address", ErrMalformedFrame)
		}
		return MemoryBlockRead{
			Address: f.Data[0],
			Data:    bytes.Clone(f.Data[1:]),
		}, nil
	case frame.RespReadReportingAndStatus:
		return parseStatusReport(f.Data)
	case frame.KeyActivity:
		return parseKeyActivity(f.Data)
	default:
		return nil, nil
	}
}

func parseStatusReport(data []byte) (Notification, error) {
	if len(data) < statusReportLength {
		return nil, fmt.Errorf("%w: status report is %d bytes, need %d",
			ErrMalformedFrame, len(data), statusReportLength)
	}
	return StatusReport{
		Fans:            Bitmask(data[0]),
		Sensors1To8:     Bitmask(data[1]),
		Sensors9To15:    Bitmask(data[2]),
		Sensors16To23:   Bitmask(data[3]),
		Sensors24To32:   Bitmask(data[4]),
		KeyPresses:      data[5],
		KeyReleases:     data[6],
		ATXPowerSwitch:  Bitmask(data[7]),
		WatchdogCounter: data[8],
		Fan1Glitch:      data[9],
		Fan2Glitch:      data[10],
		Fan3Glitch:      data[11],
		Fan4Glitch:      data[12],
		Contrast:        data[13],
		Backlight:       data[14],
	}, nil
}

// parseKeyActivity reports releases only. Codes 1-6 are presses and 7-12
// the matching releases.
func parseKeyActivity(data []byte) (Notification, error) {
	if len(data) != 1 {
		return nil, fmt.Errorf("%w: key report is %d bytes", ErrMalformedFrame, len(data))
	}
	code := int(data[0])
	if code <= keyReleaseOffset || code > maxKeyCode {
		return nil, nil
	}
	return KeyReleased{Key: Key(code - keyReleaseOffset)}, nil
}
