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

// Package frame implements the CFA63x packet format:
//
//	command | length | payload[length] | crc16 (little-endian)
//
// Encoding is byte-exact. Decoding is a boundary-recovery heuristic for
// unsegmented serial reads and only recognises the two packet shapes the
// devices are seen to send unprompted.
package frame

import (
	"errors"
	"fmt"

	"github.com/sigurn/crc16"
)

// MaxPayload is the largest payload a length byte can describe.
const MaxPayload = 255

const (
	// ShapeKey is the leading byte of a key activity packet as seen by a
	// text-mode read. The real command byte (0x80) is outside ASCII.
	ShapeKey byte = 63
	// ShapeBroadcast is the leading byte of the 16 byte broadcast packet
	// (firmware version response).
	ShapeBroadcast byte = 65

	keyShapeLength       = 1
	broadcastShapeLength = 16
	headerLength         = 2
)

var (
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrIncomplete      = errors.New("incomplete frame")
	ErrUnrecognized    = errors.New("unrecognized frame")
)

var crcTable = crc16.MakeTable(crc16.CRC16_X_25)

// Frame is one protocol message.
type Frame struct {
	Data    []byte
	CRC     uint16
	Command byte
	Length  byte
}

func (f Frame) String() string {
	return fmt.Sprintf("frame{cmd=0x%02X len=%d data=% X}", f.Command, f.Length, f.Data)
}

// Checksum returns the CRC-16/X-25 of data, the checksum used by the
// CFA631/633/635 packet interface.
func Checksum(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}

// Encode builds a complete packet for command and payload.
func Encode(command byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrPayloadTooLarge, len(payload), MaxPayload)
	}

	buf := make([]byte, 0, headerLength+len(payload)+2)
	buf = append(buf, command, byte(len(payload)))
	buf = append(buf, payload...)

	crc := Checksum(buf)
	buf = append(buf, byte(crc), byte(crc>>8))
	return buf, nil
}

// leadingByte returns the first byte of chunk the way a text-mode serial
// read reports it: anything outside 7-bit ASCII becomes '?'.
func leadingByte(chunk []byte) byte {
	if chunk[0] > 0x7F {
		return '?'
	}
	return chunk[0]
}

// Decode classifies a chunk that is assumed to start at a packet boundary.
// The checksum is not verified and CRC is left at zero. Bytes after the
// recognised shape are ignored; callers are expected to discard them.
func Decode(chunk []byte) (Frame, error) {
	if len(chunk) == 0 {
		return Frame{}, ErrIncomplete
	}

	switch leadingByte(chunk) {
	case ShapeKey:
		f := Frame{
			Command: KeyActivity,
			Length:  keyShapeLength,
			Data:    make([]byte, keyShapeLength),
		}
		if len(chunk) > headerLength {
			f.Data[0] = chunk[headerLength]
		}
		return f, nil
	case ShapeBroadcast:
		if len(chunk) < headerLength+broadcastShapeLength {
			return Frame{}, fmt.Errorf(
				"%w: broadcast shape needs %d bytes, got %d",
				ErrIncomplete, headerLength+broadcastShapeLength, len(chunk),
			)
		}
		f := Frame{
			Command: RespFirmwareVersion,
			Length:  broadcastShapeLength,
			Data:    make([]byte, broadcastShapeLength),
		}
		copy(f.Data, chunk[headerLength:headerLength+broadcastShapeLength])
		return f, nil
	default:
		return Frame{}, fmt.Errorf("%w: leading byte 0x%02X", ErrUnrecognized, chunk[0])
	}
}
