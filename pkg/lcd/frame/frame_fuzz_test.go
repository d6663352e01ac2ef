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

package frame

import (
	"errors"
	"testing"
)

// FuzzDecode feeds arbitrary serial chunks through the boundary heuristic
// to make sure nothing panics and every outcome is one of the three
// documented results.
func FuzzDecode(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x80})
	f.Add([]byte{0x80, 0x01, 0x07, 0x12, 0x34})
	f.Add([]byte{'?', '?'})
	f.Add([]byte("A\x10CFA633:h1.5,c1.4\x00\x00"))
	f.Add([]byte("A\x10CFA"))
	f.Add([]byte{0x46, 0x00, 0xFF, 0xFF})
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF})

	f.Fuzz(func(t *testing.T, chunk []byte) {
		got, err := Decode(chunk)
		if err != nil {
			if !errors.Is(err, ErrIncomplete) && !errors.Is(err, ErrUnrecognized) {
				t.Fatalf("unexpected error class: %v", err)
			}
			return
		}
		if len(got.Data) != int(got.Length) {
			t.Fatalf("payload length %d does not match length byte %d", len(got.Data), got.Length)
		}
		if got.Command != KeyActivity && got.Command != RespFirmwareVersion {
			t.Fatalf("unexpected command 0x%02X", got.Command)
		}
	})
}
