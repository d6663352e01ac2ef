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
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// MaxLineChars is how many characters of a text line are looked at before
// escapes are expanded. Anything after is ignored.
const MaxLineChars = 20

const escapeDigits = 3

// EncodeLine turns text into the bytes WriteLine sends.
//
// A backslash followed by exactly three decimal digits (\000 to \255) is
// replaced by that byte, which is how the controller's reserved character
// codes are reached. Any other backslash is sent as is. The text is cut to
// MaxLineChars characters first; if the result is still longer than
// capacity bytes ErrLineTooLong is returned. With padded the line is
// filled to capacity with spaces.
func EncodeLine(text string, capacity int, padded bool) ([]byte, error) {
	runes := []rune(text)
	if len(runes) > MaxLineChars {
		runes = runes[:MaxLineChars]
	}

	out := make([]byte, 0, max(capacity, len(runes)))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\\' {
			if b, ok := parseEscape(runes[i+1:]); ok {
				out = append(out, b)
				i += escapeDigits
				continue
			}
		}
		b, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			return nil, fmt.Errorf("%w: character %q has no single byte code", ErrArgumentOutOfRange, r)
		}
		out = append(out, b)
	}

	if len(out) > capacity {
		return nil, fmt.Errorf("%w: %d bytes, line holds %d", ErrLineTooLong, len(out), capacity)
	}

	if padded {
		for len(out) < capacity {
			out = append(out, ' ')
		}
	}
	return out, nil
}

func parseEscape(rest []rune) (byte, bool) {
	if len(rest) < escapeDigits {
		return 0, false
	}
	v := 0
	for _, r := range rest[:escapeDigits] {
		if r < '0' || r > '9' {
			return 0, false
		}
		v = v*10 + int(r-'0')
	}
	if v > 0xFF {
		return 0, false
	}
	return byte(v), true
}
