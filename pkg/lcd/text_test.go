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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncodeLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		want   []byte
		padded bool
	}{
		{name: "plain", text: "Hello", want: []byte("Hello")},
		{name: "empty", text: "", want: []byte{}},
		{name: "escape", text: `A\065B`, want: []byte{0x41, 0x41, 0x42}},
		{name: "escape zero", text: `\000`, want: []byte{0x00}},
		{name: "escape max", text: `x\255`, want: []byte{'x', 0xFF}},
		{name: "escape too large", text: `\256`, want: []byte(`\256`)},
		{name: "not digits", text: `\abc`, want: []byte(`\abc`)},
		{name: "short tail", text: `ab\12`, want: []byte(`ab\12`)},
		{name: "trailing backslash", text: `ab\`, want: []byte(`ab\`)},
		{name: "signed", text: `\+12`, want: []byte(`\+12`)},
		{name: "double backslash", text: `\\065`, want: []byte{'\\', 'A'}},
		{name: "latin1", text: "café", want: []byte{'c', 'a', 'f', 0xE9}},
		{
			name: "truncated before escapes",
			text: strings.Repeat("a", 18) + `\065`,
			want: []byte(strings.Repeat("a", 18) + `\0`),
		},
		{name: "padded", text: "Hi", padded: true, want: []byte("Hi" + strings.Repeat(" ", 18))},
		{name: "padded escape", text: `\065`, padded: true, want: []byte("A" + strings.Repeat(" ", 19))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := EncodeLine(tt.text, DefaultLineWidth, tt.padded)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeLine_Errors(t *testing.T) {
	t.Parallel()

	_, err := EncodeLine("smile ☺", DefaultLineWidth, false)
	require.ErrorIs(t, err, ErrArgumentOutOfRange)

	_, err = EncodeLine("abcdef", 5, false)
	require.ErrorIs(t, err, ErrLineTooLong)

	got, err := EncodeLine(`ab\065de`, 5, false)
	require.NoError(t, err)
	assert.Equal(t, []byte("abAde"), got)
}

func TestEncodeLine_PlainTextProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		// printable ASCII without the backslash
		text := rapid.StringMatching(`[ -\[\]-~]{0,20}`).Draw(t, "text")
		padded := rapid.Bool().Draw(t, "padded")

		got, err := EncodeLine(text, DefaultLineWidth, padded)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !padded {
			if string(got) != text {
				t.Fatalf("got %q, want %q", got, text)
			}
			return
		}
		if len(got) != DefaultLineWidth {
			t.Fatalf("padded length %d", len(got))
		}
		if string(got[:len(text)]) != text {
			t.Fatalf("padded prefix %q, want %q", got[:len(text)], text)
		}
		if strings.Trim(string(got[len(text):]), " ") != "" {
			t.Fatalf("padding is not spaces: %q", got[len(text):])
		}
	})
}

func TestEncodeLine_NeverExceedsCapacity(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[ -~]{0,40}`).Draw(t, "text")
		capacity := rapid.IntRange(1, 40).Draw(t, "capacity")

		got, err := EncodeLine(text, capacity, rapid.Bool().Draw(t, "padded"))
		if err != nil {
			return
		}
		if len(got) > capacity {
			t.Fatalf("encoded %d bytes into capacity %d", len(got), capacity)
		}
	})
}
