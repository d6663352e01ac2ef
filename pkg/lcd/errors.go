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

import "errors"

var (
	// ErrArgumentOutOfRange is returned by commands whose arguments fall
	// outside what the device or the active model accepts. Nothing is
	// written when it is returned.
	ErrArgumentOutOfRange = errors.New("argument out of range")
	// ErrLineTooLong is returned when an encoded text line does not fit the
	// line width.
	ErrLineTooLong = errors.New("line too long")
	// ErrMalformedFrame marks a received frame whose payload does not have
	// the layout its command needs. Such frames are dropped.
	ErrMalformedFrame = errors.New("malformed frame")
	// ErrNoPort is returned by Open when no serial port name is configured.
	ErrNoPort = errors.New("no serial port configured")
	// ErrUnknownModel is returned by Open for a model missing from the
	// device table.
	ErrUnknownModel = errors.New("unknown display model")
)
