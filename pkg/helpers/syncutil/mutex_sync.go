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

//go:build !deadlock

package syncutil

import "sync"

// DeadlockEnabled reports whether lock-order detection is compiled in.
const DeadlockEnabled = false

// Mutex guards the display's lifecycle and baud state and the transport's
// port handle.
//
//nolint:gocritic // embedding is what keeps the zero value usable
type Mutex struct {
	sync.Mutex //nolint:forbidigo // only this package touches sync locks
}

// RWMutex guards the subscriber list and the config values.
//
//nolint:gocritic // embedding is what keeps the zero value usable
type RWMutex struct {
	sync.RWMutex //nolint:forbidigo // only this package touches sync locks
}
