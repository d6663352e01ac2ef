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

//go:build deadlock

package syncutil

import (
	"bytes"
	"time"

	"github.com/rs/zerolog/log"
	deadlock "github.com/sasha-s/go-deadlock"
)

// DeadlockEnabled reports whether lock-order detection is compiled in.
const DeadlockEnabled = true

// DeadlockTimeout is how long a lock may be waited on before it is
// reported. No lock is held across the reader's idle sleep or the
// reconnect delay, so this only trips on a real stall.
const DeadlockTimeout = 10 * time.Second

// reportWriter buffers one go-deadlock report and logs it as a single
// error event when the detector gives up on the process.
type reportWriter struct {
	buf bytes.Buffer
}

func (w *reportWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *reportWriter) flush() {
	log.Error().Str("report", w.buf.String()).Msg("potential deadlock")
	w.buf.Reset()
}

func init() {
	w := &reportWriter{}
	deadlock.Opts.DeadlockTimeout = DeadlockTimeout
	deadlock.Opts.LogBuf = w
	deadlock.Opts.OnPotentialDeadlock = func() {
		w.flush()
		panic("syncutil: potential deadlock")
	}
}

// Mutex guards the display's lifecycle and baud state and the transport's
// port handle.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex guards the subscriber list and the config values.
type RWMutex struct {
	deadlock.RWMutex
}
