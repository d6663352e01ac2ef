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
	"context"
	"time"

	"github.com/ZaparooProject/go-cfa63x/pkg/lcd/transport"
	"github.com/rs/zerolog/log"
)

// connect opens the transport, retrying every RetryDelay until it succeeds
// or ctx is cancelled. On success it starts the reader (once per Display)
// and raises Connected. It reports whether the port is open.
func (d *Display) connect(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	d.transition(StateOpening)

	for attempt := 1; ; attempt++ {
		baudRate := d.BaudRate()
		err := d.transport.Open(d.opts.Port, baudRate)
		if err == nil {
			if ctx.Err() != nil {
				// Close ran while we were opening
				_ = d.transport.Close()
				return false
			}

			d.transition(StateOpen)
			d.metrics.ConnectsTotal.Inc()
			d.metrics.Connected.Set(1)
			log.Info().
				Str("port", d.opts.Port).
				Int("baud_rate", baudRate).
				Int("attempt", attempt).
				Msg("display connected")

			// publish before the reader exists so handlers never overlap
			d.publish(Connected{Port: d.opts.Port})
			d.startReader(ctx)
			return true
		}

		ev := log.Debug()
		if attempt == 1 {
			ev = log.Warn()
		}
		ev.Err(err).
			Str("port", d.opts.Port).
			Int("attempt", attempt).
			Dur("retry_in", d.opts.RetryDelay).
			Msg("failed to open display port")

		if !d.sleep(ctx, d.opts.RetryDelay) {
			return false
		}
	}
}

// handleFault closes the transport after a read failure and reconnects.
// It blocks until the port is open again or ctx is cancelled, and reports
// whether the reader should carry on.
func (d *Display) handleFault(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	log.Warn().
		Err(err).
		Str("port", d.opts.Port).
		Bool("disconnected", transport.IsDisconnectionError(err)).
		Msg("display connection lost")

	d.metrics.FaultsTotal.Inc()
	d.metrics.Connected.Set(0)
	d.transition(StateFaulted)

	if cerr := d.transport.Close(); cerr != nil {
		log.Debug().Err(cerr).Msg("error closing faulted port")
	}

	return d.connect(ctx)
}

func (d *Display) startReader(ctx context.Context) {
	d.readerOnce.Do(func() {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.readLoop(ctx)
		}()
	})
}

func (d *Display) transition(next ConnectionState) {
	from, ok := d.state.Transition(next)
	if !ok {
		log.Debug().
			Stringer("from", from).
			Stringer("to", next).
			Msg("ignoring invalid state transition")
		return
	}
	log.Debug().Stringer("from", from).Stringer("to", next).Msg("display state changed")
	d.publish(StateChanged{From: from, To: next})
}

// sleep waits for dur on the display's clock and returns false if ctx was
// cancelled first.
func (d *Display) sleep(ctx context.Context, dur time.Duration) bool {
	timer := d.clock.NewTimer(dur)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
