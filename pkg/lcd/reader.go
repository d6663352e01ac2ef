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
	"errors"

	"github.com/ZaparooProject/go-cfa63x/pkg/lcd/frame"
	"github.com/rs/zerolog/log"
)

// readLoop polls the transport for received bytes and dispatches what it
// finds, one frame at a time in arrival order. Read failures reconnect
// inline, so the loop only ends on cancellation or an empty drain.
func (d *Display) readLoop(ctx context.Context) {
	log.Debug().Str("port", d.opts.Port).Msg("display reader started")
	defer log.Debug().Str("port", d.opts.Port).Msg("display reader stopped")

	for d.transport.IsOpen() {
		if ctx.Err() != nil {
			return
		}

		n, err := d.transport.BytesAvailable()
		if err != nil {
			if !d.handleFault(ctx, err) {
				return
			}
			continue
		}

		if n == 0 {
			if !d.sleep(ctx, d.opts.IdleInterval) {
				return
			}
			continue
		}

		// let the rest of the burst arrive
		if !d.sleep(ctx, d.opts.SettleInterval) {
			return
		}

		chunk, err := d.transport.ReadAvailable()
		if err != nil {
			if !d.handleFault(ctx, err) {
				return
			}
			continue
		}

		if len(chunk) == 0 {
			// the reader is not restarted after this
			log.Warn().Str("port", d.opts.Port).Msg("empty read from display, reader exiting")
			return
		}

		d.handleChunk(chunk)
	}
}

// handleChunk decodes one drained burst. A recognised frame flushes
// whatever else is buffered before it is dispatched, so the next read
// starts on a fresh burst.
func (d *Display) handleChunk(chunk []byte) {
	f, err := frame.Decode(chunk)
	if err != nil {
		reason := "unrecognized"
		if errors.Is(err, frame.ErrIncomplete) {
			reason = "incomplete"
		}
		d.metrics.DroppedTotal.WithLabelValues(reason).Inc()
		log.Debug().Err(err).Int("length", len(chunk)).Hex("chunk", chunk).Msg("dropping received data")
		return
	}

	if err := d.transport.DiscardInput(); err != nil {
		log.Debug().Err(err).Msg("failed to discard input")
	}

	d.dispatch(f)
}
