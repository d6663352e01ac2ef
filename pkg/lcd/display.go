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

// Package lcd drives a Crystalfontz CFA631, CFA633 or CFA635 character
// display over its serial packet interface.
//
// A Display keeps the port open on its own: it retries until the device
// appears, reads and dispatches incoming frames on a background goroutine,
// and reopens the port after the device is unplugged or power cycled.
// Commands may be sent from any goroutine at any time; while the port is
// down they are dropped.
package lcd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ZaparooProject/go-cfa63x/pkg/helpers/syncutil"
	"github.com/ZaparooProject/go-cfa63x/pkg/lcd/device"
	"github.com/ZaparooProject/go-cfa63x/pkg/lcd/transport"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBaudRate       = 115200
	DefaultIdleInterval   = 50 * time.Millisecond
	DefaultSettleInterval = 10 * time.Millisecond
	DefaultRetryDelay     = 3 * time.Second
	DefaultLineWidth      = device.Columns
	DefaultModel          = device.CFA635
)

// Options configures a Display. Only Port is required.
type Options struct {
	// Transport defaults to a serial port.
	Transport transport.Transport
	// Clock defaults to the real clock.
	Clock clockwork.Clock
	// Registerer receives the driver's metrics when set.
	Registerer prometheus.Registerer
	Port       string
	Model      device.Model
	BaudRate   int
	// LineWidth is the most encoded bytes WriteLine will send per line.
	LineWidth int
	// IdleInterval is how long the reader waits when nothing was received.
	IdleInterval time.Duration
	// SettleInterval is how long the reader waits after data starts
	// arriving before draining, so a whole burst is read at once.
	SettleInterval time.Duration
	// RetryDelay is the fixed wait between failed open attempts.
	RetryDelay time.Duration
}

func (o *Options) setDefaults() {
	if o.Transport == nil {
		o.Transport = transport.NewSerialTransport()
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.BaudRate <= 0 {
		o.BaudRate = DefaultBaudRate
	}
	if o.LineWidth <= 0 {
		o.LineWidth = DefaultLineWidth
	}
	if o.IdleInterval <= 0 {
		o.IdleInterval = DefaultIdleInterval
	}
	if o.SettleInterval <= 0 {
		o.SettleInterval = DefaultSettleInterval
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
}

// Display is a handle on one connected display.
type Display struct {
	transport   transport.Transport
	clock       clockwork.Clock
	ctx         context.Context
	cancel      context.CancelFunc
	metrics     *Metrics
	state       *StateManager
	subscribers map[int]Handler
	opts        Options
	spec        device.Spec
	wg          sync.WaitGroup
	nextSubID   int
	pendingBaud int
	baudRate    int
	readerOnce  sync.Once
	closeOnce   sync.Once
	closed      bool
	subMu       syncutil.RWMutex
	baudMu      syncutil.Mutex // protects baudRate and pendingBaud
	lifeMu      syncutil.Mutex
}

// New builds a Display without connecting it. Subscribe before calling
// Start to see the first Connected notification.
func New(opts Options) (*Display, error) {
	if opts.Port == "" {
		return nil, ErrNoPort
	}
	opts.setDefaults()

	spec, ok := device.Lookup(opts.Model)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, opts.Model)
	}

	return &Display{
		transport:   opts.Transport,
		clock:       opts.Clock,
		metrics:     NewMetrics(opts.Registerer),
		state:       NewStateManager(),
		subscribers: make(map[int]Handler),
		opts:        opts,
		spec:        spec,
		baudRate:    opts.BaudRate,
	}, nil
}

// Start begins connecting in the background and returns immediately.
// Calling it again, or after Close, has no effect.
func (d *Display) Start(ctx context.Context) {
	d.lifeMu.Lock()
	if d.ctx != nil || d.closed {
		d.lifeMu.Unlock()
		return
	}
	d.ctx, d.cancel = context.WithCancel(ctx)
	runCtx := d.ctx
	d.lifeMu.Unlock()

	log.Info().
		Str("port", d.opts.Port).
		Str("model", string(d.opts.Model)).
		Int("baud_rate", d.opts.BaudRate).
		Msg("starting display")

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.connect(runCtx)
	}()
}

// Open is New followed by Start.
func Open(ctx context.Context, opts Options) (*Display, error) {
	d, err := New(opts)
	if err != nil {
		return nil, err
	}
	d.Start(ctx)
	return d, nil
}

// Close stops the reader and any reconnect attempt and closes the port. It
// must not be called from a notification handler.
func (d *Display) Close() error {
	var err error
	d.closeOnce.Do(func() {
		d.lifeMu.Lock()
		cancel := d.cancel
		d.closed = true
		d.lifeMu.Unlock()
		if cancel != nil {
			cancel()
		}

		// closing first unblocks a reader stuck in the transport
		err = d.transport.Close()
		d.wg.Wait()
		if cerr := d.transport.Close(); err == nil {
			err = cerr
		}

		d.metrics.Connected.Set(0)
		if prev := d.state.ForceState(StateClosed); prev != StateClosed {
			d.publish(StateChanged{From: prev, To: StateClosed})
		}
		log.Info().Str("port", d.opts.Port).Msg("display closed")
	})
	if err != nil {
		return fmt.Errorf("failed to close display: %w", err)
	}
	return nil
}

// State returns the current connection state.
func (d *Display) State() ConnectionState {
	return d.state.State()
}

// IsOpen reports whether the port is currently open.
func (d *Display) IsOpen() bool {
	return d.transport.IsOpen()
}

// Port returns the serial port name.
func (d *Display) Port() string {
	return d.opts.Port
}

// Model returns the configured display model.
func (d *Display) Model() device.Model {
	return d.opts.Model
}

// BaudRate returns the active baud rate. It only changes once the device
// acknowledges SetBaudRate.
func (d *Display) BaudRate() int {
	d.baudMu.Lock()
	defer d.baudMu.Unlock()
	return d.baudRate
}

// PendingBaudRate returns the rate requested by SetBaudRate and not yet
// acknowledged, or 0.
func (d *Display) PendingBaudRate() int {
	d.baudMu.Lock()
	defer d.baudMu.Unlock()
	return d.pendingBaud
}

// Metrics returns the driver's collectors.
func (d *Display) Metrics() *Metrics {
	return d.metrics
}
