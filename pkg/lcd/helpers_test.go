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
	"testing"

	"github.com/ZaparooProject/go-cfa63x/pkg/helpers/syncutil"
	"github.com/ZaparooProject/go-cfa63x/pkg/lcd/device"
	"github.com/ZaparooProject/go-cfa63x/pkg/testing/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testPort = "/dev/ttyUSB0"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// newTestDisplay returns an unstarted display on a fake transport.
func newTestDisplay(t *testing.T, opts Options) (*Display, *mocks.FakeTransport) {
	t.Helper()

	ft := mocks.NewFakeTransport()
	if opts.Port == "" {
		opts.Port = testPort
	}
	opts.Transport = ft
	if opts.Clock == nil {
		opts.Clock = clockwork.NewFakeClock()
	}

	d, err := New(opts)
	require.NoError(t, err)
	return d, ft
}

// newOpenDisplay returns an unstarted display whose transport is open, for
// exercising commands and dispatch without the reader running.
func newOpenDisplay(t *testing.T, model device.Model) (*Display, *mocks.FakeTransport) {
	t.Helper()

	d, ft := newTestDisplay(t, Options{Model: model})
	require.NoError(t, ft.Open(testPort, d.BaudRate()))
	return d, ft
}

type recorder struct {
	got []Notification
	mu  syncutil.Mutex
}

func record(d *Display) *recorder {
	r := &recorder{}
	d.Subscribe(func(n Notification) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.got = append(r.got, n)
	})
	return r
}

func (r *recorder) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.got))
	copy(out, r.got)
	return out
}

func (r *recorder) kind(kind string) []Notification {
	var out []Notification
	for _, n := range r.all() {
		if n.Kind() == kind {
			out = append(out, n)
		}
	}
	return out
}

func (r *recorder) transitions() []StateChanged {
	var out []StateChanged
	for _, n := range r.kind("state_changed") {
		sc, ok := n.(StateChanged)
		if ok {
			out = append(out, sc)
		}
	}
	return out
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}
