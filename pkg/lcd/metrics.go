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
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "cfa63x"

// Metrics are the driver's Prometheus collectors.
type Metrics struct {
	FramesTotal      *prometheus.CounterVec // labels: command
	DroppedTotal     *prometheus.CounterVec // labels: reason
	CommandsTotal    *prometheus.CounterVec // labels: command
	WriteErrorsTotal prometheus.Counter
	FaultsTotal      prometheus.Counter
	ConnectsTotal    prometheus.Counter
	Connected        prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "frames_received_total",
			Help:      "Decoded frames by command.",
		}, []string{"command"}),
		DroppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "frames_dropped_total",
			Help:      "Received chunks or frames dropped without a notification.",
		}, []string{"reason"}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "commands_sent_total",
			Help:      "Commands written to the device by command.",
		}, []string{"command"}),
		WriteErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "write_errors_total",
			Help:      "Failed writes to the serial port.",
		}),
		FaultsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "connection_faults_total",
			Help:      "Read failures that caused a reconnect.",
		}),
		ConnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "connects_total",
			Help:      "Successful port opens.",
		}),
		Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "connected",
			Help:      "1 while the serial port is open.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.FramesTotal,
			m.DroppedTotal,
			m.CommandsTotal,
			m.WriteErrorsTotal,
			m.FaultsTotal,
			m.ConnectsTotal,
			m.Connected,
		)
	}
	return m
}
