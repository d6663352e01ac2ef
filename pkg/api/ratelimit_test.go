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

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ZaparooProject/go-cfa63x/pkg/lcd"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestRateLimit_PerClient(t *testing.T) {
	t.Parallel()

	r := NewRouter(stubDisplay{state: lcd.StateOpen}, prometheus.NewRegistry())

	get := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	for range BurstSize {
		assert.Equal(t, http.StatusOK, get("192.0.2.1:5000"))
	}
	assert.Equal(t, http.StatusTooManyRequests, get("192.0.2.1:5001"))
	assert.Equal(t, http.StatusOK, get("192.0.2.2:5000"))
}

func TestIPRateLimiter_DropsIdleEntries(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewIPRateLimiter()
	rl.now = func() time.Time { return now }

	first := rl.GetLimiter("192.0.2.1")
	assert.Same(t, first, rl.GetLimiter("192.0.2.1"))

	now = now.Add(limiterMaxAge + time.Second)
	rl.GetLimiter("192.0.2.2")
	assert.NotContains(t, rl.limiters, "192.0.2.1")
	assert.NotSame(t, first, rl.GetLimiter("192.0.2.1"))
}

func TestRemoteHost(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "192.0.2.1", remoteHost("192.0.2.1:80"))
	assert.Equal(t, "::1", remoteHost("[::1]:80"))
	assert.Equal(t, "pipe", remoteHost("pipe"))
}
