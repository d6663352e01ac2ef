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

package service

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"testing"
	"time"

	"github.com/ZaparooProject/go-cfa63x/pkg/cli"
	"github.com/ZaparooProject/go-cfa63x/pkg/config"
	"github.com/ZaparooProject/go-cfa63x/pkg/lcd"
	"github.com/ZaparooProject/go-cfa63x/pkg/lcd/device"
	"github.com/ZaparooProject/go-cfa63x/pkg/lcd/frame"
	testhelpers "github.com/ZaparooProject/go-cfa63x/pkg/testing/helpers"
	"github.com/ZaparooProject/go-cfa63x/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeScreen struct {
	err   error
	model device.Model
	calls []string
	lines []string
}

func (s *fakeScreen) ClearScreen() error {
	s.calls = append(s.calls, "clear")
	return s.err
}

func (s *fakeScreen) WriteLine(_ int, text string, _ int, _ bool) error {
	s.calls = append(s.calls, "line")
	s.lines = append(s.lines, text)
	return s.err
}

func (s *fakeScreen) GetFirmwareVersion() error {
	s.calls = append(s.calls, "firmware")
	return s.err
}

func (s *fakeScreen) Model() device.Model { return s.model }

type fakeSettings struct {
	saveErr error
	rate    int
	saves   int
}

func (s *fakeSettings) SetBaudRate(rate int) { s.rate = rate }

func (s *fakeSettings) Save() error {
	s.saves++
	return s.saveErr
}

func TestHandler_ConnectedPaintsBanner(t *testing.T) {
	t.Parallel()

	screen := &fakeScreen{model: device.CFA635}
	h := NewHandler(&fakeSettings{}, screen)

	h(lcd.Connected{Port: "/dev/ttyUSB0"})

	assert.Equal(t, []string{"clear", "line", "line", "firmware"}, screen.calls)
	assert.Equal(t, []string{config.AppName, "v" + config.AppVersion}, screen.lines)
}

func TestHandler_BannerErrorsDoNotStop(t *testing.T) {
	t.Parallel()

	screen := &fakeScreen{model: device.CFA635, err: errors.New("argument out of range")}
	h := NewHandler(&fakeSettings{}, screen)

	h(lcd.Connected{Port: "/dev/ttyUSB0"})

	assert.Len(t, screen.calls, 4)
}

func TestHandler_BaudRateChangedPersists(t *testing.T) {
	t.Parallel()

	settings := &fakeSettings{}
	h := NewHandler(settings, &fakeScreen{})

	h(lcd.BaudRateChanged{BaudRate: 19200})
	assert.Equal(t, 19200, settings.rate)
	assert.Equal(t, 1, settings.saves)

	settings.saveErr = errors.New("read-only file system")
	h(lcd.BaudRateChanged{BaudRate: 115200})
	assert.Equal(t, 115200, settings.rate)
	assert.Equal(t, 2, settings.saves)
}

func TestHandler_BaudRateWrittenToConfigFile(t *testing.T) {
	t.Parallel()

	cfg, fs := testhelpers.NewInMemoryConfig(t)
	h := NewHandler(cfg, &fakeScreen{})

	h(lcd.BaudRateChanged{BaudRate: 19200})

	data, err := fs.ReadFile(cfg.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "baud_rate = 19200")

	reloaded := fs.NewConfig(t)
	assert.Equal(t, 19200, reloaded.BaudRate())
}

func TestHandler_BaudRateChangeKeepsFlagsOutOfConfigFile(t *testing.T) {
	t.Parallel()

	cfg, fs := testhelpers.NewInMemoryConfig(t)
	flags := cli.SetupFlags(flag.NewFlagSet("cfa63x", flag.ContinueOnError))
	exit, err := flags.Pre([]string{"-port", "/dev/ttyACM9", "-model", "631", "-debug"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)
	require.NoError(t, flags.Apply(cfg))

	h := NewHandler(cfg, &fakeScreen{})
	h(lcd.BaudRateChanged{BaudRate: 19200})

	data, err := fs.ReadFile(cfg.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "baud_rate = 19200")
	assert.Contains(t, string(data), "debug_logging = false")
	assert.NotContains(t, string(data), "/dev/ttyACM9")
	assert.NotContains(t, string(data), "CFA631")

	reloaded := fs.NewConfig(t)
	assert.Empty(t, reloaded.DisplayPort())
	assert.Equal(t, device.CFA635, reloaded.DisplayModel())
	assert.False(t, reloaded.DebugLogging())
	assert.Equal(t, 19200, reloaded.BaudRate())

	// the running instance still uses the flags
	assert.Equal(t, "/dev/ttyACM9", cfg.DisplayPort())
	assert.Equal(t, device.CFA631, cfg.DisplayModel())
	assert.True(t, cfg.DebugLogging())
}

func TestHandler_OtherNotificationsTouchNothing(t *testing.T) {
	t.Parallel()

	screen := &fakeScreen{model: device.CFA633}
	settings := &fakeSettings{}
	h := NewHandler(settings, screen)

	for _, n := range []lcd.Notification{
		lcd.FirmwareVersion{Version: "CFA635:h1.0,c1.5"},
		lcd.FirmwareVersion{Version: "garbage"},
		lcd.KeyReleased{Key: lcd.KeyEnter},
		lcd.StatusReport{Contrast: 120},
		lcd.StateChanged{From: lcd.StateOpening, To: lcd.StateOpen},
		lcd.RawFrame{Frame: frame.Frame{Command: frame.RespPing}},
		lcd.UserFlashRead{Data: make([]byte, 16)},
	} {
		h(n)
	}

	assert.Empty(t, screen.calls)
	assert.Zero(t, settings.saves)
}

func TestRun_DrivesDisplayUntilCancelled(t *testing.T) {
	t.Parallel()

	cfg, _ := testhelpers.NewInMemoryConfig(t)

	ft := mocks.NewFakeTransport()
	opts := lcd.Options{
		Transport:    ft,
		Port:         "/dev/ttyUSB0",
		Model:        cfg.DisplayModel(),
		IdleInterval: time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, cfg, opts, nil)
	}()

	require.Eventually(t, func() bool {
		return len(ft.Written()) >= 4
	}, 2*time.Second, 5*time.Millisecond)

	written := ft.Written()
	assert.Equal(t, frame.CmdClearScreen, written[0][0])
	assert.Equal(t, frame.CmdSendData, written[1][0])
	assert.Equal(t, frame.CmdSendData, written[2][0])
	assert.Equal(t, frame.CmdGetFirmwareVersion, written[3][0])

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.False(t, ft.IsOpen())
}

func TestRun_InvalidOptions(t *testing.T) {
	t.Parallel()

	cfg, _ := testhelpers.NewInMemoryConfig(t)

	err := Run(context.Background(), cfg, lcd.Options{}, nil)
	require.ErrorIs(t, err, lcd.ErrNoPort)
}
