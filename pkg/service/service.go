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

// Package service runs the display daemon: the driver, its notification
// handling and the optional metrics server.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-cfa63x/pkg/api"
	"github.com/ZaparooProject/go-cfa63x/pkg/config"
	"github.com/ZaparooProject/go-cfa63x/pkg/lcd"
	"github.com/ZaparooProject/go-cfa63x/pkg/lcd/device"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Screen is the part of a display the daemon drives on its own.
type Screen interface {
	ClearScreen() error
	WriteLine(line int, text string, x int, padded bool) error
	GetFirmwareVersion() error
	Model() device.Model
}

// Settings is where a negotiated baud rate is persisted.
type Settings interface {
	SetBaudRate(rate int)
	Save() error
}

// NewHandler returns the daemon's notification handler. It paints a
// banner and asks for the firmware version on every connect, and
// persists baud rate changes so the next start opens at the right speed.
func NewHandler(settings Settings, screen Screen) lcd.Handler {
	return func(n lcd.Notification) {
		switch v := n.(type) {
		case lcd.Connected:
			log.Info().Str("port", v.Port).Msg("display connected")
			showBanner(screen)
		case lcd.FirmwareVersion:
			checkFirmware(screen, v.Version)
		case lcd.KeyReleased:
			log.Info().Stringer("key", v.Key).Msg("key released")
		case lcd.StatusReport:
			log.Debug().
				Uint8("fans", uint8(v.Fans)).
				Uint8("keyPresses", v.KeyPresses).
				Uint8("keyReleases", v.KeyReleases).
				Uint8("contrast", v.Contrast).
				Uint8("backlight", v.Backlight).
				Msg("status report")
		case lcd.BaudRateChanged:
			settings.SetBaudRate(v.BaudRate)
			if err := settings.Save(); err != nil {
				log.Error().Err(err).Msg("error saving baud rate")
			}
			log.Info().Int("baudRate", v.BaudRate).Msg("baud rate changed")
		case lcd.StateChanged:
			log.Debug().Stringer("from", v.From).Stringer("to", v.To).Msg("display state changed")
		case lcd.RawFrame:
			log.Trace().Stringer("frame", v.Frame).Msg("frame received")
		default:
			log.Debug().Str("kind", n.Kind()).Msg("unhandled notification")
		}
	}
}

func showBanner(screen Screen) {
	err := errors.Join(
		screen.ClearScreen(),
		screen.WriteLine(0, config.AppName, 0, true),
		screen.WriteLine(1, "v"+config.AppVersion, 0, true),
		screen.GetFirmwareVersion(),
	)
	if err != nil {
		log.Warn().Err(err).Msg("error writing banner")
	}
}

func checkFirmware(screen Screen, version string) {
	model, ok := device.FromFirmware(version)
	switch {
	case !ok:
		log.Warn().Str("version", version).Msg("unrecognized firmware version")
	case model != screen.Model():
		log.Warn().
			Str("configured", string(screen.Model())).
			Str("reported", string(model)).
			Msg("display model does not match config")
	default:
		log.Info().Str("version", version).Msg("firmware version")
	}
}

// Run drives the display until ctx is done. The metrics server is started
// when the config has a listen address.
func Run(
	ctx context.Context,
	cfg *config.Instance,
	opts lcd.Options,
	reg *prometheus.Registry,
) error {
	log.Info().Msgf("version: %s", config.AppVersion)

	if reg != nil {
		opts.Registerer = reg
	}
	disp, err := lcd.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create display: %w", err)
	}
	id := disp.Subscribe(NewHandler(cfg, disp))
	defer disp.Unsubscribe(id)

	g, gctx := errgroup.WithContext(ctx)
	disp.Start(gctx)

	if addr := cfg.MetricsListen(); addr != "" && reg != nil {
		g.Go(func() error {
			return api.Serve(gctx, addr, api.NewRouter(disp, reg))
		})
	}

	g.Go(func() error {
		// the display keeps its startup options; a reload only changes logging
		if err := cfg.Watch(gctx, nil); err != nil {
			log.Warn().Err(err).Msg("config changes will not be picked up")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("stopping display")
		if err := disp.Close(); err != nil {
			return fmt.Errorf("failed to close display: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("service stopped: %w", err)
	}
	return nil
}
