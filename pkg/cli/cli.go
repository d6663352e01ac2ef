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

package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/go-cfa63x/pkg/config"
	"github.com/ZaparooProject/go-cfa63x/pkg/helpers"
	"github.com/ZaparooProject/go-cfa63x/pkg/lcd"
	"github.com/ZaparooProject/go-cfa63x/pkg/lcd/device"
	"github.com/adrg/xdg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type Flags struct {
	set     *flag.FlagSet
	Config  *string
	Port    *string
	Model   *string
	List    *bool
	Version *bool
	Debug   *bool
}

// SetupFlags defines the CLI flags on fs.
func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		set: fs,
		Config: fs.String(
			"config",
			"",
			"path to config file (overrides "+config.CfgEnv+")",
		),
		Port: fs.String(
			"port",
			"",
			"serial port of the display, e.g. /dev/ttyUSB0 or COM3",
		),
		Model: fs.String(
			"model",
			"",
			"display model: CFA631, CFA633 or CFA635",
		),
		List: fs.Bool(
			"list",
			false,
			"list serial ports and exit",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
		Debug: fs.Bool(
			"debug",
			false,
			"enable debug logging",
		),
	}
}

func (f *Flags) isFlagPassed(name string) bool {
	found := false
	f.set.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// Pre parses args and handles the flags that exit straight away. It
// returns true if the process should exit.
func (f *Flags) Pre(args []string, out io.Writer) (bool, error) {
	if err := f.set.Parse(args); err != nil {
		return true, fmt.Errorf("failed to parse flags: %w", err)
	}

	if *f.Version {
		_, _ = fmt.Fprintf(out, "%s v%s\n", config.AppName, config.AppVersion)
		return true, nil
	}

	if *f.List {
		devices, err := helpers.GetSerialDeviceList()
		if err != nil {
			return true, fmt.Errorf("failed to list serial ports: %w", err)
		}
		if len(devices) == 0 {
			_, _ = fmt.Fprintln(out, "no serial ports found")
		}
		for _, d := range devices {
			if d.IsUSB {
				_, _ = fmt.Fprintf(out, "%s\tusb %s:%s\t%s\n", d.Path, d.VID, d.PID, d.Product)
			} else {
				_, _ = fmt.Fprintln(out, d.Path)
			}
		}
		return true, nil
	}

	return false, nil
}

// Apply sets the flag values as run-only overrides on cfg. They are not
// written back to the config file.
func (f *Flags) Apply(cfg *config.Instance) error {
	var o config.Overrides
	if f.isFlagPassed("port") {
		o.Port = *f.Port
	}
	if f.isFlagPassed("model") {
		m, err := device.ParseModel(*f.Model)
		if err != nil {
			return fmt.Errorf("invalid -model: %w", err)
		}
		o.Model = m
	}
	o.Debug = *f.Debug
	cfg.SetOverrides(o)
	return nil
}

func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, config.AppName)
}

func LogDir() string {
	return filepath.Join(xdg.DataHome, config.AppName, "logs")
}

// Setup initializes logging and the user config, with flag overrides
// applied.
//
//nolint:gocritic // config struct copied for immutability
func Setup(
	f *Flags,
	defaultConfig config.Values,
	writers []io.Writer,
) (*config.Instance, error) {
	if err := helpers.InitLogging(LogDir(), writers); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	if *f.Config != "" {
		if err := os.Setenv(config.CfgEnv, *f.Config); err != nil {
			return nil, fmt.Errorf("failed to set config path: %w", err)
		}
	}

	cfg, err := config.NewConfig(afero.NewOsFs(), ConfigDir(), defaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := f.Apply(cfg); err != nil {
		return nil, err
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Info().Str("config", cfg.Path()).Str("version", config.AppVersion).Msg("config loaded")
	return cfg, nil
}

// DisplayOptions maps the config onto driver options. An empty port is
// resolved to the first serial device found.
func DisplayOptions(cfg *config.Instance, reg prometheus.Registerer) (lcd.Options, error) {
	port := cfg.DisplayPort()
	if port == "" {
		detected, err := helpers.FirstSerialDevice()
		if err != nil {
			return lcd.Options{}, fmt.Errorf("no port configured: %w", err)
		}
		port = detected
	}

	return lcd.Options{
		Port:           port,
		Model:          cfg.DisplayModel(),
		BaudRate:       cfg.BaudRate(),
		LineWidth:      cfg.LineWidth(),
		IdleInterval:   cfg.IdleInterval(),
		SettleInterval: cfg.SettleInterval(),
		RetryDelay:     cfg.RetryDelay(),
		Registerer:     reg,
	}, nil
}
