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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/go-cfa63x/pkg/helpers/syncutil"
	"github.com/ZaparooProject/go-cfa63x/pkg/lcd/device"
	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	SchemaVersion = 1
	CfgEnv        = "CFA63X_CFG"
)

var ErrSchemaMismatch = errors.New("schema version mismatch")

type Values struct {
	Metrics      Metrics `toml:"metrics"`
	Display      Display `toml:"display"`
	ConfigSchema int     `toml:"config_schema"`
	DebugLogging bool    `toml:"debug_logging"`
}

type Display struct {
	// Port is the serial device; empty means the first one found.
	Port      string `toml:"port"`
	Model     string `toml:"model" validate:"required,model"`
	Timing    Timing `toml:"timing"`
	BaudRate  int    `toml:"baud_rate" validate:"oneof=19200 115200"`
	LineWidth int    `toml:"line_width" validate:"min=1,max=20"`
}

type Timing struct {
	IdleInterval   Duration `toml:"idle_interval" validate:"gt=0"`
	SettleInterval Duration `toml:"settle_interval" validate:"gt=0"`
	RetryDelay     Duration `toml:"retry_delay" validate:"gt=0"`
}

type Metrics struct {
	// Listen is the address for the metrics endpoint; empty disables it.
	Listen string `toml:"listen" validate:"omitempty,hostname_port"`
}

// Duration is a time.Duration written as a string ("50ms") in TOML.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Display: Display{
		Model:     string(device.CFA635),
		BaudRate:  115200,
		LineWidth: device.Columns,
		Timing: Timing{
			IdleInterval:   Duration(50 * time.Millisecond),
			SettleInterval: Duration(10 * time.Millisecond),
			RetryDelay:     Duration(3 * time.Second),
		},
	},
}

// Overrides are values set for this run only, e.g. from command line
// flags. They win over the file, survive Load and are never saved.
type Overrides struct {
	Port  string
	Model device.Model
	Debug bool
}

type Instance struct {
	fs        afero.Fs
	validate  *validator.Validate
	cfgPath   string
	overrides Overrides
	vals      Values
	defaults  Values
	mu        syncutil.RWMutex
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("model", validateModel)
	return v
}

func validateModel(fl validator.FieldLevel) bool {
	_, err := device.ParseModel(fl.Field().String())
	return err == nil
}

// NewConfig loads the config file from configDir, or from the path in
// CFA63X_CFG when set. A default file is written if none exists.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(fs afero.Fs, configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		fs:       fs,
		validate: newValidator(),
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	exists, err := afero.Exists(fs, cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if !exists {
		log.Info().Str("path", cfgPath).Msg("saving new default config to disk")

		if err := fs.MkdirAll(filepath.Dir(cfgPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Load(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := afero.ReadFile(c.fs, c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// fields missing from the file keep their defaults
	newVals := c.defaults
	if err := toml.Unmarshal(data, &newVals); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return ErrSchemaMismatch
	}

	if err := c.validate.Struct(&newVals); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(c.fs, c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Path returns the config file location.
func (c *Instance) Path() string {
	return c.cfgPath
}

// SetOverrides replaces the run-only values.
func (c *Instance) SetOverrides(o Overrides) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overrides = o
}

func (c *Instance) DisplayPort() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.overrides.Port != "" {
		return c.overrides.Port
	}
	return c.vals.Display.Port
}

func (c *Instance) SetDisplayPort(port string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Display.Port = port
}

// DisplayModel returns the configured model, falling back to the default
// model if the stored value no longer parses.
func (c *Instance) DisplayModel() device.Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.overrides.Model != "" {
		return c.overrides.Model
	}
	m, err := device.ParseModel(c.vals.Display.Model)
	if err != nil {
		return device.CFA635
	}
	return m
}

func (c *Instance) SetDisplayModel(m device.Model) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Display.Model = string(m)
}

func (c *Instance) BaudRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Display.BaudRate
}

// SetBaudRate stores the rate the display was switched to so the next
// start opens the port at the same rate.
func (c *Instance) SetBaudRate(rate int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Display.BaudRate = rate
}

func (c *Instance) LineWidth() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Display.LineWidth
}

func (c *Instance) IdleInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Display.Timing.IdleInterval.Std()
}

func (c *Instance) SettleInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Display.Timing.SettleInterval.Std()
}

func (c *Instance) RetryDelay() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Display.Timing.RetryDelay.Std()
}

func (c *Instance) MetricsListen() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Metrics.Listen
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging || c.overrides.Debug
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
