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
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/go-cfa63x/pkg/lcd/device"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDir = "/etc/cfa63x"

func writeConfig(t *testing.T, fs afero.Fs, contents string) string {
	t.Helper()
	path := filepath.Join(testDir, CfgFile)
	require.NoError(t, fs.MkdirAll(testDir, 0o750))
	require.NoError(t, afero.WriteFile(fs, path, []byte(contents), 0o600))
	return path
}

func TestNewConfig_WritesDefaults(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg, err := NewConfig(fs, testDir, BaseDefaults)
	require.NoError(t, err)

	path := filepath.Join(testDir, CfgFile)
	assert.Equal(t, path, cfg.Path())

	exists, err := afero.Exists(fs, path)
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "config_schema = 1")
	assert.Regexp(t, `idle_interval = ['"]50ms['"]`, string(data))

	assert.Empty(t, cfg.DisplayPort())
	assert.Equal(t, device.CFA635, cfg.DisplayModel())
	assert.Equal(t, 115200, cfg.BaudRate())
	assert.Equal(t, 20, cfg.LineWidth())
	assert.Equal(t, 50*time.Millisecond, cfg.IdleInterval())
	assert.Equal(t, 10*time.Millisecond, cfg.SettleInterval())
	assert.Equal(t, 3*time.Second, cfg.RetryDelay())
	assert.Empty(t, cfg.MetricsListen())
	assert.False(t, cfg.DebugLogging())
}

func TestNewConfig_FileOverridesDefaults(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeConfig(t, fs, `
config_schema = 1
debug_logging = true

[display]
port = "/dev/ttyACM0"
model = "633"
baud_rate = 19200

[display.timing]
retry_delay = "500ms"

[metrics]
listen = "127.0.0.1:9163"
`)

	cfg, err := NewConfig(fs, testDir, BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", cfg.DisplayPort())
	assert.Equal(t, device.CFA633, cfg.DisplayModel())
	assert.Equal(t, 19200, cfg.BaudRate())
	assert.Equal(t, 500*time.Millisecond, cfg.RetryDelay())
	assert.Equal(t, "127.0.0.1:9163", cfg.MetricsListen())
	assert.True(t, cfg.DebugLogging())

	// not in the file
	assert.Equal(t, 20, cfg.LineWidth())
	assert.Equal(t, 50*time.Millisecond, cfg.IdleInterval())
}

func TestNewConfig_SchemaMismatch(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeConfig(t, fs, "config_schema = 2\n")

	_, err := NewConfig(fs, testDir, BaseDefaults)
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestNewConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		contents string
	}{
		{name: "bad toml", contents: "config_schema = [\n"},
		{name: "bad duration", contents: "config_schema = 1\n[display.timing]\nidle_interval = \"soon\"\n"},
		{name: "zero duration", contents: "config_schema = 1\n[display.timing]\nsettle_interval = \"0s\"\n"},
		{name: "unknown model", contents: "config_schema = 1\n[display]\nmodel = \"CFA999\"\n"},
		{name: "bad baud", contents: "config_schema = 1\n[display]\nbaud_rate = 9600\n"},
		{name: "line width", contents: "config_schema = 1\n[display]\nline_width = 40\n"},
		{name: "metrics address", contents: "config_schema = 1\n[metrics]\nlisten = \"not an address\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			writeConfig(t, fs, tt.contents)

			_, err := NewConfig(fs, testDir, BaseDefaults)
			require.Error(t, err)
		})
	}
}

func TestNewConfig_EnvPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	custom := "/tmp/custom/cfa.toml"
	t.Setenv(CfgEnv, custom)

	cfg, err := NewConfig(fs, testDir, BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, custom, cfg.Path())

	exists, err := afero.Exists(fs, custom)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestInstance_SaveRoundTrip(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg, err := NewConfig(fs, testDir, BaseDefaults)
	require.NoError(t, err)

	cfg.SetDisplayPort("/dev/ttyUSB1")
	cfg.SetDisplayModel(device.CFA631)
	cfg.SetBaudRate(19200)
	require.NoError(t, cfg.Save())

	reloaded, err := NewConfig(fs, testDir, BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", reloaded.DisplayPort())
	assert.Equal(t, device.CFA631, reloaded.DisplayModel())
	assert.Equal(t, 19200, reloaded.BaudRate())
	assert.Equal(t, 3*time.Second, reloaded.RetryDelay())
}

func TestInstance_OverridesNotSaved(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg, err := NewConfig(fs, testDir, BaseDefaults)
	require.NoError(t, err)

	cfg.SetOverrides(Overrides{Port: "/dev/ttyACM9", Model: device.CFA631, Debug: true})
	assert.Equal(t, "/dev/ttyACM9", cfg.DisplayPort())
	assert.Equal(t, device.CFA631, cfg.DisplayModel())
	assert.True(t, cfg.DebugLogging())

	cfg.SetBaudRate(19200)
	require.NoError(t, cfg.Save())

	data, err := afero.ReadFile(fs, cfg.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "baud_rate = 19200")
	assert.Contains(t, string(data), "debug_logging = false")
	assert.Regexp(t, `port = ['"]['"]`, string(data))
	assert.Regexp(t, `model = ['"]CFA635['"]`, string(data))
	assert.NotContains(t, string(data), "ttyACM9")
}

func TestInstance_OverridesSurviveLoad(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeConfig(t, fs, `config_schema = 1
debug_logging = false

[display]
port = "/dev/ttyUSB0"
model = "CFA633"
`)
	cfg, err := NewConfig(fs, testDir, BaseDefaults)
	require.NoError(t, err)
	cfg.SetOverrides(Overrides{Port: "/dev/ttyACM9", Debug: true})

	writeConfig(t, fs, `config_schema = 1
debug_logging = false

[display]
port = "/dev/ttyUSB1"
model = "CFA635"
`)
	require.NoError(t, cfg.Load())

	assert.Equal(t, "/dev/ttyACM9", cfg.DisplayPort())
	assert.Equal(t, device.CFA635, cfg.DisplayModel())
	assert.True(t, cfg.DebugLogging())

	cfg.SetOverrides(Overrides{})
	assert.Equal(t, "/dev/ttyUSB1", cfg.DisplayPort())
	assert.False(t, cfg.DebugLogging())
}

func TestInstance_LoadWithoutPath(t *testing.T) {
	t.Parallel()

	cfg := &Instance{fs: afero.NewMemMapFs()}
	require.Error(t, cfg.Load())
	require.Error(t, cfg.Save())
}

func TestDuration_Text(t *testing.T) {
	t.Parallel()

	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Std())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))

	require.Error(t, d.UnmarshalText([]byte("ninety")))
}
