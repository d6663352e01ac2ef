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

package helpers

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/go-cfa63x/pkg/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// TestConfigDir is where NewConfig places the config file.
const TestConfigDir = "/etc/cfa63x"

// FSHelper provides utilities for filesystem mocking in tests
type FSHelper struct {
	Fs afero.Fs
}

// NewMemoryFS creates a new in-memory filesystem for testing
func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// CreateConfigFile writes raw TOML to the config path in TestConfigDir.
func (h *FSHelper) CreateConfigFile(contents string) (string, error) {
	path := filepath.Join(TestConfigDir, config.CfgFile)
	if err := h.Fs.MkdirAll(TestConfigDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(h.Fs, path, []byte(contents), 0o600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

// FileExists checks if a file exists in the filesystem
func (h *FSHelper) FileExists(path string) bool {
	exists, err := afero.Exists(h.Fs, path)
	return err == nil && exists
}

// ReadFile reads a file from the filesystem
func (h *FSHelper) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(h.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return data, nil
}

// NewConfig loads a config from TestConfigDir, writing the base defaults
// if no file was created first.
func (h *FSHelper) NewConfig(t *testing.T) *config.Instance {
	t.Helper()
	cfg, err := config.NewConfig(h.Fs, TestConfigDir, config.BaseDefaults)
	require.NoError(t, err)
	return cfg
}

// NewInMemoryConfig is a shortcut for a default config on a fresh
// in-memory filesystem.
func NewInMemoryConfig(t *testing.T) (*config.Instance, *FSHelper) {
	t.Helper()
	h := NewMemoryFS()
	return h.NewConfig(t), h
}
