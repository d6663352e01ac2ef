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

// Package device describes the supported CFA63x display models.
package device

import (
	"fmt"
	"strings"
)

// Model identifies a display model.
type Model string

const (
	CFA631 Model = "CFA631"
	CFA633 Model = "CFA633"
	CFA635 Model = "CFA635"
)

// Columns is the character width shared by every supported model.
const Columns = 20

// Spec is the character geometry of a model.
type Spec struct {
	Rows    int
	Columns int
}

var specs = map[Model]Spec{
	CFA631: {Rows: 2, Columns: Columns},
	CFA633: {Rows: 2, Columns: Columns},
	CFA635: {Rows: 4, Columns: Columns},
}

// Models returns every supported model in a stable order.
func Models() []Model {
	return []Model{CFA631, CFA633, CFA635}
}

// Lookup returns the geometry of m.
func Lookup(m Model) (Spec, bool) {
	s, ok := specs[m]
	return s, ok
}

// ParseModel accepts a model name in any case, with or without the "CFA"
// prefix.
func ParseModel(s string) (Model, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(name, "CFA") {
		name = "CFA" + name
	}
	m := Model(name)
	if _, ok := specs[m]; !ok {
		return "", fmt.Errorf("unknown display model: %q", s)
	}
	return m, nil
}

// FromFirmware extracts the model from a firmware version string as
// returned by the device, e.g. "CFA635:h1.0,c1.5".
func FromFirmware(version string) (Model, bool) {
	head, _, _ := strings.Cut(strings.TrimSpace(version), ":")
	m := Model(strings.ToUpper(head))
	if _, ok := specs[m]; !ok {
		return "", false
	}
	return m, true
}
