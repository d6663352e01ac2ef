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

import "sync/atomic"

// ConnectionState is the supervisor's view of the serial link.
type ConnectionState int32

const (
	// StateClosed means no port is open and nothing is trying to open one.
	StateClosed ConnectionState = iota
	// StateOpening means the supervisor is trying to open the port,
	// retrying after each failure.
	StateOpening
	// StateOpen means the port is open and the reader is running.
	StateOpen
	// StateFaulted means a read failed and the port is being closed before
	// the next open attempt.
	StateFaulted
)

func (s ConnectionState) String() string {
	switch s {
	case StateClosed:
		return "Closed"
	case StateOpening:
		return "Opening"
	case StateOpen:
		return "Open"
	case StateFaulted:
		return "Faulted"
	default:
		return "Unknown"
	}
}

// IsValidTransition checks if moving from one state to another is allowed.
func IsValidTransition(from, to ConnectionState) bool {
	switch from {
	case StateClosed:
		return to == StateOpening
	case StateOpening:
		// open succeeded, or the display was closed while retrying
		return to == StateOpen || to == StateClosed
	case StateOpen:
		return to == StateFaulted || to == StateClosed
	case StateFaulted:
		return to == StateOpening || to == StateClosed
	default:
		return false
	}
}

// StateManager holds a ConnectionState that can be read from any goroutine
// and only moves along valid transitions.
type StateManager struct {
	state int32
}

// NewStateManager creates a state manager in StateClosed.
func NewStateManager() *StateManager {
	return &StateManager{state: int32(StateClosed)}
}

// State returns the current connection state.
func (sm *StateManager) State() ConnectionState {
	return ConnectionState(atomic.LoadInt32(&sm.state))
}

// Transition moves to next if that is valid from the current state and
// returns the state it moved from.
func (sm *StateManager) Transition(next ConnectionState) (ConnectionState, bool) {
	for {
		current := ConnectionState(atomic.LoadInt32(&sm.state))
		if !IsValidTransition(current, next) {
			return current, false
		}
		if atomic.CompareAndSwapInt32(&sm.state, int32(current), int32(next)) {
			return current, true
		}
	}
}

// ForceState sets the state without validation and returns the previous
// one. Only shutdown uses it.
func (sm *StateManager) ForceState(next ConnectionState) ConnectionState {
	return ConnectionState(atomic.SwapInt32(&sm.state, int32(next)))
}
