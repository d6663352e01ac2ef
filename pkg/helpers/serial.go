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
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial/enumerator"
)

var ErrNoSerialDevice = errors.New("no serial device found")

// SerialDevice is a serial port that could have a display on it.
type SerialDevice struct {
	Path         string
	VID          string
	PID          string
	Product      string
	SerialNumber string
	IsUSB        bool
}

// PortLister returns the ports known to the OS.
type PortLister func() ([]*enumerator.PortDetails, error)

func candidatePort(goos, name string) bool {
	switch goos {
	case "linux":
		return strings.HasPrefix(name, "/dev/ttyUSB") || strings.HasPrefix(name, "/dev/ttyACM")
	case "darwin":
		return strings.HasPrefix(name, "/dev/tty.usbserial") || strings.HasPrefix(name, "/dev/tty.usbmodem")
	case "windows":
		return strings.HasPrefix(name, "COM")
	default:
		return true
	}
}

// ListSerialDevices filters the ports from list down to the ones a USB or
// native display could be attached to on goos. USB ports come first.
func ListSerialDevices(goos string, list PortLister) ([]SerialDevice, error) {
	ports, err := list()
	if err != nil {
		return nil, fmt.Errorf("failed to get serial ports list: %w", err)
	}

	usb := make([]SerialDevice, 0, len(ports))
	var other []SerialDevice
	for _, p := range ports {
		if p == nil || !candidatePort(goos, p.Name) {
			continue
		}
		dev := SerialDevice{
			Path:         p.Name,
			VID:          strings.ToLower(p.VID),
			PID:          strings.ToLower(p.PID),
			Product:      p.Product,
			SerialNumber: p.SerialNumber,
			IsUSB:        p.IsUSB,
		}
		if dev.IsUSB {
			usb = append(usb, dev)
		} else {
			other = append(other, dev)
		}
	}

	return append(usb, other...), nil
}

func GetSerialDeviceList() ([]SerialDevice, error) {
	return ListSerialDevices(runtime.GOOS, enumerator.GetDetailedPortsList)
}

// FirstSerialDevice returns the path of the first candidate port.
func FirstSerialDevice() (string, error) {
	devices, err := GetSerialDeviceList()
	if err != nil {
		return "", err
	}
	if len(devices) == 0 {
		return "", ErrNoSerialDevice
	}
	log.Debug().
		Str("path", devices[0].Path).
		Str("vid", devices[0].VID).
		Str("pid", devices[0].PID).
		Msg("detected serial device")
	return devices[0].Path, nil
}
