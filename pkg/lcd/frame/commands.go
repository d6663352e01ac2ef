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

package frame

// Host to device command codes.
const (
	CmdPing                   byte = 0x00
	CmdGetFirmwareVersion     byte = 0x01
	CmdWriteUserFlash         byte = 0x02
	CmdReadUserFlash          byte = 0x03
	CmdStoreBootState         byte = 0x04
	CmdReboot                 byte = 0x05
	CmdClearScreen            byte = 0x06
	CmdSetCustomCharacter     byte = 0x09
	CmdReadMemory             byte = 0x0A
	CmdSetCursorPosition      byte = 0x0B
	CmdSetCursorStyle         byte = 0x0C
	CmdSetContrast            byte = 0x0D
	CmdSetBacklight           byte = 0x0E
	CmdSendControllerCommand  byte = 0x16
	CmdReadReportingAndStatus byte = 0x1E
	CmdSendData               byte = 0x1F
	CmdSetBaudRate            byte = 0x21
)

const (
	responseFlag byte = 0x40
	reportFlag   byte = 0x80
	errorFlag    byte = 0xC0
)

// Device to host codes. A normal response is the command code with bit 6
// set.
const (
	RespPing                   = CmdPing | responseFlag
	RespFirmwareVersion        = CmdGetFirmwareVersion | responseFlag
	RespWriteUserFlash         = CmdWriteUserFlash | responseFlag
	RespReadUserFlash          = CmdReadUserFlash | responseFlag
	RespStoreBootState         = CmdStoreBootState | responseFlag
	RespReboot                 = CmdReboot | responseFlag
	RespClearScreen            = CmdClearScreen | responseFlag
	RespSetCustomCharacter     = CmdSetCustomCharacter | responseFlag
	RespReadMemory             = CmdReadMemory | responseFlag
	RespSetCursorPosition      = CmdSetCursorPosition | responseFlag
	RespSetCursorStyle         = CmdSetCursorStyle | responseFlag
	RespSetContrast            = CmdSetContrast | responseFlag
	RespSetBacklight           = CmdSetBacklight | responseFlag
	RespSendControllerCommand  = CmdSendControllerCommand | responseFlag
	RespReadReportingAndStatus = CmdReadReportingAndStatus | responseFlag
	RespSendData               = CmdSendData | responseFlag
	RespSetBaudRate            = CmdSetBaudRate | responseFlag

	// KeyActivity is the unsolicited key report.
	KeyActivity = reportFlag
)

// IsError reports whether code is an error response (bits 7 and 6 set).
func IsError(code byte) bool {
	return code&errorFlag == errorFlag
}

// CommandName returns a short label for a command or response code, used
// for logging and metric labels.
func CommandName(code byte) string {
	if code == KeyActivity {
		return "key_activity"
	}
	switch code &^ errorFlag {
	case CmdPing:
		return "ping"
	case CmdGetFirmwareVersion:
		return "firmware_version"
	case CmdWriteUserFlash:
		return "write_user_flash"
	case CmdReadUserFlash:
		return "read_user_flash"
	case CmdStoreBootState:
		return "store_boot_state"
	case CmdReboot:
		return "reboot"
	case CmdClearScreen:
		return "clear_screen"
	case CmdSetCustomCharacter:
		return "set_custom_character"
	case CmdReadMemory:
		return "read_memory"
	case CmdSetCursorPosition:
		return "set_cursor_position"
	case CmdSetCursorStyle:
		return "set_cursor_style"
	case CmdSetContrast:
		return "set_contrast"
	case CmdSetBacklight:
		return "set_backlight"
	case CmdSendControllerCommand:
		return "send_controller_command"
	case CmdReadReportingAndStatus:
		return "read_status"
	case CmdSendData:
		return "send_data"
	case CmdSetBaudRate:
		return "set_baud_rate"
	}
	return "unknown"
}
