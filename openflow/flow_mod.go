/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package openflow

import (
	"encoding"
)

type FlowModCmd uint8

const (
	FlowAdd FlowModCmd = iota
	FlowModify
	FlowDelete
)

func (r FlowModCmd) String() string {
	switch r {
	case FlowAdd:
		return "ADD"
	case FlowModify:
		return "MODIFY"
	case FlowDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

type FlowModFlag uint16

const (
	// FlowSendRemoved asks the switch to send FLOW_REMOVED when the entry expires.
	FlowSendRemoved FlowModFlag = 1 << iota
	FlowCheckOverlap
)

// NoBuffer means the packet is not buffered on the switch.
const NoBuffer uint32 = 0xFFFFFFFF

type FlowMod interface {
	Header
	Command() FlowModCmd
	Cookie() uint64
	SetCookie(cookie uint64)
	CookieMask() uint64
	SetCookieMask(mask uint64)
	TableID() uint8
	SetTableID(id uint8)
	IdleTimeout() uint16
	SetIdleTimeout(timeout uint16)
	HardTimeout() uint16
	SetHardTimeout(timeout uint16)
	Priority() uint16
	SetPriority(priority uint16)
	BufferID() uint32
	SetBufferID(id uint32)
	Flags() FlowModFlag
	SetFlags(flags FlowModFlag)
	OutPort() OutPort
	SetOutPort(port OutPort)
	FlowMatch() Match
	SetFlowMatch(match Match)
	FlowInstruction() Instruction
	SetFlowInstruction(inst Instruction)
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}
