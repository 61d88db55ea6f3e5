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

package of13

import (
	"encoding/binary"

	"github.com/Dcyaprogrammer/CAN201-CW/openflow"

	"github.com/pkg/errors"
)

type FlowMod struct {
	openflow.Message
	command     uint8
	cookie      uint64
	cookieMask  uint64
	tableID     uint8
	idleTimeout uint16
	hardTimeout uint16
	priority    uint16
	bufferID    uint32
	flags       openflow.FlowModFlag
	outPort     openflow.OutPort
	match       openflow.Match
	instruction openflow.Instruction
}

func NewFlowMod(xid uint32, cmd uint8) openflow.FlowMod {
	// Default out_port value is OFPP_ANY
	outPort := openflow.NewOutPort()
	outPort.SetNone()

	return &FlowMod{
		Message:  openflow.NewMessage(openflow.OF13_VERSION, OFPT_FLOW_MOD, xid),
		command:  cmd,
		bufferID: OFP_NO_BUFFER,
		outPort:  outPort,
	}
}

func (r *FlowMod) Command() openflow.FlowModCmd {
	switch r.command {
	case OFPFC_MODIFY, OFPFC_MODIFY_STRICT:
		return openflow.FlowModify
	case OFPFC_DELETE, OFPFC_DELETE_STRICT:
		return openflow.FlowDelete
	default:
		return openflow.FlowAdd
	}
}

func (r *FlowMod) Cookie() uint64 {
	return r.cookie
}

func (r *FlowMod) SetCookie(cookie uint64) {
	r.cookie = cookie
}

func (r *FlowMod) CookieMask() uint64 {
	return r.cookieMask
}

func (r *FlowMod) SetCookieMask(mask uint64) {
	r.cookieMask = mask
}

func (r *FlowMod) TableID() uint8 {
	return r.tableID
}

func (r *FlowMod) SetTableID(id uint8) {
	r.tableID = id
}

func (r *FlowMod) IdleTimeout() uint16 {
	return r.idleTimeout
}

func (r *FlowMod) SetIdleTimeout(timeout uint16) {
	r.idleTimeout = timeout
}

func (r *FlowMod) HardTimeout() uint16 {
	return r.hardTimeout
}

func (r *FlowMod) SetHardTimeout(timeout uint16) {
	r.hardTimeout = timeout
}

func (r *FlowMod) Priority() uint16 {
	return r.priority
}

func (r *FlowMod) SetPriority(priority uint16) {
	r.priority = priority
}

func (r *FlowMod) BufferID() uint32 {
	return r.bufferID
}

func (r *FlowMod) SetBufferID(id uint32) {
	r.bufferID = id
}

func (r *FlowMod) Flags() openflow.FlowModFlag {
	return r.flags
}

func (r *FlowMod) SetFlags(flags openflow.FlowModFlag) {
	r.flags = flags
}

func (r *FlowMod) OutPort() openflow.OutPort {
	return r.outPort
}

func (r *FlowMod) SetOutPort(p openflow.OutPort) {
	r.outPort = p
}

func (r *FlowMod) FlowMatch() openflow.Match {
	return r.match
}

func (r *FlowMod) SetFlowMatch(match openflow.Match) {
	if match == nil {
		panic("flow match is nil")
	}
	r.match = match
}

func (r *FlowMod) FlowInstruction() openflow.Instruction {
	return r.instruction
}

func (r *FlowMod) SetFlowInstruction(inst openflow.Instruction) {
	if inst == nil {
		panic("flow instruction is nil")
	}
	r.instruction = inst
}

func marshalFlags(flags openflow.FlowModFlag) uint16 {
	var v uint16
	if flags&openflow.FlowSendRemoved != 0 {
		v |= OFPFF_SEND_FLOW_REM
	}
	if flags&openflow.FlowCheckOverlap != 0 {
		v |= OFPFF_CHECK_OVERLAP
	}

	return v
}

func unmarshalFlags(v uint16) openflow.FlowModFlag {
	var flags openflow.FlowModFlag
	if v&OFPFF_SEND_FLOW_REM != 0 {
		flags |= openflow.FlowSendRemoved
	}
	if v&OFPFF_CHECK_OVERLAP != 0 {
		flags |= openflow.FlowCheckOverlap
	}

	return flags
}

func (r *FlowMod) MarshalBinary() ([]byte, error) {
	if r.match == nil {
		return nil, openflow.ErrMissingMatch
	}

	v := make([]byte, 40)
	binary.BigEndian.PutUint64(v[0:8], r.cookie)
	binary.BigEndian.PutUint64(v[8:16], r.cookieMask)
	v[16] = r.tableID
	v[17] = r.command
	binary.BigEndian.PutUint16(v[18:20], r.idleTimeout)
	binary.BigEndian.PutUint16(v[20:22], r.hardTimeout)
	binary.BigEndian.PutUint16(v[22:24], r.priority)
	binary.BigEndian.PutUint32(v[24:28], r.bufferID)
	binary.BigEndian.PutUint32(v[28:32], portNumber(r.outPort))
	binary.BigEndian.PutUint32(v[32:36], OFPG_ANY)
	binary.BigEndian.PutUint16(v[36:38], marshalFlags(r.flags))
	// v[38:40] is padding

	match, err := r.match.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal the flow match")
	}
	v = append(v, match...)
	if r.instruction != nil {
		inst, err := r.instruction.MarshalBinary()
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal the flow instruction")
		}
		v = append(v, inst...)
	}

	r.SetPayload(v)
	return r.Message.MarshalBinary()
}

func (r *FlowMod) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := r.Payload()
	if len(payload) < 48 {
		return openflow.ErrInvalidPacketLength
	}
	r.cookie = binary.BigEndian.Uint64(payload[0:8])
	r.cookieMask = binary.BigEndian.Uint64(payload[8:16])
	r.tableID = payload[16]
	r.command = payload[17]
	r.idleTimeout = binary.BigEndian.Uint16(payload[18:20])
	r.hardTimeout = binary.BigEndian.Uint16(payload[20:22])
	r.priority = binary.BigEndian.Uint16(payload[22:24])
	r.bufferID = binary.BigEndian.Uint32(payload[24:28])
	r.outPort = outPort(binary.BigEndian.Uint32(payload[28:32]))
	r.flags = unmarshalFlags(binary.BigEndian.Uint16(payload[36:38]))

	match := NewMatch()
	if err := match.UnmarshalBinary(payload[40:]); err != nil {
		return err
	}
	r.match = match

	length, err := matchLength(payload[40:])
	if err != nil {
		return err
	}
	if len(payload) > 40+length {
		inst := new(Instruction)
		if err := inst.UnmarshalBinary(payload[40+length:]); err != nil {
			return err
		}
		r.instruction = inst
	}

	return nil
}
