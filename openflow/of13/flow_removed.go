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
)

type FlowRemoved struct {
	openflow.Message
	cookie      uint64
	priority    uint16
	reason      uint8
	tableID     uint8
	durationSec uint32
	idleTimeout uint16
	hardTimeout uint16
	packetCount uint64
	byteCount   uint64
	match       openflow.Match
}

// NewFlowRemoved builds a switch-side FLOW_REMOVED for a flow that has been idle for idleTimeout seconds.
func NewFlowRemoved(xid uint32, cookie uint64, priority uint16, idleTimeout uint16, match openflow.Match) *FlowRemoved {
	return &FlowRemoved{
		Message:     openflow.NewMessage(openflow.OF13_VERSION, OFPT_FLOW_REMOVED, xid),
		cookie:      cookie,
		priority:    priority,
		reason:      OFPRR_IDLE_TIMEOUT,
		idleTimeout: idleTimeout,
		match:       match,
	}
}

func (r *FlowRemoved) Cookie() uint64 {
	return r.cookie
}

func (r *FlowRemoved) Priority() uint16 {
	return r.priority
}

func (r *FlowRemoved) Reason() uint8 {
	return r.reason
}

func (r *FlowRemoved) TableID() uint8 {
	return r.tableID
}

func (r *FlowRemoved) DurationSec() uint32 {
	return r.durationSec
}

func (r *FlowRemoved) IdleTimeout() uint16 {
	return r.idleTimeout
}

func (r *FlowRemoved) HardTimeout() uint16 {
	return r.hardTimeout
}

func (r *FlowRemoved) PacketCount() uint64 {
	return r.packetCount
}

func (r *FlowRemoved) ByteCount() uint64 {
	return r.byteCount
}

func (r *FlowRemoved) Match() openflow.Match {
	return r.match
}

func (r *FlowRemoved) MarshalBinary() ([]byte, error) {
	if r.match == nil {
		return nil, openflow.ErrMissingMatch
	}

	v := make([]byte, 40)
	binary.BigEndian.PutUint64(v[0:8], r.cookie)
	binary.BigEndian.PutUint16(v[8:10], r.priority)
	v[10] = r.reason
	v[11] = r.tableID
	binary.BigEndian.PutUint32(v[12:16], r.durationSec)
	// v[16:20] is duration_nsec
	binary.BigEndian.PutUint16(v[20:22], r.idleTimeout)
	binary.BigEndian.PutUint16(v[22:24], r.hardTimeout)
	binary.BigEndian.PutUint64(v[24:32], r.packetCount)
	binary.BigEndian.PutUint64(v[32:40], r.byteCount)

	match, err := r.match.MarshalBinary()
	if err != nil {
		return nil, err
	}
	v = append(v, match...)

	r.SetPayload(v)
	return r.Message.MarshalBinary()
}

func (r *FlowRemoved) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := r.Payload()
	if len(payload) < 48 {
		return openflow.ErrInvalidPacketLength
	}
	r.cookie = binary.BigEndian.Uint64(payload[0:8])
	r.priority = binary.BigEndian.Uint16(payload[8:10])
	r.reason = payload[10]
	r.tableID = payload[11]
	r.durationSec = binary.BigEndian.Uint32(payload[12:16])
	r.idleTimeout = binary.BigEndian.Uint16(payload[20:22])
	r.hardTimeout = binary.BigEndian.Uint16(payload[22:24])
	r.packetCount = binary.BigEndian.Uint64(payload[24:32])
	r.byteCount = binary.BigEndian.Uint64(payload[32:40])

	match := NewMatch()
	if err := match.UnmarshalBinary(payload[40:]); err != nil {
		return err
	}
	r.match = match

	return nil
}
