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

type PacketIn struct {
	openflow.Message
	bufferID uint32
	length   uint16
	reason   uint8
	tableID  uint8
	cookie   uint64
	inPort   uint32
	data     []byte
}

// NewPacketIn builds a switch-side PACKET_IN that carries data received on inPort.
func NewPacketIn(xid uint32, bufferID uint32, inPort uint32, data []byte) *PacketIn {
	return &PacketIn{
		Message:  openflow.NewMessage(openflow.OF13_VERSION, OFPT_PACKET_IN, xid),
		bufferID: bufferID,
		length:   uint16(len(data)),
		reason:   OFPR_NO_MATCH,
		inPort:   inPort,
		data:     data,
	}
}

func (r *PacketIn) BufferID() uint32 {
	return r.bufferID
}

func (r *PacketIn) InPort() uint32 {
	return r.inPort
}

func (r *PacketIn) Length() uint16 {
	return r.length
}

func (r *PacketIn) TableID() uint8 {
	return r.tableID
}

func (r *PacketIn) Reason() uint8 {
	return r.reason
}

func (r *PacketIn) Cookie() uint64 {
	return r.cookie
}

func (r *PacketIn) Data() []byte {
	return r.data
}

func (r *PacketIn) MarshalBinary() ([]byte, error) {
	match := NewMatch()
	match.SetInPort(r.inPort)
	m, err := match.MarshalBinary()
	if err != nil {
		return nil, err
	}

	v := make([]byte, 16)
	binary.BigEndian.PutUint32(v[0:4], r.bufferID)
	binary.BigEndian.PutUint16(v[4:6], r.length)
	v[6] = r.reason
	v[7] = r.tableID
	binary.BigEndian.PutUint64(v[8:16], r.cookie)
	v = append(v, m...)
	// 2 bytes padding before the frame
	v = append(v, 0, 0)
	v = append(v, r.data...)

	r.SetPayload(v)
	return r.Message.MarshalBinary()
}

func (r *PacketIn) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := r.Payload()
	if len(payload) < 24 {
		return openflow.ErrInvalidPacketLength
	}
	r.bufferID = binary.BigEndian.Uint32(payload[0:4])
	r.length = binary.BigEndian.Uint16(payload[4:6])
	r.reason = payload[6]
	r.tableID = payload[7]
	r.cookie = binary.BigEndian.Uint64(payload[8:16])

	match := NewMatch()
	if err := match.UnmarshalBinary(payload[16:]); err != nil {
		return err
	}
	wildcard, inPort := match.InPort()
	if wildcard {
		return openflow.ErrInvalidPacketLength
	}
	r.inPort = inPort

	length, err := matchLength(payload[16:])
	if err != nil {
		return err
	}
	offset := 16 + length + 2 // +2 is padding
	if len(payload) > offset {
		r.data = payload[offset:]
	} else {
		r.data = nil
	}

	return nil
}
