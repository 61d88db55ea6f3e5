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
	"bytes"
	"encoding/binary"
	"net"

	"github.com/Dcyaprogrammer/CAN201-CW/openflow"

	"github.com/pkg/errors"
)

// Match is an OXM flow match that supports the ingress port and the destination MAC address.
type Match struct {
	inPort *uint32
	dstMAC net.HardwareAddr
}

func NewMatch() openflow.Match {
	return new(Match)
}

func (r *Match) SetInPort(port uint32) {
	r.inPort = &port
}

func (r *Match) InPort() (wildcard bool, port uint32) {
	if r.inPort == nil {
		return true, 0
	}

	return false, *r.inPort
}

func (r *Match) SetDstMAC(mac net.HardwareAddr) error {
	if len(mac) != 6 {
		return openflow.ErrInvalidMACAddress
	}
	r.dstMAC = make(net.HardwareAddr, 6)
	copy(r.dstMAC, mac)

	return nil
}

func (r *Match) DstMAC() (wildcard bool, mac net.HardwareAddr) {
	if r.dstMAC == nil {
		return true, nil
	}

	return false, r.dstMAC
}

func oxmHeader(field uint8, length uint8) uint32 {
	return uint32(OFPXMC_OPENFLOW_BASIC)<<16 | uint32(field)<<9 | uint32(length)
}

func marshalTLV(field uint8, value []byte) []byte {
	v := make([]byte, 4+len(value))
	binary.BigEndian.PutUint32(v[0:4], oxmHeader(field, uint8(len(value))))
	copy(v[4:], value)

	return v
}

// padLength returns length rounded up to a multiple of 8.
func padLength(length int) int {
	if rem := length % 8; rem > 0 {
		return length + 8 - rem
	}

	return length
}

func (r *Match) MarshalBinary() ([]byte, error) {
	fields := make([]byte, 0)
	if r.inPort != nil {
		v := make([]byte, 4)
		binary.BigEndian.PutUint32(v, *r.inPort)
		fields = append(fields, marshalTLV(OFPXMT_OFB_IN_PORT, v)...)
	}
	if r.dstMAC != nil {
		fields = append(fields, marshalTLV(OFPXMT_OFB_ETH_DST, r.dstMAC)...)
	}

	length := 4 + len(fields)
	v := make([]byte, 4, padLength(length))
	binary.BigEndian.PutUint16(v[0:2], OFPMT_OXM)
	binary.BigEndian.PutUint16(v[2:4], uint16(length))
	v = append(v, fields...)
	// Add padding to align as a multiple of 8
	v = append(v, bytes.Repeat([]byte{0}, padLength(length)-length)...)

	return v, nil
}

// UnmarshalBinary decodes an OXM match. Fields other than IN_PORT and ETH_DST are skipped.
func (r *Match) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return openflow.ErrInvalidPacketLength
	}
	if t := binary.BigEndian.Uint16(data[0:2]); t != OFPMT_OXM {
		return errors.Errorf("unsupported match type: %v", t)
	}
	length := int(binary.BigEndian.Uint16(data[2:4]))
	if length < 4 || len(data) < length {
		return openflow.ErrInvalidPacketLength
	}

	buf := data[4:length]
	for len(buf) >= 4 {
		header := binary.BigEndian.Uint32(buf[0:4])
		class := header >> 16
		field := uint8(header >> 9 & 0x7F)
		hasMask := header>>8&0x1 == 1
		size := int(header & 0xFF)
		if len(buf) < 4+size {
			return openflow.ErrInvalidPacketLength
		}
		value := buf[4 : 4+size]

		if class == OFPXMC_OPENFLOW_BASIC && !hasMask {
			switch {
			case field == OFPXMT_OFB_IN_PORT && size == 4:
				r.SetInPort(binary.BigEndian.Uint32(value))
			case field == OFPXMT_OFB_ETH_DST && size == 6:
				if err := r.SetDstMAC(value); err != nil {
					return err
				}
			}
		}
		buf = buf[4+size:]
	}

	return nil
}

// matchLength returns the padded length of the OXM match at the beginning of data.
func matchLength(data []byte) (int, error) {
	if len(data) < 4 {
		return 0, openflow.ErrInvalidPacketLength
	}

	return padLength(int(binary.BigEndian.Uint16(data[2:4]))), nil
}
