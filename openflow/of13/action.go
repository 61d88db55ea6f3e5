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

type Action struct {
	*openflow.BaseAction
}

func NewAction() openflow.Action {
	return &Action{
		openflow.NewBaseAction(),
	}
}

func portNumber(p openflow.OutPort) uint32 {
	switch {
	case p.IsTable():
		return OFPP_TABLE
	case p.IsFlood():
		return OFPP_FLOOD
	case p.IsAll():
		return OFPP_ALL
	case p.IsController():
		return OFPP_CONTROLLER
	case p.IsNone():
		return OFPP_ANY
	default:
		return p.Value()
	}
}

func outPort(num uint32) openflow.OutPort {
	p := openflow.NewOutPort()
	switch num {
	case OFPP_TABLE:
		p.SetTable()
	case OFPP_FLOOD:
		p.SetFlood()
	case OFPP_ALL:
		p.SetAll()
	case OFPP_CONTROLLER:
		p.SetController()
	case OFPP_ANY:
		p.SetNone()
	default:
		p.SetValue(num)
	}

	return p
}

func marshalOutput(p openflow.OutPort) []byte {
	v := make([]byte, 16)
	binary.BigEndian.PutUint16(v[0:2], OFPAT_OUTPUT)
	binary.BigEndian.PutUint16(v[2:4], 16)
	binary.BigEndian.PutUint32(v[4:8], portNumber(p))
	// Send the whole packet if the output is the controller.
	binary.BigEndian.PutUint16(v[8:10], OFPCML_NO_BUFFER)
	// v[10:16] is padding

	return v
}

func (r *Action) MarshalBinary() ([]byte, error) {
	ports := r.OutPort()
	if len(ports) == 0 {
		return nil, openflow.ErrMissingAction
	}

	result := make([]byte, 0, 16*len(ports))
	for _, p := range ports {
		result = append(result, marshalOutput(p)...)
	}

	return result, nil
}

// UnmarshalBinary decodes an action list. Actions other than OUTPUT are skipped.
func (r *Action) UnmarshalBinary(data []byte) error {
	buf := data
	for len(buf) >= 4 {
		t := binary.BigEndian.Uint16(buf[0:2])
		length := int(binary.BigEndian.Uint16(buf[2:4]))
		if length < 4 || len(buf) < length {
			return openflow.ErrInvalidPacketLength
		}

		if t == OFPAT_OUTPUT {
			if length < 8 {
				return openflow.ErrInvalidPacketLength
			}
			r.SetOutPort(outPort(binary.BigEndian.Uint32(buf[4:8])))
		}
		buf = buf[length:]
	}

	return nil
}
