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

// Instruction is an APPLY_ACTIONS instruction.
type Instruction struct {
	action openflow.Action
}

func (r *Instruction) ApplyAction(action openflow.Action) {
	r.action = action
}

func (r *Instruction) Action() openflow.Action {
	return r.action
}

func (r *Instruction) MarshalBinary() ([]byte, error) {
	if r.action == nil {
		return nil, openflow.ErrMissingAction
	}

	action, err := r.action.MarshalBinary()
	if err != nil {
		return nil, err
	}

	v := make([]byte, 8)
	v = append(v, action...)
	binary.BigEndian.PutUint16(v[0:2], OFPIT_APPLY_ACTIONS)
	binary.BigEndian.PutUint16(v[2:4], uint16(len(v)))
	// v[4:8] is padding

	return v, nil
}

func (r *Instruction) UnmarshalBinary(data []byte) error {
	buf := data
	for len(buf) >= 8 {
		t := binary.BigEndian.Uint16(buf[0:2])
		length := int(binary.BigEndian.Uint16(buf[2:4]))
		if length < 8 || len(buf) < length {
			return openflow.ErrInvalidPacketLength
		}

		if t == OFPIT_APPLY_ACTIONS {
			action := NewAction()
			if err := action.UnmarshalBinary(buf[8:length]); err != nil {
				return err
			}
			r.action = action
		}
		buf = buf[length:]
	}

	return nil
}
