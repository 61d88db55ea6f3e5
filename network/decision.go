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

package network

import (
	"fmt"
	"net"

	"github.com/Dcyaprogrammer/CAN201-CW/protocol"
)

// Decision is the forwarding result for a flow: either a specific egress port or flood.
type Decision struct {
	Port  uint32
	Flood bool
	// Steered is set when the steering rule chose the port. Redirected additionally means that the
	// rule overrode the frame's destination.
	Steered    bool
	Redirected bool
}

func PortDecision(port uint32) Decision {
	return Decision{Port: port}
}

func FloodDecision() Decision {
	return Decision{Flood: true}
}

func (r Decision) String() string {
	if r.Flood {
		return "FLOOD"
	}
	if r.Redirected {
		return fmt.Sprintf("port %v (redirected)", r.Port)
	}
	if r.Steered {
		return fmt.Sprintf("port %v (direct)", r.Port)
	}

	return fmt.Sprintf("port %v", r.Port)
}

type PortLocator interface {
	Lookup(mac net.HardwareAddr) (port uint32, ok bool)
}

// Policy decides how an observed frame should be forwarded. ok is false if the frame is not subject to any
// forwarding decision.
type Policy interface {
	Decide(obs *protocol.Observation, table PortLocator) (d Decision, ok bool)
}
