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

	"github.com/Dcyaprogrammer/CAN201-CW/openflow"
)

type EventKind int

const (
	EventConnected EventKind = iota
	EventFeaturesReady
	EventPacketIn
	EventFlowRemoved
	EventDisconnected
)

func (r EventKind) String() string {
	switch r {
	case EventConnected:
		return "Connected"
	case EventFeaturesReady:
		return "FeaturesReady"
	case EventPacketIn:
		return "PacketIn"
	case EventFlowRemoved:
		return "FlowRemoved"
	case EventDisconnected:
		return "Disconnected"
	default:
		return fmt.Sprintf("EventKind(%d)", int(r))
	}
}

// Event is a message from a switch session. Only the field that matches Kind is set.
type Event struct {
	Kind        EventKind
	Features    openflow.FeaturesReply
	PacketIn    openflow.PacketIn
	FlowRemoved openflow.FlowRemoved
	// Err is the cause of a disconnection. It is nil for an orderly shutdown.
	Err error
}

type State int

const (
	StateConnecting State = iota
	StateFeaturesNegotiated
	StateActive
	StateDisconnected
)

func (r State) String() string {
	switch r {
	case StateConnecting:
		return "CONNECTING"
	case StateFeaturesNegotiated:
		return "FEATURES_NEGOTIATED"
	case StateActive:
		return "ACTIVE"
	case StateDisconnected:
		return "DISCONNECTED"
	default:
		return fmt.Sprintf("State(%d)", int(r))
	}
}
