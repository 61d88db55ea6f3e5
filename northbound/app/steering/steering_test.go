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

package steering

import (
	"net"
	"testing"

	"github.com/Dcyaprogrammer/CAN201-CW/network"
	"github.com/Dcyaprogrammer/CAN201-CW/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	serverMAC = net.HardwareAddr{0, 0, 0, 0, 0, 1}
	otherMAC  = net.HardwareAddr{0, 0, 0, 0, 0, 2}
	clientMAC = net.HardwareAddr{0, 0, 0, 0, 0, 3}
)

func newPolicy(t *testing.T) *Policy {
	p, err := New(Config{Client: clientMAC, Server: serverMAC})
	require.NoError(t, err)
	return p
}

func newObservation(src, dst net.HardwareAddr, syn, ack bool) *protocol.Observation {
	return &protocol.Observation{
		InPort:    7,
		SrcMAC:    src,
		DstMAC:    dst,
		EtherType: 0x0800,
		IPv4:      &protocol.IPv4{SrcIP: net.IPv4(10, 0, 0, src[5]), DstIP: net.IPv4(10, 0, 0, dst[5])},
		TCP:       &protocol.TCP{SrcPort: 40000, DstPort: 80, SYN: syn, ACK: ack},
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		config Config
		valid  bool
	}{
		{Config{Client: clientMAC, Server: serverMAC}, true},
		{Config{Client: nil, Server: serverMAC}, false},
		{Config{Client: clientMAC, Server: net.HardwareAddr{1, 2, 3}}, false},
		{Config{Client: clientMAC, Server: clientMAC}, false},
	}

	for i, v := range tests {
		_, err := New(v.config)
		if (err == nil) != v.valid {
			t.Fatalf("unexpected validation result at #%v: expected=%v, got=%v", i, v.valid, err)
		}
	}
}

func TestDecide(t *testing.T) {
	p := newPolicy(t)

	tests := []struct {
		name     string
		table    map[string]uint32
		obs      *protocol.Observation
		ok       bool
		expected network.Decision
	}{
		{
			name:     "client redirected to the server",
			table:    map[string]uint32{serverMAC.String(): 1, otherMAC.String(): 2},
			obs:      newObservation(clientMAC, otherMAC, true, false),
			ok:       true,
			expected: network.Decision{Port: 1, Steered: true, Redirected: true},
		},
		{
			name:     "client directly to the server",
			table:    map[string]uint32{serverMAC.String(): 1},
			obs:      newObservation(clientMAC, serverMAC, true, false),
			ok:       true,
			expected: network.Decision{Port: 1, Steered: true},
		},
		{
			name:     "client redirected even if the destination is unknown",
			table:    map[string]uint32{serverMAC.String(): 1},
			obs:      newObservation(clientMAC, otherMAC, true, false),
			ok:       true,
			expected: network.Decision{Port: 1, Steered: true, Redirected: true},
		},
		{
			name:     "client falls back to learning without the server",
			table:    map[string]uint32{otherMAC.String(): 2},
			obs:      newObservation(clientMAC, otherMAC, true, false),
			ok:       true,
			expected: network.PortDecision(2),
		},
		{
			name:     "client floods without the server and the destination",
			table:    map[string]uint32{},
			obs:      newObservation(clientMAC, otherMAC, true, false),
			ok:       true,
			expected: network.FloodDecision(),
		},
		{
			name:     "other host learned",
			table:    map[string]uint32{serverMAC.String(): 1, clientMAC.String(): 3},
			obs:      newObservation(otherMAC, clientMAC, true, false),
			ok:       true,
			expected: network.PortDecision(3),
		},
		{
			name:     "other host floods",
			table:    map[string]uint32{serverMAC.String(): 1},
			obs:      newObservation(otherMAC, clientMAC, true, false),
			ok:       true,
			expected: network.FloodDecision(),
		},
		{
			name:  "SYN-ACK is ignored",
			table: map[string]uint32{serverMAC.String(): 1},
			obs:   newObservation(clientMAC, otherMAC, true, true),
			ok:    false,
		},
		{
			name:  "ACK is ignored",
			table: map[string]uint32{serverMAC.String(): 1},
			obs:   newObservation(clientMAC, otherMAC, false, true),
			ok:    false,
		},
		{
			name:  "non-IP frame is ignored",
			table: map[string]uint32{serverMAC.String(): 1},
			obs:   &protocol.Observation{SrcMAC: clientMAC, DstMAC: otherMAC, EtherType: 0x0806},
			ok:    false,
		},
		{
			name:  "LLDP is ignored",
			table: map[string]uint32{serverMAC.String(): 1},
			obs:   &protocol.Observation{SrcMAC: clientMAC, DstMAC: otherMAC, EtherType: protocol.EtherTypeLLDP},
			ok:    false,
		},
		{
			name:  "non-TCP IPv4 is ignored",
			table: map[string]uint32{serverMAC.String(): 1},
			obs: &protocol.Observation{
				SrcMAC:    clientMAC,
				DstMAC:    otherMAC,
				EtherType: 0x0800,
				IPv4:      &protocol.IPv4{SrcIP: net.IPv4(10, 0, 0, 3), DstIP: net.IPv4(10, 0, 0, 2)},
			},
			ok: false,
		},
	}

	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			table := network.NewIdentityTable()
			for mac, port := range v.table {
				addr, err := net.ParseMAC(mac)
				require.NoError(t, err)
				table.Observe(addr, port)
			}

			d, ok := p.Decide(v.obs, table)
			require.Equal(t, v.ok, ok)
			if ok {
				assert.Equal(t, v.expected, d)
			}
		})
	}
}
