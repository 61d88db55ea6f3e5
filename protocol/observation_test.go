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

package protocol

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	client, _ = net.ParseMAC("00:00:00:00:00:03")
	server, _ = net.ParseMAC("00:00:00:00:00:01")
)

func TestDecodeTCP(t *testing.T) {
	src := []struct {
		SYN       bool
		ACK       bool
		Initiator bool
	}{
		{SYN: true, ACK: false, Initiator: true},
		{SYN: true, ACK: true, Initiator: false},
		{SYN: false, ACK: true, Initiator: false},
		{SYN: false, ACK: false, Initiator: false},
	}

	for _, v := range src {
		frame, err := NewTCPFrame(Segment{
			SrcMAC:  client,
			DstMAC:  server,
			SrcIP:   net.IPv4(10, 0, 0, 3),
			DstIP:   net.IPv4(10, 0, 0, 1),
			SrcPort: 40000,
			DstPort: 80,
			SYN:     v.SYN,
			ACK:     v.ACK,
		})
		require.NoError(t, err)

		obs, err := Decode(7, frame)
		require.NoError(t, err)
		assert.Equal(t, uint32(7), obs.InPort)
		assert.Equal(t, client, obs.SrcMAC)
		assert.Equal(t, server, obs.DstMAC)
		assert.Equal(t, uint16(0x0800), obs.EtherType)
		require.NotNil(t, obs.IPv4)
		assert.True(t, obs.IPv4.SrcIP.Equal(net.IPv4(10, 0, 0, 3)))
		assert.True(t, obs.IPv4.DstIP.Equal(net.IPv4(10, 0, 0, 1)))
		require.NotNil(t, obs.TCP)
		assert.Equal(t, uint16(40000), obs.TCP.SrcPort)
		assert.Equal(t, uint16(80), obs.TCP.DstPort)
		if obs.IsConnectionInitiation() != v.Initiator {
			t.Fatalf("unexpected connection initiation: SYN=%v, ACK=%v, expected=%v", v.SYN, v.ACK, v.Initiator)
		}
		assert.False(t, obs.IsLLDP())
	}
}

func TestDecodeNonIP(t *testing.T) {
	frame, err := NewEthernetFrame(client, server, EtherTypeLLDP, make([]byte, 32))
	require.NoError(t, err)

	obs, err := Decode(1, frame)
	require.NoError(t, err)
	assert.True(t, obs.IsLLDP())
	assert.Equal(t, client, obs.SrcMAC)
	assert.Nil(t, obs.IPv4)
	assert.Nil(t, obs.TCP)
	assert.False(t, obs.IsConnectionInitiation())
}

func TestDecodeShortFrame(t *testing.T) {
	if _, err := Decode(1, []byte{0x00, 0x01, 0x02}); err == nil {
		t.Fatal("expected error, but no error returns")
	}
}
