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
	"math/rand"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMAC(t *testing.T, s string) net.HardwareAddr {
	mac, err := net.ParseMAC(s)
	require.NoError(t, err)
	return mac
}

func TestIdentityTableOverwrite(t *testing.T) {
	table := NewIdentityTable()
	mac := mustMAC(t, "00:00:00:00:00:03")

	_, ok := table.Lookup(mac)
	assert.False(t, ok)

	table.Observe(mac, 1)
	table.Observe(mac, 7)
	port, ok := table.Lookup(mac)
	require.True(t, ok)
	assert.Equal(t, uint32(7), port)
	assert.Equal(t, 1, table.Len())
}

func TestIdentityTableCanonicalKey(t *testing.T) {
	table := NewIdentityTable()
	table.Observe(mustMAC(t, "AA-BB-CC-DD-EE-FF"), 2)

	port, ok := table.Lookup(mustMAC(t, "aa:bb:cc:dd:ee:ff"))
	require.True(t, ok)
	assert.Equal(t, uint32(2), port)
}

// The table always reports the port of the latest observation, whatever the history is.
func TestIdentityTableLatestWins(t *testing.T) {
	macs := []net.HardwareAddr{
		mustMAC(t, "00:00:00:00:00:01"),
		mustMAC(t, "00:00:00:00:00:02"),
		mustMAC(t, "00:00:00:00:00:03"),
		mustMAC(t, "00:00:00:00:00:04"),
	}
	rng := rand.New(rand.NewSource(1))

	for round := 0; round < 100; round++ {
		table := NewIdentityTable()
		expected := make(map[string]uint32)
		for i := 0; i < 50; i++ {
			mac := macs[rng.Intn(len(macs))]
			port := uint32(rng.Intn(8) + 1)
			table.Observe(mac, port)
			expected[mac.String()] = port
		}

		if table.Len() != len(expected) {
			t.Fatalf("unexpected table length: expected=%v, got=%v", len(expected), table.Len())
		}
		for _, mac := range macs {
			want, known := expected[mac.String()]
			got, ok := table.Lookup(mac)
			if ok != known || got != want {
				t.Fatalf("unexpected lookup result: mac=%v, expected=(%v, %v), got=(%v, %v)", mac, want, known, got, ok)
			}
		}
	}
}

func TestIdentityTableSnapshot(t *testing.T) {
	table := NewIdentityTable()
	table.Observe(mustMAC(t, "00:00:00:00:00:02"), 2)
	table.Observe(mustMAC(t, "00:00:00:00:00:01"), 1)

	hosts := table.Snapshot()
	assert.Equal(t, []Host{
		{MAC: "00:00:00:00:00:01", Port: 1},
		{MAC: "00:00:00:00:00:02", Port: 2},
	}, hosts)

	// The snapshot is a copy.
	hosts[0].Port = 9
	port, _ := table.Lookup(mustMAC(t, "00:00:00:00:00:01"))
	assert.Equal(t, uint32(1), port)
}
