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
	"net"
	"sort"
)

// IdentityTable maps a MAC address to the switch port it was most recently seen on.
// It belongs to exactly one session and is not safe for concurrent use.
type IdentityTable struct {
	hosts map[string]uint32
}

type Host struct {
	MAC  string `json:"mac"`
	Port uint32 `json:"port"`
}

func NewIdentityTable() *IdentityTable {
	return &IdentityTable{
		hosts: make(map[string]uint32),
	}
}

// Observe records that mac has been seen on port, overwriting any previous port.
func (r *IdentityTable) Observe(mac net.HardwareAddr, port uint32) {
	r.hosts[mac.String()] = port
}

func (r *IdentityTable) Lookup(mac net.HardwareAddr) (port uint32, ok bool) {
	port, ok = r.hosts[mac.String()]
	return port, ok
}

func (r *IdentityTable) Len() int {
	return len(r.hosts)
}

// Snapshot returns a copy of the table sorted by MAC address.
func (r *IdentityTable) Snapshot() []Host {
	result := make([]Host, 0, len(r.hosts))
	for mac, port := range r.hosts {
		result = append(result, Host{MAC: mac, Port: port})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].MAC < result[j].MAC })

	return result
}
