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

// Package steering implements the forwarding policy that steers the connections of a client to the primary
// server, on top of the learning switch behaviour.
package steering

import (
	"bytes"
	"net"

	"github.com/Dcyaprogrammer/CAN201-CW/network"
	"github.com/Dcyaprogrammer/CAN201-CW/protocol"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("steering")
)

type Config struct {
	Client net.HardwareAddr
	Server net.HardwareAddr
}

func (r Config) validate() error {
	if len(r.Client) != 6 {
		return errors.New("invalid client MAC address")
	}
	if len(r.Server) != 6 {
		return errors.New("invalid server MAC address")
	}
	if bytes.Equal(r.Client, r.Server) {
		return errors.New("client and server MAC addresses should be different")
	}

	return nil
}

type Policy struct {
	client net.HardwareAddr
	server net.HardwareAddr
}

func New(c Config) (*Policy, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	return &Policy{
		client: c.Client,
		server: c.Server,
	}, nil
}

// Decide returns the forwarding decision for obs. ok is false if obs is not a new TCP connection over IPv4.
func (r *Policy) Decide(obs *protocol.Observation, table network.PortLocator) (d network.Decision, ok bool) {
	if obs.IsLLDP() || !obs.IsConnectionInitiation() {
		return network.Decision{}, false
	}

	if bytes.Equal(obs.SrcMAC, r.client) {
		if port, found := table.Lookup(r.server); found {
			d = network.PortDecision(port)
			d.Steered = true
			if bytes.Equal(obs.DstMAC, r.server) {
				logger.Infof("direct: %v -> %v (%v:%v -> %v:%v) via port %v", obs.SrcMAC, obs.DstMAC, obs.IPv4.SrcIP, obs.TCP.SrcPort, obs.IPv4.DstIP, obs.TCP.DstPort, port)
			} else {
				d.Redirected = true
				logger.Infof("redirect: %v -> %v (%v:%v -> %v:%v) steered to %v via port %v", obs.SrcMAC, obs.DstMAC, obs.IPv4.SrcIP, obs.TCP.SrcPort, obs.IPv4.DstIP, obs.TCP.DstPort, r.server, port)
			}
			return d, true
		}
		logger.Debugf("server %v is not learned yet: falling back to learning", r.server)
	}

	port, found := table.Lookup(obs.DstMAC)
	if !found {
		return network.FloodDecision(), true
	}

	return network.PortDecision(port), true
}
