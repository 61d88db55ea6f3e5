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
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
)

var (
	ErrNotEthernet = errors.New("not an ethernet frame")
)

const (
	EtherTypeLLDP = 0x88CC
)

type IPv4 struct {
	SrcIP net.IP
	DstIP net.IP
}

type TCP struct {
	SrcPort uint16
	DstPort uint16
	SYN     bool
	ACK     bool
}

// Observation describes a frame received from a switch port.
// IPv4 and TCP are nil if the frame does not carry those layers.
type Observation struct {
	InPort    uint32
	SrcMAC    net.HardwareAddr
	DstMAC    net.HardwareAddr
	EtherType uint16
	IPv4      *IPv4
	TCP       *TCP
}

// Decode parses the ethernet frame that has been received on inPort. Only a frame without a valid
// ethernet header returns an error; missing upper layers are reported as nil fields.
func Decode(inPort uint32, frame []byte) (*Observation, error) {
	packet := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
	ethLayer := packet.Layer(layers.LayerTypeEthernet)
	if ethLayer == nil {
		if e := packet.ErrorLayer(); e != nil {
			return nil, errors.Wrap(e.Error(), ErrNotEthernet.Error())
		}
		return nil, ErrNotEthernet
	}
	eth, _ := ethLayer.(*layers.Ethernet)

	obs := &Observation{
		InPort:    inPort,
		SrcMAC:    copyMAC(eth.SrcMAC),
		DstMAC:    copyMAC(eth.DstMAC),
		EtherType: uint16(eth.EthernetType),
	}
	if ipLayer := packet.Layer(layers.LayerTypeIPv4); ipLayer != nil {
		ip, _ := ipLayer.(*layers.IPv4)
		obs.IPv4 = &IPv4{
			SrcIP: copyIP(ip.SrcIP),
			DstIP: copyIP(ip.DstIP),
		}
		if tcpLayer := packet.Layer(layers.LayerTypeTCP); tcpLayer != nil {
			tcp, _ := tcpLayer.(*layers.TCP)
			obs.TCP = &TCP{
				SrcPort: uint16(tcp.SrcPort),
				DstPort: uint16(tcp.DstPort),
				SYN:     tcp.SYN,
				ACK:     tcp.ACK,
			}
		}
	}

	return obs, nil
}

func copyMAC(mac net.HardwareAddr) net.HardwareAddr {
	v := make(net.HardwareAddr, len(mac))
	copy(v, mac)
	return v
}

func copyIP(ip net.IP) net.IP {
	v := make(net.IP, len(ip))
	copy(v, ip)
	return v
}

func (r *Observation) IsLLDP() bool {
	return r.EtherType == EtherTypeLLDP
}

// IsConnectionInitiation reports whether the frame is an IPv4 TCP segment with SYN set and ACK clear.
func (r *Observation) IsConnectionInitiation() bool {
	// Only plain SYN constitutes a new TCP connection.
	return r.IPv4 != nil && r.TCP != nil && r.TCP.SYN && !r.TCP.ACK
}

func (r *Observation) String() string {
	v := fmt.Sprintf("InPort=%v, SrcMAC=%v, DstMAC=%v, EtherType=0x%04x", r.InPort, r.SrcMAC, r.DstMAC, r.EtherType)
	if r.IPv4 != nil {
		v += fmt.Sprintf(", SrcIP=%v, DstIP=%v", r.IPv4.SrcIP, r.IPv4.DstIP)
	}
	if r.TCP != nil {
		v += fmt.Sprintf(", SrcPort=%v, DstPort=%v, SYN=%v, ACK=%v", r.TCP.SrcPort, r.TCP.DstPort, r.TCP.SYN, r.TCP.ACK)
	}

	return v
}
