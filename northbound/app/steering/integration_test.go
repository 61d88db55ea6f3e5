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
	"context"
	"encoding"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/Dcyaprogrammer/CAN201-CW/network"
	"github.com/Dcyaprogrammer/CAN201-CW/openflow"
	"github.com/Dcyaprogrammer/CAN201-CW/openflow/of13"
	"github.com/Dcyaprogrammer/CAN201-CW/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSwitch talks OpenFlow 1.3 to the controller through an in-memory connection.
type fakeSwitch struct {
	t      *testing.T
	conn   net.Conn
	in     chan []byte
	nextID uint32
}

func newFakeSwitch(t *testing.T, conn net.Conn) *fakeSwitch {
	v := &fakeSwitch{
		t:    t,
		conn: conn,
		in:   make(chan []byte, 64),
	}
	go v.read()

	return v
}

func (r *fakeSwitch) read() {
	defer close(r.in)

	for {
		header := make([]byte, 8)
		if _, err := io.ReadFull(r.conn, header); err != nil {
			return
		}
		packet := make([]byte, binary.BigEndian.Uint16(header[2:4]))
		copy(packet, header)
		if _, err := io.ReadFull(r.conn, packet[8:]); err != nil {
			return
		}
		r.in <- packet
	}
}

func (r *fakeSwitch) send(msg encoding.BinaryMarshaler) {
	v, err := msg.MarshalBinary()
	require.NoError(r.t, err)
	require.NoError(r.t, r.conn.SetWriteDeadline(time.Now().Add(3*time.Second)))
	_, err = r.conn.Write(v)
	require.NoError(r.t, err)
}

func (r *fakeSwitch) sendPacketIn(inPort uint32, frame []byte) {
	r.nextID++
	r.send(of13.NewPacketIn(r.nextID, openflow.NoBuffer, inPort, frame))
}

func (r *fakeSwitch) expect(msgType uint8) []byte {
	select {
	case packet, ok := <-r.in:
		require.True(r.t, ok, "connection closed while waiting for type %v", msgType)
		require.Equal(r.t, msgType, packet[1], "unexpected message type")
		return packet
	case <-time.After(3 * time.Second):
		r.t.Fatalf("timeout while waiting for type %v", msgType)
		return nil
	}
}

func (r *fakeSwitch) expectFlowMod() openflow.FlowMod {
	v := of13.NewFlowMod(0, of13.OFPFC_ADD)
	require.NoError(r.t, v.UnmarshalBinary(r.expect(of13.OFPT_FLOW_MOD)))
	return v
}

func (r *fakeSwitch) expectPacketOut() openflow.PacketOut {
	v := of13.NewPacketOut(0)
	require.NoError(r.t, v.UnmarshalBinary(r.expect(of13.OFPT_PACKET_OUT)))
	return v
}

func newSYN(t *testing.T, src, dst net.HardwareAddr) []byte {
	frame, err := protocol.NewTCPFrame(protocol.Segment{
		SrcMAC:  src,
		DstMAC:  dst,
		SrcIP:   net.IPv4(10, 0, 0, src[5]),
		DstIP:   net.IPv4(10, 0, 0, dst[5]),
		SrcPort: 40000,
		DstPort: 80,
		SYN:     true,
	})
	require.NoError(t, err)

	return frame
}

func outPort(t *testing.T, action openflow.Action) openflow.OutPort {
	ports := action.OutPort()
	require.Len(t, ports, 1)
	return ports[0]
}

func TestSteeringSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	controller := network.NewController(network.DefaultConfig(), newPolicy(t))
	local, remote := net.Pipe()
	defer remote.Close()
	controller.AddConnection(ctx, local)
	sw := newFakeSwitch(t, remote)

	// Handshake
	sw.send(of13.NewHello(1))
	sw.expect(of13.OFPT_HELLO)
	sw.expect(of13.OFPT_FEATURES_REQUEST)
	sw.send(of13.NewFeaturesReply(2, 0x10, 256, 254))
	tableMiss := sw.expectFlowMod()
	assert.Equal(t, uint16(0), tableMiss.Priority())
	assert.True(t, outPort(t, tableMiss.FlowInstruction().Action()).IsController())

	// The server is unknown yet: flooding without any flow.
	sw.sendPacketIn(1, newSYN(t, serverMAC, otherMAC))
	out := sw.expectPacketOut()
	assert.True(t, outPort(t, out.Action()).IsFlood())
	assert.Equal(t, uint32(1), out.InPort().Value())

	// The other host replies from port 2 with SYN-ACK: learned, but filtered.
	synAck, err := protocol.NewTCPFrame(protocol.Segment{
		SrcMAC: otherMAC, DstMAC: serverMAC,
		SrcIP: net.IPv4(10, 0, 0, 2), DstIP: net.IPv4(10, 0, 0, 1),
		SrcPort: 80, DstPort: 40000,
		SYN: true, ACK: true,
	})
	require.NoError(t, err)
	sw.sendPacketIn(2, synAck)

	// The client on port 3 connects to the other host, and is redirected to the server.
	frame := newSYN(t, clientMAC, otherMAC)
	sw.sendPacketIn(3, frame)
	flow := sw.expectFlowMod()
	assert.Equal(t, uint16(1), flow.Priority())
	assert.Equal(t, uint16(5), flow.IdleTimeout())
	_, inPort := flow.FlowMatch().InPort()
	assert.Equal(t, uint32(3), inPort)
	_, dst := flow.FlowMatch().DstMAC()
	assert.Equal(t, otherMAC.String(), dst.String(), "the flow matches the literal destination")
	assert.Equal(t, uint32(1), outPort(t, flow.FlowInstruction().Action()).Value())
	out = sw.expectPacketOut()
	assert.Equal(t, uint32(1), outPort(t, out.Action()).Value())
	assert.Equal(t, frame, out.Data())

	// The client connects to the server directly.
	sw.sendPacketIn(3, newSYN(t, clientMAC, serverMAC))
	flow = sw.expectFlowMod()
	_, dst = flow.FlowMatch().DstMAC()
	assert.Equal(t, serverMAC.String(), dst.String())
	assert.Equal(t, uint32(1), outPort(t, flow.FlowInstruction().Action()).Value())
	sw.expectPacketOut()

	// The other host connects to the client through the learned port.
	sw.sendPacketIn(2, newSYN(t, otherMAC, clientMAC))
	flow = sw.expectFlowMod()
	assert.Equal(t, uint32(3), outPort(t, flow.FlowInstruction().Action()).Value())
	sw.expectPacketOut()

	switches, err := controller.Switches(ctx)
	require.NoError(t, err)
	require.Len(t, switches, 1)
	assert.Equal(t, "16", switches[0].DPID)
	assert.Equal(t, "ACTIVE", switches[0].State)
	assert.Equal(t, 3, switches[0].Hosts)

	hosts, err := controller.Hosts(ctx, "16")
	require.NoError(t, err)
	assert.Equal(t, []network.Host{
		{MAC: serverMAC.String(), Port: 1},
		{MAC: otherMAC.String(), Port: 2},
		{MAC: clientMAC.String(), Port: 3},
	}, hosts)
	_, err = controller.Hosts(ctx, "17")
	assert.Equal(t, network.ErrUnknownDevice, err)

	require.NoError(t, controller.RemoveFlows(ctx, nil))
	removal := sw.expectFlowMod()
	assert.Equal(t, openflow.FlowDelete, removal.Command())
	sw.expect(of13.OFPT_BARRIER_REQUEST)

	// Disconnection removes the switch.
	remote.Close()
	assert.Eventually(t, func() bool {
		v, err := controller.Switches(ctx)
		return err == nil && len(v) == 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestSteeringSessionsAreIndependent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	controller := network.NewController(network.DefaultConfig(), newPolicy(t))
	switches := make([]*fakeSwitch, 2)
	for i := range switches {
		local, remote := net.Pipe()
		defer remote.Close()
		controller.AddConnection(ctx, local)
		switches[i] = newFakeSwitch(t, remote)

		switches[i].send(of13.NewHello(1))
		switches[i].expect(of13.OFPT_HELLO)
		switches[i].expect(of13.OFPT_FEATURES_REQUEST)
		switches[i].send(of13.NewFeaturesReply(2, uint64(i+1), 256, 254))
		switches[i].expectFlowMod()
	}

	// The server is learned only on the first switch.
	switches[0].sendPacketIn(1, newSYN(t, serverMAC, otherMAC))
	switches[0].expectPacketOut()

	// The second switch does not know the server, so the client is not steered.
	switches[1].sendPacketIn(3, newSYN(t, clientMAC, otherMAC))
	out := switches[1].expectPacketOut()
	assert.True(t, outPort(t, out.Action()).IsFlood())

	hosts, err := controller.Hosts(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, []network.Host{{MAC: clientMAC.String(), Port: 3}}, hosts)
}
