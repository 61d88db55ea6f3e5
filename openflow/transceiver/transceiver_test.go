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

package transceiver

import (
	"context"
	"encoding"
	"io"
	"net"
	"testing"
	"time"

	"github.com/Dcyaprogrammer/CAN201-CW/openflow"
	"github.com/Dcyaprogrammer/CAN201-CW/openflow/of13"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	hello    chan openflow.Hello
	features chan openflow.FeaturesReply
	packetIn chan openflow.PacketIn
}

func newRecorder() *recorder {
	return &recorder{
		hello:    make(chan openflow.Hello, 4),
		features: make(chan openflow.FeaturesReply, 4),
		packetIn: make(chan openflow.PacketIn, 4),
	}
}

func (r *recorder) OnHello(f openflow.Factory, w Writer, v openflow.Hello) error {
	r.hello <- v
	return nil
}

func (r *recorder) OnError(f openflow.Factory, w Writer, v openflow.Error) error {
	return nil
}

func (r *recorder) OnFeaturesReply(f openflow.Factory, w Writer, v openflow.FeaturesReply) error {
	r.features <- v
	return nil
}

func (r *recorder) OnFlowRemoved(f openflow.Factory, w Writer, v openflow.FlowRemoved) error {
	return nil
}

func (r *recorder) OnPacketIn(f openflow.Factory, w Writer, v openflow.PacketIn) error {
	r.packetIn <- v
	return nil
}

func send(t *testing.T, conn net.Conn, msg encoding.BinaryMarshaler) {
	v, err := msg.MarshalBinary()
	require.NoError(t, err)
	_, err = conn.Write(v)
	require.NoError(t, err)
}

func startTransceiver(handler Handler, jobs <-chan Job) (net.Conn, context.CancelFunc, <-chan error) {
	client, server := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	tr := NewTransceiver(NewStream(server, 0xFFFF), handler, jobs)

	errc := make(chan error, 1)
	go func() {
		defer tr.Close()
		errc <- tr.Run(ctx)
	}()

	return client, cancel, errc
}

func TestDispatch(t *testing.T) {
	handler := newRecorder()
	jobs := make(chan Job, 1)
	client, cancel, errc := startTransceiver(handler, jobs)
	defer client.Close()

	send(t, client, of13.NewHello(1))
	select {
	case <-handler.hello:
	case <-time.After(3 * time.Second):
		t.Fatal("HELLO is not dispatched")
	}

	send(t, client, of13.NewFeaturesReply(2, 0xCAFE, 256, 1))
	select {
	case v := <-handler.features:
		assert.Equal(t, uint64(0xCAFE), v.DPID())
	case <-time.After(3 * time.Second):
		t.Fatal("FEATURES_REPLY is not dispatched")
	}

	send(t, client, of13.NewPacketIn(3, openflow.NoBuffer, 5, []byte{0x1, 0x2}))
	select {
	case v := <-handler.packetIn:
		assert.Equal(t, uint32(5), v.InPort())
		assert.Equal(t, []byte{0x1, 0x2}, v.Data())
	case <-time.After(3 * time.Second):
		t.Fatal("PACKET_IN is not dispatched")
	}

	done := make(chan struct{})
	jobs <- func() error {
		close(done)
		return nil
	}
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("job is not executed")
	}

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("transceiver is not terminated")
	}
}

func TestEchoReply(t *testing.T) {
	handler := newRecorder()
	client, cancel, _ := startTransceiver(handler, nil)
	defer cancel()
	defer client.Close()

	send(t, client, of13.NewHello(1))
	<-handler.hello

	echo := of13.NewEchoRequest(77)
	echo.SetData([]byte("ping"))
	send(t, client, echo)

	v := make([]byte, 12)
	client.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, err := io.ReadFull(client, v)
	require.NoError(t, err)

	reply := new(openflow.BaseEcho)
	require.NoError(t, reply.UnmarshalBinary(v))
	assert.Equal(t, uint8(of13.OFPT_ECHO_REPLY), reply.Type())
	assert.Equal(t, uint32(77), reply.TransactionID())
	assert.Equal(t, []byte("ping"), reply.Data())
}

func TestNegotiationFailure(t *testing.T) {
	src := []struct {
		Name   string
		Packet []byte
	}{
		{
			Name:   "missing HELLO",
			Packet: []byte{0x04, of13.OFPT_FEATURES_REQUEST, 0x00, 0x08, 0x00, 0x00, 0x00, 0x01},
		},
		{
			Name:   "OpenFlow 1.0",
			Packet: []byte{0x01, of13.OFPT_HELLO, 0x00, 0x08, 0x00, 0x00, 0x00, 0x01},
		},
	}

	for _, v := range src {
		t.Run(v.Name, func(t *testing.T) {
			client, cancel, errc := startTransceiver(newRecorder(), nil)
			defer cancel()
			defer client.Close()

			_, err := client.Write(v.Packet)
			require.NoError(t, err)
			select {
			case err := <-errc:
				assert.Error(t, err)
			case <-time.After(5 * time.Second):
				t.Fatal("transceiver is not terminated")
			}
		})
	}
}

func TestClosedConnection(t *testing.T) {
	handler := newRecorder()
	client, cancel, errc := startTransceiver(handler, nil)
	defer cancel()

	send(t, client, of13.NewHello(1))
	<-handler.hello
	client.Close()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("transceiver is not terminated")
	}
}

func TestMalformedPacketIn(t *testing.T) {
	handler := newRecorder()
	client, cancel, errc := startTransceiver(handler, nil)
	defer cancel()
	defer client.Close()

	send(t, client, of13.NewHello(1))
	<-handler.hello

	// PACKET_IN without its body
	_, err := client.Write([]byte{0x04, of13.OFPT_PACKET_IN, 0x00, 0x08, 0x00, 0x00, 0x00, 0x02})
	require.NoError(t, err)
	send(t, client, of13.NewPacketIn(3, openflow.NoBuffer, 5, []byte{0x1}))

	select {
	case v := <-handler.packetIn:
		assert.Equal(t, uint32(3), v.TransactionID())
	case err := <-errc:
		t.Fatalf("unexpected termination: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("PACKET_IN is not dispatched")
	}
}

func TestReaderBackpressure(t *testing.T) {
	readerQueueLen = 1
	defer func() { readerQueueLen = 4096 }()

	handler := newRecorder()
	// The handler blocks until the test receives each PACKET_IN.
	handler.packetIn = make(chan openflow.PacketIn)
	client, cancel, _ := startTransceiver(handler, nil)
	defer cancel()
	defer client.Close()

	send(t, client, of13.NewHello(1))
	<-handler.hello

	const count = 16
	go func() {
		for i := 0; i < count; i++ {
			v, err := of13.NewPacketIn(uint32(100+i), openflow.NoBuffer, 5, []byte{0x1}).MarshalBinary()
			if err != nil {
				return
			}
			if _, err := client.Write(v); err != nil {
				return
			}
		}
	}()

	for i := 0; i < count; i++ {
		select {
		case v := <-handler.packetIn:
			assert.Equal(t, uint32(100+i), v.TransactionID())
		case <-time.After(3 * time.Second):
			t.Fatalf("PACKET_IN #%v is lost", i)
		}
	}
}
