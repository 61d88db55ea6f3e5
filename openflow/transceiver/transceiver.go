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
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Dcyaprogrammer/CAN201-CW/openflow"
	"github.com/Dcyaprogrammer/CAN201-CW/openflow/of13"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("transceiver")
)

const (
	// Allowed idle time before we send an echo request to a switch.
	maxIdleTime = 10 * time.Second
	// I/O timeouts (These timeouts should be less than maxIdleTime).
	readTimeout  = 1 * time.Second
	writeTimeout = readTimeout * 2
	// Maximum number of unanswered echo requests.
	maxPendingEcho = 2
	// Waiting time for the first HELLO message.
	negotiationTimeout = 30 * time.Second
)

// Number of received messages that can wait for the dispatcher.
var readerQueueLen = 4096

type Writer interface {
	Write(msg encoding.BinaryMarshaler) error
}

// Job is a function executed on the transceiver's goroutine, between two incoming messages.
type Job func() error

type Handler interface {
	OnHello(openflow.Factory, Writer, openflow.Hello) error
	OnError(openflow.Factory, Writer, openflow.Error) error
	OnFeaturesReply(openflow.Factory, Writer, openflow.FeaturesReply) error
	OnFlowRemoved(openflow.Factory, Writer, openflow.FlowRemoved) error
	OnPacketIn(openflow.Factory, Writer, openflow.PacketIn) error
}

type Transceiver struct {
	stream        *Stream
	observer      Handler
	jobs          <-chan Job
	factory       openflow.Factory
	pingCounter   uint
	helloReceived int32 // Set by Run, read by the reader goroutine.
	closed        bool
}

// NewTransceiver returns a transceiver that reads OpenFlow 1.3 messages from stream and dispatches them to handler.
// Jobs received from jobs are executed in the same goroutine as the handler. jobs may be nil.
func NewTransceiver(stream *Stream, handler Handler, jobs <-chan Job) *Transceiver {
	if stream == nil {
		panic("stream is nil")
	}
	if handler == nil {
		panic("handler is nil")
	}

	return &Transceiver{
		stream:   stream,
		observer: handler,
		jobs:     jobs,
		factory:  of13.NewFactory(),
	}
}

func (r *Transceiver) Factory() openflow.Factory {
	return r.factory
}

func (r *Transceiver) RemoteAddr() string {
	return r.stream.RemoteAddr()
}

func isTimeout(err error) bool {
	v, ok := errors.Cause(err).(interface {
		Timeout() bool
	})
	return ok && v.Timeout()
}

func isTemporaryErr(err error) bool {
	e, ok := errors.Cause(err).(interface {
		Temporary() bool
	})
	return ok && e.Temporary()
}

func (r *Transceiver) sendEchoRequest() error {
	if r.pingCounter > maxPendingEcho {
		return errors.New("device does not respond to our echo request")
	}

	echo, err := r.factory.NewEchoRequest()
	if err != nil {
		return err
	}
	// We use current timestamp to check network latency between our controller and a switch.
	timestamp, err := time.Now().GobEncode()
	if err != nil {
		return err
	}
	echo.SetData(timestamp)

	if err := r.Write(echo); err != nil {
		return errors.Wrap(err, "failed to send ECHO_REQUEST message")
	}
	r.pingCounter++

	return nil
}

// Run reads and dispatches messages until ctx is canceled, the connection is closed, or a handler returns a
// non-temporary error.
func (r *Transceiver) Run(ctx context.Context) error {
	defer logger.Info("transceiver is closed")
	r.stream.SetReadTimeout(readTimeout)
	r.stream.SetWriteTimeout(writeTimeout)

	readerCtx, cancelReader := context.WithCancel(ctx)
	defer cancelReader()
	reader := r.runReader(readerCtx)

	hello, err := r.negotiate(ctx, reader)
	if err != nil {
		return errors.Wrap(err, "failed to negotiate the protocol version")
	}
	if err := r.handleHello(hello); err != nil {
		return err
	}

	// Infinite loop
	for {
		var err error

		select {
		case <-ctx.Done():
			logger.Info("context done")
			return nil
		case job := <-r.jobs:
			err = job()
		case packet, ok := <-reader:
			if !ok {
				logger.Info("the reader channel is closed")
				return nil
			}
			err = r.dispatch(packet)
		}

		if err != nil {
			if !isTemporaryErr(err) {
				return err
			}
			// Ignore the temporary error. Just log the error and keep go on.
			logger.Errorf("failed to dispatch the packet: %v", err)
		}
	}
}

func (r *Transceiver) negotiate(ctx context.Context, reader <-chan []byte) (packet []byte, err error) {
	select {
	case <-ctx.Done():
		return nil, errors.New("context done")
	case <-time.After(negotiationTimeout):
		return nil, errors.New("inactive for too long")
	case packet, ok := <-reader:
		if !ok {
			return nil, errors.New("the reader channel is closed")
		}
		// The first message should be HELLO.
		if packet[1] != of13.OFPT_HELLO {
			return nil, errors.New("missing HELLO message")
		}
		if packet[0] < openflow.OF13_VERSION {
			return nil, errors.Wrapf(openflow.ErrUnsupportedVersion, "version=%v", packet[0])
		}
		atomic.StoreInt32(&r.helloReceived, 1)
		logger.Info("negotiated to openflow version 1.3")

		return packet, nil
	}
}

func (r *Transceiver) runReader(ctx context.Context) <-chan []byte {
	c := make(chan []byte, readerQueueLen)
	go func() {
		// The channel c will be closed when this goroutine returns in order to notice the connection has been closed.
		defer close(c)
		defer logger.Info("transceiver reader is closed")

		lastActivated := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			packet, err := r.readPacket()
			if err != nil {
				if !isTimeout(err) {
					logger.Errorf("failed to read the next packet: %v", err)
					return
				}
				// Timeout occurrs. Send a ping request if necessary.
				if r.negotiated() && time.Now().After(lastActivated.Add(maxIdleTime)) {
					if err := r.sendEchoRequest(); err != nil {
						logger.Errorf("failed to send an echo request: %v", err)
						return
					}
					lastActivated = time.Now()
				}
				continue
			}
			lastActivated = time.Now()

			ok, err := r.handleEcho(packet)
			if err != nil {
				logger.Errorf("failed to handle the echo request or response: %v", err)
				return
			}
			if ok {
				// Echo messages are handled by this reader.
				continue
			}

			// Block when the queue is full. The switch is throttled by TCP flow control.
			select {
			case c <- packet:
			case <-ctx.Done():
				return
			}
		}
	}()

	return c
}

// negotiated reports whether the peer has sent a valid HELLO. Echo requests are not sent before that.
func (r *Transceiver) negotiated() bool {
	return atomic.LoadInt32(&r.helloReceived) == 1
}

func (r *Transceiver) readPacket() ([]byte, error) {
	header, err := r.stream.Peek(8) // peek ofp_header
	if err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint16(header[2:4])
	if length < 8 {
		return nil, openflow.ErrInvalidPacketLength
	}

	return r.stream.ReadN(int(length))
}

func (r *Transceiver) Write(msg encoding.BinaryMarshaler) error {
	packet, err := msg.MarshalBinary()
	if err != nil {
		return err
	}

	if _, err := r.stream.Write(packet); err != nil {
		return err
	}

	return nil
}

func (r *Transceiver) handleEcho(packet []byte) (handled bool, err error) {
	if packet[0] != openflow.OF13_VERSION {
		return false, nil
	}

	switch packet[1] {
	case of13.OFPT_ECHO_REQUEST:
		return true, r.handleEchoRequest(packet)
	case of13.OFPT_ECHO_REPLY:
		return true, r.handleEchoReply(packet)
	default:
		return false, nil
	}
}

func (r *Transceiver) dispatch(packet []byte) error {
	if packet[0] != openflow.OF13_VERSION {
		return fmt.Errorf("mis-matched OpenFlow version: negotiated=%v, packet=%v", openflow.OF13_VERSION, packet[0])
	}

	switch packet[1] {
	case of13.OFPT_HELLO:
		return r.handleHello(packet)
	case of13.OFPT_ERROR:
		return r.handleError(packet)
	case of13.OFPT_FEATURES_REPLY:
		return r.handleFeaturesReply(packet)
	case of13.OFPT_FLOW_REMOVED:
		return r.handleFlowRemoved(packet)
	case of13.OFPT_PACKET_IN:
		return r.handlePacketIn(packet)
	default:
		// Unsupported message. Do nothing.
		logger.Debugf("ignoring an unsupported message: type=%v", packet[1])
		return nil
	}
}

func (r *Transceiver) handleEchoRequest(packet []byte) error {
	msg, err := r.factory.NewEchoRequest()
	if err != nil {
		return err
	}
	if err := msg.UnmarshalBinary(packet); err != nil {
		return err
	}
	logger.Debug("received an ECHO_REQUEST packet")

	reply, err := r.factory.NewEchoReply()
	if err != nil {
		return err
	}
	// Copy transaction ID and data from the incoming echo request message
	reply.SetTransactionID(msg.TransactionID())
	reply.SetData(msg.Data())

	if err := r.Write(reply); err != nil {
		return errors.Wrap(err, "failed to send ECHO_REPLY message")
	}
	logger.Debug("sent an ECHO_REPLY packet")

	return nil
}

func (r *Transceiver) handleEchoReply(packet []byte) error {
	msg, err := r.factory.NewEchoReply()
	if err != nil {
		return err
	}
	if err := msg.UnmarshalBinary(packet); err != nil {
		return err
	}
	// Any reply proves the switch is alive.
	r.pingCounter = 0

	timestamp := time.Time{}
	if err := timestamp.GobDecode(msg.Data()); err != nil {
		// Some switches return broken echo data. Ignore it to keep the session.
		logger.Debug("unexpected timestamp data in the ECHO_REPLY packet")
		return nil
	}
	logger.Debugf("transceiver latency: %v", time.Since(timestamp))

	return nil
}

func (r *Transceiver) handleHello(packet []byte) error {
	msg, err := r.factory.NewHello()
	if err != nil {
		return err
	}
	if err := msg.UnmarshalBinary(packet); err != nil {
		return err
	}

	return r.observer.OnHello(r.factory, r, msg)
}

func (r *Transceiver) handleError(packet []byte) error {
	msg, err := r.factory.NewError()
	if err != nil {
		return err
	}
	if err := msg.UnmarshalBinary(packet); err != nil {
		return err
	}

	return r.observer.OnError(r.factory, r, msg)
}

func (r *Transceiver) handleFeaturesReply(packet []byte) error {
	msg, err := r.factory.NewFeaturesReply()
	if err != nil {
		return err
	}
	if err := msg.UnmarshalBinary(packet); err != nil {
		return err
	}

	return r.observer.OnFeaturesReply(r.factory, r, msg)
}

func (r *Transceiver) handleFlowRemoved(packet []byte) error {
	msg, err := r.factory.NewFlowRemoved()
	if err != nil {
		return err
	}
	if err := msg.UnmarshalBinary(packet); err != nil {
		return err
	}

	return r.observer.OnFlowRemoved(r.factory, r, msg)
}

func (r *Transceiver) handlePacketIn(packet []byte) error {
	msg, err := r.factory.NewPacketIn()
	if err != nil {
		return err
	}
	if err := msg.UnmarshalBinary(packet); err != nil {
		// Discard the broken message and keep the session.
		logger.Warningf("ignoring a malformed PACKET_IN: %v", err)
		return nil
	}

	return r.observer.OnPacketIn(r.factory, r, msg)
}

func (r *Transceiver) Close() error {
	if r.closed {
		return nil
	}

	if err := r.stream.Close(); err != nil {
		return err
	}
	r.closed = true

	return nil
}
