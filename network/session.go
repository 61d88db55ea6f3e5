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
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/Dcyaprogrammer/CAN201-CW/openflow"
	"github.com/Dcyaprogrammer/CAN201-CW/openflow/of13"
	"github.com/Dcyaprogrammer/CAN201-CW/openflow/transceiver"
	"github.com/Dcyaprogrammer/CAN201-CW/protocol"

	"github.com/davecgh/go-spew/spew"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

const (
	streamBufSize = 0xFFFF
)

type session struct {
	state     State
	id        string
	remote    string
	since     time.Time
	factory   openflow.Factory
	writer    transceiver.Writer
	table     *IdentityTable
	policy    Policy
	config    Config
	installer *installer
	registry  *registry
	// nil until the session is registered.
	handle      *sessionHandle
	transceiver *transceiver.Transceiver
	jobs        chan transceiver.Job
	handshaked  bool
	quit        chan struct{}
	quitOnce    sync.Once
	done        chan struct{}
}

type sessionConfig struct {
	conn     net.Conn
	policy   Policy
	config   Config
	registry *registry
}

func checkParam(c sessionConfig) {
	if c.conn == nil {
		panic("Conn is nil")
	}
	if c.policy == nil {
		panic("Policy is nil")
	}
	if c.registry == nil {
		panic("Registry is nil")
	}
}

func newSession(c sessionConfig) *session {
	checkParam(c)

	v := &session{
		state:    StateConnecting,
		remote:   c.conn.RemoteAddr().String(),
		table:    NewIdentityTable(),
		policy:   c.policy,
		config:   c.config,
		registry: c.registry,
		jobs:     make(chan transceiver.Job),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	v.transceiver = transceiver.NewTransceiver(transceiver.NewStream(c.conn, streamBufSize), v, v.jobs)
	v.attach(v.transceiver.Factory(), v.transceiver)
	sessionGauge.WithLabelValues(StateConnecting.String()).Inc()

	return v
}

// attach sets the factory and the writer that the session uses to send commands to the switch.
func (r *session) attach(f openflow.Factory, w transceiver.Writer) {
	r.factory = f
	r.writer = w
	r.installer = newInstaller(f, w, r.config)
}

func (r *session) setState(s State) {
	if r.state == s {
		return
	}
	logger.Infof("session state is changed: remote=%v, DPID=%v, %v -> %v", r.remote, r.id, r.state, s)
	sessionGauge.WithLabelValues(r.state.String()).Dec()
	sessionGauge.WithLabelValues(s.String()).Inc()
	r.state = s
}

// disconnect stops Run. It is safe to call more than once and from any goroutine.
func (r *session) disconnect() {
	r.quitOnce.Do(func() { close(r.quit) })
}

// Run serves the switch connection until it is closed, a fault occurs, or ctx is canceled.
func (r *session) Run(ctx context.Context) {
	defer close(r.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-r.quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	err := r.transceiver.Run(ctx)
	if err := r.dispatch(Event{Kind: EventDisconnected, Err: err}); err != nil && err != errSessionClosed {
		logger.Errorf("failed to dispatch the disconnection event: %v", err)
	}
	if err := r.transceiver.Close(); err != nil {
		logger.Debugf("failed to close the transceiver: %v", err)
	}
	logger.Infof("disconnected the session: remote=%v, DPID=%v", r.remote, r.id)
}

// dispatch is the single entry point of the session state machine. A failed event closes the session.
func (r *session) dispatch(e Event) error {
	if r.state == StateDisconnected {
		return errSessionClosed
	}

	var err error
	switch e.Kind {
	case EventConnected:
		err = r.onConnected()
	case EventFeaturesReady:
		err = r.onFeaturesReady(e.Features)
	case EventPacketIn:
		err = r.onPacketIn(e.PacketIn)
	case EventFlowRemoved:
		err = r.onFlowRemoved(e.FlowRemoved)
	case EventDisconnected:
		r.close(e.Err)
		return nil
	default:
		panic("unknown session event: " + e.Kind.String())
	}

	if err != nil {
		r.close(err)
		return err
	}

	return nil
}

func (r *session) onConnected() error {
	// Ignore duplicated HELLO messages
	if r.handshaked {
		return nil
	}
	r.handshaked = true

	req, err := r.factory.NewFeaturesRequest()
	if err != nil {
		return err
	}
	if err := r.writer.Write(req); err != nil {
		return errors.Wrap(err, "failed to send FEATURES_REQUEST")
	}

	return nil
}

func (r *session) onFeaturesReady(v openflow.FeaturesReply) error {
	// Additional FEATURES_REPLY is not expected, but harmless.
	if r.state != StateConnecting {
		logger.Debugf("ignoring the additional FEATURES_REPLY: DPID=%v", v.DPID())
		return nil
	}

	r.id = strconv.FormatUint(v.DPID(), 10)
	r.setState(StateFeaturesNegotiated)

	if err := r.installer.installTableMiss(); err != nil {
		return err
	}
	r.setState(StateActive)
	r.since = time.Now()

	r.handle = &sessionHandle{
		id:     r.id,
		remote: r.remote,
		since:  r.since,
		jobs:   r.jobs,
		cancel: r.disconnect,
		done:   r.done,
		s:      r,
	}
	r.registry.add(r.handle)

	return nil
}

func (r *session) onPacketIn(v openflow.PacketIn) error {
	if r.state != StateActive {
		logger.Debugf("ignoring PACKET_IN on the %v session: remote=%v", r.state, r.remote)
		return nil
	}
	packetInCounter.Inc()

	frame := v.Data()
	if int(v.Length()) > len(frame) {
		logger.Debugf("truncated PACKET_IN: DPID=%v, length=%v, captured=%v", r.id, v.Length(), len(frame))
	}

	obs, err := protocol.Decode(v.InPort(), frame)
	if err != nil {
		logger.Debugf("ignoring the undecodable frame: DPID=%v, InPort=%v, err=%v", r.id, v.InPort(), err)
		return nil
	}
	// Learn first, then filter.
	r.table.Observe(obs.SrcMAC, obs.InPort)

	d, ok := r.policy.Decide(obs, r.table)
	if !ok {
		return nil
	}
	if logger.IsEnabledFor(logging.DEBUG) {
		logger.Debugf("DPID=%v, decision=%v, observation=%v", r.id, d, spew.Sdump(obs))
	}
	countDecision(d)

	return r.installer.install(obs, d, v.BufferID(), frame)
}

func (r *session) onFlowRemoved(v openflow.FlowRemoved) error {
	if v.Cookie()&learnedCookie == 0 {
		return nil
	}
	_, mac := v.Match().DstMAC()
	logger.Debugf("learned flow is removed: DPID=%v, DstMAC=%v, reason=%v, duration=%vs, packets=%v", r.id, mac, v.Reason(), v.DurationSec(), v.PacketCount())
	expiredCounter.Inc()

	return nil
}

func (r *session) close(cause error) {
	if cause != nil {
		logger.Errorf("closing the session: remote=%v, DPID=%v, cause=%v", r.remote, r.id, cause)
	}
	r.setState(StateDisconnected)
	// Closed sessions are not counted.
	sessionGauge.WithLabelValues(StateDisconnected.String()).Dec()

	// Drop everything learned from this connection.
	r.table = NewIdentityTable()
	if r.installer.cache != nil {
		r.installer.cache.RemoveAll()
	}
	if r.handle != nil {
		r.registry.remove(r.handle)
	}
	r.disconnect()
}

// removeLearned removes the learned flows from the switch. A transmission fault ends the session as the
// PACKET_IN path does. It should be called on the session goroutine.
func (r *session) removeLearned(mac net.HardwareAddr) error {
	if r.state != StateActive {
		return errSessionClosed
	}
	if err := r.installer.removeLearned(mac); err != nil {
		r.close(err)
		return err
	}

	return nil
}

// snapshot returns the state of the session. It should be called on the session goroutine.
func (r *session) snapshot() SwitchStatus {
	return SwitchStatus{
		DPID:   r.id,
		Remote: r.remote,
		State:  r.state.String(),
		Hosts:  r.table.Len(),
		Since:  r.since,
	}
}

func (r *session) OnHello(f openflow.Factory, w transceiver.Writer, v openflow.Hello) error {
	logger.Debugf("HELLO (ver=%v) is received", v.Version())

	if !r.handshaked {
		hello, err := f.NewHello()
		if err != nil {
			return err
		}
		if err := w.Write(hello); err != nil {
			return errors.Wrap(err, "failed to send HELLO")
		}
	}

	return r.dispatch(Event{Kind: EventConnected})
}

func (r *session) OnError(f openflow.Factory, w transceiver.Writer, v openflow.Error) error {
	// Is this the CHECK_OVERLAP error?
	if v.Class() == of13.OFPET_FLOW_MOD_FAILED && v.Code() == of13.OFPFMFC_OVERLAP {
		// Ignore this CHECK_OVERLAP error
		logger.Debug("FLOW_MOD is overlapped")
		return nil
	}
	logger.Errorf("ERROR (DPID=%v, class=%v, code=%v, data=%v)", r.id, v.Class(), v.Code(), v.Data())

	return nil
}

func (r *session) OnFeaturesReply(f openflow.Factory, w transceiver.Writer, v openflow.FeaturesReply) error {
	logger.Debugf("FEATURES_REPLY (DPID=%v, NumBufs=%v, NumTables=%v)", v.DPID(), v.NumBuffers(), v.NumTables())
	return r.dispatch(Event{Kind: EventFeaturesReady, Features: v})
}

func (r *session) OnFlowRemoved(f openflow.Factory, w transceiver.Writer, v openflow.FlowRemoved) error {
	logger.Debugf("FLOW_REMOVED is received (cookie=%v)", v.Cookie())
	return r.dispatch(Event{Kind: EventFlowRemoved, FlowRemoved: v})
}

func (r *session) OnPacketIn(f openflow.Factory, w transceiver.Writer, v openflow.PacketIn) error {
	return r.dispatch(Event{Kind: EventPacketIn, PacketIn: v})
}
