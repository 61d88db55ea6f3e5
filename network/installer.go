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

	"github.com/Dcyaprogrammer/CAN201-CW/openflow"
	"github.com/Dcyaprogrammer/CAN201-CW/openflow/transceiver"
	"github.com/Dcyaprogrammer/CAN201-CW/protocol"

	"github.com/pkg/errors"
)

const (
	// We use MSB to represent whether the flow is table miss or not
	tableMissCookie uint64 = 0x1 << 63
	// Learned flows have the second MSB so that they can be removed at once.
	learnedCookie uint64 = 0x1 << 62
)

// installer translates forwarding decisions into FLOW_MOD and PACKET_OUT messages. Write errors are
// returned to the caller as is; nothing is retried.
type installer struct {
	factory openflow.Factory
	writer  transceiver.Writer
	config  Config
	// nil if the duplicate suppression is disabled.
	cache *flowCache
}

func newInstaller(f openflow.Factory, w transceiver.Writer, c Config) *installer {
	v := &installer{
		factory: f,
		writer:  w,
		config:  c,
	}
	if c.DedupWindow > 0 {
		v.cache = newFlowCache(c.DedupWindow)
	}

	return v
}

func (r *installer) newOutput(port openflow.OutPort) (openflow.Action, error) {
	action, err := r.factory.NewAction()
	if err != nil {
		return nil, err
	}
	action.SetOutPort(port)

	return action, nil
}

func (r *installer) newApplyOutput(port openflow.OutPort) (openflow.Instruction, error) {
	action, err := r.newOutput(port)
	if err != nil {
		return nil, err
	}
	inst, err := r.factory.NewInstruction()
	if err != nil {
		return nil, err
	}
	inst.ApplyAction(action)

	return inst, nil
}

// Rule is a flow entry installed by the controller. A nil DstMAC matches any packet.
type Rule struct {
	Cookie      uint64
	Priority    uint16
	InPort      uint32
	DstMAC      net.HardwareAddr
	OutPort     openflow.OutPort
	IdleTimeout uint16
	// BufferID is released by the switch through the new flow. NoBuffer if none.
	BufferID uint32
	Notify   bool
}

func (r *installer) addFlow(rule Rule) error {
	match, err := r.factory.NewMatch() // Wildcard
	if err != nil {
		return err
	}
	if rule.DstMAC != nil {
		match.SetInPort(rule.InPort)
		if err := match.SetDstMAC(rule.DstMAC); err != nil {
			return err
		}
	}
	inst, err := r.newApplyOutput(rule.OutPort)
	if err != nil {
		return err
	}

	flow, err := r.factory.NewFlowMod(openflow.FlowAdd)
	if err != nil {
		return err
	}
	flow.SetCookie(rule.Cookie)
	flow.SetTableID(0)
	flow.SetIdleTimeout(rule.IdleTimeout)
	flow.SetHardTimeout(0)
	flow.SetPriority(rule.Priority)
	flow.SetBufferID(rule.BufferID)
	if rule.Notify {
		flow.SetFlags(openflow.FlowSendRemoved)
	}
	flow.SetFlowMatch(match)
	flow.SetFlowInstruction(inst)

	return r.writer.Write(flow)
}

// installTableMiss sends a permanent, lowest priority flow that forwards every unmatched packet to the controller.
func (r *installer) installTableMiss() error {
	outPort := openflow.NewOutPort()
	outPort.SetController()
	rule := Rule{
		Cookie:   tableMissCookie,
		Priority: r.config.TableMissPriority,
		OutPort:  outPort,
		// Permanent flow entry
		IdleTimeout: 0,
		BufferID:    openflow.NoBuffer,
	}
	if err := r.addFlow(rule); err != nil {
		return errors.Wrap(err, "failed to install the table-miss flow")
	}
	ruleCounter.WithLabelValues("table_miss").Inc()
	logger.Debug("installed the table-miss flow")

	return nil
}

// install applies d to the frame that has been reported with bufferID. frame is the payload of the PACKET_IN.
func (r *installer) install(obs *protocol.Observation, d Decision, bufferID uint32, frame []byte) error {
	outPort := openflow.NewOutPort()
	if d.Flood {
		// Never install a flow for flooding.
		outPort.SetFlood()
		return r.packetOut(obs.InPort, outPort, bufferID, frame)
	}
	outPort.SetValue(d.Port)

	if r.cache != nil && r.cache.InProgress(obs.InPort, obs.DstMAC, d.Port) {
		logger.Debugf("skipping the duplicated flow: InPort=%v, DstMAC=%v, OutPort=%v", obs.InPort, obs.DstMAC, d.Port)
		return r.packetOut(obs.InPort, outPort, bufferID, frame)
	}

	if err := r.installLearned(obs.InPort, obs.DstMAC, outPort, bufferID); err != nil {
		return errors.Wrap(err, "failed to install a learned flow")
	}
	if r.cache != nil {
		r.cache.Add(obs.InPort, obs.DstMAC, d.Port)
	}
	// The switch releases the buffered packet through the new flow.
	if bufferID != openflow.NoBuffer {
		return nil
	}

	return r.packetOut(obs.InPort, outPort, openflow.NoBuffer, frame)
}

// installLearned matches the frame's literal destination, not the egress port's owner. Redirected traffic
// therefore needs one flow per apparent destination.
func (r *installer) installLearned(inPort uint32, dstMAC net.HardwareAddr, outPort openflow.OutPort, bufferID uint32) error {
	rule := Rule{
		Cookie:      learnedCookie,
		Priority:    r.config.LearnedPriority,
		InPort:      inPort,
		DstMAC:      dstMAC,
		OutPort:     outPort,
		IdleTimeout: r.config.IdleTimeout,
		BufferID:    bufferID,
		Notify:      true,
	}
	if err := r.addFlow(rule); err != nil {
		return err
	}
	ruleCounter.WithLabelValues("learned").Inc()
	logger.Debugf("installed a learned flow: InPort=%v, DstMAC=%v, OutPort=%v, BufferID=%v", inPort, dstMAC, outPort, bufferID)

	return nil
}

func (r *installer) packetOut(inPort uint32, outPort openflow.OutPort, bufferID uint32, frame []byte) error {
	action, err := r.newOutput(outPort)
	if err != nil {
		return err
	}
	ingress := openflow.NewInPort()
	ingress.SetValue(inPort)

	out, err := r.factory.NewPacketOut()
	if err != nil {
		return err
	}
	out.SetBufferID(bufferID)
	out.SetInPort(ingress)
	out.SetAction(action)
	if bufferID == openflow.NoBuffer {
		out.SetData(frame)
	}

	if err := r.writer.Write(out); err != nil {
		return errors.Wrap(err, "failed to send PACKET_OUT")
	}
	packetOutCounter.Inc()

	return nil
}

// removeLearned deletes the learned flows whose destination is mac, or all the learned flows if mac is nil.
// The table-miss flow is never removed.
func (r *installer) removeLearned(mac net.HardwareAddr) error {
	match, err := r.factory.NewMatch()
	if err != nil {
		return err
	}
	if mac != nil {
		if err := match.SetDstMAC(mac); err != nil {
			return err
		}
	}

	flow, err := r.factory.NewFlowMod(openflow.FlowDelete)
	if err != nil {
		return err
	}
	flow.SetCookie(learnedCookie)
	flow.SetCookieMask(learnedCookie)
	flow.SetTableID(0)
	flow.SetFlowMatch(match)
	if err := r.writer.Write(flow); err != nil {
		return errors.Wrap(err, "failed to send FLOW_MOD to remove learned flows")
	}

	// Make sure that the flows are removed before the following PACKET_INs are handled.
	barrier, err := r.factory.NewBarrierRequest()
	if err != nil {
		return err
	}
	if err := r.writer.Write(barrier); err != nil {
		return errors.Wrap(err, "failed to send BARRIER_REQUEST")
	}
	if r.cache != nil {
		r.cache.RemoveAll()
	}

	return nil
}
