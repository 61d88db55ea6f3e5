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
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("network")

	ErrUnknownDevice = errors.New("unknown device")
)

type Config struct {
	// Idle timeout of the learned flows in seconds.
	IdleTimeout       uint16
	TableMissPriority uint16
	LearnedPriority   uint16
	// Suppression window of the duplicated learned flows. Zero disables the suppression.
	DedupWindow time.Duration
}

func DefaultConfig() Config {
	return Config{
		IdleTimeout:       5,
		TableMissPriority: 0,
		LearnedPriority:   1,
		DedupWindow:       0,
	}
}

type SwitchStatus struct {
	DPID   string    `json:"dpid"`
	Remote string    `json:"remote"`
	State  string    `json:"state"`
	Hosts  int       `json:"hosts"`
	Since  time.Time `json:"since"`
}

type Controller struct {
	config   Config
	policy   Policy
	registry *registry
}

func NewController(c Config, p Policy) *Controller {
	if p == nil {
		panic("nil policy")
	}

	return &Controller{
		config:   c,
		policy:   p,
		registry: newRegistry(),
	}
}

// AddConnection starts a new switch session on conn. The session is closed when ctx is canceled.
func (r *Controller) AddConnection(ctx context.Context, conn net.Conn) {
	conf := sessionConfig{
		conn:     conn,
		policy:   r.policy,
		config:   r.config,
		registry: r.registry,
	}
	session := newSession(conf)
	go session.Run(ctx)
}

// Switches returns the status of the active switches sorted by DPID.
func (r *Controller) Switches(ctx context.Context) ([]SwitchStatus, error) {
	result := make([]SwitchStatus, 0)
	for _, h := range r.registry.all() {
		var status SwitchStatus
		err := h.call(ctx, func() error {
			status = h.session().snapshot()
			return nil
		})
		if err != nil {
			if errors.Cause(err) == errSessionClosed {
				// Disconnected while we are iterating.
				continue
			}
			return nil, err
		}
		result = append(result, status)
	}

	return result, nil
}

// Hosts returns the identity table of the switch whose DPID is dpid.
func (r *Controller) Hosts(ctx context.Context, dpid string) ([]Host, error) {
	h, ok := r.registry.get(dpid)
	if !ok {
		return nil, ErrUnknownDevice
	}

	var hosts []Host
	err := h.call(ctx, func() error {
		hosts = h.session().table.Snapshot()
		return nil
	})
	if err != nil {
		if errors.Cause(err) == errSessionClosed {
			return nil, ErrUnknownDevice
		}
		return nil, err
	}

	return hosts, nil
}

// RemoveFlows removes the learned flows whose destination is mac from all the active switches. All the learned
// flows are removed if mac is nil. Identity tables are not changed.
func (r *Controller) RemoveFlows(ctx context.Context, mac net.HardwareAddr) error {
	for _, h := range r.registry.all() {
		err := h.call(ctx, func() error {
			return h.session().removeLearned(mac)
		})
		if err != nil {
			if errors.Cause(err) == errSessionClosed {
				continue
			}
			return errors.Wrapf(err, "failed to remove flows on %v", h.id)
		}
		logger.Infof("removed the learned flows: DPID=%v, DstMAC=%v", h.id, mac)
	}

	return nil
}

func (r *Controller) String() string {
	var buf bytes.Buffer

	handles := r.registry.all()
	buf.WriteString(fmt.Sprintf("Switches (%v):\n", len(handles)))
	for _, h := range handles {
		buf.WriteString(fmt.Sprintf("\tDPID=%v, Remote=%v, Since=%v\n", h.id, h.remote, h.since.Format(time.RFC3339)))
	}

	return buf.String()
}
