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
	"sort"
	"sync"
	"time"

	"github.com/Dcyaprogrammer/CAN201-CW/openflow/transceiver"

	"github.com/pkg/errors"
)

var (
	errSessionClosed = errors.New("session is closed")
)

// sessionHandle is the part of a session that other goroutines may touch.
type sessionHandle struct {
	id     string
	remote string
	since  time.Time
	jobs   chan<- transceiver.Job
	// A cancel function to disconnect this session.
	cancel context.CancelFunc
	done   <-chan struct{}
	s      *session
}

// session should only be used in a function passed to call.
func (r *sessionHandle) session() *session {
	return r.s
}

// call runs f on the session goroutine and waits for its result.
func (r *sessionHandle) call(ctx context.Context, f func() error) error {
	result := make(chan error, 1)
	job := func() error {
		err := f()
		result <- err
		return err
	}

	select {
	case r.jobs <- job:
	case <-r.done:
		return errSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-r.done:
		return errSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

type registry struct {
	mu    sync.Mutex
	elems map[string]*sessionHandle
}

func newRegistry() *registry {
	return &registry{
		elems: make(map[string]*sessionHandle),
	}
}

// add registers h and cancels the previous session that has the same DPID, if any.
func (r *registry) add(h *sessionHandle) {
	r.mu.Lock()
	prev, ok := r.elems[h.id]
	r.elems[h.id] = h
	r.mu.Unlock()

	if ok && prev != h {
		// Disconnect the previous session. Some switches make a new fresh connection
		// without closing the old one after a momentary physical disconnection.
		logger.Warningf("duplicated DPID %v: disconnecting the previous session from %v", h.id, prev.remote)
		prev.cancel()
	}
}

// remove unregisters h only if it is still the current session for its DPID.
func (r *registry) remove(h *sessionHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.elems[h.id]; ok && cur == h {
		delete(r.elems, h.id)
	}
}

func (r *registry) get(dpid string) (h *sessionHandle, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok = r.elems[dpid]
	return h, ok
}

func (r *registry) all() []*sessionHandle {
	r.mu.Lock()
	result := make([]*sessionHandle, 0, len(r.elems))
	for _, v := range r.elems {
		result = append(result, v)
	}
	r.mu.Unlock()

	sort.Slice(result, func(i, j int) bool { return result[i].id < result[j].id })

	return result
}
