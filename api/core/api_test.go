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

package core

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dcyaprogrammer/CAN201-CW/api"
	"github.com/Dcyaprogrammer/CAN201-CW/network"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	switches []network.SwitchStatus
	hosts    map[string][]network.Host
	removed  []net.HardwareAddr
	err      error
}

func (r *fakeController) Switches(ctx context.Context) ([]network.SwitchStatus, error) {
	return r.switches, r.err
}

func (r *fakeController) Hosts(ctx context.Context, dpid string) ([]network.Host, error) {
	if r.err != nil {
		return nil, r.err
	}
	v, ok := r.hosts[dpid]
	if !ok {
		return nil, network.ErrUnknownDevice
	}

	return v, nil
}

func (r *fakeController) RemoveFlows(ctx context.Context, mac net.HardwareAddr) error {
	if r.err != nil {
		return r.err
	}
	r.removed = append(r.removed, mac)

	return nil
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, c api.Controller) *httptest.Server {
	a := &API{}
	a.Controller = c
	handler, err := a.Handler(a.Routes()...)
	require.NoError(t, err)

	s := httptest.NewServer(handler)
	t.Cleanup(s.Close)

	return s
}

func call(t *testing.T, method, url, body string) envelope {
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var v envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))

	return v
}

func TestListSwitch(t *testing.T) {
	since := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	c := &fakeController{
		switches: []network.SwitchStatus{
			{DPID: "1", Remote: "10.0.0.1:50000", State: "ACTIVE", Hosts: 3, Since: since},
		},
	}
	s := newTestServer(t, c)

	resp := call(t, "GET", s.URL+"/api/v1/switch", "")
	require.Equal(t, api.StatusOkay, resp.Status)
	var switches []network.SwitchStatus
	require.NoError(t, json.Unmarshal(resp.Data, &switches))
	assert.Equal(t, c.switches, switches)

	c.err = errors.New("boom")
	resp = call(t, "GET", s.URL+"/api/v1/switch", "")
	assert.Equal(t, api.StatusInternalServerError, resp.Status)
	assert.Equal(t, "boom", resp.Message)
}

func TestListHost(t *testing.T) {
	c := &fakeController{
		hosts: map[string][]network.Host{
			"1": {{MAC: "00:00:00:00:00:01", Port: 1}},
		},
	}
	s := newTestServer(t, c)

	resp := call(t, "GET", s.URL+"/api/v1/switch/1/host", "")
	require.Equal(t, api.StatusOkay, resp.Status)
	var hosts []network.Host
	require.NoError(t, json.Unmarshal(resp.Data, &hosts))
	assert.Equal(t, c.hosts["1"], hosts)

	resp = call(t, "GET", s.URL+"/api/v1/switch/2/host", "")
	assert.Equal(t, api.StatusNotFound, resp.Status)
}

func TestRemove(t *testing.T) {
	c := &fakeController{}
	s := newTestServer(t, c)

	tests := []struct {
		body   string
		status int
	}{
		{`{"mac": "00:00:00:00:00:01"}`, api.StatusOkay},
		{`{"mac": ""}`, api.StatusOkay},
		{`{}`, api.StatusOkay},
		{`{"mac": "invalid"}`, api.StatusInvalidParameter},
		{`[`, api.StatusInvalidParameter},
	}
	for _, v := range tests {
		resp := call(t, "POST", s.URL+"/api/v1/remove", v.body)
		if resp.Status != v.status {
			t.Fatalf("unexpected status: body=%v, expected=%v, got=%v", v.body, v.status, resp.Status)
		}
	}

	require.Len(t, c.removed, 3)
	assert.Equal(t, "00:00:00:00:00:01", c.removed[0].String())
	assert.Nil(t, c.removed[1])
	assert.Nil(t, c.removed[2])
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, &fakeController{})

	resp, err := http.Get(s.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNilController(t *testing.T) {
	a := &API{}
	_, err := a.Handler(a.Routes()...)
	assert.Error(t, err)
}
