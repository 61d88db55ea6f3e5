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

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Dcyaprogrammer/CAN201-CW/api"
	"github.com/Dcyaprogrammer/CAN201-CW/network"

	"github.com/pkg/errors"
)

type client struct {
	base string
	http *http.Client
}

func newClient(addr string) *client {
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}

	return &client{
		base: strings.TrimRight(addr, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

type envelope struct {
	Status  api.Status      `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (r *client) do(method, path string, body interface{}, result interface{}) error {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, r.base+path, &payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to query the controller")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected HTTP status: %v", resp.Status)
	}

	var v envelope
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return errors.Wrap(err, "failed to decode the response")
	}
	if v.Status != api.StatusOkay {
		return errors.Errorf("%v (status=%v)", v.Message, v.Status)
	}
	if result == nil || len(v.Data) == 0 {
		return nil
	}

	return json.Unmarshal(v.Data, result)
}

func (r *client) switches() ([]network.SwitchStatus, error) {
	var v []network.SwitchStatus
	if err := r.do("GET", "/api/v1/switch", nil, &v); err != nil {
		return nil, err
	}

	return v, nil
}

func (r *client) hosts(dpid string) ([]network.Host, error) {
	var v []network.Host
	if err := r.do("GET", "/api/v1/switch/"+url.PathEscape(dpid)+"/host", nil, &v); err != nil {
		return nil, err
	}

	return v, nil
}

func (r *client) remove(mac string) error {
	body := struct {
		MAC string `json:"mac"`
	}{mac}

	return r.do("POST", "/api/v1/remove", body, nil)
}
