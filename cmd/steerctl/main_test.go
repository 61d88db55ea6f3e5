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
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type request struct {
	method string
	path   string
	body   string
}

func newTestServer(t *testing.T, requests *[]request) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/switch", func(w http.ResponseWriter, r *http.Request) {
		*requests = append(*requests, request{r.Method, r.URL.Path, ""})
		io.WriteString(w, `{"status":200,"data":[{"dpid":"1","remote":"10.0.0.1:5000","state":"ACTIVE","hosts":2,"since":"2024-01-02T03:04:05Z"}]}`)
	})
	mux.HandleFunc("/api/v1/switch/1/host", func(w http.ResponseWriter, r *http.Request) {
		*requests = append(*requests, request{r.Method, r.URL.Path, ""})
		io.WriteString(w, `{"status":200,"data":[{"mac":"00:00:00:00:00:01","port":1}]}`)
	})
	mux.HandleFunc("/api/v1/switch/2/host", func(w http.ResponseWriter, r *http.Request) {
		*requests = append(*requests, request{r.Method, r.URL.Path, ""})
		io.WriteString(w, `{"status":405,"message":"unknown switch DPID: 2"}`)
	})
	mux.HandleFunc("/api/v1/remove", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*requests = append(*requests, request{r.Method, r.URL.Path, string(body)})
		io.WriteString(w, `{"status":200}`)
	})

	s := httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

func run(t *testing.T, s *httptest.Server, args ...string) (string, error) {
	color.NoColor = true

	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs(append([]string{"--addr", s.URL}, args...))
	err := cmd.Execute()

	return out.String(), err
}

func TestSwitches(t *testing.T) {
	var requests []request
	s := newTestServer(t, &requests)

	out, err := run(t, s, "switches")
	require.NoError(t, err)
	assert.Contains(t, out, "DPID")
	assert.Contains(t, out, "10.0.0.1:5000")
	assert.Contains(t, out, "ACTIVE")
	assert.Equal(t, []request{{"GET", "/api/v1/switch", ""}}, requests)
}

func TestHosts(t *testing.T) {
	var requests []request
	s := newTestServer(t, &requests)

	out, err := run(t, s, "hosts", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "00:00:00:00:00:01")

	_, err = run(t, s, "hosts", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown switch DPID")

	_, err = run(t, s, "hosts")
	assert.Error(t, err, "DPID is required")
}

func TestRemove(t *testing.T) {
	var requests []request
	s := newTestServer(t, &requests)

	out, err := run(t, s, "remove", "00-00-00-00-00-0A")
	require.NoError(t, err)
	assert.Contains(t, out, "00:00:00:00:00:0a")

	_, err = run(t, s, "remove")
	require.NoError(t, err)

	_, err = run(t, s, "remove", "bogus")
	assert.Error(t, err)

	require.Len(t, requests, 2)
	macs := make([]string, 0, len(requests))
	for _, v := range requests {
		assert.Equal(t, "POST", v.method)
		p := struct {
			MAC string `json:"mac"`
		}{}
		require.NoError(t, json.Unmarshal([]byte(v.body), &p))
		macs = append(macs, p.MAC)
	}
	assert.Equal(t, []string{"00:00:00:00:00:0a", ""}, macs)
}
