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
	"time"

	"github.com/Dcyaprogrammer/CAN201-CW/api"
	"github.com/Dcyaprogrammer/CAN201-CW/network"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/davecgh/go-spew/spew"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("core")
)

const (
	requestTimeout = 5 * time.Second
)

type API struct {
	api.Server
}

func (r *API) Routes() []*rest.Route {
	return []*rest.Route{
		rest.Get("/api/v1/switch", r.listSwitch),
		rest.Get("/api/v1/switch/:dpid/host", r.listHost),
		rest.Post("/api/v1/remove", r.remove),
	}
}

func (r *API) Serve() error {
	return r.Server.Serve(r.Routes()...)
}

func (r *API) listSwitch(w rest.ResponseWriter, req *rest.Request) {
	logger.Debugf("switch list request from %v", req.RemoteAddr)

	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	switches, err := r.Controller.Switches(ctx)
	if err != nil {
		logger.Errorf("failed to query the switches: %v", err)
		w.WriteJson(&api.Response{Status: api.StatusInternalServerError, Message: err.Error()})
		return
	}

	w.WriteJson(&api.Response{
		Status: api.StatusOkay,
		Data:   switches,
	})
}

func (r *API) listHost(w rest.ResponseWriter, req *rest.Request) {
	dpid := req.PathParam("dpid")
	logger.Debugf("host list request from %v: DPID=%v", req.RemoteAddr, dpid)

	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	hosts, err := r.Controller.Hosts(ctx, dpid)
	if err != nil {
		if errors.Cause(err) == network.ErrUnknownDevice {
			w.WriteJson(&api.Response{Status: api.StatusNotFound, Message: "unknown switch DPID: " + dpid})
			return
		}
		logger.Errorf("failed to query the hosts: %v", err)
		w.WriteJson(&api.Response{Status: api.StatusInternalServerError, Message: err.Error()})
		return
	}

	w.WriteJson(&api.Response{
		Status: api.StatusOkay,
		Data:   hosts,
	})
}

func (r *API) remove(w rest.ResponseWriter, req *rest.Request) {
	p := new(removeParam)
	if err := req.DecodeJsonPayload(p); err != nil {
		w.WriteJson(&api.Response{Status: api.StatusInvalidParameter, Message: err.Error()})
		return
	}
	logger.Debugf("remove request from %v: %v", req.RemoteAddr, spew.Sdump(p))

	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	if err := r.Controller.RemoveFlows(ctx, p.MAC); err != nil {
		logger.Errorf("failed to remove flows: %v", err)
		w.WriteJson(&api.Response{Status: api.StatusInternalServerError, Message: err.Error()})
		return
	}

	w.WriteJson(&api.Response{Status: api.StatusOkay})
}

type removeParam struct {
	MAC net.HardwareAddr
}

func (r *removeParam) UnmarshalJSON(data []byte) error {
	v := struct {
		MAC string `json:"mac"`
	}{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	// If MAC is empty, remove all flows.
	if len(v.MAC) == 0 {
		return nil
	}

	addr, err := net.ParseMAC(v.MAC)
	if err != nil {
		return err
	}
	r.MAC = addr

	return nil
}
