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
	"github.com/prometheus/client_golang/prometheus"
)

var (
	sessionGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "steerd_sessions",
			Help: "Number of switch sessions by state.",
		},
		[]string{"state"},
	)
	packetInCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "steerd_packet_in_total",
			Help: "Number of PACKET_IN messages received from switches.",
		},
	)
	decisionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steerd_decisions_total",
			Help: "Number of forwarding decisions by kind.",
		},
		[]string{"kind"},
	)
	ruleCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steerd_rules_installed_total",
			Help: "Number of flow rules sent to switches by kind.",
		},
		[]string{"kind"},
	)
	packetOutCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "steerd_packet_out_total",
			Help: "Number of PACKET_OUT messages sent to switches.",
		},
	)
	expiredCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "steerd_rules_expired_total",
			Help: "Number of learned flow rules removed by switches.",
		},
	)
)

func init() {
	prometheus.MustRegister(sessionGauge)
	prometheus.MustRegister(packetInCounter)
	prometheus.MustRegister(decisionCounter)
	prometheus.MustRegister(ruleCounter)
	prometheus.MustRegister(packetOutCounter)
	prometheus.MustRegister(expiredCounter)
}

func countDecision(d Decision) {
	switch {
	case d.Flood:
		decisionCounter.WithLabelValues("flood").Inc()
	case d.Redirected:
		decisionCounter.WithLabelValues("redirect").Inc()
	case d.Steered:
		decisionCounter.WithLabelValues("direct").Inc()
	default:
		decisionCounter.WithLabelValues("port").Inc()
	}
}
