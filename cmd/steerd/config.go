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
	"net"
	"time"

	"github.com/Dcyaprogrammer/CAN201-CW/network"
	"github.com/Dcyaprogrammer/CAN201-CW/northbound/app/steering"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type config struct {
	port      int
	logLevel  string
	logTarget string
	steering  steering.Config
	network   network.Config
	rest      struct {
		port     uint16
		certFile string
		keyFile  string
	}
}

func setDefaults(v *viper.Viper) {
	d := network.DefaultConfig()

	v.SetDefault("default.port", 6653)
	v.SetDefault("default.log_level", "info")
	v.SetDefault("default.log_target", "syslog")
	v.SetDefault("steering.client", "00:00:00:00:00:03")
	v.SetDefault("steering.server", "00:00:00:00:00:01")
	v.SetDefault("rule.idle_timeout", d.IdleTimeout)
	v.SetDefault("rule.table_miss_priority", d.TableMissPriority)
	v.SetDefault("rule.learned_priority", d.LearnedPriority)
	v.SetDefault("rule.dedup_window", 0)
	v.SetDefault("rest.port", 7070)
	v.SetDefault("rest.tls", false)
}

// parseConfig validates the configuration loaded into v.
func parseConfig(v *viper.Viper) (*config, error) {
	c := new(config)

	c.port = v.GetInt("default.port")
	if c.port <= 0 || c.port > 0xFFFF {
		return nil, errors.New("invalid default.port")
	}
	c.logLevel = v.GetString("default.log_level")
	if len(c.logLevel) == 0 {
		return nil, errors.New("invalid default.log_level")
	}
	c.logTarget = v.GetString("default.log_target")
	if c.logTarget != "syslog" && c.logTarget != "stderr" {
		return nil, errors.New("invalid default.log_target: should be syslog or stderr")
	}

	var err error
	c.steering.Client, err = net.ParseMAC(v.GetString("steering.client"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid steering.client")
	}
	c.steering.Server, err = net.ParseMAC(v.GetString("steering.server"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid steering.server")
	}

	idle := v.GetInt("rule.idle_timeout")
	if idle <= 0 || idle > 0xFFFF {
		return nil, errors.New("invalid rule.idle_timeout")
	}
	c.network.IdleTimeout = uint16(idle)
	missPriority := v.GetInt("rule.table_miss_priority")
	learnedPriority := v.GetInt("rule.learned_priority")
	if missPriority < 0 || learnedPriority > 0xFFFF || learnedPriority <= missPriority {
		return nil, errors.New("invalid rule priorities: learned_priority should be greater than table_miss_priority")
	}
	c.network.TableMissPriority = uint16(missPriority)
	c.network.LearnedPriority = uint16(learnedPriority)
	window := v.GetInt("rule.dedup_window")
	if window < 0 {
		return nil, errors.New("invalid rule.dedup_window")
	}
	c.network.DedupWindow = time.Duration(window) * time.Second

	port := v.GetInt("rest.port")
	if port <= 0 || port > 0xFFFF {
		return nil, errors.New("invalid rest.port")
	}
	c.rest.port = uint16(port)
	if v.GetBool("rest.tls") {
		c.rest.certFile = v.GetString("rest.cert_file")
		if len(c.rest.certFile) == 0 || c.rest.certFile[0] != '/' {
			return nil, errors.New("rest.cert_file should be specified as an absolute path")
		}
		c.rest.keyFile = v.GetString("rest.key_file")
		if len(c.rest.keyFile) == 0 || c.rest.keyFile[0] != '/' {
			return nil, errors.New("rest.key_file should be specified as an absolute path")
		}
	}

	return c, nil
}
