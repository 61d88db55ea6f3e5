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
	"fmt"
	"io"
	"net"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Dcyaprogrammer/CAN201-CW/network"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	addr string
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "steerctl",
		Short:         "Inspect and manage a running steerd controller",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&addr, "addr", "localhost:7070", "address of the steerd REST API")

	root.AddCommand(&cobra.Command{
		Use:   "switches",
		Short: "List the connected switches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newClient(addr).switches()
			if err != nil {
				return err
			}
			printSwitches(out, v)
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "hosts <dpid>",
		Short: "Show the hosts learned by a switch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newClient(addr).hosts(args[0])
			if err != nil {
				return err
			}
			printHosts(out, v)
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "remove [mac]",
		Short: "Remove the learned flows to mac, or all the learned flows",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mac := ""
			if len(args) == 1 {
				v, err := net.ParseMAC(args[0])
				if err != nil {
					return errors.Wrap(err, "invalid MAC address")
				}
				mac = v.String()
			}
			if err := newClient(addr).remove(mac); err != nil {
				return err
			}
			if mac == "" {
				fmt.Fprintln(out, color.GreenString("removed all the learned flows"))
			} else {
				fmt.Fprintln(out, color.GreenString("removed the learned flows to %v", mac))
			}
			return nil
		},
	})

	return root
}

func printSwitches(out io.Writer, switches []network.SwitchStatus) {
	if len(switches) == 0 {
		fmt.Fprintln(out, color.YellowString("no switch is connected"))
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DPID\tREMOTE\tSTATE\tHOSTS\tSINCE")
	for _, v := range switches {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n", color.CyanString(v.DPID), v.Remote, v.State, v.Hosts, v.Since.Format(time.RFC3339))
	}
	w.Flush()
}

func printHosts(out io.Writer, hosts []network.Host) {
	if len(hosts) == 0 {
		fmt.Fprintln(out, color.YellowString("no host is learned"))
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MAC\tPORT")
	for _, v := range hosts {
		fmt.Fprintf(w, "%v\t%v\n", color.CyanString(v.MAC), v.Port)
	}
	w.Flush()
}
