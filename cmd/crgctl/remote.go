// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/eam2011/bsp/pkg/service/grpc"
	"github.com/spf13/cobra"
)

var (
	remoteOpts = struct {
		target  string
		timeout time.Duration
	}{}

	remoteCmd = &cobra.Command{
		Use:   "remote",
		Short: "Talk to a running crgctl serve",
	}

	remoteFreqCmd = &cobra.Command{
		Use:   "freq <clock...>",
		Short: "Print clock frequencies",
		Args:  cobra.MinimumNArgs(1),
		RunE: withClient(func(ctx context.Context, c *grpc.Client, args []string) error {
			for _, a := range args {
				hz, err := c.GetFreq(ctx, a)
				if err != nil {
					return err
				}
				fmt.Printf("%-16s %d\n", a, hz)
			}
			return nil
		}),
	}

	remoteParentCmd = &cobra.Command{
		Use:   "parent <mux> [parent]",
		Short: "Show or change the parent of a mux",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withClient(func(ctx context.Context, c *grpc.Client, args []string) error {
			if len(args) == 2 {
				if err := c.SetParent(ctx, args[0], args[1]); err != nil {
					return err
				}
			}
			p, err := c.GetParent(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Println(p)
			return nil
		}),
	}

	remoteDividerCmd = &cobra.Command{
		Use:   "divider <clock>",
		Short: "Show a divider ratio",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(func(ctx context.Context, c *grpc.Client, args []string) error {
			r, err := c.GetClkDivider(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Println(r)
			return nil
		}),
	}

	remoteGateCmd = &cobra.Command{
		Use:   "gate <clock> <on|off>",
		Short: "Gate or ungate a peripheral clock",
		Args:  cobra.ExactArgs(2),
		RunE: withClient(func(ctx context.Context, c *grpc.Client, args []string) error {
			on, err := strconv.ParseBool(args[1])
			if err != nil {
				switch args[1] {
				case "on":
					on = true
				case "off":
					on = false
				default:
					return fmt.Errorf("gate state %q, want on or off", args[1])
				}
			}
			return c.ClockEnable(ctx, args[0], on)
		}),
	}
)

func init() {
	f := remoteCmd.PersistentFlags()
	f.StringVarP(&remoteOpts.target, "target", "t", "", "Service address, defaults to the configured gRPC listen address")
	f.DurationVar(&remoteOpts.timeout, "timeout", 5*time.Second, "Per command timeout")

	remoteCmd.AddCommand(remoteFreqCmd, remoteParentCmd, remoteDividerCmd, remoteGateCmd)
	rootCmd.AddCommand(remoteCmd)
}

func withClient(f func(context.Context, *grpc.Client, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		target := remoteOpts.target
		if target == "" {
			target = conf.GRPC.Listen
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), remoteOpts.timeout)
		defer cancel()
		c, err := grpc.Dial(ctx, target)
		if err != nil {
			return err
		}
		defer c.Close()
		return f(ctx, c, args)
	}
}
