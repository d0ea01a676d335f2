// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/eam2011/bsp/pkg/crg"
	"github.com/spf13/cobra"
)

var (
	freqCmd = &cobra.Command{
		Use:   "freq [clock...]",
		Short: "Print clock frequencies",
		Long:  "Resolve and print the frequency of the named clocks, or of the system clocks when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"CPU_CORE_CLK", "BUS_CLK", "APB_CLK", "CPU_RTC_CLK"}
			}
			names, err := parseNames(args)
			if err != nil {
				return err
			}
			tree, done, err := openTree(true)
			if err != nil {
				return err
			}
			defer done()
			for _, n := range names {
				hz, err := tree.GetFreq(n)
				if err != nil {
					return err
				}
				fmt.Printf("%-16s %d\n", n, hz)
			}
			return nil
		},
	}

	parentCmd = &cobra.Command{
		Use:   "parent <mux> [parent]",
		Short: "Show or change the parent of a mux",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := parseNames(args)
			if err != nil {
				return err
			}
			tree, done, err := openTree(true)
			if err != nil {
				return err
			}
			defer done()
			if len(names) == 2 {
				if err := tree.SetParent(names[0], names[1]); err != nil {
					return err
				}
			}
			p, err := tree.GetParent(names[0])
			if err != nil {
				return err
			}
			fmt.Println(p)
			return nil
		},
	}

	dividerCmd = &cobra.Command{
		Use:   "divider <clock> [ratio]",
		Short: "Show or change a divider ratio",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := crg.ParseName(args[0])
			if err != nil {
				return err
			}
			tree, done, err := openTree(true)
			if err != nil {
				return err
			}
			defer done()
			if len(args) == 2 {
				ratio, err := strconv.ParseUint(args[1], 0, 32)
				if err != nil {
					return fmt.Errorf("ratio %q: %w", args[1], crg.ErrInvalidParameter)
				}
				code, err := crg.DividerCode(n, uint32(ratio))
				if err != nil {
					return err
				}
				if err := tree.SetClkDivider(n, code); err != nil {
					return err
				}
			}
			r, err := tree.GetClkDivider(n)
			if err != nil {
				return err
			}
			fmt.Println(r)
			return nil
		},
	}

	enableCmd = &cobra.Command{
		Use:   "enable <gate...>",
		Short: "Ungate peripheral clocks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setGates(args, true)
		},
	}

	disableCmd = &cobra.Command{
		Use:   "disable <gate...>",
		Short: "Gate peripheral clocks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setGates(args, false)
		},
	}

	dumpRegs bool

	dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Print the whole clock tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, done, err := openTree(true)
			if err != nil {
				return err
			}
			defer done()
			return dump(os.Stdout, tree, dumpRegs)
		},
	}
)

func init() {
	dumpCmd.Flags().BoolVar(&dumpRegs, "regs", false, "Also print the raw CRG registers")
	rootCmd.AddCommand(freqCmd, parentCmd, dividerCmd, enableCmd, disableCmd, dumpCmd)
}

func setGates(args []string, enable bool) error {
	names, err := parseNames(args)
	if err != nil {
		return err
	}
	tree, done, err := openTree(true)
	if err != nil {
		return err
	}
	defer done()
	for _, n := range names {
		if err := tree.ClockEnable(n, enable); err != nil {
			return err
		}
	}
	return nil
}

func dump(out io.Writer, tree *crg.Tree, regs bool) error {
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "CLOCK\tTYPE\tPARENT\tHZ\tSTATE")
	for n := crg.Name(0); n < crg.NumClocks; n++ {
		d, err := tree.Lookup(n)
		if err != nil {
			continue
		}
		parent := d.Parent()
		if d.Category() == crg.MuxClock {
			if p, err := tree.GetParent(n); err == nil {
				parent = p
			}
		}
		hz := "-"
		if f, err := tree.GetFreq(n); err == nil {
			hz = strconv.FormatUint(uint64(f), 10)
		}
		state := ""
		if d.Category() == crg.GateClock {
			state = "off"
			if on, err := tree.ClockEnabled(n); err == nil && on {
				state = "on"
			}
		}
		fmt.Fprintf(w, "%v\t%v\t%v\t%s\t%s\n", n, d.Category(), parent, hz, state)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if !regs {
		return nil
	}
	fmt.Fprintln(out)
	return tree.Soc().DumpCrg(out)
}
