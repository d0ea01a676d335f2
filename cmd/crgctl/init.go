// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/eam2011/bsp/pkg/crg"
	"github.com/jpillora/backoff"
	"github.com/spf13/cobra"
)

var (
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Bring up the clock tree from the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, done, err := openTree(false)
			if err != nil {
				return err
			}
			defer done()
			if err := initTree(tree); err != nil {
				return err
			}
			fmt.Printf("SystemCoreClock  %d\nSystemTimerClock %d\n", tree.SystemCoreClock, tree.SystemTimerClock)
			return nil
		},
	}

	spllOpts = struct {
		source   string
		refDiv   uint32
		fbInt    uint32
		fbFrac   uint32
		postDiv0 uint32
		budget   uint32
		retries  int
	}{}

	spllCmd = &cobra.Command{
		Use:   "spll",
		Short: "Reprogram the system PLL",
		Long: "Reprogram the system PLL. Unset flags keep the configured value. " +
			"The output is 4 * fbint * ref / (1 + refdiv) / (2 * (1 + postdiv0)).",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := conf.Clock.Spll
			f := cmd.Flags()
			if f.Changed("source") {
				c.Source = spllOpts.source
			}
			if f.Changed("refdiv") {
				c.RefDiv = spllOpts.refDiv
			}
			if f.Changed("fbint") {
				c.FbDivInt = spllOpts.fbInt
			}
			if f.Changed("fbfrac") {
				c.FbDivFrac = spllOpts.fbFrac
			}
			if f.Changed("postdiv0") {
				c.PostDiv0 = spllOpts.postDiv0
			}
			if f.Changed("lock-budget") {
				c.LockBudget = spllOpts.budget
			}

			src, err := crg.ParseName(c.Source)
			if err != nil {
				return err
			}
			sel, err := crg.MuxSelector(crg.SPLL_REF_CLK, src)
			if err != nil {
				return err
			}
			cfg := crg.SpllConfig{
				RefDiv:     c.RefDiv,
				FbDivInt:   c.FbDivInt,
				FbDivFrac:  c.FbDivFrac,
				PostDiv0:   c.PostDiv0,
				LockBudget: c.LockBudget,
			}

			tree, done, err := openTree(true)
			if err != nil {
				return err
			}
			defer done()
			ref := crg.MuxRequest{Clock: crg.SPLL_REF_CLK, Sel: sel}
			if err := retryLock(func() error { return tree.SetSpllConfiguration(cfg, ref) }, spllOpts.retries); err != nil {
				return err
			}
			tree.SystemCoreClockUpdate()
			hz, err := tree.GetFreq(crg.SPLL_CLK)
			if err != nil {
				return err
			}
			fmt.Printf("SPLL_CLK %d\n", hz)
			return nil
		},
	}
)

func init() {
	f := spllCmd.Flags()
	f.StringVar(&spllOpts.source, "source", "", "Reference clock, FROSC_CLK or SOSC_CLK")
	f.Uint32Var(&spllOpts.refDiv, "refdiv", 0, "Reference divider")
	f.Uint32Var(&spllOpts.fbInt, "fbint", 0, "Feedback divider, integer part")
	f.Uint32Var(&spllOpts.fbFrac, "fbfrac", 0, "Feedback divider, fractional part")
	f.Uint32Var(&spllOpts.postDiv0, "postdiv0", 0, "Output post divider")
	f.Uint32Var(&spllOpts.budget, "lock-budget", 0, "Lock status polls per attempt")
	f.IntVar(&spllOpts.retries, "retries", 0, "Retry this many times if the PLL does not lock")

	rootCmd.AddCommand(initCmd, spllCmd)
}

// retryLock calls f until it does not time out or retries are exhausted.
func retryLock(f func() error, retries int) error {
	b := &backoff.Backoff{
		Min:    10 * time.Millisecond,
		Max:    time.Second,
		Factor: 2,
	}
	for {
		err := f()
		if err == nil || !errors.Is(err, crg.ErrTimeout) || b.Attempt() >= float64(retries) {
			return err
		}
		d := b.Duration()
		log.Warnf("SPLL lock timed out, retrying in %v", d)
		time.Sleep(d)
	}
}
