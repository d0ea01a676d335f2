// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// crgctl inspects and reprograms the EAM2011 clock tree.
//
// Without --sim it maps the CRG through /dev/mem and must run as root on
// the target. With --sim every invocation starts from a register file at
// reset values that is brought up with the configured clock settings.
package main

import (
	"fmt"
	"os"

	"github.com/eam2011/bsp/config"
	"github.com/eam2011/bsp/pkg/crg"
	"github.com/eam2011/bsp/pkg/hardware/eam2011"
	"github.com/eam2011/bsp/pkg/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var log = logger.LogContainer.GetSimpleLogger()

var (
	rootOpts = struct {
		config   string
		sim      bool
		simPolls int
		logFile  string
		debug    bool
	}{}

	// Loaded by the root PersistentPreRunE.
	conf *config.Config

	rootCmd = &cobra.Command{
		Use:   "crgctl",
		Short: "EAM2011 clock tree control",
		Long:  "Inspect, configure and serve the EAM2011 clock/reset generator.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if rootOpts.debug {
				logger.SetLevel(zapcore.DebugLevel)
			}
			c, err := config.Load(afero.NewOsFs(), rootOpts.config)
			if err != nil {
				return err
			}
			conf = c
			path := rootOpts.logFile
			if path == "" {
				path = conf.LogFile
			}
			if path != "" {
				if err := logger.SetLogFile(path); err != nil {
					return err
				}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVarP(&rootOpts.config, "config", "c", "/etc/crg.yaml", "Clock configuration file")
	f.BoolVar(&rootOpts.sim, "sim", false, "Run against a simulated register file instead of /dev/mem")
	f.IntVar(&rootOpts.simPolls, "sim-lock-polls", 8, "Status polls before the simulated SPLL reports lock")
	f.StringVar(&rootOpts.logFile, "log-file", "", "Also write JSON logs to this file")
	f.BoolVarP(&rootOpts.debug, "debug", "d", false, "Enable debug logging")
}

// openTree returns a clock tree for the selected backend. A simulated
// tree is brought up from the loaded configuration unless bringUp is
// false. A hardware tree is synced with the live mux selectors.
func openTree(bringUp bool) (*crg.Tree, func(), error) {
	if rootOpts.sim {
		regs := eam2011.NewRegisterFile()
		regs.SimulateSpllLock(rootOpts.simPolls)
		soc := eam2011.OpenWithMemory(regs)
		tree := crg.New(soc)
		if bringUp {
			if err := initTree(tree); err != nil {
				soc.Close()
				return nil, nil, err
			}
		}
		return tree, soc.Close, nil
	}

	soc, err := eam2011.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open CRG: %w", err)
	}
	tree := crg.New(soc)
	tree.Sync()
	tree.SystemCoreClockUpdate()
	return tree, soc.Close, nil
}

func initTree(tree *crg.Tree) error {
	cfg, err := conf.Clock.ToCrg()
	if err != nil {
		return err
	}
	return tree.Init(cfg)
}

func parseNames(args []string) ([]crg.Name, error) {
	names := make([]crg.Name, 0, len(args))
	for _, a := range args {
		n, err := crg.ParseName(a)
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "crgctl: %v\n", err)
		os.Exit(1)
	}
}
