// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/eam2011/bsp/pkg/crg"
	"github.com/eam2011/bsp/pkg/logger"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var rawDefault []byte

var log = logger.LogContainer.GetSimpleLogger()

type Metrics struct {
	Listen string `yaml:"listen"`
}

type GRPC struct {
	Listen string `yaml:"listen"`
}

type Config struct {
	Board   string      `yaml:"board"`
	LogFile string      `yaml:"logFile"`
	Metrics Metrics     `yaml:"metrics"`
	GRPC    GRPC        `yaml:"grpc"`
	Clock   ClockConfig `yaml:"clock"`
}

type Sosc struct {
	Freq        uint32 `yaml:"freq"`
	Enable      bool   `yaml:"enable"`
	Bypass      bool   `yaml:"bypass"`
	AgcGain     uint32 `yaml:"agcGain"`
	BiasCurrent uint32 `yaml:"biasCurrent"`
	FeedbackRes uint32 `yaml:"feedbackRes"`
}

type Spll struct {
	// Source is the SPLL reference, FROSC_CLK or SOSC_CLK.
	Source     string `yaml:"source"`
	RefDiv     uint32 `yaml:"refDiv"`
	FbDivInt   uint32 `yaml:"fbDivInt"`
	FbDivFrac  uint32 `yaml:"fbDivFrac"`
	PostDiv0   uint32 `yaml:"postDiv0"`
	LockBudget uint32 `yaml:"lockBudget"`
}

type External struct {
	Clock string `yaml:"clock"`
	Hz    uint32 `yaml:"hz"`
}

type Divider struct {
	Clock string `yaml:"clock"`
	Ratio uint32 `yaml:"ratio"`
}

type Mux struct {
	Clock  string `yaml:"clock"`
	Parent string `yaml:"parent"`
}

type Gate struct {
	Clock  string `yaml:"clock"`
	Enable bool   `yaml:"enable"`
}

// ClockConfig is the board clock setup with clocks, mux parents and
// divider ratios spelled out by name.
type ClockConfig struct {
	Sosc     Sosc       `yaml:"sosc"`
	Spll     Spll       `yaml:"spll"`
	External []External `yaml:"external"`
	Dividers []Divider  `yaml:"dividers"`
	Muxes    []Mux      `yaml:"muxes"`
	Gates    []Gate     `yaml:"gates"`
}

var DefaultConfig = mustDefault()

func mustDefault() *Config {
	c, err := parse(rawDefault, &Config{})
	if err != nil {
		panic(err)
	}
	return c
}

func parse(b []byte, c *Config) (*Config, error) {
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads the board configuration at path on top of the defaults. A
// missing file is not an error, the defaults are used instead.
func Load(fs afero.Fs, path string) (*Config, error) {
	b, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warnf("Failed to read board configuration %s: %v", path, err)
		log.Warnf("Using default board configuration")
		return mustDefault(), nil
	}
	if err != nil {
		return nil, err
	}
	c, err := parse(b, mustDefault())
	if err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return c, nil
}

// ToCrg resolves every name in c and returns the equivalent Init
// configuration. All problems found are returned together.
func (c *ClockConfig) ToCrg() (*crg.Config, error) {
	var errs []error
	name := func(s string) crg.Name {
		n, err := crg.ParseName(s)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}

	cfg := &crg.Config{
		Sosc: crg.SoscConfig{
			Freq:        c.Sosc.Freq,
			Enable:      c.Sosc.Enable,
			Bypass:      c.Sosc.Bypass,
			AgcGain:     c.Sosc.AgcGain,
			BiasCurrent: c.Sosc.BiasCurrent,
			FeedbackRes: c.Sosc.FeedbackRes,
		},
		Spll: crg.SpllConfig{
			RefDiv:     c.Spll.RefDiv,
			FbDivInt:   c.Spll.FbDivInt,
			FbDivFrac:  c.Spll.FbDivFrac,
			PostDiv0:   c.Spll.PostDiv0,
			LockBudget: c.Spll.LockBudget,
		},
	}
	if src := name(c.Spll.Source); src < crg.NumClocks {
		sel, err := crg.MuxSelector(crg.SPLL_REF_CLK, src)
		if err != nil {
			errs = append(errs, err)
		}
		cfg.SpllRef = crg.MuxRequest{Clock: crg.SPLL_REF_CLK, Sel: sel}
	}
	for _, e := range c.External {
		cfg.External = append(cfg.External, crg.ExternalFreq{Clock: name(e.Clock), Hz: e.Hz})
	}
	for _, d := range c.Dividers {
		n := name(d.Clock)
		if n >= crg.NumClocks {
			continue
		}
		code, err := crg.DividerCode(n, d.Ratio)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cfg.Dividers = append(cfg.Dividers, crg.DivRequest{Clock: n, Code: code})
	}
	for _, m := range c.Muxes {
		n, p := name(m.Clock), name(m.Parent)
		if n >= crg.NumClocks || p >= crg.NumClocks {
			continue
		}
		sel, err := crg.MuxSelector(n, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cfg.Muxes = append(cfg.Muxes, crg.MuxRequest{Clock: n, Sel: sel})
	}
	for _, g := range c.Gates {
		cfg.Gates = append(cfg.Gates, crg.GateRequest{Clock: name(g.Clock), Enable: g.Enable})
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}
