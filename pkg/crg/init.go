// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crg

import (
	"fmt"

	"github.com/eam2011/bsp/pkg/hardware/eam2011"
)

// ExternalFreq sets the rate of an external input clock.
type ExternalFreq struct {
	Clock Name
	Hz    uint32
}

// Config is the clock tree Init brings up.
type Config struct {
	Sosc     SoscConfig
	Spll     SpllConfig
	SpllRef  MuxRequest
	External []ExternalFreq
	Dividers []DivRequest
	Muxes    []MuxRequest
	Gates    []GateRequest
}

// Init configures the whole clock tree from cfg. It can only run once per
// Tree. The divider, mux and gate steps are best effort, their failures
// are logged and do not stop Init.
func (t *Tree) Init(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil clock configuration: %w", ErrInvalidParameter)
	}
	if t.initialized {
		return fmt.Errorf("clock tree already initialized: %w", ErrInvalidOperation)
	}

	t.flash.SetClockMode(eam2011.FlashClockSafe)

	if err := t.SetSoscConfiguration(cfg.Sosc); err != nil {
		return fmt.Errorf("SOSC: %w", err)
	}
	if err := t.SetSpllConfiguration(cfg.Spll, cfg.SpllRef); err != nil {
		return fmt.Errorf("SPLL: %w", err)
	}
	for _, e := range cfg.External {
		if err := t.SetExternalFreq(e.Clock, e.Hz); err != nil {
			return err
		}
	}

	if err := t.SetDivClkConfiguration(cfg.Dividers); err != nil {
		log.Warnf("Divider configuration incomplete: %v", err)
	}
	if err := t.SetMuxClkConfiguration(cfg.Muxes); err != nil {
		log.Warnf("Mux configuration incomplete: %v", err)
	}
	for _, g := range cfg.Gates {
		if err := t.ClockEnable(g.Clock, g.Enable); err != nil {
			log.Warnf("Gate %v: %v", g.Clock, err)
		}
	}

	bus, err := t.GetFreq(BUS_CLK)
	if err != nil {
		return fmt.Errorf("bus clock: %w", err)
	}
	if err := t.flash.UpdateClockMode(bus); err != nil {
		return fmt.Errorf("flash clock mode: %w", err)
	}

	t.initialized = true
	t.SystemCoreClockUpdate()
	log.Infof("Clock tree up: core %d Hz, bus %d Hz, timer %d Hz", t.SystemCoreClock, bus, t.SystemTimerClock)
	return nil
}

// SystemCoreClockUpdate refreshes SystemCoreClock and SystemTimerClock.
// Clocks that cannot be resolved read as 0.
func (t *Tree) SystemCoreClockUpdate() {
	core, err := t.GetFreq(CPU_CORE_CLK)
	if err != nil {
		log.Warnf("Core clock: %v", err)
	}
	rtc, err := t.GetFreq(CPU_RTC_CLK)
	if err != nil {
		log.Warnf("Timer clock: %v", err)
	}
	t.SystemCoreClock = core
	t.SystemTimerClock = rtc
}
