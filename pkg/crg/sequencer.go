// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crg

import (
	"fmt"

	"github.com/eam2011/bsp/pkg/hardware/eam2011"
)

// DefaultSpllLockBudget is the number of status polls SetSpllConfiguration
// waits for lock when SpllConfig.LockBudget is zero.
const DefaultSpllLockBudget = 0x20000

// SpllConfig holds the SPLL divider settings. The output frequency is
// 4 * FbDivInt * ref / (1 + RefDiv) / (2 * (1 + PostDiv0)).
type SpllConfig struct {
	RefDiv    uint32
	FbDivInt  uint32
	FbDivFrac uint32
	PostDiv0  uint32
	// LockBudget is how many times the lock bit is polled.
	LockBudget uint32
}

func (c *SpllConfig) validate() error {
	switch {
	case c.RefDiv > 0x3f:
		return fmt.Errorf("SPLL refdiv %d: %w", c.RefDiv, ErrInvalidParameter)
	case c.FbDivInt > 0xfff:
		return fmt.Errorf("SPLL feedback divider %d: %w", c.FbDivInt, ErrInvalidParameter)
	case c.FbDivFrac > 0xffff:
		return fmt.Errorf("SPLL fractional divider %d: %w", c.FbDivFrac, ErrInvalidParameter)
	case c.PostDiv0 > 0xf:
		return fmt.Errorf("SPLL post divider %d: %w", c.PostDiv0, ErrInvalidParameter)
	}
	return nil
}

// SoscConfig describes the crystal oscillator.
type SoscConfig struct {
	// Freq is the crystal frequency in Hz.
	Freq        uint32
	Enable      bool
	Bypass      bool
	AgcGain     uint32
	BiasCurrent uint32
	FeedbackRes uint32
}

func (c *SoscConfig) validate() error {
	switch {
	case c.AgcGain > 3:
		return fmt.Errorf("SOSC AGC gain %d: %w", c.AgcGain, ErrInvalidParameter)
	case c.BiasCurrent > 7:
		return fmt.Errorf("SOSC bias current %d: %w", c.BiasCurrent, ErrInvalidParameter)
	case c.FeedbackRes > 3:
		return fmt.Errorf("SOSC feedback resistor %d: %w", c.FeedbackRes, ErrInvalidParameter)
	}
	return nil
}

func (t *Tree) observe(sequence string) func() {
	start := t.clk.Now()
	return func() {
		reconfigureDuration.WithLabelValues(sequence).Observe(t.clk.Now().Sub(start).Seconds())
	}
}

// setWorkClock moves the work clock and keeps the WORK_CLK descriptor in
// step with the selector.
func (t *Tree) setWorkClock(src uint32) {
	t.soc.SetWorkClockSource(src)
	if m, err := t.mux(WORK_CLK); err == nil {
		t.syncMux(m)
	}
}

// SetSpllConfiguration reprograms the SPLL and its reference mux. If the
// work clock runs from the SPLL it is parked on FROSC for the duration and
// moved back once the SPLL locked. On ErrTimeout the work clock stays on
// FROSC and the SPLL is left programmed but unlocked.
func (t *Tree) SetSpllConfiguration(cfg SpllConfig, ref MuxRequest) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	m, err := t.mux(SPLL_REF_CLK)
	if err != nil {
		return err
	}
	if ref.Clock != SPLL_REF_CLK || ref.Sel >= uint32(len(m.Parents)) {
		return fmt.Errorf("SPLL reference %v selector %d: %w", ref.Clock, ref.Sel, ErrInvalidParameter)
	}
	budget := cfg.LockBudget
	if budget == 0 {
		budget = DefaultSpllLockBudget
	}
	defer t.observe("spll")()

	onSpll := t.soc.WorkClockSource() == eam2011.WORK_SRC_SPLL
	if onSpll {
		log.Debugf("Parking work clock on FROSC")
		t.setWorkClock(eam2011.WORK_SRC_FROSC)
	}

	t.soc.SpllPowerDown(eam2011.SPLL_PD_ALL)

	log.Debugf("SPLL reference is %v", m.Parents[ref.Sel])
	m.Field.write(t.soc, ref.Sel)
	t.syncMux(m)

	t.soc.SetSpllDiffDivider(cfg.RefDiv, cfg.FbDivInt, cfg.FbDivFrac)
	t.soc.SetSpllPostDivider(cfg.PostDiv0, 0, 0)

	t.soc.SpllPowerUp(eam2011.SPLL_PD_CORE | eam2011.SPLL_PD_POSTDIV0 | eam2011.SPLL_PD_BIAS)
	t.soc.SpllPowerUp(eam2011.SPLL_PD_RSVD | eam2011.SPLL_PD_POSTDIV1 | eam2011.SPLL_PD_POSTDIV2)

	locked := false
	var polls uint32
	for polls < budget {
		polls++
		if t.soc.SpllLocked() {
			locked = true
			break
		}
	}
	if !locked {
		spllLockTimeouts.Inc()
		log.Warnf("SPLL did not lock after %d polls, work clock parked=%v", polls, onSpll)
		return fmt.Errorf("SPLL lock: %w", ErrTimeout)
	}
	spllLockPolls.Observe(float64(polls))
	log.Debugf("SPLL locked after %d polls", polls)

	if onSpll {
		log.Debugf("Returning work clock to SPLL")
		t.setWorkClock(eam2011.WORK_SRC_SPLL)
	}
	return nil
}

// SetSoscConfiguration reprograms the crystal oscillator. If the work clock
// depends on SOSC, directly or through the SPLL, it is parked on FROSC
// meanwhile. It is not moved back when the oscillator gets disabled.
func (t *Tree) SetSoscConfiguration(cfg SoscConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	defer t.observe("sosc")()

	work := t.soc.WorkClockSource()
	ref := t.soc.SpllRefSource()
	failover := work == eam2011.WORK_SRC_SOSC ||
		(work == eam2011.WORK_SRC_SPLL && ref == eam2011.SPLL_REF_SOSC)
	if failover {
		log.Debugf("Parking work clock on FROSC")
		t.setWorkClock(eam2011.WORK_SRC_FROSC)
	}

	if err := t.SetExternalFreq(SOSC_CLK, cfg.Freq); err != nil {
		return err
	}
	t.soc.ConfigureSosc(eam2011.SoscControl{
		Enable:      cfg.Enable,
		Bypass:      cfg.Bypass,
		AgcGain:     cfg.AgcGain,
		BiasCurrent: cfg.BiasCurrent,
		FeedbackRes: cfg.FeedbackRes,
	})

	if failover {
		if !cfg.Enable {
			log.Warnf("SOSC disabled, work clock stays on FROSC")
			return nil
		}
		t.setWorkClock(work)
	}
	return nil
}
