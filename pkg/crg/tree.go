// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package crg manages the EAM2011 clock tree.
//
// A Tree holds one descriptor per clock Name. Frequencies are resolved on
// demand by walking the parent chain. Dividers and the SPLL are read live
// from the CRG registers, everything else comes from the descriptors. Mux
// parents always mirror the live selector registers after a configuration
// call.
//
// A Tree is not safe for concurrent use. Wrap it in a Guarded when it is
// shared.
package crg

import (
	"fmt"

	"github.com/eam2011/bsp/pkg/hardware/eam2011"
	"github.com/eam2011/bsp/pkg/logger"
	"github.com/jmhodges/clock"
)

var log = logger.LogContainer.GetSimpleLogger()

// FlashController is told about clock tree changes so it can adjust the
// flash wait states.
type FlashController interface {
	SetClockMode(eam2011.FlashClockMode)
	UpdateClockMode(busHz uint32) error
}

type Tree struct {
	soc    *eam2011.Soc
	flash  FlashController
	clk    clock.Clock
	clocks [NumClocks]Descriptor

	initialized bool

	// Refreshed by SystemCoreClockUpdate.
	SystemCoreClock  uint32
	SystemTimerClock uint32
}

type Option func(*Tree)

// WithDescriptors replaces the board table.
func WithDescriptors(ds []Descriptor) Option {
	return func(t *Tree) {
		t.clocks = [NumClocks]Descriptor{}
		for _, d := range ds {
			if err := t.Register(d); err != nil {
				log.Warnf("Skipping clock descriptor: %v", err)
			}
		}
	}
}

func WithFlash(f FlashController) Option {
	return func(t *Tree) { t.flash = f }
}

func WithClock(c clock.Clock) Option {
	return func(t *Tree) { t.clk = c }
}

// New builds a tree over soc populated with the EAM2011 clock table. Mux
// parents start at their reset defaults, call Sync to pick up the live
// selectors.
func New(soc *eam2011.Soc, opts ...Option) *Tree {
	t := &Tree{
		soc:   soc,
		flash: soc,
		clk:   clock.New(),
	}
	for _, d := range Board() {
		// Board only carries valid names.
		_ = t.Register(d)
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *Tree) Soc() *eam2011.Soc {
	return t.soc
}

// Register inserts d, overwriting any descriptor already registered under
// the same name.
func (t *Tree) Register(d Descriptor) error {
	if d == nil {
		return fmt.Errorf("nil descriptor: %w", ErrInvalidParameter)
	}
	if d.Name() >= NumClocks {
		return fmt.Errorf("register %v: %w", d.Name(), ErrInvalidParameter)
	}
	t.clocks[d.Name()] = d
	return nil
}

func (t *Tree) Lookup(name Name) (Descriptor, error) {
	if name >= NumClocks || t.clocks[name] == nil {
		return nil, fmt.Errorf("lookup %v: %w", name, ErrInvalidParameter)
	}
	return t.clocks[name], nil
}

// Initialized reports whether Init completed.
func (t *Tree) Initialized() bool {
	return t.initialized
}
