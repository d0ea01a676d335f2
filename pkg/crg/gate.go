// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crg

import (
	"fmt"
)

// GateRequest turns gate Clock on or off.
type GateRequest struct {
	Clock  Name
	Enable bool
}

// ClockEnable opens or closes gate name.
func (t *Tree) ClockEnable(name Name, enable bool) error {
	var g *Gate
	for _, d := range t.clocks {
		if c, ok := d.(*Gate); ok && c.name == name {
			g = c
			break
		}
	}
	if g == nil {
		return fmt.Errorf("%v is not a gate clock: %w", name, ErrGeneric)
	}
	var v uint32
	if enable {
		v = g.Field.mask()
	}
	log.Debugf("Gating %v: enable=%v", name, enable)
	g.Field.write(t.soc, v)
	return nil
}

// ClockEnabled reports whether every bit of gate name is set.
func (t *Tree) ClockEnabled(name Name) (bool, error) {
	d, err := t.Lookup(name)
	if err != nil {
		return false, err
	}
	g, ok := d.(*Gate)
	if !ok {
		return false, fmt.Errorf("%v is not a gate clock: %w", name, ErrGeneric)
	}
	return g.Field.read(t.soc) == g.Field.mask(), nil
}

// SetExternalFreq records the frequency of an external input in Hz.
func (t *Tree) SetExternalFreq(name Name, hz uint32) error {
	d, err := t.Lookup(name)
	if err != nil {
		return err
	}
	e, ok := d.(*External)
	if !ok {
		return fmt.Errorf("%v is a %v clock: %w", name, d.Category(), ErrInvalidOperation)
	}
	e.Rate = hz
	return nil
}
