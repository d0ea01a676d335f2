// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crg

import (
	"fmt"
	"math"
)

// GetFreq resolves the frequency of name in Hz.
func (t *Tree) GetFreq(name Name) (uint32, error) {
	return t.freq(name, 0)
}

func (t *Tree) freq(name Name, depth int) (uint32, error) {
	if depth > int(NumClocks) {
		return 0, fmt.Errorf("clock loop at %v: %w", name, ErrInvalidParameter)
	}
	d, err := t.Lookup(name)
	if err != nil {
		return 0, err
	}
	switch c := d.(type) {
	case *FixedRate:
		return c.Rate, nil
	case *External:
		return c.Rate, nil
	}
	h := d.header()
	if h.isRoot() {
		return 0, fmt.Errorf("%v %v has no source: %w", d.Category(), name, ErrInvalidParameter)
	}
	p, err := t.freq(h.parent, depth+1)
	if err != nil {
		return 0, err
	}
	switch c := d.(type) {
	case *FixedFactor:
		if c.Div == 0 {
			return 0, fmt.Errorf("%v divides by zero: %w", name, ErrInvalidParameter)
		}
		return fit(name, uint64(p)*uint64(c.Mult)/uint64(c.Div))
	case *Divider:
		code := c.Field.read(t.soc)
		r, ok := c.ratio(code)
		if !ok {
			return 0, fmt.Errorf("%v code %d: %w", name, code, ErrNotFound)
		}
		return p / r, nil
	case *Pll:
		refdiv, fbInt, pd0 := t.soc.SpllParams()
		return fit(name, SpllOutput(p, refdiv, fbInt, pd0))
	}
	// Mux and Gate
	return p, nil
}

// fit narrows a resolved frequency to 32 bits.
func fit(name Name, hz uint64) (uint32, error) {
	if hz > math.MaxUint32 {
		return 0, fmt.Errorf("%v at %d Hz exceeds 32 bits: %w", name, hz, ErrInvalidParameter)
	}
	return uint32(hz), nil
}

// SpllOutput is 4 * fbInt * ref / (1 + refdiv) / (2 * (1 + postdiv0)),
// evaluated left to right with truncation. The fractional feedback divider
// is not taken into account.
func SpllOutput(ref, refdiv, fbInt, postdiv0 uint32) uint64 {
	f := 4 * uint64(fbInt) * uint64(ref)
	f /= 1 + uint64(refdiv)
	f /= 2 * (1 + uint64(postdiv0))
	return f
}
