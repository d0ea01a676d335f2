// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crg

import (
	"fmt"
)

// DivRequest asks for raw divider code Code on divider Clock.
type DivRequest struct {
	Clock Name
	Code  uint32
}

// SetDivClkConfiguration applies reqs in order and stops at the first
// failure. Requests before the failing one stay applied.
func (t *Tree) SetDivClkConfiguration(reqs []DivRequest) error {
	for _, r := range reqs {
		if err := t.SetClkDivider(r.Clock, r.Code); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) divider(name Name) (*Divider, error) {
	d, err := t.Lookup(name)
	if err != nil {
		return nil, err
	}
	div, ok := d.(*Divider)
	if !ok {
		return nil, fmt.Errorf("%v is a %v clock: %w", name, d.Category(), ErrInvalidOperation)
	}
	return div, nil
}

// SetClkDivider writes the raw code to the divider field of name. The code
// must be listed in the divider's table.
func (t *Tree) SetClkDivider(name Name, code uint32) error {
	d, err := t.divider(name)
	if err != nil {
		return err
	}
	if code > d.Field.mask() {
		return fmt.Errorf("%v code %d does not fit %v: %w", name, code, d.Field, ErrInvalidParameter)
	}
	r, ok := d.ratio(code)
	if !ok {
		return fmt.Errorf("%v code %d: %w", name, code, ErrNotFound)
	}
	log.Debugf("Dividing %v by %d", name, r)
	d.Field.write(t.soc, code)
	return nil
}

// GetClkDivider returns the division ratio currently programmed for name.
func (t *Tree) GetClkDivider(name Name) (uint32, error) {
	d, err := t.divider(name)
	if err != nil {
		return 0, err
	}
	code := d.Field.read(t.soc)
	r, ok := d.ratio(code)
	if !ok {
		return 0, fmt.Errorf("%v code %d: %w", name, code, ErrNotFound)
	}
	return r, nil
}
