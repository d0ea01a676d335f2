// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crg

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

// MuxRequest asks for selector Sel on mux Clock.
type MuxRequest struct {
	Clock Name
	Sel   uint32
}

func (t *Tree) mux(name Name) (*Mux, error) {
	d, err := t.Lookup(name)
	if err != nil {
		return nil, err
	}
	m, ok := d.(*Mux)
	if !ok {
		return nil, fmt.Errorf("%v is a %v clock: %w", name, d.Category(), ErrInvalidOperation)
	}
	return m, nil
}

// SetMuxClkConfiguration programs every request except SPLL_REF_CLK, which
// only SetSpllConfiguration touches. A failing request does not stop the
// batch, all failures are returned joined. Afterwards the parent of every
// mux is re-read from hardware.
func (t *Tree) SetMuxClkConfiguration(reqs []MuxRequest) error {
	var errs []error
	for _, r := range reqs {
		if r.Clock == SPLL_REF_CLK {
			log.Debugf("Leaving %v to the SPLL sequencer", r.Clock)
			continue
		}
		m, err := t.mux(r.Clock)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if r.Sel >= uint32(len(m.Parents)) {
			errs = append(errs, fmt.Errorf("%v selector %d out of range: %w", r.Clock, r.Sel, ErrInvalidParameter))
			continue
		}
		log.Debugf("Selecting %v as source of %v", m.Parents[r.Sel], r.Clock)
		m.Field.write(t.soc, r.Sel)
	}
	t.Sync()
	return errors.Join(errs...)
}

// Sync re-derives the parent of every mux from its live selector.
func (t *Tree) Sync() {
	for _, d := range t.clocks {
		if m, ok := d.(*Mux); ok {
			t.syncMux(m)
		}
	}
}

func (t *Tree) syncMux(m *Mux) {
	sel := m.Field.read(t.soc)
	if sel >= uint32(len(m.Parents)) {
		log.Warnf("%v selector %d has no source, keeping %v", m.name, sel, m.parent)
		return
	}
	m.parent = m.Parents[sel]
}

// SetParent switches mux name to parent. Nothing is written unless name is a
// mux and parent is one of its sources.
func (t *Tree) SetParent(name, parent Name) error {
	m, err := t.mux(name)
	if err != nil {
		return err
	}
	i := slices.Index(m.Parents, parent)
	if i < 0 {
		return fmt.Errorf("%v is not a source of %v: %w", parent, name, ErrNotFound)
	}
	log.Debugf("Selecting %v as source of %v", parent, name)
	m.Field.write(t.soc, uint32(i))
	m.parent = parent
	return nil
}

func (t *Tree) GetParent(name Name) (Name, error) {
	d, err := t.Lookup(name)
	if err != nil {
		return NumClocks, err
	}
	return d.Parent(), nil
}
