// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crg

import (
	"fmt"

	"github.com/eam2011/bsp/pkg/hardware/eam2011"
)

type Category uint8

const (
	FixedRateClock Category = iota
	FixedFactorClock
	GateClock
	DividerClock
	MuxClock
	ExternalClock
	PllClock
)

func (c Category) String() string {
	switch c {
	case FixedRateClock:
		return "fixed-rate"
	case FixedFactorClock:
		return "fixed-factor"
	case GateClock:
		return "gate"
	case DividerClock:
		return "divider"
	case MuxClock:
		return "mux"
	case ExternalClock:
		return "external"
	case PllClock:
		return "pll"
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// Descriptor is implemented by the clock node kinds of this package only.
type Descriptor interface {
	Category() Category
	Name() Name
	// Parent is the clock this node is currently sourced from. Source
	// clocks return their own name.
	Parent() Name
	header() *Header
}

type Header struct {
	name   Name
	parent Name
}

func (h *Header) Name() Name      { return h.name }
func (h *Header) Parent() Name    { return h.parent }
func (h *Header) header() *Header { return h }
func (h *Header) isRoot() bool    { return h.name == h.parent }

// Field locates a bit-field inside a CRG register.
type Field struct {
	Offset uintptr
	Shift  uint
	Width  uint
}

func (f Field) mask() uint32 {
	return (uint32(1) << f.Width) - 1
}

func (f Field) read(s *eam2011.Soc) uint32 {
	return s.ReadField(f.Offset, f.Shift, f.Width)
}

func (f Field) write(s *eam2011.Soc, v uint32) {
	s.WriteField(f.Offset, f.Shift, f.Width, v)
}

func (f Field) String() string {
	return fmt.Sprintf("%#03x[%d:%d]", f.Offset, f.Shift+f.Width-1, f.Shift)
}

// DivEntry maps a raw register code to a division ratio. An entry with
// Div == 0 terminates a table.
type DivEntry struct {
	Val uint32
	Div uint32
}

type FixedRate struct {
	Header
	Rate uint32
}

type FixedFactor struct {
	Header
	Mult uint32
	Div  uint32
}

// External is a source whose rate is only known at runtime, like the
// crystal or a timer input pin.
type External struct {
	Header
	Rate uint32
}

type Divider struct {
	Header
	Field Field
	Table []DivEntry
}

// Mux selects its parent with a register field. The selector value is the
// index into Parents.
type Mux struct {
	Header
	Field   Field
	Parents []Name
}

// Gate passes its parent through when enabled. Fields wider than one bit
// are written all ones or all zeros.
type Gate struct {
	Header
	Field Field
}

// Pll output is computed from the live SPLL registers.
type Pll struct {
	Header
}

func (*FixedRate) Category() Category   { return FixedRateClock }
func (*FixedFactor) Category() Category { return FixedFactorClock }
func (*External) Category() Category    { return ExternalClock }
func (*Divider) Category() Category     { return DividerClock }
func (*Mux) Category() Category         { return MuxClock }
func (*Gate) Category() Category        { return GateClock }
func (*Pll) Category() Category         { return PllClock }

func NewFixedRate(name Name, hz uint32) *FixedRate {
	return &FixedRate{Header{name, name}, hz}
}

func NewFixedFactor(name, parent Name, mult, div uint32) *FixedFactor {
	return &FixedFactor{Header{name, parent}, mult, div}
}

func NewExternal(name Name, hz uint32) *External {
	return &External{Header{name, name}, hz}
}

func NewDivider(name, parent Name, f Field, table []DivEntry) *Divider {
	return &Divider{Header{name, parent}, f, table}
}

// NewMux starts out sourced from the first candidate, which matches the
// reset value of every EAM2011 selector.
func NewMux(name Name, f Field, parents ...Name) *Mux {
	p := name
	if len(parents) > 0 {
		p = parents[0]
	}
	return &Mux{Header{name, p}, f, parents}
}

func NewGate(name, parent Name, f Field) *Gate {
	return &Gate{Header{name, parent}, f}
}

func NewPll(name, ref Name) *Pll {
	return &Pll{Header{name, ref}}
}

// ratio returns the division ratio for a raw code.
func (d *Divider) ratio(code uint32) (uint32, bool) {
	for _, e := range d.Table {
		if e.Div == 0 {
			break
		}
		if e.Val == code {
			return e.Div, true
		}
	}
	return 0, false
}
