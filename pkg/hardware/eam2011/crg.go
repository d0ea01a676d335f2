// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eam2011

import (
	"fmt"
	"io"

	"github.com/eam2011/bsp/pkg/logger"
	"golang.org/x/exp/slices"
)

var log = logger.LogContainer.GetSimpleLogger()

const (
	CRG_BASE uintptr = 0x40002000

	// Offsets relative to CRG_BASE
	CRG_WORK_CLK_SEL uintptr = 0x000
	CRG_SPLL_REF_SEL uintptr = 0x004
	CRG_SPLL_CTRL    uintptr = 0x010
	CRG_SPLL_REFDIV  uintptr = 0x014
	CRG_SPLL_FBDIV   uintptr = 0x018
	CRG_SPLL_POSTDIV uintptr = 0x01c
	CRG_SPLL_STATUS  uintptr = 0x020
	CRG_SOSC_CTRL    uintptr = 0x030
	CRG_CLK_DIV0     uintptr = 0x040
	CRG_CLK_DIV1     uintptr = 0x044
	CRG_CLK_MUX0     uintptr = 0x050
	CRG_CLK_GATE0    uintptr = 0x060

	// WORK_CLK_SEL[1:0]
	WORK_SRC_FROSC uint32 = 0
	WORK_SRC_SOSC  uint32 = 1
	WORK_SRC_SPLL  uint32 = 2
	WORK_SRC_SROSC uint32 = 3

	// SPLL_REF_SEL[0]
	SPLL_REF_FROSC uint32 = 0
	SPLL_REF_SOSC  uint32 = 1

	// SPLL_CTRL power-down bits, set means powered down
	SPLL_PD_CORE     uint32 = 1 << 0
	SPLL_PD_POSTDIV0 uint32 = 1 << 1
	SPLL_PD_BIAS     uint32 = 1 << 2
	SPLL_PD_RSVD     uint32 = 1 << 3
	SPLL_PD_POSTDIV1 uint32 = 1 << 4
	SPLL_PD_POSTDIV2 uint32 = 1 << 5
	SPLL_PD_ALL      uint32 = 0x3f

	SPLL_STATUS_LOCK uint32 = 1 << 0

	SOSC_EN     uint32 = 1 << 0
	SOSC_BYPASS uint32 = 1 << 1
)

// Bit-field positions inside the SPLL and SOSC registers.
const (
	spllRefDivShift = 0
	spllRefDivWidth = 6

	spllFbFracShift = 0
	spllFbFracWidth = 16
	spllFbIntShift  = 16
	spllFbIntWidth  = 12

	spllPostDivWidth = 4

	soscAgcShift  = 4
	soscAgcWidth  = 2
	soscBiasShift = 8
	soscBiasWidth = 3
	soscRfbShift  = 12
	soscRfbWidth  = 2
)

var (
	crgRegs = map[uintptr]string{
		CRG_WORK_CLK_SEL: "Work Clock Source Select Register",
		CRG_SPLL_REF_SEL: "SPLL Reference Select Register",
		CRG_SPLL_CTRL:    "SPLL Power Control Register",
		CRG_SPLL_REFDIV:  "SPLL Reference Divider Register",
		CRG_SPLL_FBDIV:   "SPLL Feedback Divider Register",
		CRG_SPLL_POSTDIV: "SPLL Post Divider Register",
		CRG_SPLL_STATUS:  "SPLL Status Register",
		CRG_SOSC_CTRL:    "System Oscillator Control Register",
		CRG_CLK_DIV0:     "Core/Bus Clock Divider Register",
		CRG_CLK_DIV1:     "Peripheral Clock Divider Register",
		CRG_CLK_MUX0:     "Peripheral Clock Select Register",
		CRG_CLK_GATE0:    "Peripheral Clock Gate Register",
	}

	// Values after power-on reset. The SPLL comes up fully powered down and
	// the work clock runs from FROSC.
	crgResetValues = map[uintptr]uint32{
		CRG_WORK_CLK_SEL: WORK_SRC_FROSC,
		CRG_SPLL_REF_SEL: SPLL_REF_FROSC,
		CRG_SPLL_CTRL:    SPLL_PD_ALL,
		CRG_SPLL_REFDIV:  0,
		CRG_SPLL_FBDIV:   0,
		CRG_SPLL_POSTDIV: 0,
		CRG_SPLL_STATUS:  0,
		CRG_SOSC_CTRL:    0,
		CRG_CLK_DIV0:     0,
		CRG_CLK_DIV1:     0,
		CRG_CLK_MUX0:     0,
		CRG_CLK_GATE0:    0,
	}
)

func CrgRegisterToFunction(off uintptr) string {
	return crgRegs[off]
}

// DumpCrg writes the live value of every CRG register to w, one per line,
// in address order.
func (s *Soc) DumpCrg(w io.Writer) error {
	offs := make([]uintptr, 0, len(crgRegs))
	for off := range crgRegs {
		offs = append(offs, off)
	}
	slices.Sort(offs)
	for _, off := range offs {
		v := s.Mem().MustRead32(CRG_BASE + off)
		if _, err := fmt.Fprintf(w, "%08x %08x %s\n", CRG_BASE+off, v, CrgRegisterToFunction(off)); err != nil {
			return err
		}
	}
	return nil
}

func fieldMask(width uint) uint32 {
	if width >= 32 {
		return 0xffffffff
	}
	return (uint32(1) << width) - 1
}

// ReadField returns the width bits at shift of the CRG register at off.
func (s *Soc) ReadField(off uintptr, shift, width uint) uint32 {
	return (s.Mem().MustRead32(CRG_BASE+off) >> shift) & fieldMask(width)
}

// WriteField does a read-modify-write of a single CRG bit-field. Bits of v
// above width are dropped.
func (s *Soc) WriteField(off uintptr, shift, width uint, v uint32) {
	m := fieldMask(width) << shift
	r := s.Mem().MustRead32(CRG_BASE + off)
	n := (r & ^m) | ((v << shift) & m)
	log.Debugf("%s: %08x -> %08x", CrgRegisterToFunction(off), r, n)
	s.Mem().MustWrite32(CRG_BASE+off, n)
}

func (s *Soc) WorkClockSource() uint32 {
	return s.ReadField(CRG_WORK_CLK_SEL, 0, 2)
}

func (s *Soc) SetWorkClockSource(src uint32) {
	s.WriteField(CRG_WORK_CLK_SEL, 0, 2, src)
}

func (s *Soc) SpllRefSource() uint32 {
	return s.ReadField(CRG_SPLL_REF_SEL, 0, 1)
}

// SpllPowerDown asserts the given power-down bits.
func (s *Soc) SpllPowerDown(mask uint32) {
	v := s.Mem().MustRead32(CRG_BASE + CRG_SPLL_CTRL)
	s.Mem().MustWrite32(CRG_BASE+CRG_SPLL_CTRL, v|(mask&SPLL_PD_ALL))
}

// SpllPowerUp clears the given power-down bits and leaves the rest alone.
func (s *Soc) SpllPowerUp(mask uint32) {
	v := s.Mem().MustRead32(CRG_BASE + CRG_SPLL_CTRL)
	s.Mem().MustWrite32(CRG_BASE+CRG_SPLL_CTRL, v & ^(mask&SPLL_PD_ALL))
}

// SetSpllDiffDivider programs the reference divider and the integer and
// fractional parts of the feedback divider.
func (s *Soc) SetSpllDiffDivider(refdiv, fbInt, fbFrac uint32) {
	s.WriteField(CRG_SPLL_REFDIV, spllRefDivShift, spllRefDivWidth, refdiv)
	fb := (fbInt&fieldMask(spllFbIntWidth))<<spllFbIntShift |
		(fbFrac&fieldMask(spllFbFracWidth))<<spllFbFracShift
	s.Mem().MustWrite32(CRG_BASE+CRG_SPLL_FBDIV, fb)
}

func (s *Soc) SetSpllPostDivider(pd0, pd1, pd2 uint32) {
	m := fieldMask(spllPostDivWidth)
	s.Mem().MustWrite32(CRG_BASE+CRG_SPLL_POSTDIV, (pd0&m)|(pd1&m)<<4|(pd2&m)<<8)
}

func (s *Soc) SpllLocked() bool {
	return s.Mem().MustRead32(CRG_BASE+CRG_SPLL_STATUS)&SPLL_STATUS_LOCK != 0
}

// SpllParams reads the live divider settings that determine the SPLL
// output frequency.
func (s *Soc) SpllParams() (refdiv, fbInt, postdiv0 uint32) {
	refdiv = s.ReadField(CRG_SPLL_REFDIV, spllRefDivShift, spllRefDivWidth)
	fbInt = s.ReadField(CRG_SPLL_FBDIV, spllFbIntShift, spllFbIntWidth)
	postdiv0 = s.ReadField(CRG_SPLL_POSTDIV, 0, spllPostDivWidth)
	return
}

// SoscControl holds the analog trim of the crystal oscillator.
type SoscControl struct {
	Enable      bool
	Bypass      bool
	AgcGain     uint32
	BiasCurrent uint32
	FeedbackRes uint32
}

// ConfigureSosc writes the analog control bits in one go with the
// oscillator disabled, then sets EN if requested.
func (s *Soc) ConfigureSosc(c SoscControl) {
	v := s.Mem().MustRead32(CRG_BASE + CRG_SOSC_CTRL)
	v &= ^(SOSC_EN | SOSC_BYPASS |
		fieldMask(soscAgcWidth)<<soscAgcShift |
		fieldMask(soscBiasWidth)<<soscBiasShift |
		fieldMask(soscRfbWidth)<<soscRfbShift)
	if c.Bypass {
		v |= SOSC_BYPASS
	}
	v |= (c.AgcGain & fieldMask(soscAgcWidth)) << soscAgcShift
	v |= (c.BiasCurrent & fieldMask(soscBiasWidth)) << soscBiasShift
	v |= (c.FeedbackRes & fieldMask(soscRfbWidth)) << soscRfbShift
	s.Mem().MustWrite32(CRG_BASE+CRG_SOSC_CTRL, v)
	if c.Enable {
		s.Mem().MustWrite32(CRG_BASE+CRG_SOSC_CTRL, v|SOSC_EN)
	}
}
