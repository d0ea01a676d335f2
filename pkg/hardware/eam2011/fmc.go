// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eam2011

import (
	"fmt"
)

const (
	FMC_BASE uintptr = 0x40003000
	FMC_CTRL uintptr = FMC_BASE + 0x00

	FMC_CTRL_WS_MASK uint32 = 0xf
	FMC_CTRL_MODE    uint32 = 1 << 8

	// Wait states used while the clock tree is being reconfigured. Enough
	// for the fastest bus clock the chip supports.
	FMC_SAFE_WAIT_STATES uint32 = 4
)

type FlashClockMode int

const (
	FlashClockSafe FlashClockMode = iota
	FlashClockNormal
)

func (m FlashClockMode) String() string {
	switch m {
	case FlashClockSafe:
		return "safe"
	case FlashClockNormal:
		return "normal"
	}
	return fmt.Sprintf("FlashClockMode(%d)", int(m))
}

// Bus clock ceiling for each wait state count.
var fmcWaitStates = []struct {
	maxHz uint32
	ws    uint32
}{
	{24000000, 0},
	{48000000, 1},
	{96000000, 2},
	{144000000, 3},
}

// FlashWaitStates returns the number of wait states flash reads need when
// the bus runs at busHz.
func FlashWaitStates(busHz uint32) uint32 {
	for _, w := range fmcWaitStates {
		if busHz <= w.maxHz {
			return w.ws
		}
	}
	return FMC_SAFE_WAIT_STATES
}

// SetClockMode is called before the clock tree changes. Safe mode forces the
// maximum wait states so flash keeps working whatever the bus ends up at.
func (s *Soc) SetClockMode(m FlashClockMode) {
	v := s.Mem().MustRead32(FMC_CTRL)
	switch m {
	case FlashClockSafe:
		v = (v & ^(FMC_CTRL_WS_MASK | FMC_CTRL_MODE)) | FMC_SAFE_WAIT_STATES
	case FlashClockNormal:
		v |= FMC_CTRL_MODE
	}
	s.Mem().MustWrite32(FMC_CTRL, v)
}

// UpdateClockMode is called after the clock tree settled and trims the wait
// states to the new bus frequency.
func (s *Soc) UpdateClockMode(busHz uint32) error {
	if busHz == 0 {
		return fmt.Errorf("bus clock is stopped")
	}
	v := s.Mem().MustRead32(FMC_CTRL)
	v = (v & ^FMC_CTRL_WS_MASK) | FlashWaitStates(busHz) | FMC_CTRL_MODE
	s.Mem().MustWrite32(FMC_CTRL, v)
	return nil
}
