// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Library for accessing the EAM2011 clock/reset generator (CRG) and the
// flash controller (FMC) clock mode.
//
// Reprogramming the CRG changes the clock the CPU is running from. The
// library does not protect against that by itself, the sequencing lives in
// package crg. Poking the registers directly through this package while
// the work clock is sourced from the SPLL will hang the chip.
//
// Call eam2011.Open() and Soc.Close() as the first and last thing before
// and after you want to run any library commands. Tests and host-side
// simulation use OpenWithMemory together with a RegisterFile.

package eam2011

type Soc struct {
	mem Memory
}

// Open maps the CRG and FMC register pages through /dev/mem.
func Open() (*Soc, error) {
	mem, err := openHostMemory(CRG_BASE, FMC_BASE)
	if err != nil {
		return nil, err
	}
	return &Soc{mem}, nil
}

func OpenWithMemory(mem Memory) *Soc {
	return &Soc{mem}
}

func (s *Soc) Close() {
	s.mem.Close()
}
