// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eam2011

// Memory is a word-addressed view of the SoC register space.
// The CRG and FMC only decode 32 bit accesses so there are no narrower
// accessors.
type Memory interface {
	MustRead32(uintptr) uint32
	MustWrite32(uintptr, uint32)
	Close()
}

func (s *Soc) Mem() Memory {
	return s.mem
}
