// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eam2011

import (
	"fmt"
)

// Op is one access seen by a RegisterFile.
type Op struct {
	Write   bool
	Address uintptr
	Data    uint32
}

func (o Op) String() string {
	t := "read"
	if o.Write {
		t = "write"
	}
	return fmt.Sprintf("{%s @ %08x = %08x}", t, o.Address, o.Data)
}

// RegisterFile is a simulated CRG and FMC register space. Unwritten
// registers read back their reset value. Every access is logged.
//
// A RegisterFile is not safe for concurrent use, share it through
// crg.Guarded like real hardware.
type RegisterFile struct {
	regs  map[uintptr]uint32
	hooks map[uintptr]func(uint32) uint32
	ops   []Op
}

func NewRegisterFile() *RegisterFile {
	r := &RegisterFile{
		regs:  make(map[uintptr]uint32),
		hooks: make(map[uintptr]func(uint32) uint32),
	}
	for off, v := range crgResetValues {
		r.regs[CRG_BASE+off] = v
	}
	r.regs[FMC_CTRL] = FMC_SAFE_WAIT_STATES
	return r
}

// Set stores v at a without logging an access.
func (r *RegisterFile) Set(a uintptr, v uint32) {
	r.regs[a] = v
}

// Get returns the stored value at a without logging an access or running
// read hooks.
func (r *RegisterFile) Get(a uintptr) uint32 {
	return r.regs[a]
}

// OnRead installs a hook that computes the value returned by reads of a
// from the stored value. A nil hook removes it.
func (r *RegisterFile) OnRead(a uintptr, hook func(stored uint32) uint32) {
	if hook == nil {
		delete(r.hooks, a)
		return
	}
	r.hooks[a] = hook
}

// SimulateSpllLock makes the SPLL report lock once it is fully powered up
// and the status register has been polled more than polls times.
func (r *RegisterFile) SimulateSpllLock(polls int) {
	seen := 0
	r.OnRead(CRG_BASE+CRG_SPLL_STATUS, func(v uint32) uint32 {
		if r.regs[CRG_BASE+CRG_SPLL_CTRL]&SPLL_PD_ALL != 0 {
			seen = 0
			return v &^ SPLL_STATUS_LOCK
		}
		seen++
		if seen > polls {
			return v | SPLL_STATUS_LOCK
		}
		return v &^ SPLL_STATUS_LOCK
	})
}

func (r *RegisterFile) MustRead32(a uintptr) uint32 {
	v := r.regs[a]
	if h, ok := r.hooks[a]; ok {
		v = h(v)
	}
	r.ops = append(r.ops, Op{false, a, v})
	return v
}

func (r *RegisterFile) MustWrite32(a uintptr, d uint32) {
	r.regs[a] = d
	r.ops = append(r.ops, Op{true, a, d})
}

func (r *RegisterFile) Close() {
}

// Ops returns the accesses since creation or the last ResetOps.
func (r *RegisterFile) Ops() []Op {
	return append([]Op(nil), r.ops...)
}

func (r *RegisterFile) ResetOps() {
	r.ops = r.ops[:0]
}

// Writes returns only the logged writes to a.
func (r *RegisterFile) Writes(a uintptr) []uint32 {
	var w []uint32
	for _, o := range r.ops {
		if o.Write && o.Address == a {
			w = append(w, o.Data)
		}
	}
	return w
}
