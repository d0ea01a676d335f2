// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eam2011

import (
	"fmt"
	"testing"
)

type op struct {
	write   bool
	address uintptr
	data32  uint32
}

type fakeMem struct {
	t   *testing.T
	ops []op
}

func opstr(o *op) string {
	t := "read"
	if o.write {
		t = "write"
	}
	return fmt.Sprintf("{%s @ %08x = %08x}", t, o.address, o.data32)
}

func (m *fakeMem) next(a uintptr) (op, bool) {
	if len(m.ops) == 0 {
		m.t.Errorf("Unexpected access on %08x", a)
		return op{}, false
	}
	o := m.ops[0]
	m.ops = m.ops[1:]
	return o, true
}

func (m *fakeMem) MustRead32(a uintptr) uint32 {
	o, ok := m.next(a)
	if ok && (o.write || o.address != a) {
		m.t.Errorf("Expected %s, got 32 bit read on %08x", opstr(&o), a)
	}
	return o.data32
}

func (m *fakeMem) MustWrite32(a uintptr, d uint32) {
	o, ok := m.next(a)
	if ok && (!o.write || o.address != a || o.data32 != d) {
		m.t.Errorf("Expected %s, got 32 bit write of %08x on %08x", opstr(&o), d, a)
	}
}

func (m *fakeMem) ExpectWrite32(a uintptr, d uint32) {
	m.ops = append(m.ops, op{true, a, d})
}

func (m *fakeMem) FakeRead32(a uintptr, d uint32) {
	m.ops = append(m.ops, op{false, a, d})
}

// Done fails the test if scripted accesses were never made.
func (m *fakeMem) Done() {
	for i := range m.ops {
		m.t.Errorf("Missing access %s", opstr(&m.ops[i]))
	}
}

func (m *fakeMem) Close() {
}

func fakeMemory(t *testing.T) *fakeMem {
	return &fakeMem{t, make([]op, 0)}
}
