// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crg

import (
	"errors"
	"testing"

	"github.com/eam2011/bsp/pkg/hardware/eam2011"
	"github.com/jmhodges/clock"
)

func newTestTree(t *testing.T, opts ...Option) (*Tree, *eam2011.RegisterFile) {
	t.Helper()
	r := eam2011.NewRegisterFile()
	opts = append([]Option{WithClock(clock.NewFake())}, opts...)
	return New(eam2011.OpenWithMemory(r), opts...), r
}

// writes returns every logged register write.
func writes(r *eam2011.RegisterFile) []eam2011.Op {
	var w []eam2011.Op
	for _, o := range r.Ops() {
		if o.Write {
			w = append(w, o)
		}
	}
	return w
}

func TestBoardCoversEveryClock(t *testing.T) {
	seen := make(map[Name]bool)
	for _, d := range Board() {
		if seen[d.Name()] {
			t.Errorf("%v registered twice", d.Name())
		}
		seen[d.Name()] = true
	}
	for n := Name(0); n < NumClocks; n++ {
		if !seen[n] {
			t.Errorf("%v has no descriptor", n)
		}
	}
	tr, _ := newTestTree(t)
	for n := Name(0); n < NumClocks; n++ {
		d, err := tr.Lookup(n)
		if err != nil {
			t.Fatalf("Lookup(%v): %v", n, err)
		}
		if m, ok := d.(*Mux); ok {
			for _, p := range m.Parents {
				if _, err := tr.Lookup(p); err != nil {
					t.Errorf("%v candidate %v: %v", n, p, err)
				}
			}
		}
	}
}

func TestRegisterLookup(t *testing.T) {
	tr, _ := newTestTree(t, WithDescriptors(nil))
	if _, err := tr.Lookup(FROSC_CLK); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for empty slot, got %v", err)
	}
	if _, err := tr.Lookup(NumClocks); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter out of range, got %v", err)
	}
	if err := tr.Register(nil); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for nil descriptor, got %v", err)
	}
	if err := tr.Register(NewFixedRate(NumClocks, 1)); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for bad name, got %v", err)
	}
	if err := tr.Register(NewFixedRate(FROSC_CLK, 1)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := tr.Register(NewFixedRate(FROSC_CLK, 2)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if hz, err := tr.GetFreq(FROSC_CLK); err != nil || hz != 2 {
		t.Errorf("Expected overwritten rate 2, got %d (%v)", hz, err)
	}
}

func TestParseName(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Name
	}{
		{"WORK_CLK", WORK_CLK},
		{"work", WORK_CLK},
		{" spll_ref_clk ", SPLL_REF_CLK},
		{"wdt", WDT_CLK},
	} {
		n, err := ParseName(tc.in)
		if err != nil || n != tc.want {
			t.Errorf("ParseName(%q) = %v, %v; want %v", tc.in, n, err, tc.want)
		}
	}
	if _, err := ParseName("PLL2"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}
	for n := Name(0); n < NumClocks; n++ {
		if p, err := ParseName(n.String()); err != nil || p != n {
			t.Errorf("ParseName(%v) = %v, %v", n, p, err)
		}
	}
	if s := NumClocks.String(); s != "Name(26)" {
		t.Errorf("Unexpected name for out of range clock: %s", s)
	}
}

func TestMuxSelector(t *testing.T) {
	sel, err := MuxSelector(WORK_CLK, SPLL_CLK)
	if err != nil || sel != 2 {
		t.Errorf("MuxSelector(WORK_CLK, SPLL_CLK) = %d, %v", sel, err)
	}
	if _, err := MuxSelector(WORK_CLK, APB_CLK); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := MuxSelector(BUS_CLK, WORK_CLK); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("Expected ErrInvalidOperation, got %v", err)
	}
}
