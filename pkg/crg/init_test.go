// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crg

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/eam2011/bsp/pkg/hardware/eam2011"
	"github.com/google/go-cmp/cmp"
)

// fakeFlash records the calls made to it together with how many register
// accesses had happened at the time.
type fakeFlash struct {
	r     *eam2011.RegisterFile
	calls []string
	err   error
}

func (f *fakeFlash) SetClockMode(m eam2011.FlashClockMode) {
	f.calls = append(f.calls, fmt.Sprintf("mode %v @%d", m, len(f.r.Ops())))
}

func (f *fakeFlash) UpdateClockMode(busHz uint32) error {
	f.calls = append(f.calls, fmt.Sprintf("update %d", busHz))
	return f.err
}

func newInitTree(t *testing.T) (*Tree, *eam2011.RegisterFile, *fakeFlash) {
	t.Helper()
	ff := &fakeFlash{}
	tr, r := newTestTree(t, WithFlash(ff))
	ff.r = r
	return tr, r, ff
}

func testConfig() *Config {
	return &Config{
		Sosc:    SoscConfig{Freq: 24000000, Enable: true, AgcGain: 1},
		Spll:    SpllConfig{RefDiv: 0, FbDivInt: 4, PostDiv0: 0, LockBudget: 10},
		SpllRef: MuxRequest{SPLL_REF_CLK, 1},
		External: []ExternalFreq{
			{EXT_TMR0_CLK, 1000000},
		},
		Dividers: []DivRequest{
			{CPU_CORE_CLK, 0},
			{BUS_CLK, 1},
			{APB_CLK, 1},
		},
		Muxes: []MuxRequest{
			{WORK_CLK, 2},
			{UART_FUNC_CLK, 1},
			{TIMER_FUNC_CLK, 1},
		},
		Gates: []GateRequest{
			{UART0_CLK, true},
			{TIMER0_CLK, true},
			{WDT_CLK, true},
		},
	}
}

func TestInit(t *testing.T) {
	tr, r, ff := newInitTree(t)
	r.SimulateSpllLock(2)
	if err := tr.Init(testConfig()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !tr.Initialized() {
		t.Errorf("Expected tree initialized")
	}
	if diff := cmp.Diff([]string{"mode safe @0", "update 96000000"}, ff.calls); diff != "" {
		t.Errorf("Flash calls (-want +got):\n%s", diff)
	}
	if tr.SystemCoreClock != 192000000 {
		t.Errorf("Expected SystemCoreClock 192 MHz, got %d", tr.SystemCoreClock)
	}
	if tr.SystemTimerClock != SROSC_HZ {
		t.Errorf("Expected SystemTimerClock %d, got %d", SROSC_HZ, tr.SystemTimerClock)
	}
	for _, tc := range []struct {
		name Name
		hz   uint32
	}{
		{APB_CLK, 48000000},
		{UART0_CLK, FROSC_HZ},
		{TIMER0_CLK, 1000000},
		{WDT_CLK, SROSC_HZ},
	} {
		if hz, err := tr.GetFreq(tc.name); err != nil || hz != tc.hz {
			t.Errorf("GetFreq(%v) = %d, %v; want %d", tc.name, hz, err, tc.hz)
		}
	}
	if v := r.Get(gate0); v != 0x341 {
		t.Errorf("Expected CLK_GATE0 0x341, got %#x", v)
	}
	if err := tr.Init(testConfig()); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("Expected ErrInvalidOperation on second Init, got %v", err)
	}
}

func TestInitNilConfig(t *testing.T) {
	tr, r, ff := newInitTree(t)
	if err := tr.Init(nil); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}
	if len(ff.calls) != 0 || len(r.Ops()) != 0 {
		t.Errorf("Expected no side effects, got %v and %v", ff.calls, r.Ops())
	}
}

func TestInitSpllTimeout(t *testing.T) {
	tr, _, ff := newInitTree(t)
	err := tr.Init(testConfig())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Expected ErrTimeout, got %v", err)
	}
	if tr.Initialized() {
		t.Errorf("Expected tree not initialized")
	}
	if diff := cmp.Diff([]string{"mode safe @0"}, ff.calls); diff != "" {
		t.Errorf("Flash calls (-want +got):\n%s", diff)
	}
	if p, _ := tr.GetParent(WORK_CLK); p != FROSC_CLK {
		t.Errorf("Expected work clock on FROSC_CLK, got %v", p)
	}
}

func TestInitBusOutOfRange(t *testing.T) {
	tr, r, ff := newInitTree(t)
	r.SimulateSpllLock(2)
	cfg := testConfig()
	cfg.Spll.FbDivInt = 0xfff
	if err := tr.Init(cfg); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("Expected ErrInvalidParameter, got %v", err)
	}
	if tr.Initialized() {
		t.Errorf("Expected tree not initialized")
	}
	if diff := cmp.Diff([]string{"mode safe @0"}, ff.calls); diff != "" {
		t.Errorf("Flash calls (-want +got):\n%s", diff)
	}
}

func TestInitStopsOnBadExternal(t *testing.T) {
	tr, r, ff := newInitTree(t)
	r.SimulateSpllLock(0)
	cfg := testConfig()
	cfg.External = append(cfg.External, ExternalFreq{FROSC_CLK, 1})
	if err := tr.Init(cfg); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("Expected ErrInvalidOperation, got %v", err)
	}
	if w := r.Writes(gate0); len(w) != 0 {
		t.Errorf("Expected gates untouched, got %v", w)
	}
	if len(ff.calls) != 1 {
		t.Errorf("Expected no flash update, got %v", ff.calls)
	}
}

func TestInitIgnoresBatchErrors(t *testing.T) {
	tr, r, _ := newInitTree(t)
	r.SimulateSpllLock(0)
	cfg := testConfig()
	cfg.Dividers = []DivRequest{{BUS_CLK, 3}, {APB_CLK, 1}}
	cfg.Muxes = []MuxRequest{{CPU_RTC_CLK, 5}}
	cfg.Gates = []GateRequest{{BUS_CLK, true}, {UART1_CLK, true}}
	if err := tr.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if d, _ := tr.GetClkDivider(APB_CLK); d != 1 {
		t.Errorf("Expected APB divider untouched after BUS failure, got %d", d)
	}
	if v := r.Get(gate0); v != 0x2 {
		t.Errorf("Expected UART1 gate set, got %#x", v)
	}
	if tr.SystemCoreClock != FROSC_HZ {
		t.Errorf("Expected core still on FROSC, got %d", tr.SystemCoreClock)
	}
}

func TestInitFlashUpdateError(t *testing.T) {
	tr, r, ff := newInitTree(t)
	r.SimulateSpllLock(0)
	ff.err = errors.New("flash busy")
	if err := tr.Init(testConfig()); err == nil {
		t.Fatalf("Expected flash error")
	}
	if tr.Initialized() {
		t.Errorf("Expected tree not initialized")
	}
}

func TestGuardedConcurrentAccess(t *testing.T) {
	tr, _ := newTestTree(t)
	g := NewGuarded(tr)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := FROSC_CLK
			if i%2 == 1 {
				p = SROSC_CLK
			}
			if err := g.SetParent(WORK_CLK, p); err != nil {
				t.Error(err)
			}
			if _, err := g.GetFreq(UART0_CLK); err != nil {
				t.Error(err)
			}
			if _, err := g.GetParent(WORK_CLK); err != nil {
				t.Error(err)
			}
			if _, err := g.GetClkDivider(BUS_CLK); err != nil {
				t.Error(err)
			}
			if err := g.ClockEnable(GPIO_CLK, i%2 == 0); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()
}
