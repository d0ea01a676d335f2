// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crg

import (
	"fmt"

	"github.com/eam2011/bsp/pkg/hardware/eam2011"
	"golang.org/x/exp/slices"
)

const (
	SROSC_HZ = 32768
	FROSC_HZ = 48000000
)

var (
	cpuDivTable = []DivEntry{{0, 1}, {1, 2}, {3, 4}, {7, 8}, {0, 0}}
	busDivTable = []DivEntry{{0, 1}, {1, 2}, {2, 4}, {0, 0}}
	apbDivTable = busDivTable
	// UART_DIV has no terminator, the slice bound ends it.
	uartDivTable = []DivEntry{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 6}, {5, 8}}
)

func gateBit(bit uint) Field {
	return Field{eam2011.CRG_CLK_GATE0, bit, 1}
}

func fixedRateClocks() []Descriptor {
	return []Descriptor{
		NewFixedRate(SROSC_CLK, SROSC_HZ),
		NewFixedRate(FROSC_CLK, FROSC_HZ),
	}
}

func fixedFactorClocks() []Descriptor {
	return []Descriptor{
		NewFixedFactor(FROSC_DIV4_CLK, FROSC_CLK, 1, 4),
		NewFixedFactor(SROSC_DIV2_CLK, SROSC_CLK, 1, 2),
	}
}

func externalClocks() []Descriptor {
	return []Descriptor{
		NewExternal(SOSC_CLK, 0),
		NewExternal(EXT_TMR0_CLK, 0),
		NewExternal(EXT_TMR1_CLK, 0),
	}
}

func muxClocks() []Descriptor {
	return []Descriptor{
		NewMux(SPLL_REF_CLK, Field{eam2011.CRG_SPLL_REF_SEL, 0, 1},
			FROSC_CLK, SOSC_CLK),
		NewMux(WORK_CLK, Field{eam2011.CRG_WORK_CLK_SEL, 0, 2},
			FROSC_CLK, SOSC_CLK, SPLL_CLK, SROSC_CLK),
		NewMux(CPU_RTC_CLK, Field{eam2011.CRG_CLK_MUX0, 0, 2},
			SROSC_CLK, SROSC_DIV2_CLK, FROSC_DIV4_CLK),
		NewMux(UART_FUNC_CLK, Field{eam2011.CRG_CLK_MUX0, 4, 2},
			APB_CLK, FROSC_CLK, SOSC_CLK),
		NewMux(TIMER_FUNC_CLK, Field{eam2011.CRG_CLK_MUX0, 8, 2},
			APB_CLK, EXT_TMR0_CLK, EXT_TMR1_CLK, SROSC_CLK),
	}
}

func dividerClocks() []Descriptor {
	return []Descriptor{
		NewDivider(CPU_CORE_CLK, WORK_CLK, Field{eam2011.CRG_CLK_DIV0, 0, 3}, cpuDivTable),
		NewDivider(BUS_CLK, CPU_CORE_CLK, Field{eam2011.CRG_CLK_DIV0, 4, 2}, busDivTable),
		NewDivider(APB_CLK, BUS_CLK, Field{eam2011.CRG_CLK_DIV0, 8, 2}, apbDivTable),
		NewDivider(UART_DIV_CLK, UART_FUNC_CLK, Field{eam2011.CRG_CLK_DIV1, 0, 3}, uartDivTable),
	}
}

func gateClocks() []Descriptor {
	return []Descriptor{
		NewGate(UART0_CLK, UART_DIV_CLK, gateBit(0)),
		NewGate(UART1_CLK, UART_DIV_CLK, gateBit(1)),
		NewGate(SPI0_CLK, APB_CLK, gateBit(2)),
		NewGate(I2C0_CLK, APB_CLK, gateBit(3)),
		NewGate(GPIO_CLK, APB_CLK, gateBit(4)),
		NewGate(DMA_CLK, BUS_CLK, gateBit(5)),
		NewGate(TIMER0_CLK, TIMER_FUNC_CLK, gateBit(6)),
		NewGate(TIMER1_CLK, TIMER_FUNC_CLK, gateBit(7)),
		NewGate(WDT_CLK, CPU_RTC_CLK, Field{eam2011.CRG_CLK_GATE0, 8, 2}),
	}
}

func pllClocks() []Descriptor {
	return []Descriptor{
		NewPll(SPLL_CLK, SPLL_REF_CLK),
	}
}

// Board returns a fresh copy of the EAM2011 clock table, one descriptor per
// Name.
func Board() []Descriptor {
	var ds []Descriptor
	for _, tbl := range [][]Descriptor{
		fixedRateClocks(),
		fixedFactorClocks(),
		externalClocks(),
		muxClocks(),
		dividerClocks(),
		gateClocks(),
		pllClocks(),
	} {
		ds = append(ds, tbl...)
	}
	return ds
}

// MuxSelector returns the selector value that makes parent the source of
// the board mux named mux.
func MuxSelector(mux, parent Name) (uint32, error) {
	for _, d := range muxClocks() {
		if d.Name() != mux {
			continue
		}
		i := slices.Index(d.(*Mux).Parents, parent)
		if i < 0 {
			return 0, fmt.Errorf("%v is not a source of %v: %w", parent, mux, ErrNotFound)
		}
		return uint32(i), nil
	}
	return 0, fmt.Errorf("%v is not a mux: %w", mux, ErrInvalidOperation)
}

// DividerCode returns the raw code that makes the board divider named div
// divide by ratio.
func DividerCode(div Name, ratio uint32) (uint32, error) {
	for _, d := range dividerClocks() {
		if d.Name() != div {
			continue
		}
		for _, e := range d.(*Divider).Table {
			if e.Div == 0 {
				break
			}
			if e.Div == ratio {
				return e.Val, nil
			}
		}
		return 0, fmt.Errorf("%v cannot divide by %d: %w", div, ratio, ErrNotFound)
	}
	return 0, fmt.Errorf("%v is not a divider: %w", div, ErrInvalidOperation)
}
