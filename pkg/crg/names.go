// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crg

import (
	"fmt"
	"strings"
)

// Name identifies one clock signal of the EAM2011. Names index the clock
// arena and are used as parent references.
type Name uint8

const (
	SROSC_CLK Name = iota
	FROSC_CLK
	SOSC_CLK
	EXT_TMR0_CLK
	EXT_TMR1_CLK
	FROSC_DIV4_CLK
	SROSC_DIV2_CLK
	SPLL_REF_CLK
	SPLL_CLK
	WORK_CLK
	CPU_CORE_CLK
	BUS_CLK
	APB_CLK
	CPU_RTC_CLK
	UART_FUNC_CLK
	UART_DIV_CLK
	TIMER_FUNC_CLK
	UART0_CLK
	UART1_CLK
	SPI0_CLK
	I2C0_CLK
	GPIO_CLK
	DMA_CLK
	TIMER0_CLK
	TIMER1_CLK
	WDT_CLK

	NumClocks
)

var names = [NumClocks]string{
	SROSC_CLK:      "SROSC_CLK",
	FROSC_CLK:      "FROSC_CLK",
	SOSC_CLK:       "SOSC_CLK",
	EXT_TMR0_CLK:   "EXT_TMR0_CLK",
	EXT_TMR1_CLK:   "EXT_TMR1_CLK",
	FROSC_DIV4_CLK: "FROSC_DIV4_CLK",
	SROSC_DIV2_CLK: "SROSC_DIV2_CLK",
	SPLL_REF_CLK:   "SPLL_REF_CLK",
	SPLL_CLK:       "SPLL_CLK",
	WORK_CLK:       "WORK_CLK",
	CPU_CORE_CLK:   "CPU_CORE_CLK",
	BUS_CLK:        "BUS_CLK",
	APB_CLK:        "APB_CLK",
	CPU_RTC_CLK:    "CPU_RTC_CLK",
	UART_FUNC_CLK:  "UART_FUNC_CLK",
	UART_DIV_CLK:   "UART_DIV_CLK",
	TIMER_FUNC_CLK: "TIMER_FUNC_CLK",
	UART0_CLK:      "UART0_CLK",
	UART1_CLK:      "UART1_CLK",
	SPI0_CLK:       "SPI0_CLK",
	I2C0_CLK:       "I2C0_CLK",
	GPIO_CLK:       "GPIO_CLK",
	DMA_CLK:        "DMA_CLK",
	TIMER0_CLK:     "TIMER0_CLK",
	TIMER1_CLK:     "TIMER1_CLK",
	WDT_CLK:        "WDT_CLK",
}

func (n Name) String() string {
	if n < NumClocks {
		return names[n]
	}
	return fmt.Sprintf("Name(%d)", uint8(n))
}

// ParseName is the inverse of Name.String. Matching ignores case and the
// "_CLK" suffix may be left out.
func ParseName(s string) (Name, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasSuffix(u, "_CLK") {
		u += "_CLK"
	}
	for i, n := range names {
		if n == u {
			return Name(i), nil
		}
	}
	return NumClocks, fmt.Errorf("unknown clock %q: %w", s, ErrInvalidParameter)
}
