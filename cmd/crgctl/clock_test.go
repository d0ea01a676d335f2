// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/eam2011/bsp/pkg/hardware/eam2011"
)

func TestDump(t *testing.T) {
	useSim(t)
	tree, done, err := openTree(true)
	if err != nil {
		t.Fatalf("openTree: %v", err)
	}
	defer done()

	var b strings.Builder
	if err := dump(&b, tree, false); err != nil {
		t.Fatalf("dump: %v", err)
	}
	out := b.String()
	if !strings.HasPrefix(out, "CLOCK") {
		t.Errorf("Expected header first, got %q", out)
	}
	if !regexp.MustCompile(`(?m)^CPU_CORE_CLK\s+divider\s+WORK_CLK\s+192000000\s*$`).MatchString(out) {
		t.Errorf("Expected CPU_CORE_CLK row, got:\n%s", out)
	}
	if strings.Contains(out, "Register") {
		t.Errorf("Registers printed without regs:\n%s", out)
	}

	b.Reset()
	if err := dump(&b, tree, true); err != nil {
		t.Fatalf("dump with registers: %v", err)
	}
	addr := eam2011.CRG_BASE + eam2011.CRG_WORK_CLK_SEL
	want := fmt.Sprintf("%08x %08x Work Clock Source Select Register\n", addr, tree.Soc().Mem().MustRead32(addr))
	if !strings.Contains(b.String(), want) {
		t.Errorf("Expected %q in register dump, got:\n%s", want, b.String())
	}
}
