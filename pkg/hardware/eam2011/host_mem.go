// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package eam2011

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

type hostMem struct {
	mf    *os.File
	ps    uintptr
	pages map[uintptr][]byte
}

// openHostMemory maps one page for every base address given. Accesses
// outside of the mapped pages panic.
func openHostMemory(bases ...uintptr) (*hostMem, error) {
	f, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("open /dev/mem: %v", err)
	}
	m := &hostMem{
		mf:    f,
		ps:    uintptr(unix.Getpagesize()),
		pages: make(map[uintptr][]byte),
	}
	for _, b := range bases {
		page := b & ^(m.ps - 1)
		if _, ok := m.pages[page]; ok {
			continue
		}
		mem, err := unix.Mmap(int(f.Fd()), int64(page), int(m.ps), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("mmap %08x: %v", page, err)
		}
		m.pages[page] = mem
	}
	return m, nil
}

func (m *hostMem) word(address uintptr) *uint32 {
	page := address & ^(m.ps - 1)
	mem, ok := m.pages[page]
	if !ok {
		panic(fmt.Sprintf("address %08x is not mapped", address))
	}
	return (*uint32)(unsafe.Pointer(&mem[address-page]))
}

func (m *hostMem) MustRead32(address uintptr) uint32 {
	return *m.word(address)
}

func (m *hostMem) MustWrite32(address uintptr, data uint32) {
	*m.word(address) = data
}

func (m *hostMem) Close() {
	for p, mem := range m.pages {
		unix.Munmap(mem)
		delete(m.pages, p)
	}
	m.mf.Close()
}
