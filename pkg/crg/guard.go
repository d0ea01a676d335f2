// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crg

import (
	"sync"
)

// Guarded serializes access to a Tree shared between goroutines, like the
// gRPC service and the metrics collector.
type Guarded struct {
	mu sync.Mutex
	t  *Tree
}

func NewGuarded(t *Tree) *Guarded {
	return &Guarded{t: t}
}

// Do runs f with exclusive access to the tree.
func (g *Guarded) Do(f func(*Tree) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return f(g.t)
}

func (g *Guarded) GetFreq(name Name) (hz uint32, err error) {
	err = g.Do(func(t *Tree) error {
		hz, err = t.GetFreq(name)
		return err
	})
	return
}

func (g *Guarded) GetParent(name Name) (p Name, err error) {
	err = g.Do(func(t *Tree) error {
		p, err = t.GetParent(name)
		return err
	})
	return
}

func (g *Guarded) SetParent(name, parent Name) error {
	return g.Do(func(t *Tree) error {
		return t.SetParent(name, parent)
	})
}

func (g *Guarded) GetClkDivider(name Name) (r uint32, err error) {
	err = g.Do(func(t *Tree) error {
		r, err = t.GetClkDivider(name)
		return err
	})
	return
}

func (g *Guarded) ClockEnable(name Name, enable bool) error {
	return g.Do(func(t *Tree) error {
		return t.ClockEnable(name, enable)
	})
}
