// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crg

import (
	"errors"
)

var (
	// ErrInvalidParameter is returned for out of range clock names, values
	// that do not fit their register field and missing configuration.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrNotFound is returned when a divider code or mux parent is not in
	// the descriptor's table.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOperation is returned when an operation does not apply to
	// the clock's category, or Init is called twice.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrTimeout is returned when the SPLL did not lock within its budget.
	ErrTimeout = errors.New("timeout")
	// ErrGeneric is returned when a gate operation is asked of a clock
	// without a gate, such as ClockEnable on a divider.
	ErrGeneric = errors.New("clock error")
)
