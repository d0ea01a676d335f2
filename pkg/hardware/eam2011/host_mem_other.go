// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package eam2011

import (
	"errors"
)

func openHostMemory(bases ...uintptr) (Memory, error) {
	return nil, errors.New("/dev/mem access is only supported on linux")
}
