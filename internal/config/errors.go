// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strings"
)

// ValidationError is returned when a configuration or its inputs are
// not acceptable. Paths holds the configuration paths at fault, if
// known.
type ValidationError struct {
	Paths [][]string
	Err   error
}

func (e *ValidationError) Error() string {
	if len(e.Paths) == 0 {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	p := make([]string, len(e.Paths))
	for i, path := range e.Paths {
		p[i] = strings.Join(path, ".")
	}
	return fmt.Sprintf("invalid configuration at %s: %v", strings.Join(p, ", "), e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// UnsupportedError is returned when a configuration names an animation
// or background kind that does not exist.
type UnsupportedError struct {
	Kind string // "text animation", "image animation" or "background"
	Name string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported %s: %q", e.Kind, e.Name)
}

// RenderError is returned when a render precondition does not hold.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
