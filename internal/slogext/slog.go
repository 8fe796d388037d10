// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package slogext provides slog helpers.
package slogext

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/kortschak/goroutine"
)

// GoID is a slog.Handler that adds the calling goroutine's goid.
type GoID struct {
	slog.Handler
}

func (h GoID) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(slog.Int64("goid", goroutine.ID()))
	return h.Handler.Handle(ctx, r)
}

func (h GoID) WithAttrs(attrs []slog.Attr) slog.Handler {
	return GoID{h.Handler.WithAttrs(attrs)}
}

func (h GoID) WithGroup(name string) slog.Handler {
	return GoID{h.Handler.WithGroup(name)}
}

// Stringer implements slog.LogValuer for [fmt.Stringer].
type Stringer struct {
	fmt.Stringer
}

func (v Stringer) LogValue() slog.Value {
	if v.Stringer == nil {
		return slog.StringValue("<nil>")
	}
	return slog.StringValue(v.String())
}

// Size implements slog.LogValuer for an image size, rendering it as
// WxH.
type Size image.Point

func (v Size) LogValue() slog.Value {
	return slog.StringValue(fmt.Sprintf("%dx%d", v.X, v.Y))
}
