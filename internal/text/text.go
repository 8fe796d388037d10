// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package text provides font faces, text metrics and vertical alignment
// for rendering short strings onto square emoji canvases.
package text

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/math/fixed"
)

// DefaultFamily is the font family used when none is specified.
const DefaultFamily = "go-bold"

var families = map[string][]byte{
	"go":             goregular.TTF,
	"go-bold":        gobold.TTF,
	"go-bold-italic": gobolditalic.TTF,
	"go-italic":      goitalic.TTF,
	"go-medium":      gomedium.TTF,
	"go-mono":        gomono.TTF,
	"go-mono-bold":   gomonobold.TTF,
	"go-smallcaps":   gosmallcaps.TTF,
}

// Families returns the names of the available font families in
// lexical order.
func Families() []string {
	names := make([]string, 0, len(families))
	for n := range families {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// IsFontFile returns whether name refers to a TrueType font file rather
// than one of the Families. The embedded families have no glyphs for
// Hangul, Han or Kana so text in those scripts needs a font file.
func IsFontFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".ttf")
}

var (
	parsedMu sync.Mutex
	parsed   = make(map[string]*truetype.Font)
)

// Face returns a font face for the named family or TrueType font file
// at the given size in pixels. Faces are not safe for concurrent use, so each caller gets
// its own face over a shared parsed font.
func Face(family string, px float64) (font.Face, error) {
	if family == "" {
		family = DefaultFamily
	}
	if px <= 0 || math.IsNaN(px) || math.IsInf(px, 0) {
		return nil, fmt.Errorf("invalid font size: %v", px)
	}
	parsedMu.Lock()
	defer parsedMu.Unlock()
	f, ok := parsed[family]
	if !ok {
		var (
			ttf []byte
			err error
		)
		if IsFontFile(family) {
			ttf, err = os.ReadFile(family)
			if err != nil {
				return nil, err
			}
		} else {
			ttf, ok = families[family]
			if !ok {
				return nil, fmt.Errorf("unknown font family: %q", family)
			}
		}
		f, err = truetype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parse font %q: %w", family, err)
		}
		parsed[family] = f
	}
	// At 72 DPI a point is a pixel.
	return truetype.NewFace(f, &truetype.Options{Size: px, DPI: 72, Hinting: font.HintingNone}), nil
}

// Advance returns the horizontal advance of s in pixels when drawn
// with face, including kerning.
func Advance(face font.Face, s string) float64 {
	return fromFixed(font.MeasureString(face, s))
}

// InkBounds returns the bounding rectangle of the glyph ink of s drawn
// with its baseline origin at dot. The returned rectangle is empty
// if no glyph in s has any ink.
func InkBounds(face font.Face, s string, dot fixed.Point26_6) image.Rectangle {
	b := newBounds()
	b.drawString(s, face, dot)
	if b.Min.X > b.Max.X {
		return image.Rectangle{}
	}
	return image.Rectangle(*b)
}

// Middle returns the vertical distance from the middle of the em box
// to the baseline of face. Adding it to a y coordinate places text
// whose em box is vertically centred on that coordinate.
func Middle(face font.Face) float64 {
	m := face.Metrics()
	return fromFixed(m.Ascent-m.Descent) / 2
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

type bounds image.Rectangle

func newBounds() *bounds {
	b := bounds(image.Rectangle{
		Min: image.Point{X: math.MaxInt, Y: math.MaxInt},
		Max: image.Point{X: math.MinInt, Y: math.MinInt},
	})
	return &b
}

func (b *bounds) drawString(s string, fnt font.Face, dot fixed.Point26_6) {
	prevC := rune(-1)
	for _, c := range s {
		if prevC >= 0 {
			dot.X += fnt.Kern(prevC, c)
		}
		dr, _, _, advance, ok := fnt.Glyph(dot, c)
		if !ok {
			continue
		}
		if !dr.Empty() {
			b.set(dr.Min.X, dr.Min.Y)
			b.set(dr.Max.X, dr.Max.Y)
		}
		dot.X += advance
		prevC = c
	}
}

func (b *bounds) set(x, y int) {
	b.Min.X = min(b.Min.X, x)
	b.Min.Y = min(b.Min.Y, y)
	b.Max.X = max(b.Max.X, x)
	b.Max.Y = max(b.Max.Y, y)
}
