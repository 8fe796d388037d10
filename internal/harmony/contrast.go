// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package harmony

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Contrast returns the WCAG contrast ratio between two hex colors.
func Contrast(a, b string) (float64, error) {
	ca, err := colorful.Hex(a)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", a, err)
	}
	cb, err := colorful.Hex(b)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", b, err)
	}
	return contrast(ca, cb), nil
}

func contrast(a, b colorful.Color) float64 {
	la, lb := luminance(a), luminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// luminance returns the WCAG relative luminance of c.
func luminance(c colorful.Color) float64 {
	r, g, b := c.Clamped().LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// EnsureContrast returns c with its background and gradient stops
// adjusted so that each has at least MinContrast against the text color.
// Only lightness is changed. The background is first moved 0.4 away
// from the text lightness and the gradient stops 0.2, then all are
// stepped by 0.1 until the ratio is met. Colors that cannot be parsed
// are left untouched and no adjusted color has a lower contrast than
// the color it replaces.
func EnsureContrast(c Combination) Combination {
	text, err := colorful.Hex(c.Text)
	if err != nil {
		return c
	}
	c.Background = adjust(text, c.Background, 0.4)
	for i, s := range c.Gradient {
		c.Gradient[i] = adjust(text, s, 0.2)
	}
	return c
}

func adjust(text colorful.Color, bg string, first float64) string {
	b, err := colorful.Hex(bg)
	if err != nil {
		return bg
	}
	best := contrast(text, b)
	if best >= MinContrast {
		return bg
	}
	h, s, l := b.Hsl()
	_, _, tl := text.Hsl()
	dir := 1.0
	if tl > 0.5 {
		dir = -1
	}
	adjusted := bg
	for _, d := range []float64{dir, -dir} {
		for _, cand := range lightness(l, d, first) {
			hex := colorful.Hsl(h, s, cand).Clamped().Hex()
			// Use the rounded color so the ratio is the one a
			// reader of the hex string would compute.
			cb, _ := colorful.Hex(hex)
			r := contrast(text, cb)
			if r >= MinContrast {
				return hex
			}
			if r > best {
				best, adjusted = r, hex
			}
		}
	}
	return adjusted
}

// lightness returns the sequence of candidate lightness values moving
// from l in direction dir, starting with a step of first clamped to
// [0.1, 0.9] and continuing in steps of 0.1 to the extreme.
func lightness(l, dir, first float64) []float64 {
	start := math.Min(0.9, math.Max(0.1, l+dir*first))
	end := 0.0
	if dir > 0 {
		end = 1
	}
	steps := []float64{start}
	for v := start + dir*0.1; (v-end)*dir < 0; v += dir * 0.1 {
		steps = append(steps, v)
	}
	return append(steps, end)
}
