// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package harmony generates random text and background color
// combinations that follow classic hue relationships and meet the
// WCAG AA contrast ratio.
package harmony

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// MinContrast is the WCAG AA contrast ratio for normal text.
const MinContrast = 4.5

// Combination is a text color with matching solid and gradient
// backgrounds. Colors are hex strings in #rrggbb form.
type Combination struct {
	Text       string    `json:"text"`
	Background string    `json:"background"`
	Gradient   [2]string `json:"gradient"`
}

// Generator produces random color combinations. A Generator is not
// safe for concurrent use.
type Generator struct {
	rnd *rand.Rand
}

// New returns a new Generator using src as its source of randomness.
// If src is nil a time seeded source is used.
func New(src *rand.Rand) *Generator {
	if src == nil {
		src = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return &Generator{rnd: src}
}

// Styles is the set of hue relationships used by Combination.
var Styles = []string{
	"complementary",
	"analogous",
	"triadic",
	"monochromatic",
	"pastel",
	"vivid",
	"dark",
	"light",
}

// Combination returns a random combination in one of the Styles chosen
// uniformly. The result has been passed through EnsureContrast.
func (g *Generator) Combination() Combination {
	c, _ := g.Style(Styles[g.rnd.IntN(len(Styles))])
	return c
}

// Style returns a random combination in the named style. The result has
// been passed through EnsureContrast.
func (g *Generator) Style(name string) (Combination, error) {
	var c Combination
	base := g.in(0, 360)
	switch name {
	case "complementary":
		h := base + 180
		c = Combination{
			Text:     g.hsl(base, g.in(0.7, 1), g.in(0.2, 0.5)),
			Gradient: [2]string{g.hsl(h, g.in(0.6, 0.9), g.in(0.7, 0.9)), g.hsl(h+30, g.in(0.6, 0.9), g.in(0.8, 0.95))},
		}
	case "analogous":
		h := base + g.in(30, 60)
		c = Combination{
			Text:     g.hsl(base, g.in(0.8, 1), g.in(0.15, 0.4)),
			Gradient: [2]string{g.hsl(h, g.in(0.5, 0.8), g.in(0.75, 0.95)), g.hsl(h+20, g.in(0.5, 0.8), g.in(0.8, 0.95))},
		}
	case "triadic":
		c = Combination{
			Text:     g.hsl(base, g.in(0.8, 1), g.in(0.2, 0.5)),
			Gradient: [2]string{g.hsl(base+120, g.in(0.6, 0.9), g.in(0.7, 0.9)), g.hsl(base+240, g.in(0.6, 0.9), g.in(0.75, 0.95))},
		}
	case "monochromatic":
		s := g.in(0.6, 1)
		c = Combination{
			Text:     g.hsl(base, s, g.in(0.15, 0.4)),
			Gradient: [2]string{g.hsl(base, s*0.7, g.in(0.75, 0.95)), g.hsl(base, s*0.5, g.in(0.85, 0.95))},
		}
	case "pastel":
		h := base + g.in(150, 210)
		c = Combination{
			Text:     g.hsl(base, g.in(0.6, 0.9), g.in(0.25, 0.55)),
			Gradient: [2]string{g.hsl(h, g.in(0.4, 0.7), g.in(0.8, 0.95)), g.hsl(h+20, g.in(0.3, 0.6), g.in(0.85, 0.95))},
		}
	case "vivid":
		h := base + g.in(150, 210)
		c = Combination{
			Text:     g.hsl(base, g.in(0.9, 1), g.in(0.2, 0.4)),
			Gradient: [2]string{g.hsl(h, g.in(0.8, 1), g.in(0.6, 0.8)), g.hsl(h+30, g.in(0.8, 1), g.in(0.7, 0.9))},
		}
	case "dark":
		h := base + g.in(120, 240)
		c = Combination{
			Text:     g.hsl(base, g.in(0.7, 1), g.in(0.8, 0.95)),
			Gradient: [2]string{g.hsl(h, g.in(0.6, 0.9), g.in(0.15, 0.35)), g.hsl(h+30, g.in(0.6, 0.9), g.in(0.25, 0.45))},
		}
	case "light":
		h := base + g.in(150, 210)
		c = Combination{
			Text:     g.hsl(base, g.in(0.8, 1), g.in(0.2, 0.45)),
			Gradient: [2]string{g.hsl(h, g.in(0.3, 0.7), g.in(0.9, 0.98)), g.hsl(h+20, g.in(0.2, 0.6), g.in(0.92, 0.98))},
		}
	default:
		return Combination{}, fmt.Errorf("unknown style: %q", name)
	}
	c.Background = c.Gradient[0]
	return EnsureContrast(c), nil
}

// in returns a uniformly distributed value in [lo, hi).
func (g *Generator) in(lo, hi float64) float64 {
	return lo + g.rnd.Float64()*(hi-lo)
}

func (g *Generator) hsl(h, s, l float64) string {
	return colorful.Hsl(math.Mod(h, 360), s, l).Clamped().Hex()
}
