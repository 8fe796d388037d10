// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"math"

	"github.com/kortschak/emojify/internal/config"
)

// transform is an affine transform about the canvas centre with an
// opacity.
type transform struct {
	dx, dy float64
	sx, sy float64
	angle  float64
	alpha  float64
}

var identity = transform{sx: 1, sy: 1, alpha: 1}

// Amplitudes of image effects at full intensity.
const (
	scaleAmplitude   = 0.3
	slideAmplitude   = 20 // px
	stretchAmplitude = 0.4
	bounceAmplitude  = 15 // px
	pulseFloor       = 0.3
)

// imageTransform returns the transform for the effect at progress p
// with normalized intensity k.
func imageTransform(e config.ImageEffect, p, k float64) transform {
	t := identity
	sin := math.Sin(p * 2 * math.Pi)
	switch e {
	case config.Scale:
		t.sx = 1 + scaleAmplitude*k*sin
		t.sy = t.sx
	case config.HorizontalSlide:
		t.dx = slideAmplitude * k * sin
	case config.VerticalStretch:
		t.sy = 1 + stretchAmplitude*k*sin
	case config.ImageBounce:
		t.dy = -bounceAmplitude * k * math.Abs(sin)
	case config.ImageRotate:
		// Swing through up to a full turn and back; a partial
		// spin would not return to its start at the loop boundary.
		t.angle = 2 * math.Pi * k * sin
	case config.Pulse:
		// A single swell per period, transparent-most at the
		// loop boundary.
		t.alpha = pulseFloor + (1-pulseFloor)*k*math.Abs(math.Sin(p*math.Pi))
	default:
		panic("unreachable")
	}
	return t
}

// imageProgress returns the position within the effect period at ms.
func imageProgress(c *config.Image, ms float64) float64 {
	period := 2000 / c.Speed
	return math.Mod(math.Max(ms, 0), period) / period
}

func (r *Renderer) image(c *config.Image, ms float64) {
	k := clamp(c.IntensityPct/100, 0, 1)
	t := imageTransform(c.Animation, imageProgress(c, ms), k)

	mid := r.size / 2
	m := float64(mid)
	r.dc.Translate(t.dx, t.dy)
	r.dc.RotateAbout(t.angle, m, m)
	r.dc.ScaleAbout(t.sx, t.sy, m, m)
	if t.alpha < 1 {
		a := uint8(math.Round(255 * clamp(t.alpha, 0, 1)))
		for i := range r.mask.Pix {
			r.mask.Pix[i] = a
		}
		// The mask has the canvas bounds so this cannot fail.
		_ = r.dc.SetMask(r.mask)
	}
	r.dc.DrawImageAnchored(c.Source, mid, mid, 0.5, 0.5)
	r.dc.ResetClip()
}
