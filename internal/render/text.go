// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/kortschak/emojify/internal/config"
	"github.com/kortschak/emojify/internal/loop"
	"github.com/kortschak/emojify/internal/text"
)

func (r *Renderer) text(c *config.Text, ms float64) {
	s := float64(r.size)
	mid := s / 2
	x := mid - r.textWidth/2
	k := c.IntensityPct / 100
	col := c.Color

	switch e := c.Animation.(type) {
	case config.Slide:
		r.dc.SetColor(col)
		r.slide(c, ms)
		return

	case config.Typing:
		p := Progress(e.Timing, ms)
		r.dc.SetColor(col)
		visible := typed(c.Text, p)
		r.dc.DrawString(visible, x, r.baseline)
		if e.ShowCursor && cursorVisible(e, ms) {
			h := r.fontPx * 0.8
			w := math.Max(2, r.fontPx*0.06)
			top := r.baseline - text.Middle(r.face) - h/2
			r.dc.DrawRectangle(x+text.Advance(r.face, visible)+2, top, w, h)
			r.dc.Fill()
		}
		return

	case config.Rotate:
		r.dc.RotateAbout(rotation(e, Progress(e.Timing, ms), k), mid, mid)
	case config.Shake:
		dx, dy := shake(e, Progress(e.Timing, ms), k)
		r.dc.Translate(dx, dy)
	case config.Bounce:
		r.dc.Translate(0, -bounce(e, Progress(e.Timing, ms), k))
	case config.Zoom:
		z := zoom(e, Progress(e.Timing, ms), k)
		r.dc.ScaleAbout(z, z, mid, mid)
	case config.Fade:
		col.A = uint8(math.Round(255 * fade(e, Progress(e.Timing, ms))))
	case config.ColorChange:
		col = colorAt(e, c.Color, Progress(e.Timing, ms), k)
	}
	r.dc.SetColor(col)
	r.dc.DrawString(c.Text, x, r.baseline)
}

// slide draws the text tiled horizontally at its unit width, scrolled
// left by the distance travelled at the slide speed.
func (r *Renderer) slide(c *config.Text, ms float64) {
	s := float64(r.size)
	unit := loop.UnitWidth(r.textWidth, s, c.GapPct)
	off := math.Mod(ms*c.Speed/1000, unit)
	if unit-off < 1e-9 {
		off = 0
	}
	n := int(math.Ceil(s/unit)) + 2
	for i := range n {
		x := float64(i)*unit - off
		if x > -r.textWidth && x < s {
			r.dc.DrawString(c.Text, x, r.baseline)
		}
	}
}

// typed returns the leading characters of s revealed at progress p.
func typed(s string, p float64) string {
	runes := []rune(s)
	n := int(math.Floor(p*float64(len(runes)))) + 1
	return string(runes[:min(n, len(runes))])
}

// cursorVisible returns whether the typing cursor is shown at ms. The
// blink rate is rounded to a whole number of blinks per cycle so the
// cursor state is continuous across the loop boundary.
func cursorVisible(e config.Typing, ms float64) bool {
	blinks := math.Max(1, math.Round(e.Duration*e.CursorBlinkSpeed))
	phase := math.Mod(math.Max(ms, 0)/(e.Duration*1000)*blinks, 1)
	return phase < 0.5
}

// rotation returns the rotation in radians at progress p.
func rotation(e config.Rotate, p, k float64) float64 {
	limit := e.MaxDegrees * math.Pi / 180 * k
	switch e.Spin {
	case config.Counterclockwise:
		return -p * limit
	case config.Oscillate:
		return math.Sin(p*2*math.Pi) * limit
	default:
		return p * limit
	}
}

// shake returns the shake displacement at progress p. The oscillation
// frequency is rounded to a whole number of periods per cycle.
func shake(e config.Shake, p, k float64) (dx, dy float64) {
	// Angular velocity is frequency/100 radians per millisecond.
	periods := math.Max(1, math.Round(e.Duration*1000*e.Frequency/100/(2*math.Pi)))
	theta := 2 * math.Pi * periods * p
	amp := k * 10 * (1 - e.Damping*p)
	return math.Sin(theta) * amp, math.Cos(theta) * amp
}

// bounce returns the upward displacement at progress p.
func bounce(e config.Bounce, p, k float64) float64 {
	return math.Abs(math.Sin(p*2*math.Pi)) * k * 30 * e.HeightPct / 100 * e.Elasticity
}

// wave returns the sinusoidal interpolation weight in [0, 1] at
// progress p.
func wave(p float64) float64 {
	return math.Sin(p*2*math.Pi)*0.5 + 0.5
}

// zoom returns the scale factor at progress p.
func zoom(e config.Zoom, p, k float64) float64 {
	z := (e.MinScalePct + (e.MaxScalePct-e.MinScalePct)*wave(p)) / 100
	return math.Max(0.05, 1+(z-1)*k)
}

// fade returns the text opacity at progress p.
func fade(e config.Fade, p float64) float64 {
	return clamp((e.MinOpacityPct+(e.MaxOpacityPct-e.MinOpacityPct)*wave(p))/100, 0, 1)
}

// colorAt returns the text color at progress p.
func colorAt(e config.ColorChange, base color.NRGBA, p, k float64) color.NRGBA {
	if !e.Smooth && len(e.Palette) != 0 {
		n := len(e.Palette)
		return e.Palette[int(math.Floor(p*float64(n)))%n]
	}
	c, _ := colorful.MakeColor(base)
	_, s, l := c.Hsl()
	if s < 0.1 || l < 0.1 || l > 0.9 {
		// Hue rotation is invisible on greys.
		s, l = 1, 0.5
	}
	h := math.Mod(p*360*k, 360)
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: base.A}
}
