// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package render provides the emoji frame renderer. A Renderer draws
// frames of a single render configuration as a pure function of the
// frame timestamp.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/kortschak/emojify/internal/config"
	"github.com/kortschak/emojify/internal/text"
)

// Renderer renders frames of a render configuration onto a canvas it
// owns. The canvas is reused for every frame, so callers must copy a
// returned frame before rendering the next. A Renderer is not safe for
// concurrent use.
type Renderer struct {
	cfg    *config.Render
	size   int
	canvas *image.RGBA
	dc     *gg.Context

	face      font.Face
	fontPx    float64
	textWidth float64
	baseline  float64

	mask *image.Alpha
}

// New returns a Renderer for cfg. A *config.RenderError is returned if
// the configuration cannot be rendered.
func New(cfg *config.Render) (*Renderer, error) {
	size := cfg.Output.Size()
	if size <= 0 || cfg.Output.Height != size {
		return nil, &config.RenderError{Op: "create canvas", Err: fmt.Errorf("invalid canvas size: %dx%d", cfg.Output.Width, cfg.Output.Height)}
	}
	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	r := &Renderer{
		cfg:    cfg,
		size:   size,
		canvas: canvas,
		dc:     gg.NewContextForRGBA(canvas),
	}

	switch c := cfg.Content.(type) {
	case *config.Text:
		r.fontPx = float64(size) * c.FontSizePct / 100
		face, err := text.Face(c.Font, r.fontPx)
		if err != nil {
			return nil, &config.RenderError{Op: "load font", Err: err}
		}
		r.face = face
		r.dc.SetFontFace(face)
		r.textWidth = text.Advance(face, c.Text)
		if r.textWidth <= 0 {
			return nil, &config.RenderError{Op: "measure text", Err: fmt.Errorf("zero width text: %q", c.Text)}
		}
		if text.InkBounds(face, c.Text, fixed.Point26_6{}).Empty() {
			return nil, &config.RenderError{Op: "measure text", Err: fmt.Errorf("text has no visible glyphs: %q", c.Text)}
		}
		r.baseline = text.BaselineY(c.Text, float64(size), c.VerticalOffsetPct) + text.Middle(face)

		switch e := c.Animation.(type) {
		case config.Slide:
			if c.Speed <= 0 {
				return nil, &config.RenderError{Op: "slide", Err: errors.New("zero slide speed")}
			}
		case config.Timed:
			if e.Schedule().Duration <= 0 {
				return nil, &config.RenderError{Op: e.Name(), Err: errors.New("zero cycle duration")}
			}
		default:
			return nil, &config.UnsupportedError{Kind: "text animation", Name: fmt.Sprintf("%T", e)}
		}

	case *config.Image:
		if c.Source == nil {
			return nil, &config.RenderError{Op: "image", Err: errors.New("missing image")}
		}
		if b := c.Source.Bounds(); b.Dx() != size || b.Dy() != size {
			return nil, &config.RenderError{Op: "image", Err: fmt.Errorf("image is %dx%d, not %dx%[3]d", b.Dx(), b.Dy(), size)}
		}
		if c.Speed <= 0 {
			return nil, &config.RenderError{Op: "image", Err: errors.New("zero image speed")}
		}
		if c.Animation < config.Scale || c.Animation > config.Pulse {
			return nil, &config.UnsupportedError{Kind: "image animation", Name: c.Animation.String()}
		}
		r.mask = image.NewAlpha(canvas.Bounds())

	default:
		return nil, &config.RenderError{Op: "render", Err: fmt.Errorf("unknown content: %T", c)}
	}
	return r, nil
}

// TextWidth returns the advance width of the text in pixels, or zero
// for image content.
func (r *Renderer) TextWidth() float64 {
	return r.textWidth
}

// Render renders the frame at the timestamp ms, in milliseconds, and
// returns the canvas.
func (r *Renderer) Render(ms float64) *image.RGBA {
	r.dc.Identity()
	r.dc.ResetClip()
	r.background()
	switch c := r.cfg.Content.(type) {
	case *config.Text:
		r.text(c, ms)
	case *config.Image:
		r.image(c, ms)
	}
	return r.canvas
}

// Preview renders a single frame of cfg at the timestamp ms.
func Preview(cfg *config.Render, ms float64) (*image.RGBA, error) {
	r, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return r.Render(ms), nil
}

func (r *Renderer) background() {
	r.dc.SetColor(color.Transparent)
	r.dc.Clear()
	switch bg := r.cfg.Background.(type) {
	case config.Solid:
		r.dc.SetColor(bg.Color)
		r.dc.Clear()
	case config.Gradient:
		s := float64(r.size)
		g := gg.NewLinearGradient(0, 0, s, s)
		g.AddColorStop(0, bg.From)
		g.AddColorStop(1, bg.To)
		r.dc.SetFillStyle(g)
		r.dc.DrawRectangle(0, 0, s, s)
		r.dc.Fill()
	}
}

// Progress returns the position within the current cycle of a timed
// effect at the timestamp ms. Reverse cycles run from 1 to 0, alternate
// cycles reverse every odd cycle, and once a finite number of repeats
// has elapsed the progress is held at its terminal value.
func Progress(t config.Timing, ms float64) float64 {
	d := t.Duration * 1000
	if d <= 0 {
		return 0
	}
	ms = math.Max(ms, 0)
	cycle := math.Floor(ms / d)
	if t.Repeat >= 0 && cycle >= float64(t.Repeat) {
		if t.Direction == config.Reverse {
			return 0
		}
		return 1
	}
	p := math.Mod(ms, d) / d
	switch t.Direction {
	case config.Reverse:
		p = 1 - p
	case config.Alternate:
		if math.Mod(cycle, 2) == 1 {
			p = 1 - p
		}
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
