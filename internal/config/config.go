// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config provides the emoji render configuration, its file
// representation, schema validation and the error types shared by the
// rendering pipeline.
package config

import (
	"fmt"
	"image"
	"image/color"
)

// Render is a complete, validated render configuration. A Render is
// immutable once built.
type Render struct {
	Content    Content
	Background Background
	Output     Output
}

// Content is the content of an emoji, either a *Text or an *Image.
type Content interface {
	content()
}

// Output is the output frame geometry and rate. Width and Height are
// always equal.
type Output struct {
	Width  int
	Height int
	FPS    int
}

// Size returns the canvas size.
func (o Output) Size() int { return o.Width }

// Background is the frame background, one of Solid, Gradient or
// Transparent.
type Background interface {
	background()
}

// Solid is a flat color background.
type Solid struct {
	Color color.NRGBA
}

// Gradient is a linear gradient from the top left corner to the bottom
// right corner of the canvas.
type Gradient struct {
	From, To color.NRGBA
}

// Transparent is a fully transparent background.
type Transparent struct{}

func (Solid) background()       {}
func (Gradient) background()    {}
func (Transparent) background() {}

// Text is a text emoji.
type Text struct {
	Text  string
	Color color.NRGBA
	Font  string

	// FontSizePct, VerticalOffsetPct and GapPct are percentages of
	// the canvas size.
	FontSizePct       float64
	VerticalOffsetPct float64
	GapPct            float64

	// Speed is the slide speed in pixels per second.
	Speed float64

	// AnimationSpeed is the playback rate of timed effects. It has
	// been folded into the effect's Timing.Duration by Build.
	AnimationSpeed float64

	IntensityPct float64

	Animation TextEffect
}

func (*Text) content() {}

// Image is an image emoji. Source is square and has the canvas size.
type Image struct {
	Source    image.Image
	Animation ImageEffect

	// Speed is the number of effect periods per two seconds.
	Speed        float64
	IntensityPct float64
}

func (*Image) content() {}

// TextEffect is a text animation. It is implemented by Slide, Typing,
// Rotate, Shake, Bounce, Zoom, Fade and ColorChange.
type TextEffect interface {
	// Name returns the configuration name of the effect.
	Name() string
	textEffect()
}

// Timed is a text effect driven by a repeating cycle.
type Timed interface {
	TextEffect
	Schedule() Timing
}

// Timing is the cycle timing shared by timed text effects.
type Timing struct {
	// Duration is the cycle duration in seconds.
	Duration float64
	// Repeat is the number of cycles to play; -1 is infinite
	// and 0 shows only the terminal state.
	Repeat    int
	Direction Direction
}

// Schedule returns the receiver.
func (t Timing) Schedule() Timing { return t }

// Direction is the play direction of a timed effect.
type Direction int

const (
	Normal Direction = iota
	Reverse
	Alternate
)

var directions = []string{Normal: "normal", Reverse: "reverse", Alternate: "alternate"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directions) {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directions[d]
}

// Spin is the rotation direction of the Rotate effect.
type Spin int

const (
	Clockwise Spin = iota
	Counterclockwise
	Oscillate
)

var spins = []string{Clockwise: "clockwise", Counterclockwise: "counterclockwise", Oscillate: "alternate"}

func (s Spin) String() string {
	if s < 0 || int(s) >= len(spins) {
		return fmt.Sprintf("Spin(%d)", int(s))
	}
	return spins[s]
}

// Slide tiles the text horizontally and scrolls it to the left at the
// text speed.
type Slide struct{}

// Typing reveals the text one character at a time.
type Typing struct {
	Timing
	ShowCursor bool
	// CursorBlinkSpeed is in blinks per second.
	CursorBlinkSpeed float64
}

// Rotate rotates the text about the canvas centre.
type Rotate struct {
	Timing
	Spin       Spin
	MaxDegrees float64
}

// Shake jitters the text with a damped oscillation.
type Shake struct {
	Timing
	Frequency float64
	Damping   float64
}

// Bounce bounces the text upwards.
type Bounce struct {
	Timing
	HeightPct  float64
	Elasticity float64
}

// Zoom scales the text about the canvas centre.
type Zoom struct {
	Timing
	MinScalePct float64
	MaxScalePct float64
}

// Fade varies the text opacity.
type Fade struct {
	Timing
	MinOpacityPct float64
	MaxOpacityPct float64
}

// ColorChange cycles the text color, either by rotating hue or by
// stepping through a palette.
type ColorChange struct {
	Timing
	Palette []color.NRGBA
	Smooth  bool
}

func (Slide) Name() string       { return "slide" }
func (Typing) Name() string      { return "typing" }
func (Rotate) Name() string      { return "rotate" }
func (Shake) Name() string       { return "shake" }
func (Bounce) Name() string      { return "bounce" }
func (Zoom) Name() string        { return "zoom" }
func (Fade) Name() string        { return "fade" }
func (ColorChange) Name() string { return "colorChange" }

func (Slide) textEffect()       {}
func (Typing) textEffect()      {}
func (Rotate) textEffect()      {}
func (Shake) textEffect()       {}
func (Bounce) textEffect()      {}
func (Zoom) textEffect()        {}
func (Fade) textEffect()        {}
func (ColorChange) textEffect() {}

// ImageEffect is an image animation.
type ImageEffect int

const (
	Scale ImageEffect = iota
	HorizontalSlide
	VerticalStretch
	ImageBounce
	ImageRotate
	Pulse
)

var imageEffects = []string{
	Scale:           "scale",
	HorizontalSlide: "horizontalSlide",
	VerticalStretch: "verticalStretch",
	ImageBounce:     "bounce",
	ImageRotate:     "rotate",
	Pulse:           "pulse",
}

func (e ImageEffect) String() string {
	if e < 0 || int(e) >= len(imageEffects) {
		return fmt.Sprintf("ImageEffect(%d)", int(e))
	}
	return imageEffects[e]
}

