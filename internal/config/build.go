// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Defaults for values not present in a configuration file.
const (
	DefaultSize      = 128
	DefaultFPS       = 15
	DefaultTextColor = "#000000"
	DefaultBGColor   = "#ffffff"

	DefaultFontSize       = 90
	DefaultGap            = 100
	DefaultSpeed          = 50
	DefaultAnimationSpeed = 1
	DefaultIntensity      = 100
	DefaultAnimation      = "slide"

	DefaultDuration         = 2
	DefaultRepeat           = -1
	DefaultCursorBlinkSpeed = 1
	DefaultMaxRotation      = 360
	DefaultShakeFrequency   = 10
	DefaultShakeDamping     = 0.1
	DefaultBounceHeight     = 50
	DefaultElasticity       = 0.8
	DefaultMinScale         = 80
	DefaultMaxScale         = 150
	DefaultMinOpacity       = 30
	DefaultMaxOpacity       = 100

	DefaultImageAnimation = "scale"
	DefaultImageSpeed     = 1
	DefaultImageIntensity = 50
)

// DefaultPalette is the color change palette used when none is given.
var DefaultPalette = []string{"#ff0000", "#00ff00", "#0000ff"}

// ParseColor parses a #RGB or #RRGGBB hex color.
func ParseColor(s string) (color.NRGBA, error) {
	if !strings.HasPrefix(s, "#") || (len(s) != 4 && len(s) != 7) {
		return color.NRGBA{}, fmt.Errorf("invalid color: %q", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color: %q", s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// Build returns the Render described by f. For image emojis, src must
// be the prepared image, square and of the configured output size.
// Unknown animation or background kinds result in an *UnsupportedError.
func Build(f *File, src image.Image) (*Render, error) {
	if f == nil {
		return nil, &ValidationError{Err: errors.New("missing configuration")}
	}
	var r Render

	size, fps := f.Size(), DefaultFPS
	if f.Output != nil {
		fps = deref(f.Output.FPS, fps)
	}
	r.Output = Output{Width: size, Height: size, FPS: fps}

	bg, err := buildBackground(f.Background)
	if err != nil {
		return nil, err
	}
	r.Background = bg

	switch f.Mode {
	case "text":
		if f.Text == nil {
			return nil, &ValidationError{Paths: [][]string{{"text"}}, Err: errors.New("missing text settings")}
		}
		r.Content, err = buildText(f.Text)
	case "image":
		if f.Image == nil {
			return nil, &ValidationError{Paths: [][]string{{"image"}}, Err: errors.New("missing image settings")}
		}
		r.Content, err = buildImage(f.Image, src, size)
	default:
		return nil, &ValidationError{Paths: [][]string{{"mode"}}, Err: fmt.Errorf("invalid mode: %q", f.Mode)}
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func buildBackground(f *BackgroundFile) (Background, error) {
	if f == nil {
		c, _ := ParseColor(DefaultBGColor)
		return Solid{Color: c}, nil
	}
	switch f.Type {
	case "solid":
		c, err := ParseColor(orDefault(f.Color, DefaultBGColor))
		if err != nil {
			return nil, &ValidationError{Paths: [][]string{{"background", "color"}}, Err: err}
		}
		return Solid{Color: c}, nil
	case "gradient":
		if len(f.Gradient) != 2 {
			return nil, &ValidationError{Paths: [][]string{{"background", "gradient"}}, Err: errors.New("gradient requires two colors")}
		}
		var g [2]color.NRGBA
		for i, s := range f.Gradient {
			c, err := ParseColor(s)
			if err != nil {
				return nil, &ValidationError{Paths: [][]string{{"background", "gradient", fmt.Sprint(i)}}, Err: err}
			}
			g[i] = c
		}
		return Gradient{From: g[0], To: g[1]}, nil
	case "transparent":
		return Transparent{}, nil
	default:
		return nil, &UnsupportedError{Kind: "background", Name: f.Type}
	}
}

func buildText(f *TextFile) (*Text, error) {
	if strings.TrimSpace(f.Text) == "" {
		return nil, &ValidationError{Paths: [][]string{{"text", "text"}}, Err: errors.New("empty text")}
	}
	col, err := ParseColor(orDefault(f.Color, DefaultTextColor))
	if err != nil {
		return nil, &ValidationError{Paths: [][]string{{"text", "color"}}, Err: err}
	}
	t := &Text{
		Text:              f.Text,
		Color:             col,
		Font:              f.Font,
		FontSizePct:       deref(f.FontSize, DefaultFontSize),
		VerticalOffsetPct: deref(f.VerticalOffset, 0),
		GapPct:            deref(f.Gap, DefaultGap),
		Speed:             deref(f.Speed, DefaultSpeed),
		AnimationSpeed:    deref(f.AnimationSpeed, DefaultAnimationSpeed),
		IntensityPct:      deref(f.Intensity, DefaultIntensity),
	}
	if t.AnimationSpeed <= 0 {
		return nil, &ValidationError{Paths: [][]string{{"text", "animation_speed"}}, Err: errors.New("animation speed must be positive")}
	}

	timing, err := buildTiming(f.Timing, t.AnimationSpeed)
	if err != nil {
		return nil, err
	}
	switch name := orDefault(f.Animation, DefaultAnimation); name {
	case "slide":
		t.Animation = Slide{}
	case "typing":
		e := Typing{Timing: timing, ShowCursor: true, CursorBlinkSpeed: DefaultCursorBlinkSpeed}
		if f.Typing != nil {
			e.ShowCursor = deref(f.Typing.ShowCursor, e.ShowCursor)
			e.CursorBlinkSpeed = deref(f.Typing.CursorBlinkSpeed, e.CursorBlinkSpeed)
		}
		t.Animation = e
	case "rotate":
		e := Rotate{Timing: timing, Spin: Clockwise, MaxDegrees: DefaultMaxRotation}
		if f.Rotate != nil {
			if f.Rotate.Direction != "" {
				i := slices.Index(spins, f.Rotate.Direction)
				if i < 0 {
					return nil, &ValidationError{Paths: [][]string{{"text", "rotate", "direction"}}, Err: fmt.Errorf("invalid rotation direction: %q", f.Rotate.Direction)}
				}
				e.Spin = Spin(i)
			}
			e.MaxDegrees = deref(f.Rotate.MaxRotation, e.MaxDegrees)
		}
		t.Animation = e
	case "shake":
		e := Shake{Timing: timing, Frequency: DefaultShakeFrequency, Damping: DefaultShakeDamping}
		if f.Shake != nil {
			e.Frequency = deref(f.Shake.Frequency, e.Frequency)
			e.Damping = deref(f.Shake.Damping, e.Damping)
		}
		t.Animation = e
	case "bounce":
		e := Bounce{Timing: timing, HeightPct: DefaultBounceHeight, Elasticity: DefaultElasticity}
		if f.Bounce != nil {
			e.HeightPct = deref(f.Bounce.Height, e.HeightPct)
			e.Elasticity = deref(f.Bounce.Elasticity, e.Elasticity)
		}
		t.Animation = e
	case "zoom":
		e := Zoom{Timing: timing, MinScalePct: DefaultMinScale, MaxScalePct: DefaultMaxScale}
		if f.Zoom != nil {
			e.MinScalePct = deref(f.Zoom.MinScale, e.MinScalePct)
			e.MaxScalePct = deref(f.Zoom.MaxScale, e.MaxScalePct)
		}
		t.Animation = e
	case "fade":
		e := Fade{Timing: timing, MinOpacityPct: DefaultMinOpacity, MaxOpacityPct: DefaultMaxOpacity}
		if f.Fade != nil {
			e.MinOpacityPct = deref(f.Fade.MinOpacity, e.MinOpacityPct)
			e.MaxOpacityPct = deref(f.Fade.MaxOpacity, e.MaxOpacityPct)
		}
		if e.MinOpacityPct > e.MaxOpacityPct {
			return nil, &ValidationError{Paths: [][]string{{"text", "fade"}}, Err: errors.New("minimum opacity exceeds maximum")}
		}
		t.Animation = e
	case "colorChange":
		e := ColorChange{Timing: timing, Smooth: true}
		colors := DefaultPalette
		if f.ColorChange != nil {
			e.Smooth = deref(f.ColorChange.Smooth, e.Smooth)
			if len(f.ColorChange.Colors) != 0 {
				colors = f.ColorChange.Colors
			}
		}
		for i, s := range colors {
			c, err := ParseColor(s)
			if err != nil {
				return nil, &ValidationError{Paths: [][]string{{"text", "color_change", "colors", fmt.Sprint(i)}}, Err: err}
			}
			e.Palette = append(e.Palette, c)
		}
		t.Animation = e
	default:
		return nil, &UnsupportedError{Kind: "text animation", Name: name}
	}
	return t, nil
}

// buildTiming returns the cycle timing with the animation speed folded
// into the cycle duration.
func buildTiming(f *TimingFile, speed float64) (Timing, error) {
	t := Timing{Duration: DefaultDuration, Repeat: DefaultRepeat, Direction: Normal}
	if f != nil {
		t.Duration = deref(f.Duration, t.Duration)
		t.Repeat = deref(f.Repeat, t.Repeat)
		if f.Direction != "" {
			i := slices.Index(directions, f.Direction)
			if i < 0 {
				return Timing{}, &ValidationError{Paths: [][]string{{"text", "timing", "direction"}}, Err: fmt.Errorf("invalid direction: %q", f.Direction)}
			}
			t.Direction = Direction(i)
		}
	}
	if t.Repeat < -1 {
		return Timing{}, &ValidationError{Paths: [][]string{{"text", "timing", "repeat"}}, Err: fmt.Errorf("invalid repeat: %d", t.Repeat)}
	}
	t.Duration /= speed
	return t, nil
}

func buildImage(f *ImageFile, src image.Image, size int) (*Image, error) {
	if src == nil {
		return nil, &ValidationError{Paths: [][]string{{"image", "path"}}, Err: errors.New("missing image")}
	}
	if b := src.Bounds(); b.Dx() != size || b.Dy() != size {
		return nil, &ValidationError{Paths: [][]string{{"image", "path"}}, Err: fmt.Errorf("image is %dx%d, not %dx%[3]d", b.Dx(), b.Dy(), size)}
	}
	name := orDefault(f.Animation, DefaultImageAnimation)
	i := slices.Index(imageEffects, name)
	if i < 0 {
		return nil, &UnsupportedError{Kind: "image animation", Name: name}
	}
	return &Image{
		Source:       src,
		Animation:    ImageEffect(i),
		Speed:        deref(f.Speed, DefaultImageSpeed),
		IntensityPct: deref(f.Intensity, DefaultImageIntensity),
	}, nil
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
