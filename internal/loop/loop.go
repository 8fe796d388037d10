// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package loop computes the frame schedule of a seamlessly looping
// emoji animation.
package loop

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kortschak/emojify/internal/config"
)

// MaxUnrolledFrames is the largest number of frames rendered to play
// out an animation that is shown once. Longer animations loop a single
// cycle with the GIF loop count instead.
const MaxUnrolledFrames = 1000

// Plan is the frame schedule for one loop of an animation.
type Plan struct {
	// Cycle is the duration of one loop in milliseconds.
	Cycle float64
	// Frames is the number of frames in one loop. It is
	// always at least one.
	Frames int
	// Hold indicates that the last frame is rendered at
	// the end of the cycle to show the final state of a
	// finite animation.
	Hold bool
	// Delay is the display time of each frame.
	Delay time.Duration
	// LoopCount is the GIF loop count: 0 loops forever,
	// -1 shows the loop once and n > 0 shows it n+1 times.
	LoopCount int
}

// Timestamp returns the render timestamp in milliseconds of frame i.
// Timestamps are evenly spaced fractions of the cycle for every mode.
func (p Plan) Timestamp(i int) float64 {
	steps := p.Frames
	if p.Hold {
		steps--
	}
	return float64(i) * p.Cycle / float64(steps)
}

// Duration returns the cycle duration.
func (p Plan) Duration() time.Duration {
	return time.Duration(p.Cycle * float64(time.Millisecond))
}

// UnitWidth returns the tiling period of sliding text: the text width
// plus the gap, a percentage of the canvas size.
func UnitWidth(textWidth, size, gapPct float64) float64 {
	return textWidth + size*gapPct/100
}

// New returns the frame schedule for cfg. textWidth is the measured
// advance width of the text in pixels and is only used for text
// emojis. A *config.RenderError is returned if a schedule cannot be
// computed.
func New(cfg *config.Render, textWidth float64) (Plan, error) {
	fps := cfg.Output.FPS
	if fps <= 0 {
		return Plan{}, &config.RenderError{Op: "plan frames", Err: fmt.Errorf("invalid frame rate: %d", fps)}
	}
	p := Plan{Delay: time.Second / time.Duration(fps)}

	switch c := cfg.Content.(type) {
	case *config.Text:
		switch e := c.Animation.(type) {
		case config.Slide:
			if textWidth <= 0 {
				return Plan{}, &config.RenderError{Op: "plan frames", Err: errors.New("zero text width")}
			}
			if c.Speed <= 0 {
				return Plan{}, &config.RenderError{Op: "plan frames", Err: errors.New("zero slide speed")}
			}
			unit := UnitWidth(textWidth, float64(cfg.Output.Size()), c.GapPct)
			p.Cycle = 1000 * unit / c.Speed
		case config.Timed:
			t := e.Schedule()
			if t.Duration <= 0 {
				return Plan{}, &config.RenderError{Op: "plan frames", Err: errors.New("zero cycle duration")}
			}
			p.Cycle = 1000 * t.Duration
			switch {
			case t.Repeat == 0:
				p.Frames = 1
				p.LoopCount = -1
				return p, nil
			case t.Repeat == 1, t.Direction == config.Alternate && t.Repeat%2 == 1:
				// Shown once: a single repetition, or an odd
				// number of alternating legs which no loop of
				// forward and back pairs can play.
				total := p.Cycle * float64(t.Repeat)
				if n := frames(total, fps); n < MaxUnrolledFrames {
					// Play every repetition and hold the
					// final state.
					p.Cycle = total
					p.Frames = n + 1
					p.Hold = true
					p.LoopCount = -1
					return p, nil
				}
			}
			cycles := 1
			if t.Direction == config.Alternate && (t.Repeat < 0 || t.Repeat > 1) {
				// Include the reversed half so the loop closes.
				cycles = 2
				p.Cycle *= 2
			}
			if t.Repeat > 0 {
				// An odd alternate repeat loses its last
				// forward half.
				p.LoopCount = loopCount(t.Repeat / cycles)
			}
		default:
			return Plan{}, &config.UnsupportedError{Kind: "text animation", Name: fmt.Sprintf("%T", e)}
		}
	case *config.Image:
		if c.Speed <= 0 {
			return Plan{}, &config.RenderError{Op: "plan frames", Err: errors.New("zero image speed")}
		}
		p.Cycle = 2000 / c.Speed
	default:
		return Plan{}, &config.RenderError{Op: "plan frames", Err: fmt.Errorf("unknown content: %T", c)}
	}

	p.Frames = frames(p.Cycle, fps)
	return p, nil
}

// frames returns the number of frames needed to cover cycle ms at fps,
// allowing for rounding error in the product.
func frames(cycle float64, fps int) int {
	n := math.Ceil(cycle*float64(fps)/1000 - 1e-9)
	if n < 1 || math.IsNaN(n) {
		return 1
	}
	return int(n)
}

// loopCount returns the GIF loop count that plays an animation n times.
func loopCount(n int) int {
	if n <= 1 {
		return -1
	}
	return n - 1
}
