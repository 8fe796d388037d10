// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"log/slog"
	"math"
	"runtime"
	"time"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// EncodeOptions holds optional encoding parameters.
type EncodeOptions struct {
	// LoopCount is the GIF loop count. Zero loops
	// forever and -1 plays once.
	LoopCount int

	// Transparent indicates that pixels with alpha
	// below one half are encoded as transparent.
	Transparent bool

	Log *slog.Logger
}

// EncodeError is returned when the GIF backend fails.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return "encode: " + e.Err.Error()
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Encode returns the frames encoded as an animated GIF with the given
// per-frame delay. All frames must be size pixels. Quantization and
// encoding run in background goroutines and Encode waits for the
// complete result or for ctx to be cancelled. No partial result is
// returned.
func Encode(ctx context.Context, frames []image.Image, delay time.Duration, size image.Point, opts *EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, &EncodeError{Err: errors.New("no frames")}
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, &EncodeError{Err: fmt.Errorf("invalid output size: %v", size)}
	}
	for i, f := range frames {
		if got := f.Bounds().Size(); got != size {
			return nil, &EncodeError{Err: fmt.Errorf("frame %d size %v does not match output size %v", i, got, size)}
		}
	}
	if opts == nil {
		opts = &EncodeOptions{}
	}

	type result struct {
		buf []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		buf, err := encode(ctx, frames, delay, size, opts)
		done <- result{buf: buf, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &EncodeError{Err: r.err}
		}
		return r.buf, nil
	}
}

func encode(ctx context.Context, frames []image.Image, delay time.Duration, size image.Point, opts *EncodeOptions) ([]byte, error) {
	start := time.Now()
	imgs := make([]*image.Paletted, len(frames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range frames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			imgs[i] = paletted(f, size, opts.Transparent)
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		return nil, err
	}

	anim := &gif.GIF{
		Image:     imgs,
		Delay:     make([]int, len(imgs)),
		LoopCount: opts.LoopCount,
		Config:    image.Config{Width: size.X, Height: size.Y},
	}
	cs := centiseconds(delay)
	for i := range anim.Delay {
		anim.Delay[i] = cs
	}
	if opts.Transparent {
		anim.Disposal = make([]byte, len(imgs))
		for i := range anim.Disposal {
			anim.Disposal[i] = gif.DisposalBackground
		}
	}
	var buf bytes.Buffer
	err = gif.EncodeAll(&buf, anim)
	if err != nil {
		return nil, err
	}
	if opts.Log != nil {
		opts.Log.LogAttrs(ctx, slog.LevelDebug, "encoded gif",
			slog.Int("frames", len(imgs)),
			slog.Int("delay_cs", cs),
			slog.Int("loop_count", opts.LoopCount),
			slog.Int("bytes", buf.Len()),
			slog.Duration("elapsed", time.Since(start)),
		)
	}
	return buf.Bytes(), nil
}

// centiseconds returns the GIF frame delay for d. Delays below 2cs are
// not honoured by common decoders.
func centiseconds(d time.Duration) int {
	return max(2, int(math.Round(float64(d)/float64(10*time.Millisecond))))
}

// paletted returns img quantized to at most 256 colors. When transparent
// is true the last palette entry is reserved for pixels with alpha below
// one half.
func paletted(img image.Image, size image.Point, transparent bool) *image.Paletted {
	n := 256
	if transparent {
		n--
	}
	pal := quantize.MedianCutQuantizer{}.Quantize(make(color.Palette, 0, n), img)
	for i, c := range pal {
		// Only the reserved entry may be read as transparent.
		o := color.NRGBAModel.Convert(c).(color.NRGBA)
		o.A = 0xff
		pal[i] = o
	}
	if len(pal) == 0 {
		pal = append(pal, color.NRGBA{A: 0xff})
	}

	b := img.Bounds()
	rect := image.Rectangle{Max: size}
	if !transparent {
		dst := image.NewPaletted(rect, pal)
		draw.FloydSteinberg.Draw(dst, rect, img, b.Min)
		return dst
	}

	opaque := pal
	dst := image.NewPaletted(rect, append(pal[:len(pal):len(pal)], color.Transparent))
	hole := uint8(len(dst.Palette) - 1)
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			if c.A < 0x80 {
				dst.SetColorIndex(x, y, hole)
				continue
			}
			c.A = 0xff
			dst.SetColorIndex(x, y, uint8(opaque.Index(c)))
		}
	}
	return dst
}

// Sequence is an ordered collection of rendered frames.
type Sequence struct {
	Frames []image.Image
}

// Add appends a copy of img to the sequence. The source image may be
// reused after Add returns.
func (s *Sequence) Add(img image.Image) {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Copy(dst, b.Min, img, b, draw.Src, nil)
	s.Frames = append(s.Frames, dst)
}

// Len returns the number of frames in the sequence.
func (s *Sequence) Len() int {
	return len(s.Frames)
}
