// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"

	"golang.org/x/image/draw"
)

// IsGIF returns whether the data held by r is a GIF image.
func IsGIF(r ReadPeeker) bool {
	return hasMagic("GIF8?a", r)
}

// ReadPeeker is an io.Reader that can also peek n bytes ahead.
type ReadPeeker interface {
	io.Reader
	Peek(n int) ([]byte, error)
}

// AsReadPeeker converts an io.Reader to a ReadPeeker.
func AsReadPeeker(r io.Reader) ReadPeeker {
	if r, ok := r.(ReadPeeker); ok {
		return r
	}
	return bufio.NewReader(r)
}

// hasMagic returns whether r starts with the provided magic bytes.
func hasMagic(magic string, r ReadPeeker) bool {
	b, err := r.Peek(len(magic))
	if err != nil || len(b) != len(magic) {
		return false
	}
	for i, c := range b {
		if magic[i] != c && magic[i] != '?' {
			return false
		}
	}
	return true
}

// GIF is a decoded animated GIF.
type GIF struct {
	*gif.GIF
}

// DecodeGIF returns a [GIF] decoded from the provided io.Reader. GIF delay,
// disposal and global background index values are checked for validity.
func DecodeGIF(r io.Reader) (*GIF, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, err
	}
	if len(g.Image) != len(g.Delay) && g.Delay != nil {
		return nil, fmt.Errorf("mismatched image count and delay count: %d != %d", len(g.Image), len(g.Delay))
	}
	if len(g.Image) != len(g.Disposal) && g.Disposal != nil {
		return nil, fmt.Errorf("mismatched image count and disposal count: %d != %d", len(g.Image), len(g.Disposal))
	}
	// Without a global color table the background index is ignored.
	pal, _ := g.Config.ColorModel.(color.Palette)
	if idx := int(g.BackgroundIndex); len(pal) != 0 && idx >= len(pal) {
		return nil, fmt.Errorf("global background colour index not in palette: %d", idx)
	}
	return &GIF{GIF: g}, nil
}

// Bounds returns the logical screen bounds of the GIF.
func (img *GIF) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Config.Width, img.Config.Height)
}

const (
	restoreBackground = 2
	restorePrevious   = 3
)

// Frames composites each frame of the receiver into dst in turn,
// honouring frame disposal, and calls fn with the frame index and the
// composited image. Frames makes a single pass without delays.
func (img *GIF) Frames(dst draw.Image, fn func(int, image.Image) error) error {
	var background image.Image
	pal, _ := img.Config.ColorModel.(color.Palette)
	if idx := int(img.BackgroundIndex); len(pal) != 0 {
		background = &image.Uniform{pal[idx]}
	}
	for f, frame := range img.Image {
		var restore *image.Paletted
		if img.Disposal != nil && img.Disposal[f] == restorePrevious {
			restore = image.NewPaletted(frame.Bounds(), frame.Palette)
			draw.Copy(restore, restore.Bounds().Min, dst, frame.Bounds(), draw.Src, nil)
		}
		draw.Copy(dst, frame.Bounds().Min, frame, frame.Bounds(), draw.Over, nil)
		err := fn(f, dst)
		if err != nil {
			return err
		}
		if img.Disposal != nil {
			switch img.Disposal[f] {
			case restoreBackground:
				bg := background
				if bg == nil {
					// Without a global color table the background
					// is transparent.
					bg = image.Transparent
				}
				draw.Copy(dst, frame.Bounds().Min, bg, frame.Bounds(), draw.Src, nil)
			case restorePrevious:
				draw.Copy(dst, frame.Bounds().Min, restore, restore.Bounds(), draw.Src, nil)
			}
		}
	}
	return nil
}
