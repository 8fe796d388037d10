// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imageprep

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kortschak/emojify/internal/config"
)

var (
	red   = color.NRGBA{R: 0xff, A: 0xff}
	green = color.NRGBA{G: 0xff, A: 0xff}
	blue  = color.NRGBA{B: 0xff, A: 0xff}
)

// bands returns a w×h image with red and blue outer bands either side
// of a centered green h×h square, or above and below it when h > w.
func bands(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var pos, side, long int
			if w >= h {
				pos, side, long = x, h, w
			} else {
				pos, side, long = y, w, h
			}
			lo := (long - side) / 2
			switch {
			case pos < lo:
				img.SetNRGBA(x, y, red)
			case pos >= lo+side:
				img.SetNRGBA(x, y, blue)
			default:
				img.SetNRGBA(x, y, green)
			}
		}
	}
	return img
}

func near(a, b color.NRGBA, tol int) bool {
	d := func(x, y uint8) bool {
		v := int(x) - int(y)
		return -tol <= v && v <= tol
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestSquare(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		size int
	}{
		{name: "landscape", w: 200, h: 100, size: 64},
		{name: "portrait", w: 120, h: 300, size: 128},
		{name: "square", w: 50, h: 50, size: 128},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Square(bands(test.w, test.h), test.size)
			if got.Bounds() != image.Rect(0, 0, test.size, test.size) {
				t.Fatalf("unexpected bounds: got:%v want:%v", got.Bounds(), image.Rect(0, 0, test.size, test.size))
			}
			for _, p := range []image.Point{
				{1, 1},
				{test.size / 2, test.size / 2},
				{test.size - 2, test.size - 2},
			} {
				c := got.NRGBAAt(p.X, p.Y)
				if !near(c, green, 8) {
					t.Errorf("unexpected color at %v: got:%v want:%v", p, c, green)
				}
			}
		})
	}
}

func encode(t *testing.T, format string, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95})
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		t.Fatalf("unknown test format: %s", format)
	}
	if err != nil {
		t.Fatalf("unexpected error encoding %s: %v", format, err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	src := bands(160, 80)
	tests := []struct {
		name    string
		data    []byte
		wantErr string
	}{
		{name: "png", data: encode(t, "png", src)},
		{name: "jpeg", data: encode(t, "jpeg", src)},
		{name: "gif", data: encode(t, "gif", src), wantErr: "unsupported image type: gif"},
		{name: "gif_header_only", data: []byte("GIF87a\x00"), wantErr: "unsupported image type: gif"},
		{name: "garbage", data: []byte("not an image"), wantErr: "unsupported image: image: unknown format"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Decode(bytes.NewReader(test.data), 32)
			if test.wantErr != "" {
				var verr *config.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected validation error, got: %v", err)
				}
				if !cmp.Equal(verr.Paths, [][]string{{"image", "path"}}) {
					t.Errorf("unexpected paths: %v", verr.Paths)
				}
				if verr.Err.Error() != test.wantErr {
					t.Errorf("unexpected error: got:%q want:%q", verr.Err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Bounds() != image.Rect(0, 0, 32, 32) {
				t.Errorf("unexpected bounds: %v", got.Bounds())
			}
			if c := got.NRGBAAt(16, 16); !near(c, green, 16) {
				t.Errorf("unexpected center color: got:%v want:%v", c, green)
			}
		})
	}
}

type zeros struct{}

func (zeros) Read(b []byte) (int, error) {
	clear(b)
	return len(b), nil
}

func TestDecodeTooLarge(t *testing.T) {
	_, err := Decode(io.LimitReader(zeros{}, MaxFileSize+1), 32)
	var verr *config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "file too large") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "cat.png")
	err := os.WriteFile(name, encode(t, "png", bands(40, 60)), 0o644)
	if err != nil {
		t.Fatalf("unexpected error writing image: %v", err)
	}
	img, err := Load(name, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 16, 16) {
		t.Errorf("unexpected bounds: %v", img.Bounds())
	}

	_, err = Load(filepath.Join(dir, "missing.png"), 16)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("unexpected error for missing file: %v", err)
	}
	var verr *config.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected validation error for missing file, got: %T", err)
	}
}
