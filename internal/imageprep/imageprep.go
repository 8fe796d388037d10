// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package imageprep prepares source images for image emoji rendering.
package imageprep

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"slices"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/kortschak/emojify/internal/animation"
	"github.com/kortschak/emojify/internal/config"
)

// MaxFileSize is the largest accepted encoded image.
const MaxFileSize = 10 << 20

// Formats lists the accepted image formats.
var Formats = []string{"bmp", "jpeg", "png", "webp"}

var path = [][]string{{"image", "path"}}

// Load reads the image file at name and returns it cropped and resampled
// to a size×size square.
func Load(name string, size int) (*image.NRGBA, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, &config.ValidationError{Paths: path, Err: err}
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, &config.ValidationError{Paths: path, Err: err}
	}
	if fi.Size() > MaxFileSize {
		return nil, &config.ValidationError{Paths: path, Err: fmt.Errorf("%s: file too large: %d bytes", name, fi.Size())}
	}
	img, err := Decode(f, size)
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			verr.Err = fmt.Errorf("%s: %w", name, verr.Err)
		}
		return nil, err
	}
	return img, nil
}

// Decode decodes an image from r and returns it cropped and resampled to a
// size×size square. Only the formats listed in Formats are accepted;
// GIF sources are rejected before decoding.
func Decode(r io.Reader, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid image size: %d", size)
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, &config.ValidationError{Paths: path, Err: err}
	}
	if n > MaxFileSize {
		return nil, &config.ValidationError{Paths: path, Err: errors.New("file too large")}
	}
	if animation.IsGIF(animation.AsReadPeeker(bytes.NewReader(buf.Bytes()))) {
		return nil, &config.ValidationError{Paths: path, Err: errors.New("unsupported image type: gif")}
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, &config.ValidationError{Paths: path, Err: fmt.Errorf("unsupported image: %w", err)}
	}
	if !slices.Contains(Formats, format) {
		return nil, &config.ValidationError{Paths: path, Err: fmt.Errorf("unsupported image type: %s", format)}
	}
	img, _, err := image.Decode(&buf)
	if err != nil {
		return nil, &config.ValidationError{Paths: path, Err: err}
	}
	return Square(img, size), nil
}

// Square returns img cropped to a centered square on its shorter side and
// resampled to size×size.
func Square(img image.Image, size int) *image.NRGBA {
	return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
}
