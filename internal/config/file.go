// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/kortschak/emojify/internal/text"
)

// File is the on-disk representation of a render configuration. Optional
// scalar fields are pointers so that absent values can be distinguished
// from zero values and defaulted by Build.
type File struct {
	Mode       string          `json:"mode" toml:"mode" yaml:"mode"`
	Output     *OutputFile     `json:"output,omitempty" toml:"output" yaml:"output"`
	Background *BackgroundFile `json:"background,omitempty" toml:"background" yaml:"background"`
	Text       *TextFile       `json:"text,omitempty" toml:"text" yaml:"text"`
	Image      *ImageFile      `json:"image,omitempty" toml:"image" yaml:"image"`
}

// OutputFile is the output section of a configuration file.
type OutputFile struct {
	Size *int `json:"size,omitempty" toml:"size" yaml:"size"`
	FPS  *int `json:"fps,omitempty" toml:"fps" yaml:"fps"`
}

// BackgroundFile is the background section of a configuration file.
type BackgroundFile struct {
	Type     string   `json:"type" toml:"type" yaml:"type"`
	Color    string   `json:"color,omitempty" toml:"color" yaml:"color"`
	Gradient []string `json:"gradient,omitempty" toml:"gradient" yaml:"gradient"`
}

// TextFile is the text section of a configuration file.
type TextFile struct {
	Text           string   `json:"text" toml:"text" yaml:"text"`
	Color          string   `json:"color,omitempty" toml:"color" yaml:"color"`
	Font           string   `json:"font,omitempty" toml:"font" yaml:"font"`
	FontSize       *float64 `json:"font_size,omitempty" toml:"font_size" yaml:"font_size"`
	VerticalOffset *float64 `json:"vertical_offset,omitempty" toml:"vertical_offset" yaml:"vertical_offset"`
	Gap            *float64 `json:"gap,omitempty" toml:"gap" yaml:"gap"`
	Speed          *float64 `json:"speed,omitempty" toml:"speed" yaml:"speed"`
	AnimationSpeed *float64 `json:"animation_speed,omitempty" toml:"animation_speed" yaml:"animation_speed"`
	Intensity      *float64 `json:"intensity,omitempty" toml:"intensity" yaml:"intensity"`
	Animation      string   `json:"animation,omitempty" toml:"animation" yaml:"animation"`

	Timing      *TimingFile      `json:"timing,omitempty" toml:"timing" yaml:"timing"`
	Typing      *TypingFile      `json:"typing,omitempty" toml:"typing" yaml:"typing"`
	Rotate      *RotateFile      `json:"rotate,omitempty" toml:"rotate" yaml:"rotate"`
	Shake       *ShakeFile       `json:"shake,omitempty" toml:"shake" yaml:"shake"`
	Bounce      *BounceFile      `json:"bounce,omitempty" toml:"bounce" yaml:"bounce"`
	Zoom        *ZoomFile        `json:"zoom,omitempty" toml:"zoom" yaml:"zoom"`
	Fade        *FadeFile        `json:"fade,omitempty" toml:"fade" yaml:"fade"`
	ColorChange *ColorChangeFile `json:"color_change,omitempty" toml:"color_change" yaml:"color_change"`
}

// TimingFile holds the cycle timing shared by timed text effects.
type TimingFile struct {
	Duration  *float64 `json:"duration,omitempty" toml:"duration" yaml:"duration"`
	Repeat    *int     `json:"repeat,omitempty" toml:"repeat" yaml:"repeat"`
	Direction string   `json:"direction,omitempty" toml:"direction" yaml:"direction"`
}

type TypingFile struct {
	ShowCursor       *bool    `json:"show_cursor,omitempty" toml:"show_cursor" yaml:"show_cursor"`
	CursorBlinkSpeed *float64 `json:"cursor_blink_speed,omitempty" toml:"cursor_blink_speed" yaml:"cursor_blink_speed"`
}

type RotateFile struct {
	Direction   string   `json:"direction,omitempty" toml:"direction" yaml:"direction"`
	MaxRotation *float64 `json:"max_rotation,omitempty" toml:"max_rotation" yaml:"max_rotation"`
}

type ShakeFile struct {
	Frequency *float64 `json:"frequency,omitempty" toml:"frequency" yaml:"frequency"`
	Damping   *float64 `json:"damping,omitempty" toml:"damping" yaml:"damping"`
}

type BounceFile struct {
	Height     *float64 `json:"height,omitempty" toml:"height" yaml:"height"`
	Elasticity *float64 `json:"elasticity,omitempty" toml:"elasticity" yaml:"elasticity"`
}

type ZoomFile struct {
	MinScale *float64 `json:"min_scale,omitempty" toml:"min_scale" yaml:"min_scale"`
	MaxScale *float64 `json:"max_scale,omitempty" toml:"max_scale" yaml:"max_scale"`
}

type FadeFile struct {
	MinOpacity *float64 `json:"min_opacity,omitempty" toml:"min_opacity" yaml:"min_opacity"`
	MaxOpacity *float64 `json:"max_opacity,omitempty" toml:"max_opacity" yaml:"max_opacity"`
}

type ColorChangeFile struct {
	Colors []string `json:"colors,omitempty" toml:"colors" yaml:"colors"`
	Smooth *bool    `json:"smooth,omitempty" toml:"smooth" yaml:"smooth"`
}

// ImageFile is the image section of a configuration file. Path is
// relative to the directory holding the configuration file.
type ImageFile struct {
	Path      string   `json:"path" toml:"path" yaml:"path"`
	Animation string   `json:"animation,omitempty" toml:"animation" yaml:"animation"`
	Speed     *float64 `json:"speed,omitempty" toml:"speed" yaml:"speed"`
	Intensity *float64 `json:"intensity,omitempty" toml:"intensity" yaml:"intensity"`
}

// Format is a configuration file encoding.
type Format string

const (
	TOML Format = "toml"
	YAML Format = "yaml"
)

// FormatOf returns the configuration format implied by the extension of
// path. Unknown extensions are treated as TOML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return TOML
	}
}

// Load reads, decodes and validates the configuration file at path.
// If the file describes an image emoji, the image path is made
// absolute relative to the directory of path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Decode(bytes.NewReader(data), FormatOf(path))
	if err != nil {
		return nil, err
	}
	f.resolve(path)
	return f, nil
}

// resolve makes relative image and font file paths relative to the
// directory holding the configuration file at path.
func (f *File) resolve(path string) {
	if f.Image != nil && f.Image.Path != "" && !filepath.IsAbs(f.Image.Path) {
		f.Image.Path = filepath.Join(filepath.Dir(path), f.Image.Path)
	}
	if f.Text != nil && text.IsFontFile(f.Text.Font) && !filepath.IsAbs(f.Text.Font) {
		f.Text.Font = filepath.Join(filepath.Dir(path), f.Text.Font)
	}
}

// Decode decodes a configuration in the given format from r and
// validates it against the configuration schema. Unknown keys are
// validation errors.
func Decode(r io.Reader, format Format) (*File, error) {
	var f File
	switch format {
	case TOML:
		md, err := toml.NewDecoder(r).Decode(&f)
		if err != nil {
			return nil, &ValidationError{Err: err}
		}
		if undec := md.Undecoded(); len(undec) != 0 {
			paths := make([][]string, len(undec))
			for i, k := range undec {
				paths[i] = k
			}
			return nil, &ValidationError{Paths: unique(paths), Err: errors.New("unknown field")}
		}
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err := dec.Decode(&f)
		if err != nil {
			return nil, &ValidationError{Err: err}
		}
	default:
		return nil, fmt.Errorf("unknown configuration format: %q", format)
	}
	err := f.Validate()
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the receiver against the configuration schema.
func (f *File) Validate() error {
	paths, err := Validate(Schema, f)
	if err != nil {
		return &ValidationError{Paths: paths, Err: err}
	}
	return nil
}

// Size returns the configured canvas size, or DefaultSize if none is set.
func (f *File) Size() int {
	if f.Output == nil {
		return DefaultSize
	}
	return deref(f.Output.Size, DefaultSize)
}
