// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/kortschak/emojify/internal/animation"
	"github.com/kortschak/emojify/internal/config"
	"github.com/kortschak/emojify/internal/harmony"
	"github.com/kortschak/emojify/internal/imageprep"
	"github.com/kortschak/emojify/internal/loop"
	"github.com/kortschak/emojify/internal/render"
	"github.com/kortschak/emojify/internal/slogext"
)

// generator renders emoji configurations to files.
type generator struct {
	out     string  // output directory
	frames  string  // frame dump directory, if not empty
	preview float64 // preview timestamp in ms, if not negative

	mu     sync.Mutex // guards colors
	colors *harmony.Generator
	style  string // color style, any when empty

	log *slog.Logger
}

// generate loads the configuration file at path and renders it, returning
// the path of the written file.
func (g *generator) generate(ctx context.Context, path string) (string, error) {
	f, err := config.Load(path)
	if err != nil {
		return "", err
	}
	return g.render(ctx, path, f)
}

// render renders the decoded configuration f loaded from path and writes
// the result to the output directory, returning the path of the written
// file.
func (g *generator) render(ctx context.Context, path string, f *config.File) (string, error) {
	var err error
	start := time.Now()
	log := g.log.With(slog.String("component", "emojify.generate"), slog.String("config", path))

	if g.colors != nil {
		g.mu.Lock()
		var c harmony.Combination
		if g.style == "" {
			c = g.colors.Combination()
		} else {
			c, err = g.colors.Style(g.style)
		}
		g.mu.Unlock()
		if err != nil {
			return "", err
		}
		randomize(f, c)
		log.LogAttrs(ctx, slog.LevelDebug, "random colors", slog.Any("combination", c))
	}

	var src image.Image
	if f.Mode == "image" && f.Image != nil {
		img, err := imageprep.Load(f.Image.Path, f.Size())
		if err != nil {
			return "", err
		}
		src = img
	}
	cfg, err := config.Build(f, src)
	if err != nil {
		return "", err
	}
	name := filepath.Join(g.out, outputName(cfg))

	if g.preview >= 0 {
		name = strings.TrimSuffix(name, ".gif") + ".png"
		img, err := render.Preview(cfg, g.preview)
		if err != nil {
			return "", err
		}
		var buf bytes.Buffer
		err = png.Encode(&buf, img)
		if err != nil {
			return "", err
		}
		err = os.WriteFile(name, buf.Bytes(), 0o644)
		if err != nil {
			return "", err
		}
		log.LogAttrs(ctx, slog.LevelInfo, "wrote preview", slog.String("path", name), slog.Float64("timestamp_ms", g.preview))
		return name, nil
	}

	r, err := render.New(cfg)
	if err != nil {
		return "", err
	}
	plan, err := loop.New(cfg, r.TextWidth())
	if err != nil {
		return "", err
	}
	log.LogAttrs(ctx, slog.LevelDebug, "plan",
		slog.Any("cycle", slogext.Stringer{Stringer: plan.Duration()}),
		slog.Int("frames", plan.Frames),
		slog.Any("delay", slogext.Stringer{Stringer: plan.Delay}),
		slog.Int("loop_count", plan.LoopCount),
	)
	var seq animation.Sequence
	for i := range plan.Frames {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		seq.Add(r.Render(plan.Timestamp(i)))
	}
	_, transparent := cfg.Background.(config.Transparent)
	size := image.Pt(cfg.Output.Width, cfg.Output.Height)
	b, err := animation.Encode(ctx, seq.Frames, plan.Delay, size, &animation.EncodeOptions{
		LoopCount:   plan.LoopCount,
		Transparent: transparent,
		Log:         log,
	})
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	err = os.WriteFile(name, b, 0o644)
	if err != nil {
		return "", err
	}
	log.LogAttrs(ctx, slog.LevelInfo, "wrote emoji",
		slog.String("path", name),
		slog.Any("size", slogext.Size(size)),
		slog.Int("frames", seq.Len()),
		slog.Int("bytes", len(b)),
		slog.Any("elapsed", slogext.Stringer{Stringer: time.Since(start)}),
	)

	if g.frames != "" {
		err = dumpFrames(g.frames, name, b)
		if err != nil {
			return name, err
		}
	}
	return name, nil
}

// randomize replaces the text color and the solid or gradient background
// colors of f with those of c.
func randomize(f *config.File, c harmony.Combination) {
	if f.Text != nil {
		f.Text.Color = c.Text
	}
	if f.Background == nil {
		f.Background = &config.BackgroundFile{Type: "solid"}
	}
	switch f.Background.Type {
	case "solid":
		f.Background.Color = c.Background
	case "gradient":
		f.Background.Gradient = c.Gradient[:]
	}
}

// outputName returns the file name for the emoji described by cfg.
func outputName(cfg *config.Render) string {
	switch c := cfg.Content.(type) {
	case *config.Text:
		return sanitize(c.Text) + "-emoji.gif"
	case *config.Image:
		return c.Animation.String() + "-image-emoji.gif"
	default:
		panic(fmt.Sprintf("unknown content type: %T", c))
	}
}

// sanitize returns s with characters that are unsafe in file names
// replaced by underscores.
func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r), strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		case unicode.IsSpace(r):
			return ' '
		}
		return r
	}, strings.TrimSpace(s))
	s = strings.TrimLeft(s, ".")
	if s == "" {
		return "emoji"
	}
	return s
}

// dumpFrames writes the composited frames of the GIF in b to dir as PNG
// files named after the GIF at path.
func dumpFrames(dir, path string, b []byte) error {
	g, err := animation.DecodeGIF(bytes.NewReader(b))
	if err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(path), ".gif")
	dst := image.NewRGBA(g.Bounds())
	return g.Frames(dst, func(i int, img image.Image) error {
		var buf bytes.Buffer
		err := png.Encode(&buf, img)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dir, fmt.Sprintf("%s-%03d.png", base, i)), buf.Bytes(), 0o644)
	})
}
