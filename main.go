// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The emojify executable renders animated GIF emojis described by
// configuration files.
//
// Each TOML or YAML configuration file names the emoji content, either text
// or an image, its background, output size and frame rate, and the animation
// to apply. Generated files are written to the output directory as
// {text}-emoji.gif or {animation}-image-emoji.gif.
//
// In watch mode a single directory of configuration files is watched and
// emojis are regenerated as their configurations change.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/creachadair/taskgroup"
	"github.com/gofrs/flock"

	"github.com/kortschak/emojify/internal/harmony"
	"github.com/kortschak/emojify/internal/slogext"
	"github.com/kortschak/emojify/internal/version"
)

// Exit status codes.
const (
	success       = 0
	internalError = 1 << (iota - 1)
	invocationError
)

func main() { os.Exit(Main()) }

func Main() int {
	out := flag.String("o", ".", "output directory")
	jobs := flag.Int("j", runtime.GOMAXPROCS(0), "maximum number of concurrent generations")
	watch := flag.Bool("watch", false, "watch a configuration directory and regenerate emojis on change")
	preview := flag.Float64("preview", -1, "write a PNG of the frame at this timestamp (ms) instead of a GIF")
	frames := flag.String("frames", "", "directory to write the decoded frames of each GIF as PNGs")
	random := flag.Bool("random-colors", false, "replace text and background colors with a random harmonious combination")
	style := flag.String("style", "", "random color style ("+strings.Join(harmony.Styles, ", ")+"); any style when empty")
	seed := flag.Uint64("seed", 0, "random color seed (0 seeds from the clock)")
	logging := flag.String("log", "info", "logging level (debug, info, warn or error)")
	lines := flag.Bool("lines", false, "display source line details in logs")
	v := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage of %s:
  %[1]s [options] <config.toml|config.yaml>...
  %[1]s [options] -watch <dir>

`, filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if *v {
		s, err := version.String()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
		fmt.Println(s)
		return success
	}

	switch {
	case flag.NArg() == 0:
		flag.Usage()
		return invocationError
	case *watch && flag.NArg() != 1:
		fmt.Fprintln(os.Stderr, "watch mode requires exactly one directory")
		return invocationError
	case *jobs < 1:
		fmt.Fprintln(os.Stderr, "invalid number of jobs:", *jobs)
		return invocationError
	case *style != "" && !slices.Contains(harmony.Styles, *style):
		fmt.Fprintf(os.Stderr, "invalid color style: %q\n", *style)
		return invocationError
	}

	var level slog.LevelVar
	err := level.UnmarshalText([]byte(*logging))
	if err != nil {
		flag.Usage()
		return invocationError
	}
	log := slog.New(slogext.GoID{Handler: slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level:     &level,
		AddSource: *lines,
	})})
	mlog := log.With(slog.String("component", "emojify.main"))

	err = os.MkdirAll(*out, 0o755)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return internalError
	}
	if *frames != "" {
		err = os.MkdirAll(*frames, 0o755)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
	}

	g := &generator{
		out:     *out,
		frames:  *frames,
		preview: *preview,
		log:     log,
	}
	if *random {
		var src *rand.Rand
		if *seed != 0 {
			src = rand.New(rand.NewPCG(*seed, *seed))
		}
		g.colors = harmony.New(src)
		g.style = *style
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if *watch {
		lock := flock.New(filepath.Join(*out, ".emojify.lock"))
		ok, err := lock.TryLock()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
		if !ok {
			fmt.Fprintf(os.Stderr, "%s is already being written by another emojify watcher\n", *out)
			return internalError
		}
		defer lock.Unlock()

		err = g.watch(ctx, flag.Arg(0))
		if err != nil {
			mlog.LogAttrs(ctx, slog.LevelError, "watch", slog.Any("error", err))
			return internalError
		}
		mlog.LogAttrs(ctx, slog.LevelInfo, "terminating")
		return success
	}

	err = batch(ctx, g, *jobs, flag.Args())
	if err != nil {
		mlog.LogAttrs(ctx, slog.LevelError, "generation failed", slog.Any("error", err))
		return internalError
	}
	return success
}

// batch generates emojis for each of the configuration files in paths
// with at most jobs concurrent generations. Failures do not stop other
// generations and are returned joined.
func batch(ctx context.Context, g *generator, jobs int, paths []string) error {
	var (
		mu   sync.Mutex
		errs []error
	)
	tasks, start := taskgroup.New(func(err error) error {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
		return err
	}).Limit(jobs)
	for _, path := range paths {
		start(func() error {
			_, err := g.generate(ctx, path)
			if err != nil {
				g.log.LogAttrs(ctx, slog.LevelError, "generate", slog.String("config", path), slog.Any("error", err))
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	tasks.Wait()
	return errors.Join(errs...)
}
