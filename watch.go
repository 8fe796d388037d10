// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kortschak/emojify/internal/config"
)

// job is an in-flight generation for a configuration file.
type job struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// watch regenerates emojis for the configuration files in dir as they
// change until ctx is cancelled. A change to a file cancels any in-flight
// generation for that file before a new generation starts.
func (g *generator) watch(ctx context.Context, dir string) error {
	log := g.log.With(slog.String("component", "emojify.watch"))

	changes := make(chan config.Change)
	w, err := config.NewWatcher(dir, changes, -1, g.log)
	if err != nil {
		return err
	}
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- w.Watch(ctx)
	}()

	var wg sync.WaitGroup
	jobs := make(map[string]job)
	defer func() {
		for _, j := range jobs {
			j.cancel()
		}
		wg.Wait()
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-watchErr:
			return err
		case c := <-changes:
			path := c.Path()
			prev, running := jobs[path]
			if running {
				prev.cancel()
				delete(jobs, path)
			}
			switch {
			case c.Err != nil:
				log.LogAttrs(ctx, slog.LevelWarn, "invalid configuration", slog.String("config", path), slog.Any("error", c.Err))
				continue
			case c.File == nil:
				log.LogAttrs(ctx, slog.LevelInfo, "configuration removed", slog.String("config", path))
				continue
			}

			jctx, cancel := context.WithCancel(ctx)
			j := job{cancel: cancel, done: make(chan struct{})}
			jobs[path] = j
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer close(j.done)
				defer cancel()
				if running {
					// Do not race the cancelled generation
					// for the output file.
					<-prev.done
				}
				_, err := g.render(jctx, path, c.File)
				switch {
				case err == nil:
				case errors.Is(err, context.Canceled):
					log.LogAttrs(ctx, slog.LevelDebug, "generation cancelled", slog.String("config", path))
				default:
					log.LogAttrs(ctx, slog.LevelError, "generate", slog.String("config", path), slog.Any("error", err))
				}
			}()
		}
	}
}
