// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileDebounce is the default duration we wait for the contents to have
// stabilised to work around some editors writing an empty file and then the
// buffer.
const FileDebounce = 10 * time.Millisecond

// Change is a configuration file change identified by a Watcher.
type Change struct {
	Event []fsnotify.Event
	File  *File
	Sum   *Sum
	Err   error
}

// Op returns an aggregated fsnotify.Op for all elements of the receivers'
// Event field.
func (c Change) Op() fsnotify.Op {
	switch len(c.Event) {
	case 0:
		return 0
	case 1:
		return c.Event[0].Op
	default:
		var op fsnotify.Op
		for _, o := range c.Event {
			op |= o.Op
		}
		return op
	}
}

// Path returns the path of the file the change refers to.
func (c Change) Path() string {
	if len(c.Event) == 0 {
		return ""
	}
	return c.Event[len(c.Event)-1].Name
}

// Sum is the semantic hash of a decoded configuration file.
type Sum [sha1.Size]byte

// Equal returns whether s is equal to other.
func (s *Sum) Equal(other *Sum) bool {
	switch {
	case s == other:
		return true
	case s != nil && other != nil:
		return *s == *other
	default:
		return false
	}
}

func (s *Sum) String() string {
	if s == nil {
		return ""
	}
	return hex.EncodeToString(s[:])
}

// IsConfig returns whether name has a configuration file extension.
func IsConfig(name string) bool {
	switch filepath.Ext(name) {
	case ".toml", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Watcher collects raw fsnotify.Events for a directory of configuration
// files and filters them for semantically meaningful changes.
type Watcher struct {
	dir      string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	changes  chan<- Change
	hash     hash.Hash
	hashes   map[string]Sum
	log      *slog.Logger
}

// NewWatcher starts an fsnotify.Watcher for the provided directory, sending
// change events on the changes channel once Watch is called. The debounce
// parameter specifies how long to wait after an fsnotify.Event before reading
// the file to ensure that writes will be reflected in the semantic hash. If
// it is less than zero, FileDebounce is used.
func NewWatcher(dir string, changes chan<- Change, debounce time.Duration, log *slog.Logger) (*Watcher, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	err = watcher.Add(dir)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	if debounce < 0 {
		debounce = FileDebounce
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		watcher:  watcher,
		changes:  changes,
		hash:     sha1.New(),
		hashes:   make(map[string]Sum),
		log:      log.With(slog.String("component", "config_watcher")),
	}, nil
}

// Watch sends a create change for each configuration file already in the
// watched directory and then sends changes as files are written, created,
// renamed or removed. Writes that do not alter the decoded configuration
// are dropped. Watch returns when ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context) error {
	defer w.watcher.Close()

	de, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, e := range de {
		if e.IsDir() || !IsConfig(e.Name()) {
			continue
		}
		path := filepath.Join(w.dir, e.Name())
		if !w.read(ctx, fsnotify.Event{Name: path, Op: fsnotify.Create}) {
			return nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !IsConfig(ev.Name) {
				continue
			}
			switch {
			case ev.Has(fsnotify.Write | fsnotify.Create):
				fi, err := os.Stat(ev.Name)
				if err != nil {
					if !w.send(ctx, Change{Event: []fsnotify.Event{ev}, Err: err}) {
						return nil
					}
					continue
				}
				if fi.IsDir() {
					continue
				}
				w.log.LogAttrs(ctx, slog.LevelDebug, "write", slog.String("name", ev.Name))
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(w.debounce):
				}
				if !w.read(ctx, ev) {
					return nil
				}
			case ev.Has(fsnotify.Remove | fsnotify.Rename):
				w.log.LogAttrs(ctx, slog.LevelDebug, "remove", slog.String("name", ev.Name))
				delete(w.hashes, ev.Name)
				if !w.send(ctx, Change{Event: []fsnotify.Event{ev}}) {
					return nil
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if !w.send(ctx, Change{Err: err}) {
				return nil
			}
		}
	}
}

// read decodes the file named by ev and sends the change if its semantic
// hash differs from the last seen for the file. It returns false if ctx
// is cancelled.
func (w *Watcher) read(ctx context.Context, ev fsnotify.Event) bool {
	b, err := os.ReadFile(ev.Name)
	if err != nil {
		w.log.LogAttrs(ctx, slog.LevelError, "read file", slog.Any("error", err))
		return w.send(ctx, Change{Event: []fsnotify.Event{ev}, Err: err})
	}
	f, err := Decode(bytes.NewReader(b), FormatOf(ev.Name))
	if err != nil {
		delete(w.hashes, ev.Name)
		return w.send(ctx, Change{Event: []fsnotify.Event{ev}, Err: err})
	}
	f.resolve(ev.Name)
	sum, err := w.sum(f)
	if err != nil {
		return w.send(ctx, Change{Event: []fsnotify.Event{ev}, Err: err})
	}
	if prev, ok := w.hashes[ev.Name]; ok && prev == sum {
		w.log.LogAttrs(ctx, slog.LevelDebug, "no change", slog.String("name", ev.Name), slog.String("sum", sum.String()))
		return true
	}
	w.hashes[ev.Name] = sum
	return w.send(ctx, Change{Event: []fsnotify.Event{ev}, File: f, Sum: &sum})
}

func (w *Watcher) sum(f *File) (Sum, error) {
	defer w.hash.Reset()
	err := json.NewEncoder(w.hash).Encode(f)
	if err != nil {
		return Sum{}, err
	}
	return Sum(w.hash.Sum(nil)), nil
}

func (w *Watcher) send(ctx context.Context, c Change) bool {
	select {
	case <-ctx.Done():
		return false
	case w.changes <- c:
		w.log.LogAttrs(ctx, slog.LevelDebug, "change", slog.Any("change", changeValue{c}))
		return true
	}
}
