// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kortschak/emojify/internal/slogext"
)

var verbose = flag.Bool("verbose", false, "print watcher logs")

const (
	hiTOML = `mode = "text"
[text]
text = "hi"
`
	hiYAML = `mode: text
text:
  text: hi
`
	hiYAMLComment = `# same configuration
mode: text
text:
  text: hi
`
	badTOML = `mode = "text"
[text]
text = "hi"
font_size = 1000
`
)

func create(dir, name string, perm fs.FileMode, data string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(data), perm)
}

func rm(dir, name string) error {
	return os.RemoveAll(filepath.Join(dir, name))
}

// await returns the next change for name that satisfies ok, ignoring
// other changes.
func await(t *testing.T, stream <-chan Change, name string, ok func(Change) bool) (Change, bool) {
	t.Helper()
	timeout := time.NewTimer(2 * time.Second)
	defer timeout.Stop()
	for {
		select {
		case <-timeout.C:
			return Change{}, false
		case c := <-stream:
			if filepath.Base(c.Path()) == name && ok(c) {
				return c, true
			}
		}
	}
}

func TestWatcher(t *testing.T) {
	var logBuf bytes.Buffer
	log := slog.New(slogext.GoID{Handler: slog.NewJSONHandler(&logBuf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})})
	defer func() {
		if *verbose {
			t.Logf("log:\n%s\n", &logBuf)
		}
	}()

	dir := t.TempDir()
	err := create(dir, "existing.toml", 0o644, hiTOML)
	if err != nil {
		t.Fatalf("unexpected error creating initial file: %v", err)
	}
	err = create(dir, "notes.txt", 0o644, "not a configuration")
	if err != nil {
		t.Fatalf("unexpected error creating initial file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := make(chan Change)
	w, err := NewWatcher(dir, stream, 50*time.Millisecond, log)
	if err != nil {
		t.Fatalf("unexpected error creating watcher: %v", err)
	}
	done := make(chan error)
	go func() {
		done <- w.Watch(ctx)
	}()

	got, ok := await(t, stream, "existing.toml", func(c Change) bool { return true })
	if !ok {
		t.Fatal("did not receive initial scan change in time")
	}
	if got.Op() != fsnotify.Create {
		t.Errorf("unexpected initial op: got:%v want:%v", got.Op(), fsnotify.Create)
	}
	if got.Err != nil || got.File == nil || got.File.Text == nil || got.File.Text.Text != "hi" {
		t.Errorf("unexpected initial change: file=%+v err=%v", got.File, got.Err)
	}
	if got.Sum == nil {
		t.Error("expected semantic hash for initial change")
	}

	err = create(dir, "new.yaml", 0o644, hiYAML)
	if err != nil {
		t.Fatalf("unexpected error creating file: %v", err)
	}
	yamlChange, ok := await(t, stream, "new.yaml", func(c Change) bool { return c.File != nil })
	if !ok {
		t.Fatal("did not receive create change in time")
	}
	if yamlChange.File.Mode != "text" {
		t.Errorf("unexpected mode: got:%q want:%q", yamlChange.File.Mode, "text")
	}
	if !yamlChange.Sum.Equal(got.Sum) {
		t.Errorf("expected equal semantic hashes for equivalent TOML and YAML: %s != %s", yamlChange.Sum, got.Sum)
	}

	err = create(dir, "new.yaml", 0o644, hiYAMLComment)
	if err != nil {
		t.Fatalf("unexpected error rewriting file: %v", err)
	}
	timer := time.NewTimer(300 * time.Millisecond)
	select {
	case c := <-stream:
		if c.File != nil {
			t.Errorf("unexpected change for semantically identical rewrite: %+v", c)
		}
	case <-timer.C:
	}
	timer.Stop()

	err = create(dir, "bad.toml", 0o644, badTOML)
	if err != nil {
		t.Fatalf("unexpected error creating file: %v", err)
	}
	bad, ok := await(t, stream, "bad.toml", func(c Change) bool { return c.Err != nil })
	if !ok {
		t.Fatal("did not receive invalid change in time")
	}
	var verr *ValidationError
	if !errors.As(bad.Err, &verr) {
		t.Errorf("unexpected error type: %T", bad.Err)
	}

	err = rm(dir, "new.yaml")
	if err != nil {
		t.Fatalf("unexpected error removing file: %v", err)
	}
	removed, ok := await(t, stream, "new.yaml", func(c Change) bool { return c.Op().Has(fsnotify.Remove) })
	if !ok {
		t.Fatal("did not receive remove change in time")
	}
	if removed.File != nil {
		t.Errorf("unexpected file for removal: %+v", removed.File)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error from Watch: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("watcher did not terminate after cancellation")
	}
}

func TestNewWatcherNotDir(t *testing.T) {
	dir := t.TempDir()
	err := create(dir, "file.toml", 0o644, hiTOML)
	if err != nil {
		t.Fatalf("unexpected error creating file: %v", err)
	}
	_, err = NewWatcher(filepath.Join(dir, "file.toml"), nil, -1, slog.Default())
	if err == nil {
		t.Error("expected error watching a regular file")
	}
	_, err = NewWatcher(filepath.Join(dir, "missing"), nil, -1, slog.Default())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unexpected error watching missing directory: %v", err)
	}
}

var sumTests = []struct {
	a, b *Sum
	want bool
}{
	{a: nil, b: nil, want: true},
	{a: nil, b: &Sum{}, want: false},
	{a: &Sum{}, b: nil, want: false},
	{a: &Sum{}, b: &Sum{}, want: true},
	{a: &Sum{0: 1}, b: &Sum{}, want: false},
	{a: &Sum{}, b: &Sum{0: 1}, want: false},
}

func TestSum(t *testing.T) {
	for _, test := range sumTests {
		got := test.a.Equal(test.b)
		if got != test.want {
			t.Errorf("unexpected result for %q.equal(%q): got:%t want:%t", test.a, test.b, got, test.want)
		}
	}
}
