// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package text

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
)

var analyzeTests = []struct {
	text string
	want Analysis
	adj  float64
}{
	{text: "gjpqy", want: Analysis{Latin: true, Descenders: true}, adj: -4},
	{text: "gg", want: Analysis{Latin: true, Descenders: true}, adj: -4},
	{text: "hi", want: Analysis{Latin: true, Ascenders: true}, adj: 2},
	{text: "OK", want: Analysis{Latin: true}, adj: 1},
	{text: "acme", want: Analysis{Latin: true}, adj: 1},
	{text: "Typing", want: Analysis{Latin: true, Descenders: true}, adj: -4},
	{text: "lightyear", want: Analysis{Latin: true, Descenders: true, Ascenders: true}, adj: 0},
	{text: "안녕", want: Analysis{Flat: true}, adj: 2},
	{text: "こんにちは", want: Analysis{Flat: true}, adj: 2},
	{text: "안녕 hi", want: Analysis{Flat: true, Latin: true, Ascenders: true}, adj: 0},
	{text: "123!", want: Analysis{}, adj: 0},
	{text: "", want: Analysis{}, adj: 0},
}

func TestAnalyze(t *testing.T) {
	for _, test := range analyzeTests {
		t.Run(test.text, func(t *testing.T) {
			got := Analyze(test.text)
			if !cmp.Equal(got, test.want) {
				t.Errorf("unexpected analysis:\n--- want:\n+++ got:\n%s",
					cmp.Diff(test.want, got))
			}
			adj := BaselineAdjustment(test.text)
			if adj != test.adj {
				t.Errorf("unexpected adjustment: got:%v want:%v", adj, test.adj)
			}
			// Repeated calls must agree.
			for range 3 {
				if again := BaselineAdjustment(test.text); again != adj {
					t.Fatalf("adjustment not stable: got:%v then:%v", adj, again)
				}
			}
		})
	}
}

func TestBaselineY(t *testing.T) {
	for _, test := range []struct {
		text   string
		size   float64
		offset float64
		want   float64
	}{
		{text: "OK", size: 128, offset: 0, want: 65},
		{text: "gjpqy", size: 128, offset: 0, want: 60},
		{text: "gjpqy", size: 128, offset: 10, want: 47.2},
		{text: "lightyear", size: 64, offset: -25, want: 48},
	} {
		got := BaselineY(test.text, test.size, test.offset)
		if !cmp.Equal(got, test.want, cmp.Comparer(func(a, b float64) bool {
			return a-b < 1e-9 && b-a < 1e-9
		})) {
			t.Errorf("unexpected baseline for %q: got:%v want:%v", test.text, got, test.want)
		}
	}
}

func TestFace(t *testing.T) {
	for _, family := range Families() {
		t.Run(family, func(t *testing.T) {
			face, err := Face(family, 72)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if Middle(face) <= 0 {
				t.Errorf("unexpected middle offset: %v", Middle(face))
			}
			ab := Advance(face, "AB")
			abc := Advance(face, "ABC")
			if ab <= 0 || abc <= ab {
				t.Errorf("unexpected advances: AB=%v ABC=%v", ab, abc)
			}
			// Advance scales with size.
			big, err := Face(family, 144)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := Advance(big, "AB"); got <= ab {
				t.Errorf("advance did not grow with size: %v <= %v", got, ab)
			}
		})
	}

	if !slices.Contains(Families(), DefaultFamily) {
		t.Errorf("default family %q not in families: %v", DefaultFamily, Families())
	}
	if _, err := Face("", 10); err != nil {
		t.Errorf("unexpected error for default family: %v", err)
	}
	if _, err := Face("comic-sans", 10); err == nil {
		t.Error("expected error for unknown family")
	}
	if _, err := Face(DefaultFamily, 0); err == nil {
		t.Error("expected error for zero size")
	}
}

func TestInkBounds(t *testing.T) {
	face, err := Face(DefaultFamily, 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dot := fixed.P(10, 50)

	b := InkBounds(face, "   ", dot)
	if !b.Empty() {
		t.Errorf("expected empty bounds for spaces: %v", b)
	}
	if Advance(face, "   ") <= 0 {
		t.Error("expected spaces to advance")
	}

	b = InkBounds(face, "Hg", dot)
	if b.Empty() {
		t.Fatal("expected non-empty bounds")
	}
	if b.Min.Y >= 50 || b.Max.Y <= 50 {
		t.Errorf("expected ink above and below the baseline for Hg: %v", b)
	}
	if b.Min.X < 10 || float64(b.Max.X) > 10+Advance(face, "Hg")+4 {
		t.Errorf("ink outside advance box: %v", b)
	}
}

func TestFaceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Mono.TTF")
	err := os.WriteFile(path, gomono.TTF, 0o644)
	if err != nil {
		t.Fatalf("unexpected error writing font: %v", err)
	}
	if !IsFontFile(path) {
		t.Fatalf("expected %s to be a font file", path)
	}
	if IsFontFile("go-mono") {
		t.Error("unexpected font file for family name")
	}

	got, err := Face(path, 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, err := Face("go-mono", 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a, b := Advance(got, "hello"), Advance(want, "hello"); a != b {
		t.Errorf("unexpected advance from font file: got:%v want:%v", a, b)
	}

	_, err = Face(filepath.Join(t.TempDir(), "missing.ttf"), 40)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unexpected error for missing font file: %v", err)
	}
	bad := filepath.Join(t.TempDir(), "bad.ttf")
	err = os.WriteFile(bad, []byte("not a font"), 0o644)
	if err != nil {
		t.Fatalf("unexpected error writing font: %v", err)
	}
	if _, err = Face(bad, 40); err == nil {
		t.Error("expected error for invalid font file")
	}
}
