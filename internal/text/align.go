// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package text

import (
	"strings"
	"unicode"
)

// Analysis is the script classification of a string used to
// vertically centre it.
type Analysis struct {
	// Flat is whether the string contains characters from a script
	// that has neither ascenders nor descenders, for example Hangul.
	Flat bool
	// Latin is whether the string contains ASCII letters.
	Latin bool

	// Descenders and Ascenders indicate the presence of Latin
	// letters with descenders or ascenders.
	Descenders bool
	Ascenders  bool
}

const (
	descenders = "gjpqy"
	ascenders  = "bdfhklt"
)

// flat is the set of scripts drawn within a uniform em box.
var flat = []*unicode.RangeTable{
	unicode.Hangul,
	unicode.Han,
	unicode.Hiragana,
	unicode.Katakana,
}

// Analyze returns the script classification of s.
func Analyze(s string) Analysis {
	var a Analysis
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			a.Latin = true
			a.Descenders = a.Descenders || strings.ContainsRune(descenders, r)
			a.Ascenders = a.Ascenders || strings.ContainsRune(ascenders, r)
		case unicode.In(r, flat...):
			a.Flat = true
		}
	}
	return a
}

// BaselineAdjustment returns the vertical correction in pixels to apply
// to a middle-aligned baseline so that s appears visually centred.
// Positive values move the text down.
func BaselineAdjustment(s string) float64 {
	a := Analyze(s)
	switch {
	case a.Flat && !a.Latin:
		return 2
	case a.Latin && !a.Flat:
		switch {
		case a.Descenders && !a.Ascenders:
			return -4
		case a.Ascenders && !a.Descenders:
			return 2
		case !a.Ascenders && !a.Descenders:
			return 1
		}
	}
	return 0
}

// BaselineY returns the y coordinate of the vertical middle of s on a
// square canvas of the given size. The vertical offset is a percentage
// of the canvas size with positive values moving the text up. The
// dynamic adjustment from BaselineAdjustment is layered on top.
func BaselineY(s string, size, verticalOffsetPct float64) float64 {
	return size/2 - size*verticalOffsetPct/100 + BaselineAdjustment(s)
}
