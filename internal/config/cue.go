// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	_ "embed"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/encoding/gocode/gocodec"
	"golang.org/x/exp/constraints"
)

// Schema is the CUE schema for configuration files.
//
//go:embed schema.cue
var Schema string

// Validate performs a validation of the provided configuration value, returning
// a list of invalid paths and a CUE errors.Error explaining the issues found if
// the configuration is invalid according to the provided schema.
func Validate(schema string, cfg any) (paths [][]string, err error) {
	ctx := cuecontext.New()

	v := ctx.CompileString(schema)
	if err := v.Err(); err != nil {
		return nil, err
	}
	codec := gocodec.New(ctx, nil)

	w, err := codec.Decode(cfg)
	if err != nil {
		return nil, err
	}

	err = v.Unify(w).Validate(cue.Concrete(true), cue.Final())
	for _, e := range cerrors.Errors(err) {
		if p := cerrors.Path(e); p != nil {
			paths = append(paths, p)
		}
	}
	return unique(paths), err
}

// unique returns paths lexically sorted in ascending order and with repeated
// and nil elements omitted.
func unique(paths [][]string) [][]string {
	paths = slices.DeleteFunc(paths, func(p []string) bool { return p == nil })
	slices.SortFunc(paths, compare[string])
	return slices.CompactFunc(paths, func(a, b []string) bool {
		return compare(a, b) == 0
	})
}

func compare[T constraints.Ordered](a, b []T) int {
	for i := range min(len(a), len(b)) {
		switch e1, e2 := a[i], b[i]; {
		case e1 < e2:
			return -1
		case e1 > e2:
			return +1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return +1
	}
	return 0
}
