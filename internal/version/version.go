// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package version reports the build version.
package version

import (
	"errors"
	"runtime/debug"
	"strings"
)

// String returns the build version. It includes the VCS revision and
// modification state when they are recorded in the build.
func String() (string, error) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "", errors.New("no build info")
	}
	return format(bi), nil
}

func format(bi *debug.BuildInfo) string {
	var revision, modified string
	for _, bs := range bi.Settings {
		switch bs.Key {
		case "vcs.revision":
			revision = bs.Value
		case "vcs.modified":
			modified = bs.Value
		}
	}
	v := []string{bi.Main.Version}
	if revision == "" {
		return v[0]
	}
	v = append(v, revision)
	switch modified {
	case "true":
		v = append(v, "(modified)")
	case "false", "":
	default:
		// This should never happen.
		v = append(v, modified)
	}
	return strings.Join(v, " ")
}
