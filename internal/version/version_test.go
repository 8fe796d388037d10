// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package version

import (
	"runtime/debug"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		settings []debug.BuildSetting
		want     string
	}{
		{
			name: "no_vcs",
			want: "v1.2.3",
		},
		{
			name: "clean",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123abcd"},
				{Key: "vcs.modified", Value: "false"},
			},
			want: "v1.2.3 0123abcd",
		},
		{
			name: "modified",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123abcd"},
				{Key: "vcs.modified", Value: "true"},
			},
			want: "v1.2.3 0123abcd (modified)",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bi := &debug.BuildInfo{Main: debug.Module{Version: "v1.2.3"}, Settings: test.settings}
			got := format(bi)
			if got != test.want {
				t.Errorf("unexpected version: got:%q want:%q", got, test.want)
			}
		})
	}
}
