// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"log/slog"
)

type changeValue struct {
	Change
}

func (v changeValue) LogValue() slog.Value {
	events := make([]eventValue, len(v.Event))
	for i, e := range v.Event {
		events[i] = eventValue{
			Name: e.Name,
			Op:   e.Op.String(),
			Code: int(e.Op),
		}
	}
	var mode string
	if v.File != nil {
		mode = v.File.Mode
	}
	var err string
	if v.Err != nil {
		err = v.Err.Error()
	}
	return slog.AnyValue(struct {
		Event []eventValue `json:"event"`
		Mode  string       `json:"mode,omitempty"`
		Sum   string       `json:"sum,omitempty"`
		Err   string       `json:"err,omitempty"`
	}{
		Event: events,
		Mode:  mode,
		Sum:   v.Sum.String(),
		Err:   err,
	})
}

type eventValue struct {
	Name string `json:"name"`
	Op   string `json:"op"`
	Code int    `json:"op_code"`
}
