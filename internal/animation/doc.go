// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package animation provides animated GIF encoding of rendered frame
// sequences and compositing of decoded GIF frames.
package animation
