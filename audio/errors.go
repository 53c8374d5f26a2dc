// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	// ErrInvalidDstSize is returned by sources when dst is not a whole number of frames.
	ErrInvalidDstSize = errors.New("destination length is not a multiple of the channel count")
	// ErrInvalidBuffer reports a sample buffer or source with an impossible layout.
	ErrInvalidBuffer = errors.New("invalid sample buffer")
	// ErrRender marks a failed canonicalization. It is terminal for the request.
	ErrRender = errors.New("render failed")
)
