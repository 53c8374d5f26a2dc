// SPDX-License-Identifier: EPL-2.0

package pcm

import "errors"

var (
	// ErrDecode reports a malformed base64 transport string.
	ErrDecode = errors.New("malformed transport encoding")
	// ErrFormat reports raw bytes that do not match the declared PCM layout.
	ErrFormat = errors.New("malformed PCM payload")
)
