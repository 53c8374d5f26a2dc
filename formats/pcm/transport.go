// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeTransport decodes a standard-alphabet base64 string. Padding is optional:
// input ending in '=' or whose length is a multiple of four must be correctly
// padded, anything else is decoded as unpadded. CR and LF are ignored.
//
// On failure the returned slice is nil and the error wraps ErrDecode.
func DecodeTransport(s string) ([]byte, error) {
	enc := base64.RawStdEncoding
	if strings.HasSuffix(s, "=") || stripNewlines(s)%4 == 0 {
		enc = base64.StdEncoding
	}

	out, err := enc.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return out, nil
}

// stripNewlines returns the length of s without CR/LF, which the decoder skips.
func stripNewlines(s string) int {
	n := len(s)
	n -= strings.Count(s, "\r")
	n -= strings.Count(s, "\n")

	return n
}
