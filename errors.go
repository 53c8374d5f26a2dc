// SPDX-License-Identifier: EPL-2.0

package pcmwav

import (
	"github.com/ik5/pcmwav/audio"
	"github.com/ik5/pcmwav/formats/pcm"
)

// Errors returned by the pipeline, re-exported so callers need a single import.
var (
	// ErrDecode: the transport string is not valid base64.
	ErrDecode = pcm.ErrDecode
	// ErrFormat: the decoded bytes do not match the declared layout.
	ErrFormat = pcm.ErrFormat
	// ErrRender: the render job failed or was cancelled.
	ErrRender = audio.ErrRender
)
