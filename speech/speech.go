// SPDX-License-Identifier: EPL-2.0

package speech

import (
	"context"
	"errors"
)

var (
	ErrEmptyText     = errors.New("speech: empty text")
	ErrNoAudio       = errors.New("speech: response carried no audio")
	ErrMissingAPIKey = errors.New("speech: missing API key")
)

// Request asks for text to be spoken. An empty Voice selects the provider default.
type Request struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// Audio is raw synthesized speech in transport form: base64 of signed 16-bit
// little-endian PCM, with the layout the provider declared.
type Audio struct {
	Data       string
	SampleRate int
	Channels   int
	MIMEType   string
}

// Synthesizer turns text into raw speech audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (Audio, error)
}

// Recorder receives request outcomes. *metrics.Metrics implements it.
type Recorder interface {
	RecordSpeech(status string, durationSeconds float64)
}
