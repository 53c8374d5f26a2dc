// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"fmt"
	"io"
	"strings"

	"github.com/ik5/pcmwav/audio"
)

// Decoder reads a whole headerless PCM stream whose layout is agreed out of band.
type Decoder struct {
	SampleRate int
	Channels   int
}

func (d Decoder) Decode(r io.Reader) (audio.Source, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading PCM stream: %w", err)
	}

	return d.source(raw)
}

func (d Decoder) source(raw []byte) (audio.Source, error) {
	buf, err := Interpret(raw, d.SampleRate, d.Channels)
	if err != nil {
		return nil, err
	}

	return buf.Source(), nil
}

// TransportDecoder reads a base64 transport string and interprets it like Decoder.
// Surrounding whitespace is ignored.
type TransportDecoder struct {
	SampleRate int
	Channels   int
}

func (d TransportDecoder) Decode(r io.Reader) (audio.Source, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading transport stream: %w", err)
	}

	raw, err := DecodeTransport(strings.TrimSpace(string(text)))
	if err != nil {
		return nil, err
	}

	return Decoder(d).source(raw)
}
