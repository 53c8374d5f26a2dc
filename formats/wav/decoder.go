// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gowav "github.com/go-audio/wav"

	"github.com/ik5/pcmwav/audio"
)

// Decode reads a 16-bit PCM WAV file into a SampleBuffer.
// Unlike ParseHeader it accepts any chunk layout go-audio/wav understands,
// including LIST chunks and odd-sized padding.
func Decode(data []byte) (*audio.SampleBuffer, error) {
	return decode(bytes.NewReader(data))
}

func decode(r io.ReadSeeker) (*audio.SampleBuffer, error) {
	if buf, err := readCanonical(r); buf != nil || err != nil {
		return buf, err
	}

	dec := gowav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	if dec.WavAudioFormat != formatPCM || dec.BitDepth != bitsPerSample {
		return nil, fmt.Errorf("%w: format %d, %d bits", ErrOnlyPCM16bitSupported, dec.WavAudioFormat, dec.BitDepth)
	}

	if _, err := checkLayout(int(dec.SampleRate), int(dec.NumChans), 0); err != nil {
		return nil, err
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}

	buf, err := audio.FromIntBuffer(pcm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeaderMismatch, err)
	}

	return buf, nil
}

// readCanonical handles what go-audio/wav cannot: a canonical document with an
// empty data chunk, which it refuses as invalid, and a canonical header whose
// layout is impossible. Anything else yields (nil, nil). r is rewound either way.
func readCanonical(r io.ReadSeeker) (*audio.SampleBuffer, error) {
	defer func() { _, _ = r.Seek(0, io.SeekStart) }()

	head := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, nil
	}

	h, err := ParseHeader(head)
	if err != nil {
		if errors.Is(err, ErrUnsupportedWavLayout) && canonicalChunks(head) {
			return nil, err
		}

		return nil, nil
	}

	if h.DataSize != 0 {
		return nil, nil
	}

	return audio.NewSilentBuffer(int(h.SampleRate), int(h.NumChannels), 0)
}

// canonicalChunks reports whether head holds a 16-byte fmt chunk directly
// followed by the data chunk.
func canonicalChunks(head []byte) bool {
	return bytes.Equal(head[12:16], []byte("fmt ")) &&
		binary.LittleEndian.Uint32(head[16:20]) == fmtChunkSize &&
		bytes.Equal(head[36:40], []byte("data"))
}

// Decoder adapts Decode to audio.Decoder.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}

		rs = bytes.NewReader(data)
	}

	buf, err := decode(rs)
	if err != nil {
		return nil, err
	}

	return buf.Source(), nil
}
