// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"encoding/binary"
	"fmt"

	"github.com/ik5/pcmwav/audio"
	"github.com/ik5/pcmwav/utils"
)

// BytesPerSample is fixed: only signed 16-bit little-endian PCM is handled.
const BytesPerSample = 2

// Interpret reads raw as interleaved signed 16-bit little-endian samples.
// Sample (frame, ch) lives at byte offset (frame*channels+ch)*2 and is
// normalized as s/32768.
//
// len(raw) must be an exact multiple of channels*2; trailing bytes are never
// dropped. Errors wrap ErrFormat.
func Interpret(raw []byte, sampleRate, channels int) (*audio.SampleBuffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrFormat, sampleRate)
	}

	if channels <= 0 {
		return nil, fmt.Errorf("%w: channel count must be positive, got %d", ErrFormat, channels)
	}

	blockAlign := channels * BytesPerSample
	if len(raw)%blockAlign != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of the %d-byte frame",
			ErrFormat, len(raw), blockAlign)
	}

	frames := len(raw) / blockAlign
	data := make([][]float32, channels)
	for ch := range data {
		data[ch] = make([]float32, frames)
	}

	for f := range frames {
		base := f * blockAlign
		for ch := range channels {
			off := base + ch*BytesPerSample
			data[ch][f] = utils.NormalizeInt16(int16(binary.LittleEndian.Uint16(raw[off : off+2])))
		}
	}

	buf, err := audio.NewSampleBuffer(sampleRate, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	return buf, nil
}
