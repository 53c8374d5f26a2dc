// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"time"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/pcmwav/utils"
)

// SampleBuffer is a fully realized block of audio held as one float32 slice
// per channel. Every channel has the same number of frames.
//
// A SampleBuffer is never modified after construction.
type SampleBuffer struct {
	sampleRate int
	channels   [][]float32
}

// NewSampleBuffer validates and wraps per-channel sample slices.
// The buffer takes ownership of channels; the caller must not modify them afterwards.
func NewSampleBuffer(sampleRate int, channels [][]float32) (*SampleBuffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidBuffer, sampleRate)
	}

	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: at least one channel is required", ErrInvalidBuffer)
	}

	frames := len(channels[0])
	for ch, data := range channels {
		if len(data) != frames {
			return nil, fmt.Errorf("%w: channel %d has %d frames, want %d",
				ErrInvalidBuffer, ch, len(data), frames)
		}
	}

	return &SampleBuffer{
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}

// NewSilentBuffer returns a zero-filled buffer.
func NewSilentBuffer(sampleRate, channels, frames int) (*SampleBuffer, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: channel count must be positive, got %d", ErrInvalidBuffer, channels)
	}

	if frames < 0 {
		return nil, fmt.Errorf("%w: negative frame count %d", ErrInvalidBuffer, frames)
	}

	data := make([][]float32, channels)
	for ch := range data {
		data[ch] = make([]float32, frames)
	}

	return NewSampleBuffer(sampleRate, data)
}

// FromIntBuffer converts a go-audio integer buffer (interleaved) into a SampleBuffer.
// Samples are scaled with utils.DequantizeInt16, the inverse of the WAV encoder.
// Only 16-bit source material is accepted.
func FromIntBuffer(buf *goaudio.IntBuffer) (*SampleBuffer, error) {
	if buf == nil || buf.Format == nil {
		return nil, fmt.Errorf("%w: missing format", ErrInvalidBuffer)
	}

	if buf.SourceBitDepth != 0 && buf.SourceBitDepth != 16 {
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidBuffer, buf.SourceBitDepth)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		return nil, fmt.Errorf("%w: channel count must be positive, got %d", ErrInvalidBuffer, channels)
	}

	if len(buf.Data)%channels != 0 {
		return nil, fmt.Errorf("%w: %d samples do not divide into %d channels",
			ErrInvalidBuffer, len(buf.Data), channels)
	}

	frames := len(buf.Data) / channels
	data := make([][]float32, channels)
	for ch := range data {
		data[ch] = make([]float32, frames)
	}

	for i, v := range buf.Data {
		data[i%channels][i/channels] = utils.DequantizeInt16(int16(v))
	}

	return NewSampleBuffer(buf.Format.SampleRate, data)
}

func (b *SampleBuffer) SampleRate() int { return b.sampleRate }
func (b *SampleBuffer) Channels() int   { return len(b.channels) }
func (b *SampleBuffer) FrameCount() int { return len(b.channels[0]) }

// At returns the sample of channel ch at frame.
func (b *SampleBuffer) At(frame, ch int) float32 {
	return b.channels[ch][frame]
}

// Channel returns a copy of one channel's samples.
func (b *SampleBuffer) Channel(ch int) []float32 {
	out := make([]float32, len(b.channels[ch]))
	copy(out, b.channels[ch])

	return out
}

// Duration is the playback length at the buffer's sample rate.
func (b *SampleBuffer) Duration() time.Duration {
	return time.Duration(b.FrameCount()) * time.Second / time.Duration(b.sampleRate)
}

// Format describes the buffer in go-audio terms.
func (b *SampleBuffer) Format() *goaudio.Format {
	return &goaudio.Format{
		NumChannels: b.Channels(),
		SampleRate:  b.sampleRate,
	}
}

// AsFloat32Buffer interleaves the samples into a go-audio float buffer.
func (b *SampleBuffer) AsFloat32Buffer() *goaudio.Float32Buffer {
	channels := b.Channels()
	data := make([]float32, b.FrameCount()*channels)

	for ch, samples := range b.channels {
		for f, v := range samples {
			data[f*channels+ch] = v
		}
	}

	return &goaudio.Float32Buffer{
		Format:         b.Format(),
		Data:           data,
		SourceBitDepth: 16,
	}
}

// Source returns a streaming view over the buffer, starting at frame 0.
func (b *SampleBuffer) Source() Source {
	return &bufferSource{buf: b}
}

type bufferSource struct {
	buf   *SampleBuffer
	frame int
}

func (s *bufferSource) SampleRate() int { return s.buf.sampleRate }
func (s *bufferSource) Channels() int   { return s.buf.Channels() }
func (s *bufferSource) BufSize() int    { return 4096 }
func (s *bufferSource) Close() error    { return nil }

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	channels := s.buf.Channels()
	remaining := s.buf.FrameCount() - s.frame

	if remaining <= 0 {
		return 0, io.EOF
	}

	if len(dst) == 0 {
		return 0, nil
	}

	frames := len(dst) / channels
	if frames == 0 {
		return 0, ErrInvalidDstSize
	}
	frames = min(frames, remaining)

	for f := range frames {
		for ch := range channels {
			dst[f*channels+ch] = s.buf.channels[ch][s.frame+f]
		}
	}
	s.frame += frames

	if s.frame >= s.buf.FrameCount() {
		return frames * channels, io.EOF
	}

	return frames * channels, nil
}
