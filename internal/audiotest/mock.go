// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// ErrInjected is returned by FailingSource once its budget is spent.
var ErrInjected = errors.New("audiotest: injected failure")

// MockSource is a test helper that generates audio data for testing.
// It implements the audio.Source interface (without importing it to avoid cycles).
type MockSource struct {
	sampleRate   int
	channels     int
	totalSamples int // Total samples to generate (per channel)
	generated    int // Samples generated so far (per channel)
	waveform     func(sample int, channel int) float32
}

// NewMockSource creates a new mock audio source.
// totalSamples is the total number of samples per channel to generate.
func NewMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		waveform:     waveform,
	}
}

// NewSilentSource creates a mock source that generates silence.
func NewSilentSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewConstantSource(sampleRate, channels, totalSamples, 0)
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, totalSamples int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalSamples int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) float32 {
		return value
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }
func (m *MockSource) Close() error    { return nil }

// Reset rewinds the generator.
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.generated >= m.totalSamples {
		return 0, io.EOF
	}

	framesToWrite := min(len(dst)/m.channels, m.totalSamples-m.generated)

	for frame := range framesToWrite {
		sampleIndex := m.generated + frame
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(sampleIndex, ch)
		}
	}

	m.generated += framesToWrite
	samplesWritten := framesToWrite * m.channels

	if m.generated >= m.totalSamples {
		return samplesWritten, io.EOF
	}

	return samplesWritten, nil
}

// FailingSource yields silence for okFrames frames and then ErrInjected.
type FailingSource struct {
	*MockSource
	okFrames int
}

func NewFailingSource(sampleRate, channels, okFrames int) *FailingSource {
	return &FailingSource{
		MockSource: NewSilentSource(sampleRate, channels, math.MaxInt32),
		okFrames:   okFrames,
	}
}

func (f *FailingSource) ReadSamples(dst []float32) (int, error) {
	if f.generated >= f.okFrames {
		return 0, ErrInjected
	}

	limit := min(len(dst), (f.okFrames-f.generated)*f.channels)

	return f.MockSource.ReadSamples(dst[:limit])
}

// GatedSource blocks every read until Release is called, then behaves like
// the wrapped MockSource. Started is closed on the first read.
type GatedSource struct {
	*MockSource
	gate    chan struct{}
	started chan struct{}
	first   bool
}

func NewGatedSource(sampleRate, channels, totalSamples int) *GatedSource {
	return &GatedSource{
		MockSource: NewSilentSource(sampleRate, channels, totalSamples),
		gate:       make(chan struct{}),
		started:    make(chan struct{}),
	}
}

func (g *GatedSource) Started() <-chan struct{} { return g.started }
func (g *GatedSource) Release()                 { close(g.gate) }

func (g *GatedSource) ReadSamples(dst []float32) (int, error) {
	if !g.first {
		g.first = true
		close(g.started)
	}
	<-g.gate

	return g.MockSource.ReadSamples(dst)
}

// PCM16LE packs samples as signed 16-bit little-endian bytes.
func PCM16LE(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}

	return out
}

// Base64PCM returns the standard base64 transport form of PCM16LE(samples...).
func Base64PCM(samples ...int16) string {
	return base64.StdEncoding.EncodeToString(PCM16LE(samples...))
}

// Ramp returns n int16 samples sweeping the full signed range.
func Ramp(n int) []int16 {
	out := make([]int16, n)
	if n == 1 {
		return out
	}

	for i := range out {
		out[i] = int16(math.MinInt16 + i*(math.MaxUint16)/(n-1))
	}

	return out
}
