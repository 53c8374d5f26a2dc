// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/ik5/pcmwav/audio"
	"github.com/ik5/pcmwav/internal/audiotest"
)

func TestInterpret_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		raw        []byte
		sampleRate int
		channels   int
	}{
		{name: "odd byte mono", raw: []byte{0x01, 0x02, 0x03}, sampleRate: 24000, channels: 1},
		{name: "partial stereo frame", raw: make([]byte, 6), sampleRate: 24000, channels: 2},
		{name: "zero rate", raw: make([]byte, 4), sampleRate: 0, channels: 1},
		{name: "negative rate", raw: make([]byte, 4), sampleRate: -8000, channels: 1},
		{name: "zero channels", raw: make([]byte, 4), sampleRate: 24000, channels: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf, err := Interpret(tt.raw, tt.sampleRate, tt.channels)
			if !errors.Is(err, ErrFormat) {
				t.Fatalf("Interpret error = %v, want ErrFormat", err)
			}

			if buf != nil {
				t.Error("Interpret returned a buffer alongside an error")
			}
		})
	}
}

func TestInterpret_Extremes(t *testing.T) {
	t.Parallel()

	buf, err := Interpret([]byte{0xFF, 0x7F, 0x00, 0x80}, 24000, 1)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}

	if buf.FrameCount() != 2 || buf.Channels() != 1 || buf.SampleRate() != 24000 {
		t.Fatalf("got %d frames, %d channels at %d Hz", buf.FrameCount(), buf.Channels(), buf.SampleRate())
	}

	if got, want := buf.At(0, 0), float32(32767.0/32768.0); got != want {
		t.Errorf("At(0,0) = %v, want %v", got, want)
	}

	if got := buf.At(1, 0); got != -1 {
		t.Errorf("At(1,0) = %v, want -1", got)
	}
}

func TestInterpret_Interleaving(t *testing.T) {
	t.Parallel()

	buf, err := Interpret(audiotest.PCM16LE(1, 2, 3, 4, 5, 6), 8000, 2)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}

	if buf.FrameCount() != 3 {
		t.Fatalf("FrameCount = %d, want 3", buf.FrameCount())
	}

	want := [][]float32{
		{1.0 / 32768, 3.0 / 32768, 5.0 / 32768},
		{2.0 / 32768, 4.0 / 32768, 6.0 / 32768},
	}

	for ch := range want {
		for f, w := range want[ch] {
			if got := buf.At(f, ch); got != w {
				t.Errorf("At(%d,%d) = %v, want %v", f, ch, got, w)
			}
		}
	}
}

func TestInterpret_Empty(t *testing.T) {
	t.Parallel()

	buf, err := Interpret(nil, 24000, 2)
	if err != nil {
		t.Fatalf("Interpret(nil): %v", err)
	}

	if buf.FrameCount() != 0 || buf.Channels() != 2 {
		t.Errorf("got %d frames, %d channels; want 0, 2", buf.FrameCount(), buf.Channels())
	}
}

func TestInterpret_Range(t *testing.T) {
	t.Parallel()

	buf, err := Interpret(audiotest.PCM16LE(audiotest.Ramp(1024)...), 16000, 1)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}

	for f := range buf.FrameCount() {
		if v := buf.At(f, 0); v < -1 || v >= 1 {
			t.Fatalf("At(%d,0) = %v outside [-1, 1)", f, v)
		}
	}
}

func TestDecoder(t *testing.T) {
	t.Parallel()

	reg := audio.NewRegistry()
	reg.Register("pcm", Decoder{SampleRate: 24000, Channels: 1})
	reg.Register("base64", TransportDecoder{SampleRate: 24000, Channels: 1})

	tests := []struct {
		format string
		input  string
	}{
		{format: "pcm", input: string(audiotest.PCM16LE(100, -100, 200))},
		{format: "base64", input: audiotest.Base64PCM(100, -100, 200) + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			dec, ok := reg.Get(tt.format)
			if !ok {
				t.Fatalf("format %q not registered", tt.format)
			}

			src, err := dec.Decode(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			defer src.Close()

			buf, err := audio.Canonicalize(t.Context(), mustDrain(t, src), audio.RenderOptions{})
			if err != nil {
				t.Fatalf("Canonicalize: %v", err)
			}

			if buf.FrameCount() != 3 {
				t.Fatalf("FrameCount = %d, want 3", buf.FrameCount())
			}

			if got, want := buf.At(1, 0), float32(-100.0/32768); got != want {
				t.Errorf("At(1,0) = %v, want %v", got, want)
			}
		})
	}
}

func TestDecoder_Errors(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{SampleRate: 24000, Channels: 1}).Decode(strings.NewReader("abc")); !errors.Is(err, ErrFormat) {
		t.Errorf("odd-length PCM error = %v, want ErrFormat", err)
	}

	if _, err := (TransportDecoder{SampleRate: 24000, Channels: 1}).Decode(strings.NewReader("!!!!")); !errors.Is(err, ErrDecode) {
		t.Errorf("bad transport error = %v, want ErrDecode", err)
	}

	readErr := errors.New("disk gone")
	if _, err := (Decoder{SampleRate: 24000, Channels: 1}).Decode(iotest.ErrReader(readErr)); !errors.Is(err, readErr) {
		t.Errorf("reader error = %v, want %v", err, readErr)
	}
}

func mustDrain(t *testing.T, src audio.Source) *audio.SampleBuffer {
	t.Helper()

	buf, err := audio.StartRender(t.Context(), src, audio.RenderOptions{}).Wait()
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	return buf
}

func BenchmarkInterpret(b *testing.B) {
	raw := audiotest.PCM16LE(audiotest.Ramp(48000)...)

	b.ReportAllocs()
	for b.Loop() {
		if _, err := Interpret(raw, 24000, 2); err != nil {
			b.Fatal(err)
		}
	}
}
