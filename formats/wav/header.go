// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

const (
	// HeaderSize of the canonical RIFF/WAVE header written by this package.
	HeaderSize = 44

	fmtChunkSize   = 16
	formatPCM      = 1
	bitsPerSample  = 16
	bytesPerSample = bitsPerSample / 8

	// ChunkSize counts everything after the RIFF size field: "WAVE", the fmt
	// chunk and the data chunk header.
	riffOverhead = HeaderSize - 8
)

// Header holds the fields of a canonical 44-byte PCM header.
type Header struct {
	ChunkSize     uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataSize      uint32
}

// newHeader derives every field from the layout and payload length.
func newHeader(sampleRate, channels int, dataSize uint32) Header {
	blockAlign := uint16(channels * bytesPerSample)

	return Header{
		ChunkSize:     riffOverhead + dataSize,
		AudioFormat:   formatPCM,
		NumChannels:   uint16(channels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * uint32(blockAlign),
		BlockAlign:    blockAlign,
		BitsPerSample: bitsPerSample,
		DataSize:      dataSize,
	}
}

// Frames is the number of sample frames in the data chunk.
func (h Header) Frames() int {
	if h.BlockAlign == 0 {
		return 0
	}

	return int(h.DataSize / uint32(h.BlockAlign))
}

func (h Header) Duration() time.Duration {
	if h.SampleRate == 0 {
		return 0
	}

	return time.Duration(h.Frames()) * time.Second / time.Duration(h.SampleRate)
}

// put writes h into dst, which must hold at least HeaderSize bytes.
func (h Header) put(dst []byte) {
	copy(dst[0:4], "RIFF")
	binary.LittleEndian.PutUint32(dst[4:8], h.ChunkSize)
	copy(dst[8:12], "WAVE")

	copy(dst[12:16], "fmt ")
	binary.LittleEndian.PutUint32(dst[16:20], fmtChunkSize)
	binary.LittleEndian.PutUint16(dst[20:22], h.AudioFormat)
	binary.LittleEndian.PutUint16(dst[22:24], h.NumChannels)
	binary.LittleEndian.PutUint32(dst[24:28], h.SampleRate)
	binary.LittleEndian.PutUint32(dst[28:32], h.ByteRate)
	binary.LittleEndian.PutUint16(dst[32:34], h.BlockAlign)
	binary.LittleEndian.PutUint16(dst[34:36], h.BitsPerSample)

	copy(dst[36:40], "data")
	binary.LittleEndian.PutUint32(dst[40:44], h.DataSize)
}

// checkLayout rejects layouts that cannot be expressed in a canonical header.
func checkLayout(sampleRate, channels, samples int) (uint32, error) {
	if sampleRate <= 0 || uint64(sampleRate) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: sample rate %d", ErrUnsupportedWavLayout, sampleRate)
	}

	if channels <= 0 || channels*bytesPerSample > math.MaxUint16 {
		return 0, fmt.Errorf("%w: %d channels", ErrUnsupportedWavLayout, channels)
	}

	dataSize := uint64(samples) * bytesPerSample
	if dataSize > math.MaxUint32-riffOverhead {
		return 0, fmt.Errorf("%w: %d data bytes", ErrDocumentTooLarge, dataSize)
	}

	if uint64(sampleRate)*uint64(channels*bytesPerSample) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: byte rate overflows for %d Hz x %d channels",
			ErrUnsupportedWavLayout, sampleRate, channels)
	}

	return uint32(dataSize), nil
}

// ParseHeader reads and validates the canonical 44-byte header at the start of data.
// Only the layout this package writes is accepted: fmt immediately followed by data.
// Use Decode for arbitrary WAV files.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes is shorter than a header", ErrNotWavFile, len(data))
	}

	if !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return Header{}, ErrNotWavFile
	}

	if !bytes.Equal(data[12:16], []byte("fmt ")) || binary.LittleEndian.Uint32(data[16:20]) != fmtChunkSize {
		return Header{}, ErrUnsupportedWavLayout
	}

	h := Header{
		ChunkSize:     binary.LittleEndian.Uint32(data[4:8]),
		AudioFormat:   binary.LittleEndian.Uint16(data[20:22]),
		NumChannels:   binary.LittleEndian.Uint16(data[22:24]),
		SampleRate:    binary.LittleEndian.Uint32(data[24:28]),
		ByteRate:      binary.LittleEndian.Uint32(data[28:32]),
		BlockAlign:    binary.LittleEndian.Uint16(data[32:34]),
		BitsPerSample: binary.LittleEndian.Uint16(data[34:36]),
	}

	if h.AudioFormat != formatPCM || h.BitsPerSample != bitsPerSample {
		return Header{}, ErrOnlyPCM16bitSupported
	}

	if !bytes.Equal(data[36:40], []byte("data")) {
		return Header{}, ErrUnsupportedWavChunks
	}

	h.DataSize = binary.LittleEndian.Uint32(data[40:44])

	if _, err := checkLayout(int(h.SampleRate), int(h.NumChannels), int(h.DataSize/bytesPerSample)); err != nil {
		return Header{}, err
	}

	want := newHeader(int(h.SampleRate), int(h.NumChannels), h.DataSize)
	switch {
	case h.BlockAlign != want.BlockAlign:
		return Header{}, fmt.Errorf("%w: block align %d, want %d", ErrHeaderMismatch, h.BlockAlign, want.BlockAlign)
	case h.ByteRate != want.ByteRate:
		return Header{}, fmt.Errorf("%w: byte rate %d, want %d", ErrHeaderMismatch, h.ByteRate, want.ByteRate)
	case h.ChunkSize != want.ChunkSize:
		return Header{}, fmt.Errorf("%w: chunk size %d, want %d", ErrHeaderMismatch, h.ChunkSize, want.ChunkSize)
	case h.DataSize%uint32(h.BlockAlign) != 0:
		return Header{}, fmt.Errorf("%w: data size %d is not a whole number of frames", ErrHeaderMismatch, h.DataSize)
	}

	return h, nil
}
