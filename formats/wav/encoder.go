// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/pcmwav/audio"
	"github.com/ik5/pcmwav/utils"
)

// Document is a complete RIFF/WAVE byte stream together with its parsed header.
type Document struct {
	data   []byte
	header Header
}

// Bytes returns the encoded document. The slice is shared and must not be modified.
func (d *Document) Bytes() []byte { return d.data }

func (d *Document) Header() Header { return d.header }
func (d *Document) Len() int       { return len(d.data) }

// WriteTo implements io.WriterTo.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.data)
	if err != nil {
		return int64(n), fmt.Errorf("%w", err)
	}

	return int64(n), nil
}

// Encode renders buf as 16-bit PCM with a canonical 44-byte header.
// Samples are written interleaved, frame by frame, after utils.QuantizeInt16.
// Encoding is deterministic: the same buffer always yields the same bytes.
func Encode(buf *audio.SampleBuffer) (*Document, error) {
	if buf == nil {
		return nil, fmt.Errorf("%w: nil buffer", audio.ErrInvalidBuffer)
	}

	channels := buf.Channels()
	frames := buf.FrameCount()

	dataSize, err := checkLayout(buf.SampleRate(), channels, frames*channels)
	if err != nil {
		return nil, err
	}

	h := newHeader(buf.SampleRate(), channels, dataSize)
	out := make([]byte, HeaderSize+int(dataSize))
	h.put(out)

	off := HeaderSize
	for f := range frames {
		for ch := range channels {
			binary.LittleEndian.PutUint16(out[off:], uint16(utils.QuantizeInt16(buf.At(f, ch))))
			off += bytesPerSample
		}
	}

	return &Document{data: out, header: h}, nil
}

// EncodeTo encodes buf and writes the document to w.
func EncodeTo(w io.Writer, buf *audio.SampleBuffer) error {
	doc, err := Encode(buf)
	if err != nil {
		return err
	}

	_, err = doc.WriteTo(w)

	return err
}

// WriteWAV16 writes a mono 16-bit PCM WAV at sampleRate. samples must be int16 PCM.
// Samples are streamed in 8KB chunks so large inputs are never copied whole.
func WriteWAV16(w io.Writer, sampleRate int, samples []int16) error {
	dataSize, err := checkLayout(sampleRate, 1, len(samples))
	if err != nil {
		return err
	}

	header := make([]byte, HeaderSize)
	newHeader(sampleRate, 1, dataSize).put(header)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("%w", err)
	}

	if len(samples) == 0 {
		return nil
	}

	const chunkSize = 4096 // samples per write
	buf := make([]byte, min(len(samples), chunkSize)*bytesPerSample)

	for i := 0; i < len(samples); i += chunkSize {
		chunk := samples[i:min(i+chunkSize, len(samples))]
		buf = buf[:len(chunk)*bytesPerSample]

		for j, s := range chunk {
			binary.LittleEndian.PutUint16(buf[j*2:], uint16(s))
		}

		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	return nil
}
