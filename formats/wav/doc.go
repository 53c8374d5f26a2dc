// SPDX-License-Identifier: EPL-2.0

// Package wav encodes sample buffers as 16-bit PCM RIFF/WAVE documents and
// reads them back.
//
// # Encoding
//
// Encode quantizes an audio.SampleBuffer and returns a Document: the complete
// byte stream with a canonical 44-byte header (RIFF, fmt, data; no extension
// chunks) followed by interleaved little-endian samples.
//
//	doc, err := wav.Encode(buf)
//	if err != nil {
//	    // Handle error
//	}
//	os.WriteFile("speech.wav", doc.Bytes(), 0o644)
//
// Every header field is derived from the buffer:
//
//	ChunkSize  = 36 + DataSize
//	ByteRate   = SampleRate * NumChannels * 2
//	BlockAlign = NumChannels * 2
//	DataSize   = frames * NumChannels * 2
//
// Samples are clamped to [-1, 1]; negative values scale by 32768 and positive
// values by 32767, rounding half away from zero. NaN becomes silence.
//
// WriteWAV16 streams already-quantized mono int16 samples with the same header.
//
// # Decoding
//
// ParseHeader validates the canonical header only. Decode and Decoder use
// github.com/go-audio/wav and accept any chunk layout as long as the audio is
// 16-bit PCM.
//
// # Errors
//
//   - ErrNotWavFile: missing RIFF/WAVE markers
//   - ErrUnsupportedWavLayout: unexpected fmt chunk or impossible channel/rate
//   - ErrOnlyPCM16bitSupported: compressed, float or non-16-bit audio
//   - ErrUnsupportedWavChunks: data does not follow fmt directly
//   - ErrHeaderMismatch: derived fields disagree
//   - ErrDocumentTooLarge: payload overflows the 32-bit RIFF size
package wav
