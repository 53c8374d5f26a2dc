// SPDX-License-Identifier: EPL-2.0

// Package audio provides the in-memory sample model and the render stage of
// the materialization pipeline.
//
// # Sample Buffers
//
// A SampleBuffer holds one float32 slice per channel, all of equal length:
//
//	buf, err := audio.NewSampleBuffer(24000, [][]float32{samples})
//	frames := buf.FrameCount()
//
// Values produced by the PCM interpreter are in the range [-1.0, 1.0].
// A SampleBuffer is never modified after construction; Channel returns a copy.
// Format and AsFloat32Buffer expose the buffer to github.com/go-audio/audio.
//
// # Source Interface
//
// Source is a pull-based stream of interleaved samples:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// SampleBuffer.Source returns such a stream over a realized buffer.
//
// # Rendering
//
// StartRender drains a Source into a new SampleBuffer on a separate goroutine
// and returns a RenderJob. Wait is the single suspend point; nothing downstream
// may observe the buffer before it returns:
//
//	job := audio.StartRender(ctx, src, audio.RenderOptions{})
//	buf, err := job.Wait()
//
// Canonicalize is the blocking shorthand for a realized buffer. With zero
// RenderOptions the result has the same shape and values as the input, and a
// zero-frame input yields a valid, silent buffer. RenderOptions.SampleRate and
// RenderOptions.Mono insert the Resampler and MonoMixer into the graph.
//
// Every render failure wraps ErrRender. Cancelling the context abandons the
// job at its next read; the partial result is discarded.
//
// # Format Registry
//
// Registry maps input format keys to Decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register("pcm", pcm.Decoder{SampleRate: 24000, Channels: 1})
//	decoder, ok := registry.Get("pcm")
package audio
