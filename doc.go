// SPDX-License-Identifier: EPL-2.0

// Package pcmwav turns raw speech audio into playable WAV documents.
//
// Speech services return headerless, signed 16-bit little-endian PCM wrapped in
// base64. A Pipeline runs that payload through five stages, strictly in order:
//
//  1. decode: strip the base64 transport (formats/pcm.DecodeTransport)
//  2. interpret: read the bytes as interleaved samples (formats/pcm.Interpret)
//  3. render: drain the samples through an offline render job (audio.StartRender)
//  4. encode: frame the result as RIFF/WAVE (formats/wav.Encode)
//  5. issue: register the bytes and return a handle (resource.Registry.Issue)
//
// # Quick Start
//
//	p := pcmwav.New(pcmwav.Options{Logger: logger})
//
//	res, err := p.Materialize(ctx, pcmwav.Payload{
//	    Data:       resp.Audio,
//	    SampleRate: 24000,
//	    Channels:   1,
//	})
//	if err != nil {
//	    // errors.Is(err, pcmwav.ErrDecode), ErrFormat or ErrRender
//	}
//	defer p.Registry().Release(res.Handle.ID)
//
// Every failure is terminal for the request and nothing partial is returned.
// The pipeline never retries; that is up to the caller.
//
// # Cancellation
//
// The render stage is the only point where Materialize waits. If ctx is done
// before the render job finishes, its result is discarded. The context is
// checked once more before issuing, so an abandoned request never leaves a
// handle behind.
//
// # Progress
//
// Options.Progress receives an Event when each stage starts and when it
// finishes or fails.
package pcmwav
