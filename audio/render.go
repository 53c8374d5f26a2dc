// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"fmt"
	"io"
)

const (
	defaultRenderBufferSize = 4096
	// maxEmptyReads bounds how many (0, nil) reads a source may return in a row.
	maxEmptyReads = 64
)

// RenderOptions shapes the offline render graph. The zero value renders the
// source unchanged.
type RenderOptions struct {
	// SampleRate resamples the output when non-zero and different from the source rate.
	SampleRate int
	// Mono averages all channels into one.
	Mono bool
	// BufferSize is the number of float32 values pulled per read (default 4096).
	BufferSize int
}

// RenderJob is a canonicalization in flight. Wait blocks until it settles.
type RenderJob struct {
	done chan struct{}
	buf  *SampleBuffer
	err  error
}

// StartRender drains src into a fully realized SampleBuffer on its own goroutine.
//
// Cancelling ctx stops the drain at the next read and the job settles with an
// error wrapping both ErrRender and ctx.Err(). The source is not closed.
func StartRender(ctx context.Context, src Source, opts RenderOptions) *RenderJob {
	job := &RenderJob{done: make(chan struct{})}

	go func() {
		defer close(job.done)

		buf, err := render(ctx, src, opts)
		if err != nil {
			job.err = fmt.Errorf("%w: %w", ErrRender, err)
			return
		}
		job.buf = buf
	}()

	return job
}

// Done is closed once the job has settled.
func (j *RenderJob) Done() <-chan struct{} { return j.done }

// Wait blocks until the job settles and returns its result.
func (j *RenderJob) Wait() (*SampleBuffer, error) {
	<-j.done
	return j.buf, j.err
}

// Canonicalize realizes buf through the render graph and waits for the result.
// With zero options the output has the same frame count, channel count and values.
func Canonicalize(ctx context.Context, buf *SampleBuffer, opts RenderOptions) (*SampleBuffer, error) {
	if buf == nil {
		return nil, fmt.Errorf("%w: %w: nil buffer", ErrRender, ErrInvalidBuffer)
	}

	return StartRender(ctx, buf.Source(), opts).Wait()
}

func render(ctx context.Context, src Source, opts RenderOptions) (*SampleBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if src.Channels() <= 0 || src.SampleRate() <= 0 {
		return nil, fmt.Errorf("%w: source reports %d channels at %d Hz",
			ErrInvalidBuffer, src.Channels(), src.SampleRate())
	}

	graph := src
	if opts.SampleRate < 0 {
		return nil, fmt.Errorf("%w: negative target sample rate %d", ErrInvalidBuffer, opts.SampleRate)
	}
	if opts.SampleRate > 0 && opts.SampleRate != graph.SampleRate() {
		graph = NewResampler(graph, opts.SampleRate)
	}
	if opts.Mono && graph.Channels() > 1 {
		graph = NewMonoMixer(graph)
	}

	channels := graph.Channels()
	size := opts.BufferSize
	if size <= 0 {
		size = defaultRenderBufferSize
	}
	size -= size % channels
	if size == 0 {
		size = channels
	}

	out := make([][]float32, channels)
	if bs, ok := graph.(*bufferSource); ok {
		for ch := range out {
			out[ch] = make([]float32, 0, bs.buf.FrameCount())
		}
	}

	buf := make([]float32, size)
	empty := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := graph.ReadSamples(buf)
		if n%channels != 0 {
			return nil, fmt.Errorf("%w: read %d samples for %d channels", ErrInvalidBuffer, n, channels)
		}

		for i := 0; i < n; i += channels {
			for ch := range channels {
				out[ch] = append(out[ch], buf[i+ch])
			}
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return nil, io.ErrNoProgress
			}
			continue
		}
		empty = 0
	}

	for ch := range out {
		if out[ch] == nil {
			out[ch] = []float32{}
		}
	}

	return NewSampleBuffer(graph.SampleRate(), out)
}
