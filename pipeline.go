// SPDX-License-Identifier: EPL-2.0

package pcmwav

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ik5/pcmwav/audio"
	"github.com/ik5/pcmwav/formats/pcm"
	"github.com/ik5/pcmwav/formats/wav"
	"github.com/ik5/pcmwav/resource"
)

// Payload is the raw audio returned by a speech service: base64 of
// interleaved signed 16-bit little-endian PCM plus its declared layout.
type Payload struct {
	Data       string `json:"data"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Recorder receives pipeline measurements. *metrics.Metrics implements it.
type Recorder interface {
	RecordPayload()
	RecordStage(stage string, durationSeconds float64, failed bool)
	RecordDocument(sizeBytes int, durationSeconds float64)
}

// Options configures a Pipeline. Every field is optional.
type Options struct {
	// Registry receives issued documents. A private registry is created when nil.
	Registry *resource.Registry
	// Render is passed to the render job. The zero value is a pass-through.
	Render   audio.RenderOptions
	Logger   *slog.Logger
	Metrics  Recorder
	Progress ProgressFunc
}

// Result of a successful Materialize.
type Result struct {
	Handle   resource.Handle
	Document *wav.Document
}

// Pipeline turns payloads into WAV documents and issues handles for them.
// It is safe for concurrent use; the registry is the only shared state.
type Pipeline struct {
	registry *resource.Registry
	render   audio.RenderOptions
	logger   *slog.Logger
	metrics  Recorder
	progress ProgressFunc
}

func New(opts Options) *Pipeline {
	p := &Pipeline{
		registry: opts.Registry,
		render:   opts.Render,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		progress: opts.Progress,
	}

	if p.registry == nil {
		p.registry = resource.NewRegistry(nil)
	}

	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}

	return p
}

// Registry returns the registry handles are issued from.
func (p *Pipeline) Registry() *resource.Registry { return p.registry }

// Encode runs decode, interpret, render and encode. No handle is issued.
func (p *Pipeline) Encode(ctx context.Context, payload Payload) (*wav.Document, error) {
	return p.encode(ctx, payload, p.progress)
}

// Materialize runs every stage and issues a handle for the resulting document.
// If ctx is done by the time the document is ready, nothing is issued.
func (p *Pipeline) Materialize(ctx context.Context, payload Payload) (Result, error) {
	return p.MaterializeWithProgress(ctx, payload, nil)
}

// MaterializeWithProgress is Materialize with a per-call progress sink that is
// notified in addition to Options.Progress.
func (p *Pipeline) MaterializeWithProgress(ctx context.Context, payload Payload, progress ProgressFunc) (Result, error) {
	sink := p.progress
	if progress != nil {
		sink = joinProgress(p.progress, progress)
	}

	doc, err := p.encode(ctx, payload, sink)
	if err != nil {
		return Result{}, err
	}

	var h resource.Handle
	err = p.stage(StageIssue, sink, func() error {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("request abandoned before issue: %w", context.Cause(ctx))
		}

		h = p.registry.Issue(doc.Bytes(), resource.MIMEWave)

		return nil
	})
	if err != nil {
		return Result{}, err
	}

	p.logger.Info("audio materialized",
		slog.String("handle", h.ID),
		slog.Int("bytes", h.Size),
		slog.Duration("duration", doc.Header().Duration()),
	)

	return Result{Handle: h, Document: doc}, nil
}

func (p *Pipeline) encode(ctx context.Context, payload Payload, sink ProgressFunc) (*wav.Document, error) {
	if p.metrics != nil {
		p.metrics.RecordPayload()
	}

	var (
		raw []byte
		buf *audio.SampleBuffer
		doc *wav.Document
	)

	err := p.stage(StageDecode, sink, func() (err error) {
		raw, err = pcm.DecodeTransport(payload.Data)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(StageInterpret, sink, func() (err error) {
		buf, err = pcm.Interpret(raw, payload.SampleRate, payload.Channels)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(StageRender, sink, func() (err error) {
		buf, err = audio.StartRender(ctx, buf.Source(), p.render).Wait()
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(StageEncode, sink, func() (err error) {
		doc, err = wav.Encode(buf)
		return err
	})
	if err != nil {
		return nil, err
	}

	if p.metrics != nil {
		p.metrics.RecordDocument(doc.Len(), doc.Header().Duration().Seconds())
	}

	return doc, nil
}

// stage runs fn, reports progress and records timing. Failures are terminal.
func (p *Pipeline) stage(s Stage, sink ProgressFunc, fn func() error) error {
	sink.emit(s, StatusStarted, nil)
	start := time.Now()

	err := fn()
	elapsed := time.Since(start)

	if p.metrics != nil {
		p.metrics.RecordStage(string(s), elapsed.Seconds(), err != nil)
	}

	if err != nil {
		p.logger.Warn("pipeline stage failed",
			slog.String("stage", string(s)),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
		sink.emit(s, StatusFailed, err)

		return fmt.Errorf("%s: %w", s, err)
	}

	p.logger.Debug("pipeline stage done",
		slog.String("stage", string(s)),
		slog.Duration("elapsed", elapsed),
	)
	sink.emit(s, StatusDone, nil)

	return nil
}

func joinProgress(fns ...ProgressFunc) ProgressFunc {
	return func(e Event) {
		for _, f := range fns {
			if f != nil {
				f(e)
			}
		}
	}
}
