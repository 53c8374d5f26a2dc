// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ik5/pcmwav"
	"github.com/ik5/pcmwav/audio"
	"github.com/ik5/pcmwav/internal/config"
	"github.com/ik5/pcmwav/speech"
)

func runSpeak(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("speak", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "Path to configuration file")
	text := fs.String("text", "", "Text to speak (defaults to the remaining arguments)")
	voice := fs.String("voice", "", "Prebuilt voice name (default from config)")
	out := fs.String("out", "speech.wav", "Output WAV file, - for stdout")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if *text == "" {
		*text = strings.Join(fs.Args(), " ")
	}

	cfg, logger, err := loadConfig(*configPath, stderr)
	if err != nil {
		return err
	}

	synth, err := newSynthesizer(ctx, cfg.Speech, logger, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Speech.GetTimeoutDuration())
	defer cancel()

	got, err := synth.Synthesize(ctx, speech.Request{Text: *text, Voice: *voice})
	if err != nil {
		return err
	}

	p := pcmwav.New(pcmwav.Options{
		Logger: logger,
		Render: renderOptions(cfg.Audio),
		Progress: func(e pcmwav.Event) {
			logger.Debug("progress", slog.String("stage", string(e.Stage)), slog.String("status", string(e.Status)))
		},
	})

	doc, err := p.Encode(ctx, pcmwav.Payload{Data: got.Data, SampleRate: got.SampleRate, Channels: got.Channels})
	if err != nil {
		return err
	}

	if err := writeOutput(*out, doc, stdout); err != nil {
		return err
	}

	logger.Info("speech written",
		slog.String("out", *out),
		slog.Int("bytes", doc.Len()),
		slog.Duration("duration", doc.Header().Duration()),
	)

	return nil
}

// newSynthesizer builds the configured speech provider.
func newSynthesizer(ctx context.Context, cfg config.SpeechConfig, logger *slog.Logger, rec speech.Recorder) (speech.Synthesizer, error) {
	switch cfg.Provider {
	case "gemini":
		g, err := speech.NewGemini(ctx, speech.GeminiConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Voice:   cfg.Voice,
			BaseURL: cfg.BaseURL,
		}, logger, rec)
		if err != nil {
			return nil, fmt.Errorf("%w (set %s or speech.api_key)", err, config.EnvGeminiAPIKey)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported speech provider %q", cfg.Provider)
	}
}

func renderOptions(cfg config.AudioConfig) audio.RenderOptions {
	return audio.RenderOptions{
		SampleRate: cfg.TargetSampleRate,
		Mono:       cfg.Mono,
		BufferSize: cfg.BufferSize,
	}
}
