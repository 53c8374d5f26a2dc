// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ik5/pcmwav/audio"
	"github.com/ik5/pcmwav/formats/pcm"
	"github.com/ik5/pcmwav/formats/wav"
)

func runConvert(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "Path to configuration file")
	in := fs.String("in", "-", "Input file, - for stdin")
	out := fs.String("out", "", "Output WAV file, - for stdout (required)")
	format := fs.String("format", "base64", "Input format: base64, pcm or wav")
	rate := fs.Int("rate", 0, "Sample rate of base64/pcm input (default from config)")
	channels := fs.Int("channels", 0, "Channel count of base64/pcm input (default from config)")
	targetRate := fs.Int("target-rate", -1, "Resample to this rate, 0 keeps the input rate (default from config)")
	mono := fs.Bool("mono", false, "Mix all channels down to mono")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if *out == "" {
		fmt.Fprintln(stderr, "convert: -out is required")
		fs.Usage()
		return errUsage
	}

	cfg, logger, err := loadConfig(*configPath, stderr)
	if err != nil {
		return err
	}

	if *rate == 0 {
		*rate = cfg.Audio.SampleRate
	}
	if *channels == 0 {
		*channels = cfg.Audio.Channels
	}
	if *targetRate < 0 {
		*targetRate = cfg.Audio.TargetSampleRate
	}

	registry := newDecoderRegistry(*rate, *channels)
	dec, ok := registry.Get(strings.ToLower(*format))
	if !ok {
		return fmt.Errorf("unknown input format %q, want one of %v", *format, registry.Formats())
	}

	r, closeIn, err := openInput(*in)
	if err != nil {
		return err
	}
	defer closeIn()

	src, err := dec.Decode(r)
	if err != nil {
		return fmt.Errorf("decoding %s input: %w", *format, err)
	}
	defer src.Close()

	buf, err := audio.StartRender(ctx, src, audio.RenderOptions{
		SampleRate: *targetRate,
		Mono:       *mono || cfg.Audio.Mono,
		BufferSize: cfg.Audio.BufferSize,
	}).Wait()
	if err != nil {
		return err
	}

	doc, err := wav.Encode(buf)
	if err != nil {
		return err
	}

	if err := writeOutput(*out, doc, stdout); err != nil {
		return err
	}

	logger.Info("converted",
		slog.String("format", *format),
		slog.String("out", *out),
		slog.Int("bytes", doc.Len()),
		slog.Int("sample_rate", buf.SampleRate()),
		slog.Int("channels", buf.Channels()),
		slog.Duration("duration", buf.Duration()),
	)

	return nil
}

// newDecoderRegistry registers every supported input format. Raw formats
// carry no header, so their layout comes from flags or configuration.
func newDecoderRegistry(rate, channels int) *audio.Registry {
	r := audio.NewRegistry()
	r.Register("base64", pcm.TransportDecoder{SampleRate: rate, Channels: channels})
	r.Register("pcm", pcm.Decoder{SampleRate: rate, Channels: channels})
	r.Register("wav", wav.Decoder{})

	return r
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" || path == "" {
		return os.Stdin, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input: %w", err)
	}

	return f, func() { f.Close() }, nil
}

func writeOutput(path string, doc *wav.Document, stdout io.Writer) error {
	if path == "-" {
		_, err := doc.WriteTo(stdout)
		return err
	}

	if err := os.WriteFile(path, doc.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}
