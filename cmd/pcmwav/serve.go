// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ik5/pcmwav"
	"github.com/ik5/pcmwav/internal/metrics"
	"github.com/ik5/pcmwav/internal/server"
	"github.com/ik5/pcmwav/resource"
	"github.com/ik5/pcmwav/speech"
)

func runServe(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "Path to configuration file")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	cfg, logger, err := loadConfig(*configPath, stderr)
	if err != nil {
		return err
	}

	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	logger.Info("Configuration loaded",
		slog.String("address", cfg.HTTP.Addr()),
		slog.Int("sample_rate", cfg.Audio.SampleRate),
		slog.Int("channels", cfg.Audio.Channels),
		slog.Int("target_sample_rate", cfg.Audio.TargetSampleRate),
		slog.Bool("mono", cfg.Audio.Mono),
		slog.String("speech_provider", cfg.Speech.Provider),
		slog.String("log_level", cfg.Logging.Level),
	)

	appMetrics := metrics.New(prometheus.DefaultRegisterer)

	registry := resource.NewRegistry(appMetrics)
	pipeline := pcmwav.New(pcmwav.Options{
		Registry: registry,
		Render:   renderOptions(cfg.Audio),
		Logger:   logger,
		Metrics:  appMetrics,
	})

	// Speech is optional: without a key the API still materializes payloads.
	var synth speech.Synthesizer
	if cfg.Speech.APIKey != "" {
		synth, err = newSynthesizer(ctx, cfg.Speech, logger, appMetrics)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("No speech API key configured, /v1/speech is disabled")
	}

	httpServer := server.NewHTTPServer(server.Options{
		Config:        cfg.HTTP,
		Audio:         cfg.Audio,
		Pipeline:      pipeline,
		Synthesizer:   synth,
		SpeechTimeout: cfg.Speech.GetTimeoutDuration(),
		Metrics:       appMetrics,
		Gatherer:      prometheus.DefaultGatherer,
		Logger:        logger,
	})

	if err := httpServer.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("Received shutdown signal", slog.String("cause", context.Cause(ctx).Error()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Service stopped", slog.Int("live_handles", registry.Len()))

	return nil
}
