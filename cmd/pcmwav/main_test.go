// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ik5/pcmwav/formats/wav"
	"github.com/ik5/pcmwav/internal/audiotest"
	"github.com/ik5/pcmwav/internal/config"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	return path
}

func readHeader(t *testing.T, path string) wav.Header {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	h, err := wav.ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}

	return h
}

func TestRun_Commands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		stdout  string
		stderr  string
	}{
		{name: "no args", args: nil, wantErr: true, stderr: "Usage:"},
		{name: "version", args: []string{"version"}, stdout: serviceName + " " + serviceVersion},
		{name: "help", args: []string{"help"}, stdout: "Commands:"},
		{name: "unknown", args: []string{"play"}, wantErr: true, stderr: `unknown command "play"`},
		{name: "convert without out", args: []string{"convert"}, wantErr: true, stderr: "-out is required"},
		{name: "bad flag", args: []string{"convert", "-nope"}, wantErr: true, stderr: "flag provided but not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			err := run(t.Context(), tt.args, &stdout, &stderr)

			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, errUsage) {
				t.Errorf("err = %v, want errUsage", err)
			}
			if !strings.Contains(stdout.String(), tt.stdout) {
				t.Errorf("stdout = %q, want it to contain %q", stdout.String(), tt.stdout)
			}
			if !strings.Contains(stderr.String(), tt.stderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.stderr)
			}
		})
	}
}

func TestConvert(t *testing.T) {
	t.Parallel()

	samples := audiotest.Ramp(480)
	raw := audiotest.PCM16LE(samples...)

	var wavInput bytes.Buffer
	if err := wav.WriteWAV16(&wavInput, 16000, samples); err != nil {
		t.Fatalf("WriteWAV16: %v", err)
	}

	tests := []struct {
		name       string
		input      []byte
		args       []string
		wantRate   uint32
		wantChans  uint16
		wantFrames int
	}{
		{
			name:       "base64",
			input:      []byte(base64.StdEncoding.EncodeToString(raw) + "\n"),
			args:       []string{"-format", "base64"},
			wantRate:   24000,
			wantChans:  1,
			wantFrames: 480,
		},
		{
			name:       "raw pcm stereo",
			input:      raw,
			args:       []string{"-format", "pcm", "-rate", "8000", "-channels", "2"},
			wantRate:   8000,
			wantChans:  2,
			wantFrames: 240,
		},
		{
			name:       "raw pcm to mono",
			input:      raw,
			args:       []string{"-format", "PCM", "-rate", "8000", "-channels", "2", "-mono"},
			wantRate:   8000,
			wantChans:  1,
			wantFrames: 240,
		},
		{
			name:       "wav",
			input:      wavInput.Bytes(),
			args:       []string{"-format", "wav"},
			wantRate:   16000,
			wantChans:  1,
			wantFrames: 480,
		},
		{
			name:       "wav resampled",
			input:      wavInput.Bytes(),
			args:       []string{"-format", "wav", "-target-rate", "8000"},
			wantRate:   8000,
			wantChans:  1,
			wantFrames: 240,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := writeFile(t, "input", tt.input)
			out := filepath.Join(t.TempDir(), "out.wav")

			args := append([]string{"convert", "-in", in, "-out", out}, tt.args...)

			var stdout, stderr bytes.Buffer
			if err := run(t.Context(), args, &stdout, &stderr); err != nil {
				t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
			}

			h := readHeader(t, out)
			if h.SampleRate != tt.wantRate || h.NumChannels != tt.wantChans {
				t.Errorf("layout = %d Hz x %d, want %d Hz x %d", h.SampleRate, h.NumChannels, tt.wantRate, tt.wantChans)
			}
			// Resampling may trim or pad a frame at the tail.
			if diff := h.Frames() - tt.wantFrames; diff < -1 || diff > 1 {
				t.Errorf("frames = %d, want %d", h.Frames(), tt.wantFrames)
			}
			if !strings.Contains(stderr.String(), "converted") {
				t.Errorf("stderr = %q, want a converted log line", stderr.String())
			}
		})
	}
}

func TestConvert_Stdout(t *testing.T) {
	t.Parallel()

	in := writeFile(t, "input.b64", []byte("/38AgA=="))

	var stdout, stderr bytes.Buffer
	err := run(t.Context(), []string{"convert", "-in", in, "-out", "-", "-rate", "8000"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if stdout.Len() != wav.HeaderSize+4 {
		t.Fatalf("stdout has %d bytes, want %d", stdout.Len(), wav.HeaderSize+4)
	}

	h, err := wav.ParseHeader(stdout.Bytes())
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.ByteRate != 16000 || h.BlockAlign != 2 {
		t.Errorf("ByteRate = %d, BlockAlign = %d", h.ByteRate, h.BlockAlign)
	}
}

func TestConvert_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		args  []string
		want  string
	}{
		{name: "unknown format", input: "AAAA", args: []string{"-format", "flac"}, want: `unknown input format "flac"`},
		{name: "bad base64", input: "!!!!", args: nil, want: "malformed transport encoding"},
		{name: "partial frame", input: "AAA", args: []string{"-format", "pcm", "-channels", "2"}, want: "malformed PCM payload"},
		{name: "not wav", input: "hello world", args: []string{"-format", "wav"}, want: "decoding wav input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := writeFile(t, "input", []byte(tt.input))
			out := filepath.Join(t.TempDir(), "out.wav")

			var stdout, stderr bytes.Buffer
			err := run(t.Context(), append([]string{"convert", "-in", in, "-out", out}, tt.args...), &stdout, &stderr)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want it to contain %q", err, tt.want)
			}
			if _, statErr := os.Stat(out); !errors.Is(statErr, os.ErrNotExist) {
				t.Errorf("output written on failure (stat err %v)", statErr)
			}
		})
	}
}

func TestConvert_MissingInput(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run(t.Context(), []string{"convert", "-in", filepath.Join(t.TempDir(), "nope"), "-out", "x.wav"}, &stdout, &stderr)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
}

func TestSpeak(t *testing.T) {
	pcm := audiotest.PCM16LE(audiotest.Ramp(240)...)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{"content": map[string]any{
				"role": "model",
				"parts": []any{map[string]any{"inlineData": map[string]any{
					"mimeType": "audio/L16;codec=pcm;rate=24000",
					"data":     base64.StdEncoding.EncodeToString(pcm),
				}}},
			}}},
		})
	}))
	t.Cleanup(srv.Close)

	t.Setenv(config.EnvGeminiAPIKey, "test-key")

	cfgPath := writeFile(t, "config.yaml", []byte("speech:\n  base_url: "+srv.URL+"\n"))
	out := filepath.Join(t.TempDir(), "speech.wav")

	var stdout, stderr bytes.Buffer
	err := run(t.Context(), []string{"speak", "-config", cfgPath, "-out", out, "hello", "there"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	h := readHeader(t, out)
	if h.SampleRate != 24000 || h.NumChannels != 1 || h.Frames() != 240 {
		t.Errorf("header = %+v", h)
	}
}

func TestSpeak_MissingKey(t *testing.T) {
	t.Setenv(config.EnvGeminiAPIKey, "")

	var stdout, stderr bytes.Buffer
	err := run(t.Context(), []string{"speak", "-out", filepath.Join(t.TempDir(), "x.wav"), "hi"}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), config.EnvGeminiAPIKey) {
		t.Fatalf("err = %v, want a hint naming %s", err, config.EnvGeminiAPIKey)
	}
}

func TestInitLogger(t *testing.T) {
	t.Parallel()

	logPath := filepath.Join(t.TempDir(), "app.log")

	tests := []struct {
		name   string
		cfg    config.LoggingConfig
		level  slog.Level
		toFile bool
		json   bool
	}{
		{name: "default", cfg: config.LoggingConfig{}, level: slog.LevelInfo},
		{name: "debug json", cfg: config.LoggingConfig{Level: "debug", Format: "json"}, level: slog.LevelDebug, json: true},
		{name: "warn", cfg: config.LoggingConfig{Level: "warn"}, level: slog.LevelWarn},
		{name: "error to file", cfg: config.LoggingConfig{Level: "error", Output: logPath}, level: slog.LevelError, toFile: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			logger := initLogger(tt.cfg, &stderr)

			ctx := t.Context()
			if !logger.Enabled(ctx, tt.level) {
				t.Errorf("level %v disabled", tt.level)
			}
			if tt.level > slog.LevelDebug && logger.Enabled(ctx, tt.level-4) {
				t.Errorf("level %v enabled", tt.level-4)
			}

			logger.Log(ctx, tt.level, "hello")

			got := stderr.String()
			if tt.toFile {
				data, err := os.ReadFile(logPath)
				if err != nil {
					t.Fatalf("read log file: %v", err)
				}
				got = string(data)
			}
			if !strings.Contains(got, "hello") {
				t.Errorf("log output = %q", got)
			}
			if tt.json && !strings.HasPrefix(got, "{") {
				t.Errorf("want JSON output, got %q", got)
			}
		})
	}
}
