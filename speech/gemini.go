// SPDX-License-Identifier: EPL-2.0

package speech

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash-preview-tts"
	DefaultGeminiVoice = "Kore"

	// Gemini speech output is fixed at 24 kHz mono 16-bit PCM.
	GeminiSampleRate = 24000
	GeminiChannels   = 1
)

// GeminiConfig configures the Gemini speech client.
type GeminiConfig struct {
	APIKey string
	Model  string
	Voice  string
	// BaseURL overrides the API endpoint, mainly for tests and proxies.
	BaseURL string
}

// Gemini synthesizes speech with the Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	voice   string
	logger  *slog.Logger
	metrics Recorder
}

// NewGemini creates a client. logger and metrics may be nil.
func NewGemini(ctx context.Context, cfg GeminiConfig, logger *slog.Logger, metrics Recorder) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	g := &Gemini{
		client:  client,
		model:   cfg.Model,
		voice:   cfg.Voice,
		logger:  logger,
		metrics: metrics,
	}
	if g.model == "" {
		g.model = DefaultGeminiModel
	}
	if g.voice == "" {
		g.voice = DefaultGeminiVoice
	}

	return g, nil
}

// Synthesize asks Gemini to speak req.Text. The returned audio is re-encoded
// as base64 so it can go straight into the materialization pipeline.
func (g *Gemini) Synthesize(ctx context.Context, req Request) (Audio, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Audio{}, ErrEmptyText
	}

	voice := req.Voice
	if voice == "" {
		voice = g.voice
	}

	start := time.Now()
	audio, err := g.synthesize(ctx, req.Text, voice)
	elapsed := time.Since(start)

	if err != nil {
		g.record("error", elapsed)
		g.logger.Warn("speech synthesis failed",
			slog.String("model", g.model),
			slog.String("voice", voice),
			slog.String("error", err.Error()),
		)
		return Audio{}, err
	}

	g.record("ok", elapsed)
	g.logger.Debug("speech synthesized",
		slog.String("model", g.model),
		slog.String("voice", voice),
		slog.Int("sample_rate", audio.SampleRate),
		slog.Duration("elapsed", elapsed),
	)

	return audio, nil
}

func (g *Gemini) synthesize(ctx context.Context, text, voice string) (Audio, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityAudio)},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(text), config)
	if err != nil {
		return Audio{}, fmt.Errorf("gemini generate content: %w", err)
	}

	blob := firstInlineData(resp)
	if blob == nil || len(blob.Data) == 0 {
		return Audio{}, ErrNoAudio
	}

	rate, channels := pcmLayout(blob.MIMEType)

	return Audio{
		Data:       base64.StdEncoding.EncodeToString(blob.Data),
		SampleRate: rate,
		Channels:   channels,
		MIMEType:   blob.MIMEType,
	}, nil
}

func (g *Gemini) record(status string, elapsed time.Duration) {
	if g.metrics != nil {
		g.metrics.RecordSpeech(status, elapsed.Seconds())
	}
}

func firstInlineData(resp *genai.GenerateContentResponse) *genai.Blob {
	if resp == nil {
		return nil
	}

	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p != nil && p.InlineData != nil {
				return p.InlineData
			}
		}
	}

	return nil
}

// pcmLayout reads the rate and channel count from an L16 media type such as
// "audio/L16;codec=pcm;rate=24000", falling back to the Gemini contract.
func pcmLayout(mimeType string) (rate, channels int) {
	rate, channels = GeminiSampleRate, GeminiChannels

	_, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return rate, channels
	}

	if v, err := strconv.Atoi(params["rate"]); err == nil && v > 0 {
		rate = v
	}

	if v, err := strconv.Atoi(params["channels"]); err == nil && v > 0 {
		channels = v
	}

	return rate, channels
}
