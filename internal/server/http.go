// SPDX-License-Identifier: EPL-2.0

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ik5/pcmwav"
	"github.com/ik5/pcmwav/internal/config"
	"github.com/ik5/pcmwav/internal/metrics"
	"github.com/ik5/pcmwav/resource"
	"github.com/ik5/pcmwav/speech"
)

const audioPrefix = "/v1/audio/"

// Options wires the HTTP server to its collaborators.
type Options struct {
	Config   config.HTTPConfig
	Audio    config.AudioConfig
	Pipeline *pcmwav.Pipeline
	// Synthesizer backs POST /v1/speech. The route answers 503 when nil.
	Synthesizer speech.Synthesizer
	// SpeechTimeout bounds each synthesis call. Zero leaves only the request context.
	SpeechTimeout time.Duration
	Metrics       *metrics.Metrics
	// Gatherer is exposed on /metrics. prometheus.DefaultGatherer when nil.
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// HTTPServer exposes the materialization pipeline over HTTP
type HTTPServer struct {
	server   *http.Server
	handler  http.Handler
	logger   *slog.Logger
	pipeline *pcmwav.Pipeline
	speech   speech.Synthesizer
	metrics  *metrics.Metrics
	audio    config.AudioConfig
	maxBody  int64

	speechTimeout time.Duration

	startTime time.Time
}

// AudioResponse describes an issued document
type AudioResponse struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	MIME       string    `json:"mime"`
	Size       int       `json:"size"`
	SampleRate int       `json:"sample_rate"`
	Channels   int       `json:"channels"`
	DurationMS int64     `json:"duration_ms"`
	Created    time.Time `json:"created"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPServer creates a new HTTP API server
func NewHTTPServer(opts Options) *HTTPServer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	pipeline := opts.Pipeline
	if pipeline == nil {
		pipeline = pcmwav.New(pcmwav.Options{Logger: logger})
	}

	maxBody := opts.Config.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = config.Default().HTTP.MaxBodyBytes
	}

	h := &HTTPServer{
		logger:        logger,
		pipeline:      pipeline,
		speech:        opts.Synthesizer,
		speechTimeout: opts.SpeechTimeout,
		metrics:       opts.Metrics,
		audio:         opts.Audio,
		maxBody:       maxBody,
		startTime:     time.Now(),
	}

	mux := http.NewServeMux()
	h.setupRoutes(mux, gatherer)
	h.handler = mux

	h.server = &http.Server{
		Addr:         opts.Config.Addr(),
		Handler:      mux,
		ReadTimeout:  opts.Config.GetReadTimeout(),
		WriteTimeout: opts.Config.GetWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	return h
}

// setupRoutes configures HTTP API routes
func (h *HTTPServer) setupRoutes(mux *http.ServeMux, gatherer prometheus.Gatherer) {
	mux.HandleFunc("GET /health", h.withMetrics("/health", h.handleHealth))

	mux.HandleFunc("POST /v1/audio", h.withMetrics("/v1/audio", h.handleAudio))
	mux.HandleFunc("POST /v1/speech", h.withMetrics("/v1/speech", h.handleSpeech))

	// Issued documents: GET/HEAD to fetch, DELETE to release
	docs := http.StripPrefix(audioPrefix, h.pipeline.Registry().Handler())
	mux.HandleFunc(audioPrefix, h.withMetrics(audioPrefix+"{id}", docs.ServeHTTP))

	// Prometheus metrics endpoint (no metrics needed for metrics endpoint)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

// Handler returns the routed handler, mainly for tests
func (h *HTTPServer) Handler() http.Handler { return h.handler }

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(ww, r)

		duration := time.Since(startTime).Seconds()
		h.metrics.RecordHTTPRequest(r.Method, endpoint, fmt.Sprintf("%d", ww.statusCode), duration)

		if ww.statusCode >= 400 {
			errorType := "client_error"
			if ww.statusCode >= 500 {
				errorType = "server_error"
			}
			h.metrics.RecordHTTPError(r.Method, endpoint, errorType)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server in the background
func (h *HTTPServer) Start() error {
	h.logger.Info("Starting HTTP API server",
		slog.String("address", h.server.Addr),
	)

	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping HTTP API server...")

	return h.server.Shutdown(ctx)
}

// handleHealth implements the /health endpoint
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":         "healthy",
		"timestamp":      time.Now().UTC(),
		"uptime":         time.Since(h.startTime).String(),
		"active_handles": h.pipeline.Registry().Len(),
		"speech":         h.speech != nil,
	}

	writeJSON(w, http.StatusOK, health)
}

// handleAudio implements POST /v1/audio
func (h *HTTPServer) handleAudio(w http.ResponseWriter, r *http.Request) {
	var payload pcmwav.Payload
	if !h.decodeBody(w, r, &payload) {
		return
	}

	if payload.SampleRate == 0 {
		payload.SampleRate = h.audio.SampleRate
	}
	if payload.Channels == 0 {
		payload.Channels = h.audio.Channels
	}

	h.materialize(w, r, payload)
}

// handleSpeech implements POST /v1/speech
func (h *HTTPServer) handleSpeech(w http.ResponseWriter, r *http.Request) {
	if h.speech == nil {
		writeError(w, http.StatusServiceUnavailable, "speech synthesis is not configured")
		return
	}

	var req speech.Request
	if !h.decodeBody(w, r, &req) {
		return
	}

	ctx := r.Context()
	if h.speechTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.speechTimeout)
		defer cancel()
	}

	audio, err := h.speech.Synthesize(ctx, req)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, speech.ErrEmptyText) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	h.materialize(w, r, pcmwav.Payload{
		Data:       audio.Data,
		SampleRate: audio.SampleRate,
		Channels:   audio.Channels,
	})
}

func (h *HTTPServer) materialize(w http.ResponseWriter, r *http.Request, payload pcmwav.Payload) {
	res, err := h.pipeline.Materialize(r.Context(), payload)
	if err != nil {
		status := statusFor(err)
		h.logger.Debug("materialize rejected",
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
		writeError(w, status, err.Error())
		return
	}

	hdr := res.Document.Header()
	url := audioPrefix + res.Handle.ID

	w.Header().Set("Location", url)
	writeJSON(w, http.StatusCreated, AudioResponse{
		ID:         res.Handle.ID,
		URL:        url,
		MIME:       res.Handle.MIME,
		Size:       res.Handle.Size,
		SampleRate: int(hdr.SampleRate),
		Channels:   int(hdr.NumChannels),
		DurationMS: hdr.Duration().Milliseconds(),
		Created:    res.Handle.Created.UTC(),
	})
}

func (h *HTTPServer) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, h.maxBody)

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}

	return true
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pcmwav.ErrDecode), errors.Is(err, pcmwav.ErrFormat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, resource.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
