// SPDX-License-Identifier: EPL-2.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the service exports.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Pipeline metrics
	PayloadsReceived prometheus.Counter
	StageDuration    *prometheus.HistogramVec
	StageFailures    *prometheus.CounterVec
	DocumentSize     prometheus.Histogram
	AudioDuration    prometheus.Histogram

	// Resource handle metrics
	HandlesIssued   prometheus.Counter
	HandlesReleased prometheus.Counter
	ActiveHandles   prometheus.Gauge
	ResidentBytes   prometheus.Gauge

	// Speech synthesis metrics
	SpeechRequests *prometheus.CounterVec
	SpeechDuration prometheus.Histogram

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// New creates all collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		PayloadsReceived: f.NewCounter(prometheus.CounterOpts{
			Name: "pcmwav_payloads_received_total",
			Help: "Total number of raw audio payloads submitted to the pipeline",
		}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pcmwav_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8), // 100us to ~1.6s
		}, []string{"stage"}),
		StageFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pcmwav_stage_failures_total",
			Help: "Total number of pipeline failures by stage",
		}, []string{"stage"}),
		DocumentSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pcmwav_document_size_bytes",
			Help:    "Size of encoded WAV documents",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 14), // 1KB to ~8MB
		}),
		AudioDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pcmwav_audio_duration_seconds",
			Help:    "Playback duration of encoded documents",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to ~2 minutes
		}),

		HandlesIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "pcmwav_handles_issued_total",
			Help: "Total number of resource handles issued",
		}),
		HandlesReleased: f.NewCounter(prometheus.CounterOpts{
			Name: "pcmwav_handles_released_total",
			Help: "Total number of resource handles released",
		}),
		ActiveHandles: f.NewGauge(prometheus.GaugeOpts{
			Name: "pcmwav_active_handles",
			Help: "Current number of live resource handles",
		}),
		ResidentBytes: f.NewGauge(prometheus.GaugeOpts{
			Name: "pcmwav_resident_bytes",
			Help: "Bytes held by live resource handles",
		}),

		SpeechRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pcmwav_speech_requests_total",
			Help: "Total number of speech synthesis requests",
		}, []string{"status"}),
		SpeechDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pcmwav_speech_duration_seconds",
			Help:    "Duration of speech synthesis requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~1 minute
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pcmwav_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pcmwav_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pcmwav_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordPayload increments the payloads received counter
func (m *Metrics) RecordPayload() {
	if m == nil {
		return
	}
	m.PayloadsReceived.Inc()
}

// RecordStage records how long a stage ran and whether it failed
func (m *Metrics) RecordStage(stage string, durationSeconds float64, failed bool) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(durationSeconds)
	if failed {
		m.StageFailures.WithLabelValues(stage).Inc()
	}
}

// RecordDocument records the size and playback length of an encoded document
func (m *Metrics) RecordDocument(sizeBytes int, durationSeconds float64) {
	if m == nil {
		return
	}
	m.DocumentSize.Observe(float64(sizeBytes))
	m.AudioDuration.Observe(durationSeconds)
}

// HandleIssued is called by the resource registry after a handle is created
func (m *Metrics) HandleIssued(sizeBytes int) {
	if m == nil {
		return
	}
	m.HandlesIssued.Inc()
	m.ActiveHandles.Inc()
	m.ResidentBytes.Add(float64(sizeBytes))
}

// HandleReleased is called by the resource registry after a handle is dropped
func (m *Metrics) HandleReleased(sizeBytes int) {
	if m == nil {
		return
	}
	m.HandlesReleased.Inc()
	m.ActiveHandles.Dec()
	m.ResidentBytes.Sub(float64(sizeBytes))
}

// RecordSpeech records a synthesis request outcome
func (m *Metrics) RecordSpeech(status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.SpeechRequests.WithLabelValues(status).Inc()
	m.SpeechDuration.Observe(durationSeconds)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	if m == nil {
		return
	}
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
