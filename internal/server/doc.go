// SPDX-License-Identifier: EPL-2.0

// Package server provides the HTTP API.
//
// Endpoints:
//
//	POST   /v1/audio       materialize a base64 PCM payload
//	POST   /v1/speech      synthesize text, then materialize it
//	GET    /v1/audio/{id}  fetch an issued WAV document
//	DELETE /v1/audio/{id}  release it
//	GET    /health         liveness and handle count
//	GET    /metrics        Prometheus metrics
//
// Malformed payloads answer 422, render failures 500 and unknown handles 404.
package server
