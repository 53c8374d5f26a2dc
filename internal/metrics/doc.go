// SPDX-License-Identifier: EPL-2.0

// Package metrics defines the Prometheus collectors for the pipeline, the
// resource registry, speech synthesis and the HTTP API.
package metrics
