// SPDX-License-Identifier: EPL-2.0

// Package config loads the service configuration from YAML, .env files and
// the environment.
package config
