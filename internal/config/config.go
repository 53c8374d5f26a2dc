// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvGeminiAPIKey overrides speech.api_key when set.
const EnvGeminiAPIKey = "GEMINI_API_KEY"

// Config represents the complete service configuration
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Audio   AudioConfig   `yaml:"audio"`
	Speech  SpeechConfig  `yaml:"speech"`
	Logging LoggingConfig `yaml:"logging"`
}

// HTTPConfig contains HTTP API server configuration
type HTTPConfig struct {
	Port         int    `yaml:"port"`
	Address      string `yaml:"address"`
	ReadTimeout  int    `yaml:"read_timeout"`  // seconds
	WriteTimeout int    `yaml:"write_timeout"` // seconds
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// AudioConfig describes incoming payloads and the render graph
type AudioConfig struct {
	// Layout assumed for raw input that does not declare one.
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`

	// Optional render graph; zero values pass audio through unchanged.
	TargetSampleRate int  `yaml:"target_sample_rate"`
	Mono             bool `yaml:"mono"`
	BufferSize       int  `yaml:"buffer_size"`
}

// SpeechConfig contains the speech provider configuration
type SpeechConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Voice    string `yaml:"voice"`
	BaseURL  string `yaml:"base_url"`
	Timeout  int    `yaml:"timeout"` // seconds
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:         8080,
			Address:      "0.0.0.0",
			ReadTimeout:  10,
			WriteTimeout: 60,
			MaxBodyBytes: 32 << 20,
		},
		Audio: AudioConfig{
			SampleRate: 24000,
			Channels:   1,
			BufferSize: 4096,
		},
		Speech: SpeechConfig{
			Provider: "gemini",
			Timeout:  60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads and parses the configuration file on top of Default.
// An empty path skips the file. The environment is applied last.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	config.ApplyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// LoadDotEnv loads KEY=value files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	return nil
}

// ApplyEnv copies secrets from the environment into the configuration.
func (c *Config) ApplyEnv() {
	if key := os.Getenv(EnvGeminiAPIKey); key != "" {
		c.Speech.APIKey = key
	}
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Speech.Validate(); err != nil {
		return fmt.Errorf("speech config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates HTTP configuration
func (h *HTTPConfig) Validate() error {
	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", h.Port)
	}

	if h.ReadTimeout < 1 || h.WriteTimeout < 1 {
		return fmt.Errorf("timeouts must be at least 1 second, got read=%d write=%d", h.ReadTimeout, h.WriteTimeout)
	}

	if h.MaxBodyBytes < 1024 {
		return fmt.Errorf("max_body_bytes must be at least 1024, got %d", h.MaxBodyBytes)
	}

	return nil
}

// Validate validates audio configuration
func (a *AudioConfig) Validate() error {
	if a.SampleRate < 1 {
		return fmt.Errorf("sample_rate must be positive, got %d", a.SampleRate)
	}

	if a.Channels < 1 || a.Channels > 32 {
		return fmt.Errorf("channels must be between 1 and 32, got %d", a.Channels)
	}

	if a.TargetSampleRate < 0 {
		return fmt.Errorf("target_sample_rate cannot be negative, got %d", a.TargetSampleRate)
	}

	if a.BufferSize < 0 {
		return fmt.Errorf("buffer_size cannot be negative, got %d", a.BufferSize)
	}

	return nil
}

// Validate validates speech configuration. The API key is checked when the
// synthesizer is created, so commands that never speak can run without one.
func (s *SpeechConfig) Validate() error {
	if s.Provider != "gemini" {
		return fmt.Errorf("provider must be 'gemini', got '%s'", s.Provider)
	}

	if s.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", s.Timeout)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// Addr returns the listen address
func (h *HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Address, h.Port)
}

// GetReadTimeout returns the read timeout as a time.Duration
func (h *HTTPConfig) GetReadTimeout() time.Duration {
	return time.Duration(h.ReadTimeout) * time.Second
}

// GetWriteTimeout returns the write timeout as a time.Duration
func (h *HTTPConfig) GetWriteTimeout() time.Duration {
	return time.Duration(h.WriteTimeout) * time.Second
}

// GetTimeoutDuration returns the speech request timeout as a time.Duration
func (s *SpeechConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}
