// SPDX-License-Identifier: EPL-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault_Valid(t *testing.T) {
	t.Parallel()

	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{name: "port too high", mutate: func(c *Config) { c.HTTP.Port = 70000 }, errorMsg: "http config"},
		{name: "zero read timeout", mutate: func(c *Config) { c.HTTP.ReadTimeout = 0 }, errorMsg: "timeouts"},
		{name: "tiny body limit", mutate: func(c *Config) { c.HTTP.MaxBodyBytes = 10 }, errorMsg: "max_body_bytes"},
		{name: "zero sample rate", mutate: func(c *Config) { c.Audio.SampleRate = 0 }, errorMsg: "sample_rate"},
		{name: "no channels", mutate: func(c *Config) { c.Audio.Channels = 0 }, errorMsg: "channels"},
		{name: "negative target rate", mutate: func(c *Config) { c.Audio.TargetSampleRate = -1 }, errorMsg: "target_sample_rate"},
		{name: "negative buffer", mutate: func(c *Config) { c.Audio.BufferSize = -1 }, errorMsg: "buffer_size"},
		{name: "unknown provider", mutate: func(c *Config) { c.Speech.Provider = "polly" }, errorMsg: "provider"},
		{name: "zero speech timeout", mutate: func(c *Config) { c.Speech.Timeout = 0 }, errorMsg: "speech config"},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "trace" }, errorMsg: "level"},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, errorMsg: "format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := Default()
			tt.mutate(c)

			err := c.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}

			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("Validate() = %q, want it to mention %q", err, tt.errorMsg)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvGeminiAPIKey, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
http:
  port: 9090
  address: 127.0.0.1
audio:
  sample_rate: 16000
  target_sample_rate: 8000
  mono: true
speech:
  api_key: from-file
  voice: Puck
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if c.HTTP.Addr() != "127.0.0.1:9090" {
		t.Errorf("Addr = %q", c.HTTP.Addr())
	}

	// Fields absent from the file keep their defaults.
	if c.HTTP.ReadTimeout != 10 || c.Audio.Channels != 1 || c.Speech.Provider != "gemini" {
		t.Errorf("defaults lost: %+v", c)
	}

	if c.Audio.SampleRate != 16000 || c.Audio.TargetSampleRate != 8000 || !c.Audio.Mono {
		t.Errorf("audio = %+v", c.Audio)
	}

	if c.Speech.APIKey != "from-file" || c.Speech.Voice != "Puck" {
		t.Errorf("speech = %+v", c.Speech)
	}

	if c.HTTP.GetWriteTimeout() != time.Minute {
		t.Errorf("GetWriteTimeout = %v", c.HTTP.GetWriteTimeout())
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv(EnvGeminiAPIKey, "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("speech:\n  api_key: from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if c.Speech.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want the environment value", c.Speech.APIKey)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("http: [not, a, map"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("Load of malformed YAML = %v, want parse error", err)
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("audio:\n  channels: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(invalid); err == nil || !strings.Contains(err.Error(), "validation") {
		t.Errorf("Load of invalid config = %v, want validation error", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "PCMWAV_TEST_DOTENV_KEY"
	t.Cleanup(func() { os.Unsetenv(key) })

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(key+"=loaded\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := LoadDotEnv(path, filepath.Join(dir, "absent.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}

	if got := os.Getenv(key); got != "loaded" {
		t.Errorf("%s = %q, want %q", key, got, "loaded")
	}
}
