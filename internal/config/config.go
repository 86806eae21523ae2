// Package config provides the configuration schema and loader for the
// driftd conversation drift analysis server.
package config

import "time"

// LogLevel controls log verbosity for the driftd server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for driftd.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader],
// then adjusted from the environment with [ApplyEnv].
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Encoder  EncoderConfig  `yaml:"encoder"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Drift    DriftConfig    `yaml:"drift"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8100").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// EncoderConfig selects and configures the sentence-embedding backend.
type EncoderConfig struct {
	// Name selects the encoder implementation: "ollama" or "openai".
	Name string `yaml:"name"`

	// BaseURL overrides the backend's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates against the backend, where required.
	APIKey string `yaml:"api_key"`

	// Model is the embedding model identifier (e.g., "all-minilm",
	// "text-embedding-3-small"). Overridden by EMBEDDING_MODEL.
	Model string `yaml:"model"`

	// Timeout is the per-request timeout. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// AnalyzerConfig configures the spacyd linguistic-analysis sidecar.
type AnalyzerConfig struct {
	// BaseURL is the sidecar's base URL (default http://localhost:8200).
	BaseURL string `yaml:"base_url"`

	// Timeout is the per-request timeout. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`

	// MaxInFlight caps concurrent parse requests against the sidecar.
	// Zero selects the host's parallelism.
	MaxInFlight int `yaml:"max_in_flight"`
}

// DriftConfig holds the default routing thresholds. Requests may override
// them per call.
type DriftConfig struct {
	// StayThreshold is the similarity above which a message stays on the
	// current branch.
	StayThreshold float64 `yaml:"stay_threshold"`

	// BranchThreshold is the similarity below which a message starts a new
	// cluster.
	BranchThreshold float64 `yaml:"branch_threshold"`
}

// ValidEncoderNames lists the known encoder provider names.
var ValidEncoderNames = []string{"ollama", "openai"}

// Default returns a Config with the built-in defaults: local Ollama
// encoder with the all-minilm model, local spacyd sidecar, and the
// benchmark drift thresholds.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8100",
			LogLevel:   LogInfo,
		},
		Encoder: EncoderConfig{
			Name:  "ollama",
			Model: "all-minilm",
		},
		Drift: DriftConfig{
			StayThreshold:   0.38,
			BranchThreshold: 0.15,
		},
	}
}
