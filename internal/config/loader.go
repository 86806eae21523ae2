package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of the defaults and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from the environment: EMBEDDING_MODEL replaces
// the encoder model, LOG_LEVEL the log level, and DRIFTD_LISTEN_ADDR the
// listen address. Unset variables leave cfg untouched.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Encoder.Model = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = LogLevel(v)
	}
	if v := os.Getenv("DRIFTD_LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listen_addr must not be empty"))
	}

	if cfg.Encoder.Name != "" && !slices.Contains(ValidEncoderNames, cfg.Encoder.Name) {
		errs = append(errs, fmt.Errorf("encoder.name %q is unknown; valid values: %v", cfg.Encoder.Name, ValidEncoderNames))
	}
	if cfg.Encoder.Name == "openai" && cfg.Encoder.APIKey == "" {
		errs = append(errs, errors.New("encoder.api_key is required for the openai encoder"))
	}

	if cfg.Drift.StayThreshold < cfg.Drift.BranchThreshold {
		errs = append(errs, fmt.Errorf("drift.stay_threshold (%v) must not be below drift.branch_threshold (%v)",
			cfg.Drift.StayThreshold, cfg.Drift.BranchThreshold))
	}
	if cfg.Analyzer.MaxInFlight < 0 {
		errs = append(errs, errors.New("analyzer.max_in_flight must not be negative"))
	}

	return errors.Join(errs...)
}
