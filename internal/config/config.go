// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default output settings
	Defaults struct {
		Format  string `yaml:"format"`
		Verbose bool   `yaml:"verbose"`
		Debug   bool   `yaml:"debug"`
		NoColor bool   `yaml:"no_color"`
	} `yaml:"defaults"`

	Detector DetectorConfig `yaml:"detector"`

	Merge MergeConfig `yaml:"merge"`

	Classifier ClassifierConfig `yaml:"classifier"`

	Explain ExplainConfig `yaml:"explain"`

	Server struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	// Profiles for different scanning scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// DetectorConfig controls the dual-source detector
type DetectorConfig struct {
	MinConfidence float64  `yaml:"min_confidence"`
	Patterns      []string `yaml:"patterns"` // EMAIL, PHONE, CREDIT_CARD or "all"
}

// MergeConfig controls the span merger
type MergeConfig struct {
	Mode   string `yaml:"mode"` // strict or whitespace_gap
	MaxGap int    `yaml:"max_gap"`
}

// RetrySettings is the YAML form of resilience.RetryConfig
type RetrySettings struct {
	MaxRetries       int           `yaml:"max_retries"`
	InitialInterval  time.Duration `yaml:"initial_interval"`
	MaxInterval      time.Duration `yaml:"max_interval"`
	FailureThreshold int           `yaml:"failure_threshold"` // circuit breaker
	OpenTimeout      time.Duration `yaml:"open_timeout"`      // circuit breaker
}

// ClassifierConfig points at the token-classification sidecar
type ClassifierConfig struct {
	Enabled     bool          `yaml:"enabled"`
	URL         string        `yaml:"url"`
	Timeout     time.Duration `yaml:"timeout"`
	OffsetUnits string        `yaml:"offset_units"` // rune or byte
	Retry       RetrySettings `yaml:"retry"`
}

// ExplainConfig selects and configures the explanation collaborator
type ExplainConfig struct {
	Mode            string            `yaml:"mode"` // llm, static or none
	BaseURL         string            `yaml:"base_url"`
	Model           string            `yaml:"model"`
	APIKey          string            `yaml:"api_key"`
	PolicyPDF       string            `yaml:"policy_pdf"`
	MaxContextChars int               `yaml:"max_context_chars"`
	Timeout         time.Duration     `yaml:"timeout"`
	Concurrency     int               `yaml:"concurrency"`
	Static          map[string]string `yaml:"static"` // category -> explanation
	Retry           RetrySettings     `yaml:"retry"`
}

// Profile overrides scan settings for a named scenario
type Profile struct {
	Description   string   `yaml:"description"`
	Format        string   `yaml:"format"`
	MinConfidence *float64 `yaml:"min_confidence"`
	Patterns      []string `yaml:"patterns"`
	MergeMode     string   `yaml:"merge_mode"`
	ExplainMode   string   `yaml:"explain_mode"`
	Classifier    *bool    `yaml:"classifier_enabled"`
}

// LoadConfig loads configuration from the specified file path. An empty path
// yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := defaultConfig()

	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func defaultConfig() *Config {
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	config.Defaults.Format = "text"

	config.Detector.MinConfidence = 0.15
	config.Detector.Patterns = []string{"all"}

	config.Merge.Mode = "strict"
	config.Merge.MaxGap = 1

	config.Classifier.Enabled = true
	config.Classifier.URL = "http://localhost:8001"
	config.Classifier.Timeout = 10 * time.Second
	config.Classifier.OffsetUnits = "rune"
	config.Classifier.Retry = RetrySettings{
		MaxRetries:       2,
		InitialInterval:  200 * time.Millisecond,
		MaxInterval:      2 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}

	config.Explain.Mode = "llm"
	config.Explain.BaseURL = "http://localhost:11434/v1"
	config.Explain.Model = "llama3.1"
	config.Explain.MaxContextChars = 12000
	config.Explain.Timeout = 60 * time.Second
	config.Explain.Concurrency = 4
	config.Explain.Static = make(map[string]string)
	config.Explain.Retry = RetrySettings{
		MaxRetries:       1,
		InitialInterval:  500 * time.Millisecond,
		MaxInterval:      2 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}

	config.Server.Addr = ":8000"
	config.Server.CORSOrigins = []string{"*"}

	config.Logging.Level = "info"
	config.Logging.Format = "text"

	config.Profiles["offline"] = Profile{
		Description: "Regex checks only with table-driven explanations; no sidecars needed",
		ExplainMode: "static",
		Classifier:  boolPtr(false),
	}
	config.Profiles["strict"] = Profile{
		Description:   "Higher classifier threshold for low-noise results",
		MinConfidence: floatPtr(0.5),
	}

	return config
}

func floatPtr(f float64) *float64 { return &f }

func boolPtr(b bool) *bool { return &b }

// FindConfigFile looks for a configuration file in the working directory,
// then in the user configuration directory.
func FindConfigFile() string {
	for _, name := range []string{"policy-guard.yaml", "policy-guard.yml", ".policy-guard.yaml", "config.yaml"} {
		if fileExists(name) {
			return name
		}
	}

	if dir, err := os.UserConfigDir(); err == nil {
		for _, name := range []string{"config.yaml", "config.yml"} {
			candidate := filepath.Join(dir, "policy-guard", name)
			if fileExists(candidate) {
				return candidate
			}
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the sorted profile names
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// ApplyProfile overlays the named profile onto the configuration.
func (c *Config) ApplyProfile(name string) error {
	profile := c.GetProfile(name)
	if profile == nil {
		return fmt.Errorf("profile %q not found (available: %s)", name, strings.Join(c.ListProfiles(), ", "))
	}
	if profile.Format != "" {
		c.Defaults.Format = profile.Format
	}
	if profile.MinConfidence != nil {
		c.Detector.MinConfidence = *profile.MinConfidence
	}
	if len(profile.Patterns) > 0 {
		c.Detector.Patterns = profile.Patterns
	}
	if profile.MergeMode != "" {
		c.Merge.Mode = profile.MergeMode
	}
	if profile.ExplainMode != "" {
		c.Explain.Mode = profile.ExplainMode
	}
	if profile.Classifier != nil {
		c.Classifier.Enabled = *profile.Classifier
	}
	return ValidateConfig(c)
}

// ValidateConfig checks value ranges and enumerations. Enumerated values are
// lower-cased and trimmed in place.
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	config.Merge.Mode = normalizeEnum(config.Merge.Mode)
	config.Classifier.OffsetUnits = normalizeEnum(config.Classifier.OffsetUnits)
	config.Explain.Mode = normalizeEnum(config.Explain.Mode)

	if c := config.Detector.MinConfidence; !(c >= 0 && c <= 1) {
		return fmt.Errorf("detector.min_confidence must be within [0,1], got %v", config.Detector.MinConfidence)
	}

	switch config.Merge.Mode {
	case "strict", "whitespace_gap":
	default:
		return fmt.Errorf("merge.mode must be strict or whitespace_gap, got %q", config.Merge.Mode)
	}
	if config.Merge.MaxGap < 1 {
		return fmt.Errorf("merge.max_gap must be at least 1, got %d", config.Merge.MaxGap)
	}

	switch config.Classifier.OffsetUnits {
	case "rune", "byte":
	default:
		return fmt.Errorf("classifier.offset_units must be rune or byte, got %q", config.Classifier.OffsetUnits)
	}
	if config.Classifier.Enabled && config.Classifier.URL == "" {
		return fmt.Errorf("classifier.url is required when the classifier is enabled")
	}

	switch config.Explain.Mode {
	case "llm", "static", "none":
	default:
		return fmt.Errorf("explain.mode must be llm, static or none, got %q", config.Explain.Mode)
	}
	if config.Explain.Concurrency < 1 {
		return fmt.Errorf("explain.concurrency must be at least 1, got %d", config.Explain.Concurrency)
	}

	for _, p := range config.Detector.Patterns {
		switch strings.ToUpper(strings.TrimSpace(p)) {
		case "ALL", "EMAIL", "PHONE", "CREDIT_CARD":
		default:
			return fmt.Errorf("detector.patterns: unknown pattern %q", p)
		}
	}

	return nil
}

func normalizeEnum(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
