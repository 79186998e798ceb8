// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "POLICY_GUARD_"

// ApplyEnv loads .env files (if present, without overriding variables that
// are already set) and then applies POLICY_GUARD_* overrides on top of the
// file configuration.
func ApplyEnv(cfg *Config, envFiles ...string) error {
	if len(envFiles) == 0 {
		// Best-effort: a missing .env is normal
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return fmt.Errorf("loading env files: %w", err)
	}

	setString(&cfg.Classifier.URL, "CLASSIFIER_URL")
	setString(&cfg.Classifier.OffsetUnits, "CLASSIFIER_OFFSET_UNITS")
	if err := setBool(&cfg.Classifier.Enabled, "CLASSIFIER_ENABLED"); err != nil {
		return err
	}

	setString(&cfg.Explain.Mode, "EXPLAIN_MODE")
	setString(&cfg.Explain.BaseURL, "EXPLAIN_BASE_URL")
	setString(&cfg.Explain.Model, "EXPLAIN_MODEL")
	setString(&cfg.Explain.PolicyPDF, "POLICY_PDF")
	setString(&cfg.Explain.APIKey, "EXPLAIN_API_KEY")
	if cfg.Explain.APIKey == "" {
		cfg.Explain.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}

	if raw := lookup("MIN_CONFIDENCE"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%sMIN_CONFIDENCE: %w", EnvPrefix, err)
		}
		cfg.Detector.MinConfidence = f
	}
	setString(&cfg.Merge.Mode, "MERGE_MODE")

	setString(&cfg.Server.Addr, "ADDR")
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" && lookup("ADDR") == "" {
		cfg.Server.Addr = ":" + port
	}

	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")

	return ValidateConfig(cfg)
}

func lookup(name string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + name))
}

func setString(dst *string, name string) {
	if v := lookup(name); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, name string) error {
	raw := lookup(name)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
	}
	*dst = b
	return nil
}
