// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the application configuration from YAML, layering
// file values over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// Default settings
	Defaults struct {
		Sensitivity string `yaml:"sensitivity"`
		Markers     bool   `yaml:"markers"` // true disables pseudonyms
		NoColor     bool   `yaml:"no_color"`
		Quiet       bool   `yaml:"quiet"`
	} `yaml:"defaults"`

	// Detection settings. ConfidenceThreshold filters external entity
	// detections; it takes effect only when an embedder wires an
	// EntityDetector via engine.WithExternalDetector. The CLI ships
	// without an external backend, so for it the knob is inert.
	Detection struct {
		ConfidenceThreshold float64 `yaml:"confidence_threshold"`
		MaxChunkSize        int     `yaml:"max_chunk_size"`
	} `yaml:"detection"`

	// Allowlist holds exact values that must never be redacted, such as a
	// support address that detection rules would otherwise match.
	Allowlist []string `yaml:"allowlist"`

	// RulesFile is the YAML file holding persisted custom rules. Empty
	// disables persistence; custom rules then live in memory only.
	RulesFile string `yaml:"rules_file"`

	// AuditLog is the path audit events are appended to. Empty disables
	// the audit log.
	AuditLog string `yaml:"audit_log"`
}

// LoadConfig loads configuration from the specified file path. An empty
// path or a missing file yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	config.Defaults.Sensitivity = "medium"
	config.Detection.ConfidenceThreshold = 0.85
	config.Detection.MaxChunkSize = 100_000

	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, fmt.Errorf("reading config file %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return config, fmt.Errorf("parsing config file %s: %w", configPath, err)
	}

	if config.Detection.ConfidenceThreshold < 0 || config.Detection.ConfidenceThreshold > 1 {
		return config, fmt.Errorf("confidence_threshold must be in [0, 1], got %v",
			config.Detection.ConfidenceThreshold)
	}
	if config.Detection.MaxChunkSize <= 0 {
		config.Detection.MaxChunkSize = 100_000
	}
	return config, nil
}

// FindConfigFile searches standard locations for a configuration file and
// returns the first match, or "" when none exists.
func FindConfigFile() string {
	candidates := []string{
		".text-redact.yaml",
		".text-redact.yml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".text-redact.yaml"),
			filepath.Join(home, ".config", "text-redact", "config.yaml"),
		)
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
