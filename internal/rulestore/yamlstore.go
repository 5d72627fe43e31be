// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package rulestore persists custom detection rules to a YAML file. It
// implements catalog.Store so the catalog can load user rules at startup
// and keep the file in sync as rules are added and removed.
package rulestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"text-redact/internal/catalog"
)

// YAMLStore stores custom rules as a two-level YAML map:
//
//	PII:
//	  EMPLOYEE_BADGE: 'BADGE-\d{6}'
type YAMLStore struct {
	mu   sync.Mutex
	path string
}

// New creates a store backed by the YAML file at path. The file does not
// need to exist yet; it is created on first save.
func New(path string) *YAMLStore {
	return &YAMLStore{path: path}
}

// LoadCustomRules reads all persisted rules. A missing file is an empty
// rule set, not an error.
func (s *YAMLStore) LoadCustomRules() (map[catalog.Category]map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// SaveCustomRule adds or replaces one rule and rewrites the file.
func (s *YAMLStore) SaveCustomRule(category catalog.Category, name, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.load()
	if err != nil {
		return err
	}
	if rules[category] == nil {
		rules[category] = make(map[string]string)
	}
	rules[category][name] = pattern
	return s.write(rules)
}

// DeleteCustomRule removes one rule; deleting an absent rule is a no-op.
func (s *YAMLStore) DeleteCustomRule(category catalog.Category, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.load()
	if err != nil {
		return err
	}
	byName, ok := rules[category]
	if !ok {
		return nil
	}
	if _, ok := byName[name]; !ok {
		return nil
	}
	delete(byName, name)
	if len(byName) == 0 {
		delete(rules, category)
	}
	return s.write(rules)
}

func (s *YAMLStore) load() (map[catalog.Category]map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[catalog.Category]map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rule store %s: %w", s.path, err)
	}

	rules := make(map[catalog.Category]map[string]string)
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rule store %s: %w", s.path, err)
	}
	return rules, nil
}

// write rewrites the store atomically: marshal to a temp file in the same
// directory, then rename over the target.
func (s *YAMLStore) write(rules map[catalog.Category]map[string]string) error {
	data, err := yaml.Marshal(rules)
	if err != nil {
		return fmt.Errorf("encoding rule store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating rule store directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".rules-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp rule store: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing rule store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing rule store: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing rule store %s: %w", s.path, err)
	}
	return nil
}
