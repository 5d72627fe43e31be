// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package catalog owns the regex rule catalog used for sensitive-data
// detection: built-in rules grouped by category, optional persisted custom
// rules, and the category sets implied by each sensitivity level.
package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
)

// Category is a coarse sensitivity classification for detected data.
type Category string

const (
	CategoryPII         Category = "PII"
	CategoryPHI         Category = "PHI"
	CategoryFinancial   Category = "FINANCIAL"
	CategoryCredentials Category = "CREDENTIALS"
	CategoryLocations   Category = "LOCATIONS"
	CategoryWorkplace   Category = "WORKPLACE"
)

// Sensitivity is a named bundle of categories controlling redaction breadth.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// ErrInvalidSensitivity is returned when a sensitivity level is not one of
// low, medium, or high.
var ErrInvalidSensitivity = errors.New("sensitivity level must be 'low', 'medium', or 'high'")

// InvalidPatternError reports a rule whose pattern failed to compile at
// registration time. Bad patterns are rejected up front, never silently
// dropped during matching.
type InvalidPatternError struct {
	Category Category
	Name     string
	Pattern  string
	Cause    error
}

// Error implements the error interface.
func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid pattern for rule %s/%s: %q: %v", e.Category, e.Name, e.Pattern, e.Cause)
}

// Unwrap returns the underlying compile error.
func (e *InvalidPatternError) Unwrap() error {
	return e.Cause
}

// Store persists custom rules. The catalog treats it as an injected
// collaborator; a nil store means custom rules live in memory only.
type Store interface {
	LoadCustomRules() (map[Category]map[string]string, error)
	SaveCustomRule(category Category, name, pattern string) error
	DeleteCustomRule(category Category, name string) error
}

// Rule is a single named detection pattern within a category.
type Rule struct {
	Category Category
	Name     string
	Pattern  *regexp.Regexp
}

// Catalog holds built-in and custom detection rules. Built-in rules are
// fixed at construction; custom rules may be added and removed. A custom
// rule with the same name as a built-in rule in the same category shadows
// the built-in one (last-write-wins) until it is removed.
type Catalog struct {
	mu      sync.RWMutex
	builtin map[Category]map[string]*regexp.Regexp
	custom  map[Category]map[string]*regexp.Regexp
	store   Store
}

// New creates a catalog with the built-in rule set and no store.
func New() *Catalog {
	c, _ := NewWithStore(nil)
	return c
}

// NewWithStore creates a catalog and loads persisted custom rules from the
// store. Rules that fail to compile are skipped and reported through the
// returned error; the catalog is still usable alongside a non-nil error.
func NewWithStore(store Store) (*Catalog, error) {
	c := &Catalog{
		builtin: compileBuiltinRules(),
		custom:  make(map[Category]map[string]*regexp.Regexp),
		store:   store,
	}
	if store == nil {
		return c, nil
	}

	loaded, err := store.LoadCustomRules()
	if err != nil {
		return c, fmt.Errorf("loading custom rules: %w", err)
	}

	var errs []error
	for category, rules := range loaded {
		for name, pattern := range rules {
			re, compileErr := regexp.Compile(pattern)
			if compileErr != nil {
				errs = append(errs, &InvalidPatternError{
					Category: category,
					Name:     name,
					Pattern:  pattern,
					Cause:    compileErr,
				})
				continue
			}
			if c.custom[category] == nil {
				c.custom[category] = make(map[string]*regexp.Regexp)
			}
			c.custom[category][name] = re
		}
	}
	return c, errors.Join(errs...)
}

// RulesFor returns the merged rule set for a category, custom rules
// shadowing built-in rules of the same name. The returned map is a copy.
func (c *Catalog) RulesFor(category Category) map[string]*regexp.Regexp {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rules := make(map[string]*regexp.Regexp)
	for name, re := range c.builtin[category] {
		rules[name] = re
	}
	for name, re := range c.custom[category] {
		rules[name] = re
	}
	return rules
}

// RuleNamesFor returns the rule names for a category in sorted order.
// Detection iterates rules in this order so span enumeration, and therefore
// equal-length overlap tie-breaking, is deterministic.
func (c *Catalog) RuleNamesFor(category Category) []string {
	rules := c.RulesFor(category)
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllCategories returns every category that has at least one rule, sorted.
func (c *Catalog) AllCategories() []Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[Category]bool)
	for category := range c.builtin {
		seen[category] = true
	}
	for category, rules := range c.custom {
		if len(rules) > 0 {
			seen[category] = true
		}
	}

	categories := make([]Category, 0, len(seen))
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	return categories
}

// CategoriesFor returns the categories implied by a sensitivity level.
// Levels are strictly widening: low ⊂ medium ⊂ high.
func (c *Catalog) CategoriesFor(level Sensitivity) ([]Category, error) {
	categories, ok := sensitivityCategories[level]
	if !ok {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidSensitivity, level)
	}
	out := make([]Category, len(categories))
	copy(out, categories)
	return out, nil
}

// ParseSensitivity validates a sensitivity string.
func ParseSensitivity(s string) (Sensitivity, error) {
	level := Sensitivity(s)
	if _, ok := sensitivityCategories[level]; !ok {
		return "", fmt.Errorf("%w: got %q", ErrInvalidSensitivity, s)
	}
	return level, nil
}

// AddCustomRule registers a custom rule, shadowing any built-in rule with
// the same name in the category. The pattern must compile; otherwise an
// *InvalidPatternError is returned and nothing is registered.
func (c *Catalog) AddCustomRule(category Category, name, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return &InvalidPatternError{Category: category, Name: name, Pattern: pattern, Cause: err}
	}

	c.mu.Lock()
	if c.custom[category] == nil {
		c.custom[category] = make(map[string]*regexp.Regexp)
	}
	c.custom[category][name] = re
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.SaveCustomRule(category, name, pattern); err != nil {
			return fmt.Errorf("saving custom rule %s/%s: %w", category, name, err)
		}
	}
	return nil
}

// RemoveCustomRule removes a custom rule. Removing an absent rule is a
// no-op. Built-in rules are never removable; removing a shadowing custom
// rule restores the built-in one.
func (c *Catalog) RemoveCustomRule(category Category, name string) error {
	c.mu.Lock()
	existed := false
	if rules, ok := c.custom[category]; ok {
		if _, existed = rules[name]; existed {
			delete(rules, name)
		}
	}
	c.mu.Unlock()

	if existed && c.store != nil {
		if err := c.store.DeleteCustomRule(category, name); err != nil {
			return fmt.Errorf("deleting custom rule %s/%s: %w", category, name, err)
		}
	}
	return nil
}
