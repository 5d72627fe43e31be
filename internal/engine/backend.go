// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"text-redact/internal/catalog"
	"text-redact/internal/detector"
	"text-redact/internal/replacement"
)

// Tier identifies one detection backend in the fallback chain, ordered by
// descending capability.
type Tier int

const (
	// TierAdvanced combines the external entity detector with catalog rules.
	TierAdvanced Tier = iota
	// TierRuleBased uses catalog rules only.
	TierRuleBased
	// TierMinimal uses a small, hand-picked set of high-confidence patterns.
	TierMinimal
)

// String returns the tier name used in audit records.
func (t Tier) String() string {
	switch t {
	case TierAdvanced:
		return "advanced"
	case TierRuleBased:
		return "rule_based"
	case TierMinimal:
		return "minimal"
	default:
		return "unknown"
	}
}

// ParseTier converts a tier name to a Tier. Unknown names fall back to the
// advanced tier, which degrades safely through the chain.
func ParseTier(s string) Tier {
	switch s {
	case "rule_based", "rules":
		return TierRuleBased
	case "minimal":
		return TierMinimal
	default:
		return TierAdvanced
	}
}

// backend is one detection strategy. Availability is a constructor-time
// fact: an absent backend is simply not in the engine's chain.
type backend interface {
	Tier() Tier
	redact(text string, categories []catalog.Category, sub *substituter) (Result, error)
}

// substituter carries the per-invocation replacement policy.
type substituter struct {
	tracker    *replacement.Tracker
	pseudonyms bool
	allowed    map[string]bool // exact matched values exempt from redaction
}

// apply replaces each resolved span in text and returns the rebuilt text
// plus per-category counts of the spans actually substituted. Allowlisted
// values are written through unchanged and not counted.
func (s *substituter) apply(text string, spans []detector.Span) (string, map[catalog.Category]int) {
	stats := make(map[catalog.Category]int)
	if len(spans) == 0 {
		return text, stats
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, span := range spans {
		if s.allowed[span.Text] {
			continue
		}
		repl := replacement.Marker(span.Category, span.Source)
		if s.pseudonyms {
			repl = s.tracker.Replacement(span.Category, span.Text, span.Source)
		}
		b.WriteString(text[last:span.Start])
		b.WriteString(repl)
		last = span.End
		stats[span.Category]++
	}
	b.WriteString(text[last:])
	return b.String(), stats
}

// ─── Advanced tier ───────────────────────────────────────────────────────────

// advancedBackend combines external entity detection with catalog rules.
// External candidates are enumerated first, then rule candidates; the
// resolver's longest-wins policy decides conflicts, so neither detector has
// implicit priority.
type advancedBackend struct {
	external *detector.ExternalAdapter
	rules    *detector.Detector
}

func (b *advancedBackend) Tier() Tier { return TierAdvanced }

func (b *advancedBackend) redact(text string, categories []catalog.Category, sub *substituter) (Result, error) {
	external, err := b.external.Detect(text, categories)
	if err != nil {
		return Result{}, fmt.Errorf("external detection: %w", err)
	}
	candidates := append(external, b.rules.Detect(text, categories)...)
	redacted, stats := sub.apply(text, detector.Resolve(candidates))
	return Result{Text: redacted, Stats: stats}, nil
}

// ─── Rule-based tier ─────────────────────────────────────────────────────────

type ruleBackend struct {
	rules *detector.Detector
}

func (b *ruleBackend) Tier() Tier { return TierRuleBased }

func (b *ruleBackend) redact(text string, categories []catalog.Category, sub *substituter) (Result, error) {
	redacted, stats := sub.apply(text, detector.Resolve(b.rules.Detect(text, categories)))
	return Result{Text: redacted, Stats: stats}, nil
}

// ─── Minimal tier ────────────────────────────────────────────────────────────

// minimalPattern is one entry in the last-resort pattern set. The set is
// intentionally small and conservative: every pattern is anchored on literal
// structure so matching cost stays linear on adversarial input.
type minimalPattern struct {
	name     string
	category catalog.Category
	re       *regexp.Regexp
}

type minimalBackend struct {
	patterns []minimalPattern
}

func newMinimalBackend() *minimalBackend {
	return &minimalBackend{patterns: []minimalPattern{
		{"SSN", catalog.CategoryPII, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
		{"EMAIL", catalog.CategoryPII, regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
		{"CREDIT_CARD", catalog.CategoryFinancial, regexp.MustCompile(`\b\d{4}[ -]?\d{4}[ -]?\d{4}[ -]?\d{4}\b`)},
		{"PASSWORD", catalog.CategoryCredentials, regexp.MustCompile(`(?i)\b(?:password|passwd|pwd)\s*[:=]\s*(\S+)`)},
		{"USERNAME", catalog.CategoryCredentials, regexp.MustCompile(`(?i)\b(?:username|login)\s*[:=]\s*(\S+)`)},
	}}
}

func (b *minimalBackend) Tier() Tier { return TierMinimal }

func (b *minimalBackend) redact(text string, categories []catalog.Category, sub *substituter) (Result, error) {
	requested := make(map[catalog.Category]bool, len(categories))
	for _, c := range categories {
		requested[c] = true
	}

	var candidates []detector.Span
	for _, p := range b.patterns {
		if !requested[p.category] {
			continue
		}
		for _, idx := range p.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := idx[0], idx[1]
			if p.re.NumSubexp() > 0 && len(idx) >= 4 && idx[2] >= 0 {
				start, end = idx[2], idx[3]
			}
			matched := text[start:end]
			if strings.TrimSpace(matched) == "" {
				continue
			}
			candidates = append(candidates, detector.Span{
				Start:    start,
				End:      end,
				Text:     matched,
				Category: p.category,
				Source:   p.name,
			})
		}
	}

	redacted, stats := sub.apply(text, detector.Resolve(candidates))
	return Result{Text: redacted, Stats: stats}, nil
}

// sortedCategories returns a stable copy for audit payloads.
func sortedCategories(categories []catalog.Category) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	sort.Strings(out)
	return out
}
