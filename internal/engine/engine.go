// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package engine orchestrates the redaction pipeline: it drives a
// prioritized chain of detection backends, validates each attempt, falls
// back on failure, and guarantees the original text is returned unmodified
// when every tier fails. No internal failure ever escapes Redact.
package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"text-redact/internal/audit"
	"text-redact/internal/catalog"
	"text-redact/internal/detector"
	"text-redact/internal/replacement"
)

// DefaultMaxChunkSize caps how much text one backend invocation processes.
// Larger inputs are split on paragraph boundaries to bound peak memory and
// regex worst-case cost.
const DefaultMaxChunkSize = 100_000

// DefaultConfidenceThreshold filters external entity detections.
const DefaultConfidenceThreshold = 0.85

// Result is the outcome of one redaction invocation. Stats counts resolved
// spans actually substituted into the output, per category. An empty Stats
// with non-empty input and Text equal to the input signals the degraded
// all-tiers-failed outcome; callers should warn rather than assume success.
type Result struct {
	Text  string
	Stats map[catalog.Category]int
}

// Total returns the number of substitutions across all categories.
func (r Result) Total() int {
	total := 0
	for _, n := range r.Stats {
		total += n
	}
	return total
}

// Options adjusts a single Redact call.
type Options struct {
	// Categories to redact. Nil derives the set from Sensitivity.
	Categories []catalog.Category

	// Sensitivity overrides the engine default when non-empty. An unknown
	// level is a caller error, surfaced from Redact.
	Sensitivity string

	// PreferredTier is the first tier to try. The zero value is
	// TierAdvanced; the chain degrades from there.
	PreferredTier Tier

	// Markers forces deterministic "[CATEGORY:TYPE]" markers instead of
	// pseudonyms for this call.
	Markers bool

	// Tracker carries entity replacements across documents when the caller
	// wants multi-document consistency. Nil uses a fresh per-call tracker.
	Tracker *replacement.Tracker
}

// Engine is the redaction orchestrator.
type Engine struct {
	catalog  *catalog.Catalog
	rules    *detector.Detector
	external *detector.ExternalAdapter // nil when no backend was injected
	sink     audit.Sink

	mu          sync.Mutex
	sensitivity catalog.Sensitivity

	pseudonyms   bool
	maxChunkSize int
	allowlist    map[string]bool
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithExternalDetector wires an external entity-detection backend into the
// advanced tier, filtering detections below the confidence threshold.
// Without this option the engine starts at the rule-based tier.
func WithExternalDetector(backend detector.EntityDetector, threshold float64) Option {
	return func(e *Engine) {
		if backend != nil {
			e.external = detector.NewExternalAdapter(backend, threshold)
		}
	}
}

// WithAuditSink sets the audit event sink.
func WithAuditSink(sink audit.Sink) Option {
	return func(e *Engine) {
		if sink != nil {
			e.sink = sink
		}
	}
}

// WithMarkers disables pseudonym generation by default; replacements become
// deterministic "[CATEGORY:TYPE]" markers.
func WithMarkers() Option {
	return func(e *Engine) { e.pseudonyms = false }
}

// WithAllowlist exempts exact matched values from redaction. An allowlisted
// value passes through every tier unchanged and is not counted in stats.
func WithAllowlist(values []string) Option {
	return func(e *Engine) {
		if len(values) == 0 {
			return
		}
		e.allowlist = make(map[string]bool, len(values))
		for _, v := range values {
			if v != "" {
				e.allowlist[v] = true
			}
		}
	}
}

// WithMaxChunkSize overrides the chunking threshold.
func WithMaxChunkSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxChunkSize = n
		}
	}
}

// New creates an engine over the given catalog. Defaults: medium
// sensitivity, pseudonyms enabled, no external backend, no-op audit sink.
func New(c *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:      c,
		rules:        detector.New(c),
		sink:         audit.NopSink{},
		sensitivity:  catalog.SensitivityMedium,
		pseudonyms:   true,
		maxChunkSize: DefaultMaxChunkSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetSensitivity sets the default sensitivity level for calls that pass
// neither categories nor a per-call sensitivity.
func (e *Engine) SetSensitivity(level string) error {
	parsed, err := catalog.ParseSensitivity(level)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.sensitivity = parsed
	e.mu.Unlock()
	return nil
}

// Sensitivity returns the current default sensitivity level.
func (e *Engine) Sensitivity() catalog.Sensitivity {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sensitivity
}

// Redact locates sensitive spans in text and substitutes them. The only
// returned error is malformed caller input (an invalid sensitivity level);
// every internal failure degrades through the tier chain, and when all
// tiers fail the original text comes back with empty stats.
func (e *Engine) Redact(text string, opts Options) (Result, error) {
	categories, err := e.resolveCategories(opts)
	if err != nil {
		return Result{}, err
	}

	e.sink.Record("redact_start", map[string]any{
		"length":         len(text),
		"categories":     sortedCategories(categories),
		"preferred_tier": opts.PreferredTier.String(),
	})

	if text == "" {
		result := Result{Text: "", Stats: make(map[catalog.Category]int)}
		e.sink.Record("redact_complete", map[string]any{"tier": "none", "total": 0})
		return result, nil
	}

	sub := &substituter{
		tracker:    opts.Tracker,
		pseudonyms: e.pseudonyms && !opts.Markers,
		allowed:    e.allowlist,
	}
	if sub.tracker == nil {
		sub.tracker = replacement.NewTracker()
	}

	var lastErr error
	for _, b := range e.chain(opts.PreferredTier) {
		result, err := e.runTier(b, text, categories, sub)
		if err == nil {
			err = validate(text, result)
		}
		if err != nil {
			lastErr = err
			e.sink.Record("tier_failed", map[string]any{
				"tier":  b.Tier().String(),
				"error": err.Error(),
			})
			continue
		}

		e.sink.Record("redact_complete", map[string]any{
			"tier":  b.Tier().String(),
			"stats": statsPayload(result.Stats),
			"total": result.Total(),
		})
		return result, nil
	}

	// Anti-data-loss guarantee: never return corrupted or partial text.
	if lastErr == nil {
		lastErr = ErrBackendUnavailable
	}
	e.sink.Record("redact_failed", map[string]any{
		"error": errors.Join(ErrAllTiersFailed, lastErr).Error(),
	})
	return Result{Text: text, Stats: make(map[catalog.Category]int)}, nil
}

// Analyze reports detected sensitive values per category without mutating
// the text. Empty input yields an empty map.
func (e *Engine) Analyze(text string) map[catalog.Category][]string {
	found := make(map[catalog.Category][]string)
	if text == "" {
		return found
	}
	spans := detector.Resolve(e.rules.Detect(text, e.catalog.AllCategories()))
	for _, span := range spans {
		found[span.Category] = append(found[span.Category], span.Text)
	}
	return found
}

// ResolvedSpans exposes the disjoint span set for a text so a highlighting
// or preview layer can render matches without mutating anything.
func (e *Engine) ResolvedSpans(text string, categories []catalog.Category) []detector.Span {
	if categories == nil {
		categories = e.catalog.AllCategories()
	}
	return detector.Resolve(e.rules.Detect(text, categories))
}

// resolveCategories derives the category set from the call options.
func (e *Engine) resolveCategories(opts Options) ([]catalog.Category, error) {
	if len(opts.Categories) > 0 {
		out := make([]catalog.Category, len(opts.Categories))
		copy(out, opts.Categories)
		return out, nil
	}

	level := e.Sensitivity()
	if opts.Sensitivity != "" {
		parsed, err := catalog.ParseSensitivity(opts.Sensitivity)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	return e.catalog.CategoriesFor(level)
}

// chain returns the backends to try, starting at the preferred tier.
// Advanced is present only when an external backend was injected at
// construction; its absence degrades to rule-based, never crashes.
func (e *Engine) chain(preferred Tier) []backend {
	var tiers []backend
	if e.external != nil {
		tiers = append(tiers, &advancedBackend{external: e.external, rules: e.rules})
	}
	tiers = append(tiers, &ruleBackend{rules: e.rules}, newMinimalBackend())

	start := 0
	for i, b := range tiers {
		if b.Tier() >= preferred {
			start = i
			break
		}
	}
	return tiers[start:]
}

// runTier executes one backend, chunking oversized input. A chunk that
// fails is passed through unmodified while the other chunks still get
// redacted. When every chunk fails the backend is down, not degraded, so
// the tier as a whole errors and the chain advances; otherwise a chunked
// run under a dead backend would masquerade as a successful no-op.
func (e *Engine) runTier(b backend, text string, categories []catalog.Category, sub *substituter) (Result, error) {
	if len(text) <= e.maxChunkSize {
		return b.redact(text, categories, sub)
	}

	var out strings.Builder
	out.Grow(len(text))
	stats := make(map[catalog.Category]int)

	chunks := splitChunks(text, e.maxChunkSize)
	failed := 0
	var lastErr error
	for _, chunk := range chunks {
		res, err := b.redact(chunk, categories, sub)
		if err != nil {
			failed++
			lastErr = err
			e.sink.Record("chunk_failed", map[string]any{
				"tier":  b.Tier().String(),
				"size":  len(chunk),
				"error": err.Error(),
			})
			out.WriteString(chunk)
			continue
		}
		out.WriteString(res.Text)
		for category, n := range res.Stats {
			stats[category] += n
		}
	}
	if failed > 0 && failed == len(chunks) {
		return Result{}, fmt.Errorf("all %d chunks failed: %w", failed, lastErr)
	}
	return Result{Text: out.String(), Stats: stats}, nil
}

// validate rejects backend output that signals corruption: an empty result
// for non-empty input, or text that changed with no tracked substitutions
// to account for the change.
func validate(input string, result Result) error {
	if input != "" && result.Text == "" {
		return ErrValidationFailed
	}
	if result.Text != input && result.Total() == 0 {
		return ErrValidationFailed
	}
	return nil
}

func statsPayload(stats map[catalog.Category]int) map[string]any {
	payload := make(map[string]any, len(stats))
	for category, n := range stats {
		payload[string(category)] = n
	}
	return payload
}
