// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"text-redact/internal/catalog"
	"text-redact/internal/detector"
	"text-redact/internal/replacement"
)

// fakeBackend is a scriptable external entity detector.
type fakeBackend struct {
	detect func(text string) ([]detector.Entity, error)
}

func (f *fakeBackend) Detect(text string) ([]detector.Entity, error) {
	return f.detect(text)
}

// recordingSink captures audit event names for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingSink) Record(event string, _ map[string]any) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recordingSink) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

func TestRedact_RuleBased_SSNAndEmail(t *testing.T) {
	eng := New(catalog.New())
	text := "My SSN is 123-45-6789 and my email is john.doe@example.com"

	result, err := eng.Redact(text, Options{
		Categories: []catalog.Category{catalog.CategoryPII},
		Markers:    true,
	})
	require.NoError(t, err)

	assert.NotContains(t, result.Text, "123-45-6789")
	assert.NotContains(t, result.Text, "john.doe@example.com")
	assert.Equal(t, 2, result.Stats[catalog.CategoryPII])
	assert.Contains(t, result.Text, "[PII:SSN]")
	assert.Contains(t, result.Text, "[PII:EMAIL]")
}

func TestRedact_StatsMatchSubstitutions(t *testing.T) {
	eng := New(catalog.New())
	text := "SSN: 111-22-3333, backup 444-55-6666, mail a@b.com"

	result, err := eng.Redact(text, Options{
		Categories: []catalog.Category{catalog.CategoryPII},
		Markers:    true,
	})
	require.NoError(t, err)

	markers := strings.Count(result.Text, "[PII:")
	assert.Equal(t, result.Total(), markers,
		"stats must count exactly the spans substituted into the output")
}

func TestRedact_PseudonymConsistency(t *testing.T) {
	text := "John Smith signed. Witness: John Smith."
	first := strings.Index(text, "John Smith")
	second := strings.LastIndex(text, "John Smith")

	backend := &fakeBackend{detect: func(string) ([]detector.Entity, error) {
		return []detector.Entity{
			{Start: first, End: first + len("John Smith"), Text: "John Smith", Type: "PERSON", Confidence: 0.99},
			{Start: second, End: second + len("John Smith"), Text: "John Smith", Type: "PERSON", Confidence: 0.99},
		}, nil
	}}
	eng := New(catalog.New(), WithExternalDetector(backend, 0.85))

	tracker := replacement.NewTracker()
	result, err := eng.Redact(text, Options{
		Categories: []catalog.Category{catalog.CategoryPII},
		Tracker:    tracker,
	})
	require.NoError(t, err)
	assert.NotContains(t, result.Text, "John Smith")

	// Both occurrences read as the same generated name.
	name := tracker.Replacement(catalog.CategoryPII, "John Smith", "PERSON")
	assert.Equal(t, 2, strings.Count(result.Text, name))
	assert.Equal(t, 2, result.Stats[catalog.CategoryPII])
}

func TestRedact_LongestSpanWinsAcrossDetectors(t *testing.T) {
	text := "Call 555-123-4567 now"
	backend := &fakeBackend{detect: func(string) ([]detector.Entity, error) {
		return []detector.Entity{
			{Start: 0, End: len(text), Text: text, Type: "PERSON", Confidence: 0.99},
		}, nil
	}}
	eng := New(catalog.New(), WithExternalDetector(backend, 0.85))

	result, err := eng.Redact(text, Options{
		Categories: []catalog.Category{catalog.CategoryPII},
		Markers:    true,
	})
	require.NoError(t, err)

	// The 21-byte external span beats the 12-byte rule match and the whole
	// phrase is replaced as one unit.
	assert.Equal(t, "[PII:PERSON]", result.Text)
	assert.Equal(t, 1, result.Stats[catalog.CategoryPII])
}

func TestRedact_AllBackendsFail_ReturnsOriginal(t *testing.T) {
	backend := &fakeBackend{detect: func(string) ([]detector.Entity, error) {
		return nil, errors.New("backend down")
	}}
	sink := &recordingSink{}
	eng := New(catalog.New(), WithExternalDetector(backend, 0.85), WithAuditSink(sink))

	// No rule matches this text, so the surviving tiers find nothing and
	// the caller gets the input back untouched with empty stats.
	result, err := eng.Redact("sensitive text", Options{})
	require.NoError(t, err)
	assert.Equal(t, "sensitive text", result.Text)
	assert.Empty(t, result.Stats)
	assert.True(t, sink.has("tier_failed"), "failed advanced tier should be audited")
}

func TestRedact_FallsBackToRulesOnExternalError(t *testing.T) {
	backend := &fakeBackend{detect: func(string) ([]detector.Entity, error) {
		return nil, errors.New("model crashed")
	}}
	sink := &recordingSink{}
	eng := New(catalog.New(), WithExternalDetector(backend, 0.85), WithAuditSink(sink))

	result, err := eng.Redact("SSN: 123-45-6789", Options{
		Categories: []catalog.Category{catalog.CategoryPII},
		Markers:    true,
	})
	require.NoError(t, err)

	assert.NotContains(t, result.Text, "123-45-6789")
	assert.Equal(t, 1, result.Stats[catalog.CategoryPII])
	assert.True(t, sink.has("tier_failed"))
	assert.True(t, sink.has("redact_complete"))
}

func TestRedact_MarkerOutputIsIdempotent(t *testing.T) {
	eng := New(catalog.New())
	opts := Options{Categories: []catalog.Category{catalog.CategoryPII}, Markers: true}

	first, err := eng.Redact("My SSN is 123-45-6789 and my email is a@b.com", opts)
	require.NoError(t, err)
	require.NotZero(t, first.Total())

	second, err := eng.Redact(first.Text, opts)
	require.NoError(t, err)
	assert.Equal(t, first.Text, second.Text,
		"markers contain no sensitive sub-matches and must survive re-redaction")
}

func TestRedact_EmptyInput(t *testing.T) {
	eng := New(catalog.New())
	result, err := eng.Redact("", Options{})
	require.NoError(t, err)
	assert.Equal(t, "", result.Text)
	assert.Empty(t, result.Stats)
}

func TestRedact_InvalidSensitivityIsCallerError(t *testing.T) {
	eng := New(catalog.New())
	_, err := eng.Redact("text", Options{Sensitivity: "extreme"})
	assert.ErrorIs(t, err, catalog.ErrInvalidSensitivity)
}

func TestSetSensitivity(t *testing.T) {
	eng := New(catalog.New())
	assert.ErrorIs(t, eng.SetSensitivity("extreme"), catalog.ErrInvalidSensitivity)
	require.NoError(t, eng.SetSensitivity("high"))
	assert.Equal(t, catalog.SensitivityHigh, eng.Sensitivity())
}

func TestRedact_SensitivityDrivesCategories(t *testing.T) {
	eng := New(catalog.New())
	card := "card 4111-1111-1111-1111 on file"

	// FINANCIAL is only in the high set.
	medium, err := eng.Redact(card, Options{Sensitivity: "medium", Markers: true})
	require.NoError(t, err)
	assert.Contains(t, medium.Text, "4111-1111-1111-1111")

	high, err := eng.Redact(card, Options{Sensitivity: "high", Markers: true})
	require.NoError(t, err)
	assert.NotContains(t, high.Text, "4111-1111-1111-1111")
	assert.Equal(t, 1, high.Stats[catalog.CategoryFinancial])
}

func TestRedact_PreferredTierMinimal(t *testing.T) {
	eng := New(catalog.New())
	result, err := eng.Redact("password: hunter2aB", Options{
		PreferredTier: TierMinimal,
		Markers:       true,
	})
	require.NoError(t, err)
	assert.NotContains(t, result.Text, "hunter2aB")
	assert.Contains(t, result.Text, "[CREDENTIALS:PASSWORD]")
}

func TestRedact_ChunkedInput(t *testing.T) {
	eng := New(catalog.New(), WithMaxChunkSize(32))
	text := "SSN: 123-45-6789\n\nmail: a@b.co and padding text"

	result, err := eng.Redact(text, Options{
		Categories: []catalog.Category{catalog.CategoryPII},
		Markers:    true,
	})
	require.NoError(t, err)

	assert.NotContains(t, result.Text, "123-45-6789")
	assert.NotContains(t, result.Text, "a@b.co")
	assert.Contains(t, result.Text, "\n\n", "paragraph boundaries survive chunked processing")
	assert.Equal(t, 2, result.Stats[catalog.CategoryPII])
}

func TestRedact_FailedChunkPassesThroughUnmodified(t *testing.T) {
	backend := &fakeBackend{detect: func(text string) ([]detector.Entity, error) {
		if strings.Contains(text, "BOOM") {
			return nil, errors.New("chunk detection failed")
		}
		return nil, nil
	}}
	sink := &recordingSink{}
	eng := New(catalog.New(),
		WithExternalDetector(backend, 0.85),
		WithAuditSink(sink),
		WithMaxChunkSize(40))

	text := "first SSN: 111-22-3333 here\n\nBOOM second SSN: 444-55-6666"
	result, err := eng.Redact(text, Options{
		Categories: []catalog.Category{catalog.CategoryPII},
		Markers:    true,
	})
	require.NoError(t, err)

	// The healthy chunk is redacted; the failing chunk degrades to its
	// original content instead of being dropped.
	assert.NotContains(t, result.Text, "111-22-3333")
	assert.Contains(t, result.Text, "BOOM second SSN: 444-55-6666")
	assert.True(t, sink.has("chunk_failed"))
}

func TestRedact_ChunkedInputFallsBackWhenBackendDown(t *testing.T) {
	backend := &fakeBackend{detect: func(string) ([]detector.Entity, error) {
		return nil, errors.New("backend down")
	}}
	sink := &recordingSink{}
	eng := New(catalog.New(),
		WithExternalDetector(backend, 0.85),
		WithAuditSink(sink),
		WithMaxChunkSize(32))

	// Every chunk fails in the advanced tier, so the tier as a whole must
	// error and the rule-based tier must still redact the document.
	text := "SSN: 111-22-3333 and padding\n\nSSN: 444-55-6666 more padding"
	result, err := eng.Redact(text, Options{
		Categories: []catalog.Category{catalog.CategoryPII},
		Markers:    true,
	})
	require.NoError(t, err)

	assert.NotContains(t, result.Text, "111-22-3333")
	assert.NotContains(t, result.Text, "444-55-6666")
	assert.Equal(t, 2, result.Stats[catalog.CategoryPII])
	assert.True(t, sink.has("tier_failed"), "a fully failed chunked tier must be audited as a tier failure")
	assert.True(t, sink.has("redact_complete"))
}

func TestRedact_AllowlistedValuesPassThrough(t *testing.T) {
	eng := New(catalog.New(), WithAllowlist([]string{"support@example.com"}))
	text := "Contact support@example.com or jane@example.com"

	result, err := eng.Redact(text, Options{
		Categories: []catalog.Category{catalog.CategoryPII},
		Markers:    true,
	})
	require.NoError(t, err)

	assert.Contains(t, result.Text, "support@example.com")
	assert.NotContains(t, result.Text, "jane@example.com")
	assert.Equal(t, 1, result.Stats[catalog.CategoryPII],
		"allowlisted spans are not counted as substitutions")
}

func TestAnalyze(t *testing.T) {
	eng := New(catalog.New())

	assert.Empty(t, eng.Analyze(""))

	found := eng.Analyze("My SSN is 123-45-6789 and my email is a@b.com")
	assert.Contains(t, found[catalog.CategoryPII], "123-45-6789")
	assert.Contains(t, found[catalog.CategoryPII], "a@b.com")
}

func TestResolvedSpans_Disjoint(t *testing.T) {
	eng := New(catalog.New())
	spans := eng.ResolvedSpans("SSN: 123-45-6789 mail a@b.com", nil)
	require.NotEmpty(t, spans)
	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			assert.False(t, spans[i].Overlaps(spans[j]),
				"resolved spans %d and %d overlap", i, j)
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		result  Result
		wantErr bool
	}{
		{"empty output for non-empty input", "abc", Result{Text: ""}, true},
		{"changed without substitutions", "abc", Result{Text: "abX"}, true},
		{"unchanged with no matches", "abc", Result{Text: "abc"}, false},
		{"changed with substitutions", "abc", Result{Text: "[PII:SSN]", Stats: map[catalog.Category]int{catalog.CategoryPII: 1}}, false},
		{"empty in empty out", "", Result{Text: ""}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validate(tc.input, tc.result)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrValidationFailed)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplitChunks_Reassembles(t *testing.T) {
	cases := []struct {
		name string
		text string
		max  int
	}{
		{"paragraphs", "one\n\ntwo\n\nthree", 8},
		{"oversize paragraph", strings.Repeat("a", 100), 7},
		{"multibyte runes", strings.Repeat("héllo wörld ", 20), 9},
		{"empty", "", 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chunks := splitChunks(tc.text, tc.max)
			assert.Equal(t, tc.text, strings.Join(chunks, ""),
				"concatenated chunks must reproduce the input exactly")
		})
	}
}

func TestParseTier(t *testing.T) {
	assert.Equal(t, TierRuleBased, ParseTier("rule_based"))
	assert.Equal(t, TierMinimal, ParseTier("minimal"))
	assert.Equal(t, TierAdvanced, ParseTier("advanced"))
	assert.Equal(t, TierAdvanced, ParseTier("bogus"))
}
