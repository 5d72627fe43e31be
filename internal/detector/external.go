// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"strings"

	"text-redact/internal/catalog"
)

// Entity is one detection produced by an external entity-detection backend.
// Offsets index the same buffer the engine will redact.
type Entity struct {
	Start      int
	End        int
	Text       string
	Type       string
	Confidence float64
}

// EntityDetector is the contract an external NLP/ML detection backend must
// implement. The core never initializes models itself; it only consumes
// their output through this interface.
type EntityDetector interface {
	Detect(text string) ([]Entity, error)
}

// entityCategories maps external entity types to catalog categories.
// Unmapped types are dropped rather than defaulted: assigning a guessed
// category would misreport what was redacted.
var entityCategories = map[string]catalog.Category{
	"PERSON":      catalog.CategoryPII,
	"ORG":         catalog.CategoryPII,
	"DATE":        catalog.CategoryPII,
	"NORP":        catalog.CategoryPII,
	"EVENT":       catalog.CategoryPII,
	"WORK_OF_ART": catalog.CategoryPII,
	"LAW":         catalog.CategoryPII,
	"CARDINAL":    catalog.CategoryPII,
	"ORDINAL":     catalog.CategoryPII,
	"QUANTITY":    catalog.CategoryPII,
	"GPE":         catalog.CategoryLocations,
	"LOC":         catalog.CategoryLocations,
	"FAC":         catalog.CategoryLocations,
	"MONEY":       catalog.CategoryFinancial,
	"PERCENT":     catalog.CategoryFinancial,
}

// ExternalAdapter normalizes external backend detections into the same
// candidate-span shape the rule-based detector produces.
type ExternalAdapter struct {
	backend   EntityDetector
	threshold float64
}

// NewExternalAdapter wraps an external backend. Detections with confidence
// below threshold are discarded.
func NewExternalAdapter(backend EntityDetector, threshold float64) *ExternalAdapter {
	return &ExternalAdapter{backend: backend, threshold: threshold}
}

// Detect runs the external backend and converts its entities to candidate
// spans, keeping only the requested categories. The backend error is
// propagated so the orchestrator can treat it as a tier failure.
func (a *ExternalAdapter) Detect(text string, categories []catalog.Category) ([]Span, error) {
	entities, err := a.backend.Detect(text)
	if err != nil {
		return nil, err
	}

	requested := make(map[catalog.Category]bool, len(categories))
	for _, c := range categories {
		requested[c] = true
	}

	var spans []Span
	for _, ent := range entities {
		if ent.Confidence < a.threshold {
			continue
		}
		category, ok := entityCategories[ent.Type]
		if !ok || !requested[category] {
			continue
		}
		if ent.Start < 0 || ent.End > len(text) || ent.Start >= ent.End {
			continue
		}
		matched := ent.Text
		if matched == "" {
			matched = text[ent.Start:ent.End]
		}
		if strings.TrimSpace(matched) == "" {
			continue
		}
		spans = append(spans, Span{
			Start:    ent.Start,
			End:      ent.End,
			Text:     matched,
			Category: category,
			Source:   ent.Type,
		})
	}
	return spans, nil
}
