// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package detector produces candidate sensitive-data spans from a text
// buffer and resolves overlapping candidates into a disjoint span set.
package detector

import (
	"strings"

	"text-redact/internal/catalog"
)

// Span is a half-open [Start, End) byte range into the text buffer that a
// detection pass identified as sensitive. Offsets always refer to the exact
// buffer that will be used for output construction.
type Span struct {
	Start    int
	End      int
	Text     string
	Category catalog.Category
	Source   string // originating rule name or external entity type
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether two spans share any offset.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && s.End > other.Start
}

// Detector applies catalog rules to text and produces candidate spans.
type Detector struct {
	catalog *catalog.Catalog
}

// New creates a rule-based span detector backed by the given catalog.
func New(c *catalog.Catalog) *Detector {
	return &Detector{catalog: c}
}

// Detect finds all candidate spans for the requested categories. Rules are
// applied in sorted-name order within each category so enumeration order is
// deterministic. A failure in one rule never aborts the pass.
//
// If a rule's pattern defines a capturing group, the first group's span is
// the candidate; this lets a rule anchor on a label ("SSN:") without
// redacting the label itself. Matches that are empty or pure whitespace are
// discarded.
func (d *Detector) Detect(text string, categories []catalog.Category) []Span {
	var spans []Span
	for _, category := range categories {
		rules := d.catalog.RulesFor(category)
		for _, name := range d.catalog.RuleNamesFor(category) {
			re, ok := rules[name]
			if !ok {
				continue
			}
			for _, idx := range re.FindAllStringSubmatchIndex(text, -1) {
				start, end := idx[0], idx[1]
				if re.NumSubexp() > 0 && len(idx) >= 4 && idx[2] >= 0 {
					start, end = idx[2], idx[3]
				}
				matched := text[start:end]
				if strings.TrimSpace(matched) == "" {
					continue
				}
				spans = append(spans, Span{
					Start:    start,
					End:      end,
					Text:     matched,
					Category: category,
					Source:   name,
				})
			}
		}
	}
	return spans
}
