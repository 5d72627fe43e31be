// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import "sort"

// Resolve folds candidate spans into a pairwise-disjoint accepted set.
//
// Candidates are processed in arrival order. A candidate that overlaps an
// accepted span of greater or equal length is discarded; otherwise it evicts
// every shorter overlapping accepted span and is accepted itself. Span
// length is the only priority: no detector outranks another, and equal
// lengths keep the first-accepted span. Callers therefore fix the candidate
// enumeration order (detector order, then rule order, then match order) to
// make tie-breaking deterministic.
//
// The result is sorted by start offset.
func Resolve(candidates []Span) []Span {
	accepted := make([]Span, 0, len(candidates))

	for _, c := range candidates {
		// Phase one: classify overlaps without mutating the accepted set.
		dominated := false
		evict := make(map[int]bool)
		for i, a := range accepted {
			if !a.Overlaps(c) {
				continue
			}
			if a.Len() >= c.Len() {
				dominated = true
				break
			}
			evict[i] = true
		}
		if dominated {
			continue
		}

		// Phase two: rebuild the accepted set without the evicted spans.
		if len(evict) > 0 {
			kept := accepted[:0]
			for i, a := range accepted {
				if !evict[i] {
					kept = append(kept, a)
				}
			}
			accepted = kept
		}
		accepted = append(accepted, c)
	}

	sort.Slice(accepted, func(i, j int) bool { return accepted[i].Start < accepted[j].Start })
	return accepted
}
