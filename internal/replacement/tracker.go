// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package replacement is the single source of truth for redaction
// replacement generation. It maps each distinct (category, matched text)
// pair to one replacement per session so an entity redacted twice in a
// document reads identically, preserving narrative coherence.
package replacement

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"text-redact/internal/catalog"
)

var creditCardShape = regexp.MustCompile(`^\d{4}[ -]?\d{4}[ -]?\d{4}[ -]?\d{4}$`)

// Marker returns the deterministic, non-randomized replacement used when
// pseudonymization is disabled, e.g. "[PII:PERSON]" or "[PHI:UNKNOWN]".
func Marker(category catalog.Category, entityType string) string {
	if entityType == "" {
		entityType = "UNKNOWN"
	}
	return fmt.Sprintf("[%s:%s]", category, entityType)
}

// Tracker generates pseudonym replacements and keeps them consistent for
// the lifetime of one redaction invocation, or longer when the caller
// shares a tracker across documents. It is safe for concurrent use: the
// read-check-then-insert around the replacement map is serialized so one
// entity text can never receive two different replacements.
type Tracker struct {
	mu        sync.Mutex
	entities  map[catalog.Category]map[string]string
	usedNames map[string]bool // per-kind dedupe, keyed "KIND\x00value"
}

// NewTracker creates an empty entity tracker.
func NewTracker() *Tracker {
	return &Tracker{
		entities:  make(map[catalog.Category]map[string]string),
		usedNames: make(map[string]bool),
	}
}

// Replacement returns the replacement for an entity, generating one on
// first sight. It never fails: every input produces some string.
func (t *Tracker) Replacement(category catalog.Category, text, entityType string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if byText, ok := t.entities[category]; ok {
		if r, ok := byText[text]; ok {
			return r
		}
	} else {
		t.entities[category] = make(map[string]string)
	}

	r := t.generate(category, text, entityType)
	t.entities[category][text] = r
	return r
}

// generate picks a replacement by entity type and category. Callers hold
// the tracker lock.
func (t *Tracker) generate(category catalog.Category, text, entityType string) string {
	lower := strings.ToLower(text)

	switch {
	case entityType == "PERSON":
		return t.personName()
	case category == catalog.CategoryLocations,
		entityType == "GPE", entityType == "LOC", entityType == "FAC":
		return t.locationName()
	case entityType == "ORG":
		return t.organizationName()
	case category == catalog.CategoryFinancial && creditCardShape.MatchString(text):
		return "XXXX-XXXX-XXXX-XXXX"
	case category == catalog.CategoryFinancial &&
		(strings.Contains(lower, "account") || strings.Contains(lower, "acct")):
		return "ACCT-" + randomDigits(8)
	case category == catalog.CategoryPII &&
		(strings.Contains(lower, "ssn") || strings.Contains(lower, "social security")):
		return "SSN-REDACTED"
	case category == catalog.CategoryPHI &&
		(strings.Contains(lower, "mrn") || strings.Contains(lower, "medical record")):
		return "MRN-REDACTED"
	case category == catalog.CategoryPII &&
		(strings.Contains(lower, "email") || strings.Contains(lower, "@")):
		return "EMAIL-REDACTED"
	case category == catalog.CategoryPII &&
		(strings.Contains(lower, "phone") || strings.Contains(lower, "tel") || strings.Contains(lower, "mobile")):
		return "PHONE-REDACTED"
	default:
		return fmt.Sprintf("[%s-REDACTED]", category)
	}
}

// markUsed records a generated value; returns the value with a numeric
// disambiguator appended when it was already taken.
func (t *Tracker) markUsed(kind, value string) string {
	base := value
	key := kind + "\x00" + value
	for t.usedNames[key] {
		value = fmt.Sprintf("%s-%d", base, 1+secureRandom(999999))
		key = kind + "\x00" + value
	}
	t.usedNames[key] = true
	return value
}

// personName draws an unused first/last pair from the closed name pools,
// falling back to a numeric disambiguator once the pools are exhausted.
func (t *Tracker) personName() string {
	poolSize := len(firstNames) * len(lastNames)
	for attempt := 0; attempt < poolSize; attempt++ {
		name := firstNames[secureRandom(len(firstNames))] + " " + lastNames[secureRandom(len(lastNames))]
		if !t.usedNames["PERSON\x00"+name] {
			t.usedNames["PERSON\x00"+name] = true
			return name
		}
	}
	return t.markUsed("PERSON",
		firstNames[secureRandom(len(firstNames))]+" "+lastNames[secureRandom(len(lastNames))])
}

// locationName generates one of three shapes (full address, city, region),
// chosen pseudo-randomly per distinct entity.
func (t *Tracker) locationName() string {
	var location string
	switch secureRandom(3) {
	case 0:
		location = fmt.Sprintf("%d %s, %s",
			1+secureRandom(9999),
			streetNames[secureRandom(len(streetNames))],
			cityNames[secureRandom(len(cityNames))])
	case 1:
		location = cityNames[secureRandom(len(cityNames))]
	default:
		location = regionNames[secureRandom(len(regionNames))]
	}
	return t.markUsed("LOCATION", location)
}

// organizationName generates prefix+core+suffix names with two complexity
// tiers.
func (t *Tracker) organizationName() string {
	core := orgCores[secureRandom(len(orgCores))]
	suffix := orgSuffixes[secureRandom(len(orgSuffixes))]

	var name string
	if secureRandom(2) == 0 {
		name = core + " " + suffix
	} else {
		name = orgPrefixes[secureRandom(len(orgPrefixes))] + " " + core + " " + suffix
	}
	return t.markUsed("ORGANIZATION", name)
}
