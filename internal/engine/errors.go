// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import "errors"

// Error taxonomy for the redaction pipeline. Tier-level errors
// (ErrBackendUnavailable, ErrValidationFailed) are non-fatal and trigger
// fallback to the next tier; they never escape Redact. ErrAllTiersFailed is
// terminal but is surfaced as a degraded result carrying the original text,
// not as a returned error.
var (
	ErrBackendUnavailable = errors.New("detection backend unavailable")
	ErrValidationFailed   = errors.New("redaction output failed validation")
	ErrAllTiersFailed     = errors.New("all redaction tiers failed")
)
