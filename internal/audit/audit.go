// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package audit provides fire-and-forget audit event recording for the
// redaction pipeline. Sink failures never affect redaction outcomes.
package audit

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Sink receives audit events emitted by the redaction engine.
type Sink interface {
	// Record logs a single event. Implementations must not panic; errors
	// are swallowed because auditing is advisory.
	Record(event string, payload map[string]any)
}

// Event is the serialized form written by JSONSink.
type Event struct {
	Event     string         `json:"event"`
	Timestamp string         `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// JSONSink writes one JSON object per event to an io.Writer.
type JSONSink struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewJSONSink creates a sink that encodes events as JSON lines.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{writer: w}
}

// Record implements the Sink interface.
func (s *JSONSink) Record(event string, payload map[string]any) {
	if s == nil || s.writer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Encoding errors are intentionally ignored: a broken audit pipe must
	// not fail the redaction that produced the event.
	_ = json.NewEncoder(s.writer).Encode(Event{
		Event:     event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
}

// NopSink discards all events.
type NopSink struct{}

// Record implements the Sink interface.
func (NopSink) Record(string, map[string]any) {}
