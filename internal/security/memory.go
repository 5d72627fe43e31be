// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package security provides best-effort memory hygiene for raw input text.
// A redaction tool holds the most sensitive copy of a document, the one
// before substitution, so the buffer is scrubbed once the output is written.
package security

// SensitiveBuffer wraps raw input with best-effort scrubbing on Clear.
//
// Limitations: Go's garbage collector may move or copy memory at any time,
// and converting to string creates an immutable copy that cannot be zeroed.
// Clear zeroes the wrapped byte slice, which shortens the window of
// exposure, but cannot guarantee no copies remain elsewhere in the heap.
type SensitiveBuffer struct {
	data []byte
}

// NewSensitiveBuffer copies s into a mutable byte slice.
func NewSensitiveBuffer(s string) *SensitiveBuffer {
	data := make([]byte, len(s))
	copy(data, s)
	return &SensitiveBuffer{data: data}
}

// FromBytes wraps data without copying. The caller hands over ownership and
// must not reuse the slice.
func FromBytes(data []byte) *SensitiveBuffer {
	return &SensitiveBuffer{data: data}
}

// String returns the buffered text. Each call creates an immutable copy
// that Clear cannot reach, so call it once and pass the result along.
func (b *SensitiveBuffer) String() string {
	return string(b.data)
}

// Len reports the buffered size in bytes.
func (b *SensitiveBuffer) Len() int {
	return len(b.data)
}

// Clear overwrites the wrapped slice with zeros and releases it. Calling
// Clear more than once is safe.
func (b *SensitiveBuffer) Clear() {
	for i := range b.data {
		b.data[i] = 0
	}
	b.data = nil
}
