// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"strings"
	"unicode/utf8"
)

// splitChunks breaks text into bounded chunks: paragraph boundaries first,
// then fixed-size slices for any paragraph still exceeding maxSize.
// Concatenating the returned chunks reproduces the input byte for byte,
// which is what lets a failed chunk pass through unmodified.
func splitChunks(text string, maxSize int) []string {
	paragraphs := strings.SplitAfter(text, "\n\n")

	var chunks []string
	for _, paragraph := range paragraphs {
		if paragraph == "" {
			continue
		}
		for len(paragraph) > maxSize {
			cut := maxSize
			// Back off to a rune boundary so a slice never splits a
			// multi-byte character between chunks.
			for cut > 0 && !utf8.RuneStart(paragraph[cut]) {
				cut--
			}
			if cut == 0 {
				cut = maxSize
			}
			chunks = append(chunks, paragraph[:cut])
			paragraph = paragraph[cut:]
		}
		chunks = append(chunks, paragraph)
	}
	return chunks
}
