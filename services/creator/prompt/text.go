// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package prompt

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Truncate shortens s to at most limit characters (runes, not bytes),
// preferring to break at a word boundary and appending an ellipsis when
// anything was cut. Safe on multi-byte text.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	const ellipsis = "…"
	budget := limit - 1
	if budget <= 0 {
		return ellipsis
	}

	runes := []rune(s)
	cut := budget
	// Walk back to the last space inside the budget, but never give up
	// more than half the budget to find one.
	for i := budget; i > budget/2; i-- {
		if unicode.IsSpace(runes[i-1]) {
			cut = i - 1
			break
		}
	}
	return strings.TrimRight(string(runes[:cut]), " \t\n") + ellipsis
}

// WordCount counts whitespace-delimited words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// RuneLen is the character length used for post budgets.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
