// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package lexical

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Tokenize splits s into lowercase terms. A term is a run of at least two
// letters or digits (underscore counts as a word character); stop words are
// dropped. Input is NFKC-normalized first so full-width and compatibility
// forms match their plain equivalents.
func Tokenize(s string) []string {
	s = strings.ToLower(norm.NFKC.String(s))

	var terms []string
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		word := s[start:end]
		start = -1
		if len([]rune(word)) < 2 || IsStopWord(word) {
			return
		}
		terms = append(terms, word)
	}
	for i, r := range s {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(s))
	return terms
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
