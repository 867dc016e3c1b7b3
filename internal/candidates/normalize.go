// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package candidates

import (
	"strings"
	"unicode"
)

// honorifics are stripped from names before identity comparison.
var honorifics = map[string]bool{
	"dr":        true,
	"prof":      true,
	"professor": true,
	"mr":        true,
	"ms":        true,
	"mrs":       true,
}

// universityNoise words carry no identity information in institution names.
var universityNoise = map[string]bool{
	"the": true,
	"of":  true,
}

// IdentityKey builds the deduplication key for a candidate: normalized name
// joined with normalized university. Two mentions of the same person on
// different pages must map to the same key.
func IdentityKey(name, university string) string {
	return NormalizeName(name) + "|" + NormalizeUniversity(university)
}

// NormalizeName lowercases, strips honorifics and punctuation, and collapses
// whitespace, so "Prof. Wei Chen" and "wei chen" compare equal.
func NormalizeName(name string) string {
	var tokens []string
	for _, tok := range splitTokens(name) {
		if honorifics[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return strings.Join(tokens, " ")
}

// NormalizeUniversity lowercases, drops punctuation and filler words, and
// collapses whitespace.
func NormalizeUniversity(university string) string {
	var tokens []string
	for _, tok := range splitTokens(university) {
		if universityNoise[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return strings.Join(tokens, " ")
}

// splitTokens lowercases and splits on any non-letter, non-digit rune.
func splitTokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
