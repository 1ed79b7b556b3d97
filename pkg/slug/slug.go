// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug folds human-typed names onto comparable ASCII keys.
//
// "Centro Habana", "centro  habána" and "Centro-Habana" all fold to
// "centro-habana", which is how near-duplicate delivery zones are spotted.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key returns the folded form of s: accents stripped, lower-cased, and every
// run of non-alphanumeric characters collapsed into a single hyphen.
func Key(s string) string {
	// Transformers carry state, so each call builds its own chain.
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		folded = s
	}

	words := strings.FieldsFunc(strings.ToLower(folded), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, "-")
}
