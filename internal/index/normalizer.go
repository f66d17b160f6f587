// Package index implements the in-memory inverted index: the text
// normalisation pipeline, the term dictionary with per-term postings, and
// the internal-to-external id resolution table.
package index

import (
	"strings"
	"unicode"
)

// markerReplacer removes the literal line-break markers that the corpus
// export embeds so every record fits on a single line.
var markerReplacer = strings.NewReplacer("[NEWLINE]", " ", "[TAB]", " ")

// Preprocess strips everything that cannot be part of a term. Literal
// [NEWLINE] and [TAB] markers, and every rune that is not a letter, digit,
// or '#', become a single space. Empty input is returned unchanged; callers
// treat an empty result as "no content".
func Preprocess(text string) string {
	if text == "" {
		return ""
	}
	text = markerReplacer.Replace(text)
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '#' {
			return r
		}
		return ' '
	}, text)
}

// Tokenize splits preprocessed text into raw tokens, dropping empties.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// Normalize lowercases a raw token. Any future per-token rule (stemming,
// accent folding) belongs here so no other component has to change.
func Normalize(token string) string {
	return strings.ToLower(token)
}

// CollectTypes reduces a normalized token sequence to its deduplicated set
// of types, preserving first-seen order. A token starting with '#' also
// contributes its stripped form, unless the stripped form was already
// collected, in which case only the hashtagged token is added.
func CollectTypes(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	types := make([]string, 0, len(tokens))
	add := func(t string) {
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}
	for _, tok := range tokens {
		add(tok)
		if len(tok) > 1 && strings.HasPrefix(tok, "#") {
			add(tok[1:])
		}
	}
	return types
}

// Types runs the full pipeline over raw document text: preprocess,
// tokenize, normalize, collect. It returns nil when the text carries no
// indexable content.
func Types(text string) []string {
	pre := Preprocess(text)
	if pre == "" {
		return nil
	}
	tokens := Tokenize(pre)
	if len(tokens) == 0 {
		return nil
	}
	for i, tok := range tokens {
		tokens[i] = Normalize(tok)
	}
	return CollectTypes(tokens)
}
