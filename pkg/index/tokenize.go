package index

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// foldAccents decomposes the string and drops combining marks, so that
// "café" and "cafe" index to the same term.
func foldAccents(s string) string {
	decomposed := norm.NFD.String(s)
	out := make([]rune, 0, len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// tokenize lowercases and accent-folds the text, splits it into runs of
// letters and digits, and keeps runs of at least two runes that are not
// stop words.
func tokenize(text string) []string {
	text = foldAccents(strings.ToLower(text))

	var tokens []string
	var current []rune

	flush := func() {
		if len(current) >= 2 {
			tok := string(current)
			if !stopwords[tok] {
				tokens = append(tokens, tok)
			}
		}
		current = current[:0]
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current = append(current, r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}

// expandTerms turns a token stream into indexable terms: the unigrams
// themselves plus, when enabled, space-joined bigrams of adjacent tokens.
// Bigrams are formed after stop-word removal, matching the token stream
// the unigrams come from.
func expandTerms(tokens []string, bigrams bool) []string {
	if !bigrams || len(tokens) < 2 {
		return tokens
	}
	terms := make([]string, 0, len(tokens)*2-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}
