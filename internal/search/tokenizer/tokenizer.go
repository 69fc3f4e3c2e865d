// Package tokenizer provides text tokenisation for the search engine.
// It lower-cases input and splits on runs of non-word characters, where the
// word character set is letters, digits, and a small configurable allow-list
// (hyphen by default, so citation forms like "re-examination" survive).
//
// There is deliberately no stop-word removal and no stemming: terms such as
// "in" or "re" carry meaning in legal citations, and a query must retrieve
// exactly the tokens that were indexed.
package tokenizer

import (
	"strings"
	"unicode"
)

// Token represents a single normalised term and its position in the
// original text.
type Token struct {
	Term     string
	Position int
}

// Tokenizer splits text into normalised tokens. The zero value is not
// usable; construct with New.
type Tokenizer struct {
	extra map[rune]struct{}
}

// New creates a Tokenizer whose word-character set is letters, digits, and
// every rune in extraWordChars.
func New(extraWordChars string) *Tokenizer {
	extra := make(map[rune]struct{}, len(extraWordChars))
	for _, r := range extraWordChars {
		extra[r] = struct{}{}
	}
	return &Tokenizer{extra: extra}
}

var std = New("-")

// Tokenize splits text using the default tokenizer (hyphen allowed as a
// word character). Identical input always yields identical output.
func Tokenize(text string) []Token {
	return std.Tokenize(text)
}

// Tokenize breaks text into lowercased tokens, discarding empty tokens.
// The minimum token length is 1.
func (t *Tokenizer) Tokenize(text string) []Token {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
		_, ok := t.extra[r]
		return !ok
	})
	tokens := make([]Token, 0, len(words))
	for _, word := range words {
		// Allow-list runes only keep hyphens inside words; a run made
		// entirely of them ("---") is not a word.
		if !hasLetterOrDigit(word) {
			continue
		}
		tokens = append(tokens, Token{
			Term:     word,
			Position: len(tokens),
		})
	}
	return tokens
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// Terms returns just the term strings of Tokenize, deduplicated in first-seen
// order. Used for query parsing, where repeating a word must not double its
// contribution.
func (t *Tokenizer) Terms(text string) []string {
	tokens := t.Tokenize(text)
	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, dup := seen[tok.Term]; dup {
			continue
		}
		seen[tok.Term] = struct{}{}
		terms = append(terms, tok.Term)
	}
	return terms
}
