// Package tokenizer segments pronunciation strings into notation tokens.
// At every position it takes the longest token the vocabulary knows,
// extending the window one code point at a time while some token still has
// the window as a prefix. Characters that start no token are emitted on
// their own and flag the result.
package tokenizer

import "unicode/utf8"

// Vocabulary answers the two questions longest-match needs. *symbols.Table
// satisfies it.
type Vocabulary interface {
	HasPrefix(s string) bool
	IsToken(s string) bool
}

// Bounded is implemented by vocabularies that know their longest token.
// NextMatch never grows the window past that many code points.
type Bounded interface {
	MaxTokenRunes() int
}

// Token is one segment of the input and its position, counted in code
// points, in the original text. Known is false for fallback tokens.
type Token struct {
	Text     string
	Position int
	Known    bool
}

// NextMatch returns the longest token that s starts with, or "" when no
// token matches.
func NextMatch(v Vocabulary, s string) string {
	limit := -1
	if b, ok := v.(Bounded); ok {
		limit = b.MaxTokenRunes()
	}
	longest := ""
	end := 0
	for runes := 0; end < len(s) && runes != limit; runes++ {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
		window := s[:end]
		if !v.HasPrefix(window) {
			break
		}
		if v.IsToken(window) {
			longest = window
		}
	}
	return longest
}

// Tokenize splits input into tokens. The concatenation of the returned
// texts always equals input. unmatched is true when at least one character
// could not be matched and was passed through as a fallback token.
func Tokenize(v Vocabulary, input string) (tokens []Token, unmatched bool) {
	tokens = make([]Token, 0, utf8.RuneCountInString(input))
	pos := 0
	for rest := input; rest != ""; {
		match := NextMatch(v, rest)
		known := match != ""
		if !known {
			_, size := utf8.DecodeRuneInString(rest)
			match = rest[:size]
			unmatched = true
		}
		tokens = append(tokens, Token{
			Text:     match,
			Position: pos,
			Known:    known,
		})
		pos += utf8.RuneCountInString(match)
		rest = rest[len(match):]
	}
	return tokens, unmatched
}

// Texts returns the text of each token in order.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out
}
