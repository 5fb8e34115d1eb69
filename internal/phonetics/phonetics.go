// Package phonetics converts Merriam-Webster pronunciation respellings into
// IPA. Input is segmented by longest match against a symbol table, each
// token is replaced by its IPA value, and characters the table does not
// know are passed through unchanged and flag the result with a warning.
//
// Translators are immutable and safe for concurrent use.
package phonetics

import (
	"strings"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/phonetics/symbols"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/phonetics/tokenizer"
)

// Notation names as stored alongside persisted translation pairs.
const (
	NotationMW  = "MW"
	NotationIPA = "IPA"
)

// WarningMessage is shown to users when a transcription had unmatched input.
const WarningMessage = "The input string didn't fully conform to M-W's IPA standard."

// Transcription is the result of translating one input string. Tokens and
// Symbols correspond index by index.
type Transcription struct {
	Input     string   `json:"input"`
	Tokens    []string `json:"tokens"`
	Symbols   []string `json:"symbols"`
	Warning   bool     `json:"warning"`
	Unmatched []string `json:"unmatched,omitempty"`
}

// IPA returns the concatenated IPA output.
func (t Transcription) IPA() string {
	return strings.Join(t.Symbols, "")
}

// Message returns WarningMessage when the transcription had unmatched input
// and "" otherwise.
func (t Transcription) Message() string {
	if t.Warning {
		return WarningMessage
	}
	return ""
}

// Translator translates strings through a fixed symbol table.
type Translator struct {
	table *symbols.Table
}

// New creates a Translator over table.
func New(table *symbols.Table) *Translator {
	return &Translator{table: table}
}

var defaultTranslator = sync.OnceValue(func() *Translator {
	return New(symbols.Default())
})

// Default returns the Translator over the Merriam-Webster table.
func Default() *Translator {
	return defaultTranslator()
}

// Table returns the symbol table backing the translator.
func (tr *Translator) Table() *symbols.Table {
	return tr.table
}

// Translate maps each token to its IPA value. Tokens missing from the table
// are returned unchanged.
func (tr *Translator) Translate(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, token := range tokens {
		if ipa, ok := tr.table.Lookup(token); ok {
			out[i] = ipa
		} else {
			out[i] = token
		}
	}
	return out
}

// Transcribe tokenizes and translates input.
func (tr *Translator) Transcribe(input string) Transcription {
	tokens, unmatched := tokenizer.Tokenize(tr.table, input)
	texts := tokenizer.Texts(tokens)
	result := Transcription{
		Input:   input,
		Tokens:  texts,
		Symbols: tr.Translate(texts),
		Warning: unmatched,
	}
	if unmatched {
		for _, tok := range tokens {
			if !tok.Known {
				result.Unmatched = append(result.Unmatched, tok.Text)
			}
		}
	}
	return result
}

// TranslateString returns the IPA rendering of input and whether any part
// of it could not be matched.
func (tr *Translator) TranslateString(input string) (string, bool) {
	t := tr.Transcribe(input)
	return t.IPA(), t.Warning
}

// TranslateString translates input with the default Merriam-Webster table.
func TranslateString(input string) (string, bool) {
	return Default().TranslateString(input)
}
