// Package proto defines the message types exchanged over the translator's
// JSON-over-TCP RPC interface (see pkg/rpc).
package proto

// RPC method names.
const (
	MethodTranslate = "Phonetics.Translate"
	MethodSymbols   = "Phonetics.Symbols"
)

// TranslateRequest is the input to Phonetics.Translate.
type TranslateRequest struct {
	Input string `json:"input"`
}

// TranslateResponse is the output of Phonetics.Translate.
type TranslateResponse struct {
	Input   string   `json:"input"`
	Output  string   `json:"output"`
	Tokens  []string `json:"tokens"`
	Symbols []string `json:"symbols"`
	Warning bool     `json:"warning"`
	Message string   `json:"message,omitempty"`
	Cached  bool     `json:"cached"`
}

// SymbolsRequest is the input to Phonetics.Symbols.
type SymbolsRequest struct{}

// Symbol is one row of the symbol table.
type Symbol struct {
	Token string `json:"token"`
	IPA   string `json:"ipa"`
}

// SymbolsResponse lists the loaded symbol table.
type SymbolsResponse struct {
	Notation   string   `json:"notation"`
	Target     string   `json:"target"`
	Symbols    []Symbol `json:"symbols"`
	Duplicates []string `json:"duplicates,omitempty"`
}
