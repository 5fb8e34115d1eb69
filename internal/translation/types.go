// Package translation defines the request, response, and event types shared
// by the translator's HTTP, RPC, storage, and messaging layers.
package translation

import "time"

// TranslateRequest is the JSON body accepted by POST /api/v1/translate.
type TranslateRequest struct {
	Input string `json:"input"`
}

// TranslateResponse is returned for every translation. Tokens and Symbols
// correspond index by index; Message carries the advisory when Warning is set.
type TranslateResponse struct {
	Input   string   `json:"input"`
	Output  string   `json:"output"`
	Tokens  []string `json:"tokens"`
	Symbols []string `json:"symbols"`
	Warning bool     `json:"warning"`
	Message string   `json:"message,omitempty"`
	Cached  bool     `json:"cached"`
}

// PairRequest submits a pronunciation for storage. When Output is empty the
// server computes it.
type PairRequest struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
}

// Pair is a persisted input/output pronunciation pair.
type Pair struct {
	ID          int64     `json:"id"`
	Input       string    `json:"input"`
	Output      string    `json:"output"`
	InNotation  string    `json:"in_notation"`
	OutNotation string    `json:"out_notation"`
	Warning     bool      `json:"warning"`
	CreatedAt   time.Time `json:"created_at"`
}

// PairEvent is the Kafka payload published after a pair is saved.
type PairEvent struct {
	PairID      int64     `json:"pair_id"`
	Input       string    `json:"input"`
	Output      string    `json:"output"`
	InNotation  string    `json:"in_notation"`
	OutNotation string    `json:"out_notation"`
	Warning     bool      `json:"warning"`
	SavedAt     time.Time `json:"saved_at"`
}

// SymbolsResponse is returned by GET /api/v1/symbols.
type SymbolsResponse struct {
	Notation   string   `json:"notation"`
	Target     string   `json:"target"`
	Count      int      `json:"count"`
	Symbols    []Symbol `json:"symbols"`
	Duplicates []string `json:"duplicates,omitempty"`
	Ambiguous  []string `json:"ambiguous"`
}

// Symbol is one row of the symbol table.
type Symbol struct {
	Token string `json:"token"`
	IPA   string `json:"ipa"`
}
