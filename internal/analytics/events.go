// Package analytics collects translation events, ships them to Kafka, and
// aggregates them into usage statistics served over HTTP.
package analytics

import "time"

// EventType distinguishes the kinds of analytics events on the topic.
type EventType string

const (
	EventTranslate EventType = "translate"
	EventPairSaved EventType = "pair_saved"
)

// Source identifies which front end produced a translation.
const (
	SourceHTTP = "http"
	SourceRPC  = "rpc"
	SourceTest = "test_page"
)

// TranslationEvent describes one completed translation.
type TranslationEvent struct {
	Type      EventType `json:"type"`
	Input     string    `json:"input"`
	Runes     int       `json:"runes"`
	Tokens    int       `json:"tokens"`
	Unmatched []string  `json:"unmatched,omitempty"`
	Warning   bool      `json:"warning"`
	CacheHit  bool      `json:"cache_hit"`
	LatencyUs int64     `json:"latency_us"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}
