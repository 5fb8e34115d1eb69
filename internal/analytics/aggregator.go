package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/kafka"
)

// maxLatencySamples bounds the latency window used for percentiles.
const maxLatencySamples = 10000

// AggregatedStats is the statistics snapshot served by the stats endpoint
// and persisted by aggregator.Store.
type AggregatedStats struct {
	TotalTranslations     int64       `json:"total_translations"`
	WarningCount          int64       `json:"warning_count"`
	WarningRate           float64     `json:"warning_rate"`
	CacheHits             int64       `json:"cache_hits"`
	CacheMisses           int64       `json:"cache_misses"`
	PairsSaved            int64       `json:"pairs_saved"`
	AvgLatencyUs          float64     `json:"avg_latency_us"`
	P50LatencyUs          int64       `json:"p50_latency_us"`
	P95LatencyUs          int64       `json:"p95_latency_us"`
	P99LatencyUs          int64       `json:"p99_latency_us"`
	TopInputs             []TermCount `json:"top_inputs"`
	TopUnmatched          []TermCount `json:"top_unmatched"`
	BySource              []TermCount `json:"by_source"`
	TranslationsPerMinute float64     `json:"translations_per_minute"`
}

// TermCount pairs a string with how often it was seen.
type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// Aggregator folds translation events into running totals.
type Aggregator struct {
	mu             sync.RWMutex
	total          int64
	warnings       int64
	cacheHits      int64
	cacheMisses    int64
	pairsSaved     int64
	latencies      []int64
	next           int
	inputCounts    map[string]int64
	unmatchedCount map[string]int64
	sourceCounts   map[string]int64
	startTime      time.Time
	now            func() time.Time
	logger         *slog.Logger
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:      make([]int64, 0, 1024),
		inputCounts:    make(map[string]int64),
		unmatchedCount: make(map[string]int64),
		sourceCounts:   make(map[string]int64),
		startTime:      time.Now(),
		now:            time.Now,
		logger:         slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent returns a kafka.MessageHandler feeding agg. Undecodable
// messages are logged and skipped so they do not block the partition.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[TranslationEvent](value)
		if err != nil {
			agg.logger.Error("failed to decode analytics event", "error", err)
			return nil
		}
		agg.Record(event)
		return nil
	}
}

// Record folds one event into the running totals.
func (a *Aggregator) Record(event TranslationEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if event.Type == EventPairSaved {
		a.pairsSaved++
		return
	}

	a.total++
	if event.Warning {
		a.warnings++
	}
	if event.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}

	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, event.LatencyUs)
	} else {
		a.latencies[a.next] = event.LatencyUs
		a.next = (a.next + 1) % maxLatencySamples
	}

	a.inputCounts[event.Input]++
	for _, ch := range event.Unmatched {
		a.unmatchedCount[ch]++
	}
	if event.Source != "" {
		a.sourceCounts[event.Source]++
	}
}

// Stats computes a snapshot of the current totals.
func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalTranslations: a.total,
		WarningCount:      a.warnings,
		CacheHits:         a.cacheHits,
		CacheMisses:       a.cacheMisses,
		PairsSaved:        a.pairsSaved,
	}
	if a.total > 0 {
		stats.WarningRate = float64(a.warnings) / float64(a.total)
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyUs = float64(sum) / float64(len(sorted))
		stats.P50LatencyUs = percentile(sorted, 50)
		stats.P95LatencyUs = percentile(sorted, 95)
		stats.P99LatencyUs = percentile(sorted, 99)
	}
	stats.TopInputs = topN(a.inputCounts, 10)
	stats.TopUnmatched = topN(a.unmatchedCount, 10)
	stats.BySource = topN(a.sourceCounts, len(a.sourceCounts))

	if elapsed := a.now().Sub(a.startTime).Minutes(); elapsed > 0 {
		stats.TranslationsPerMinute = float64(a.total) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN returns the n most frequent terms, ties broken alphabetically.
func topN(counts map[string]int64, n int) []TermCount {
	result := make([]TermCount, 0, len(counts))
	for term, count := range counts {
		result = append(result, TermCount{Term: term, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Term < result[j].Term
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
