// Command loadtest drives concurrent translation traffic against a running
// translator and prints throughput, latency percentiles, status codes, and
// the share of cached and non-conforming responses.
//
// Usage:
//
//	go run ./cmd/loadtest -url http://localhost:8080 -concurrency 20 -duration 30s
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/sample"
)

var defaultInputs = []string{
	"kat",
	"ˈshu̇-gər",
	"ˈȯi-stər",
	"ˌyu̇-nə-ˈvər-sə-tē",
	"bäḵ",
	"chōz",
	"ˈthin",
	"ˈzhän-rə",
	"ˈmau̇n-tᵊn",
	"k@t",
}

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	UseGET      bool
	Inputs      []string
}

type Stats struct {
	totalRequests atomic.Int64
	successCount  atomic.Int64
	errorCount    atomic.Int64
	cachedCount   atomic.Int64
	warningCount  atomic.Int64
	latencies     []time.Duration
	latenciesMu   sync.Mutex
	statusCodes   map[int]*atomic.Int64
	statusCodesMu sync.Mutex
}

func NewStats() *Stats {
	return &Stats{
		latencies:   make([]time.Duration, 0, 100000),
		statusCodes: make(map[int]*atomic.Int64),
	}
}

func (s *Stats) RecordRequest(duration time.Duration, statusCode int, resp *translation.TranslateResponse, err error) {
	s.totalRequests.Add(1)

	if err != nil {
		s.errorCount.Add(1)
		return
	}

	if statusCode >= 200 && statusCode < 300 {
		s.successCount.Add(1)
	} else {
		s.errorCount.Add(1)
	}
	if resp != nil {
		if resp.Cached {
			s.cachedCount.Add(1)
		}
		if resp.Warning {
			s.warningCount.Add(1)
		}
	}

	s.latenciesMu.Lock()
	s.latencies = append(s.latencies, duration)
	s.latenciesMu.Unlock()

	s.statusCodesMu.Lock()
	if _, ok := s.statusCodes[statusCode]; !ok {
		s.statusCodes[statusCode] = &atomic.Int64{}
	}
	s.statusCodes[statusCode].Add(1)
	s.statusCodesMu.Unlock()
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the translator service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	samples := flag.String("samples", "", "file of pronunciations to send, one per line (default: built-in list)")
	useGET := flag.Bool("get", false, "use GET /api/v1/translate?q= instead of POST")
	flag.Parse()

	inputs := defaultInputs
	if *samples != "" {
		lines, err := sample.ReadFile(*samples)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading samples: %v\n", err)
			os.Exit(1)
		}
		if len(lines) == 0 {
			fmt.Fprintf(os.Stderr, "samples file %s is empty\n", *samples)
			os.Exit(1)
		}
		inputs = lines
	}

	cfg := Config{
		BaseURL:     *baseURL,
		Concurrency: *concurrency,
		Duration:    *duration,
		UseGET:      *useGET,
		Inputs:      inputs,
	}

	fmt.Println("=== Translator Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Inputs:      %d unique\n", len(cfg.Inputs))
	fmt.Println()

	stats := runLoadTest(cfg)
	printReport(stats, cfg.Duration)
}

func runLoadTest(cfg Config) *Stats {
	stats := NewStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	fmt.Print("Running")

	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			inputIdx := workerID

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				input := cfg.Inputs[inputIdx%len(cfg.Inputs)]
				inputIdx++

				req, err := newRequest(ctx, cfg, input)
				if err != nil {
					stats.RecordRequest(0, 0, nil, err)
					continue
				}

				start := time.Now()
				resp, err := client.Do(req)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					stats.RecordRequest(time.Since(start), 0, nil, err)
					continue
				}
				var body translation.TranslateResponse
				decodeErr := json.NewDecoder(resp.Body).Decode(&body)
				resp.Body.Close()
				elapsed := time.Since(start)

				if decodeErr != nil || resp.StatusCode != http.StatusOK {
					stats.RecordRequest(elapsed, resp.StatusCode, nil, nil)
					continue
				}
				stats.RecordRequest(elapsed, resp.StatusCode, &body, nil)
			}
		}(w)
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	wg.Wait()
	fmt.Println(" done!")
	fmt.Println()
	return stats
}

func newRequest(ctx context.Context, cfg Config, input string) (*http.Request, error) {
	if cfg.UseGET {
		return http.NewRequestWithContext(ctx, http.MethodGet,
			cfg.BaseURL+"/api/v1/translate?q="+url.QueryEscape(input), nil)
	}
	payload, err := json.Marshal(translation.TranslateRequest{Input: input})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/api/v1/translate", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func printReport(stats *Stats, duration time.Duration) {
	total := stats.totalRequests.Load()
	success := stats.successCount.Load()
	errors := stats.errorCount.Load()

	fmt.Println("=== Results ===")
	fmt.Printf("Total Requests:  %d\n", total)
	fmt.Printf("Successful:      %d\n", success)
	fmt.Printf("Errors:          %d\n", errors)

	if total > 0 {
		errorRate := float64(errors) / float64(total) * 100
		fmt.Printf("Error Rate:      %.2f%%\n", errorRate)
		rps := float64(total) / duration.Seconds()
		fmt.Printf("Requests/sec:    %.2f\n", rps)
	}
	if success > 0 {
		fmt.Printf("Cached:          %.2f%%\n", float64(stats.cachedCount.Load())/float64(success)*100)
		fmt.Printf("Non-conforming:  %.2f%%\n", float64(stats.warningCount.Load())/float64(success)*100)
	}

	stats.latenciesMu.Lock()
	latencies := make([]time.Duration, len(stats.latencies))
	copy(latencies, stats.latencies)
	stats.latenciesMu.Unlock()

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool {
			return latencies[i] < latencies[j]
		})

		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		avg := sum / time.Duration(len(latencies))

		fmt.Println()
		fmt.Println("=== Latency ===")
		fmt.Printf("Min:    %s\n", latencies[0])
		fmt.Printf("Avg:    %s\n", avg)
		fmt.Printf("P50:    %s\n", percentile(latencies, 50))
		fmt.Printf("P90:    %s\n", percentile(latencies, 90))
		fmt.Printf("P95:    %s\n", percentile(latencies, 95))
		fmt.Printf("P99:    %s\n", percentile(latencies, 99))
		fmt.Printf("Max:    %s\n", latencies[len(latencies)-1])
	}

	fmt.Println()
	fmt.Println("=== Status Codes ===")
	stats.statusCodesMu.Lock()
	codes := make([]int, 0, len(stats.statusCodes))
	for code := range stats.statusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Printf("  %d: %d\n", code, stats.statusCodes[code].Load())
	}
	stats.statusCodesMu.Unlock()

	if total == 0 {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the translator running?")
		os.Exit(1)
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
