package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/phonetics"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/metrics"
)

type recordingTracker struct {
	mu     sync.Mutex
	events []analytics.TranslationEvent
}

func (r *recordingTracker) Track(e analytics.TranslationEvent) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

type mapCache struct {
	mu      sync.Mutex
	entries map[string]phonetics.Transcription
	err     error
}

func (c *mapCache) GetOrCompute(_ context.Context, input string, compute func() (phonetics.Transcription, error)) (phonetics.Transcription, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return phonetics.Transcription{}, false, c.err
	}
	if t, ok := c.entries[input]; ok {
		return t, true, nil
	}
	t, err := compute()
	if err != nil {
		return t, false, err
	}
	c.entries[input] = t
	return t, false, nil
}

func newService(opts Options) *Service {
	return New(phonetics.Default(), validator.New(64), opts)
}

func TestTranslate(t *testing.T) {
	tracker := &recordingTracker{}
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	svc := newService(Options{Tracker: tracker, Metrics: m})

	ctx := logger.WithRequestID(context.Background(), "req-1")
	got, err := svc.Translate(ctx, `\ˈshu̇-gər\`, analytics.SourceHTTP)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got.Output != "/ˈʃʊ.gɝ/" || got.Warning || got.Message != "" || got.Cached {
		t.Errorf("unexpected response %+v", got)
	}

	got, err = svc.Translate(ctx, "k@t", analytics.SourceRPC)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got.Output != "k@t" || !got.Warning || got.Message != phonetics.WarningMessage {
		t.Errorf("unexpected response %+v", got)
	}

	if len(tracker.events) != 2 {
		t.Fatalf("tracked %d events, want 2", len(tracker.events))
	}
	ev := tracker.events[1]
	if ev.Source != analytics.SourceRPC || ev.RequestID != "req-1" || !ev.Warning {
		t.Errorf("unexpected event %+v", ev)
	}
	if diff := cmp.Diff([]string{"@"}, ev.Unmatched); diff != "" {
		t.Errorf("Unmatched mismatch (-want +got):\n%s", diff)
	}
	if got := testutil.ToFloat64(m.TranslationsTotal.WithLabelValues("warning")); got != 1 {
		t.Errorf("warning translations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.UnmatchedCharsTotal); got != 1 {
		t.Errorf("unmatched chars = %v, want 1", got)
	}
}

func TestTranslateEmpty(t *testing.T) {
	got, err := newService(Options{}).Translate(context.Background(), "", analytics.SourceHTTP)
	if err != nil {
		t.Fatalf("empty input should be valid: %v", err)
	}
	if got.Output != "" || got.Warning || got.Tokens == nil || len(got.Tokens) != 0 {
		t.Errorf("unexpected response %+v", got)
	}
}

func TestTranslateInvalid(t *testing.T) {
	svc := newService(Options{})
	for _, input := range []string{"k\xffat", string(make([]byte, 65))} {
		_, err := svc.Translate(context.Background(), input, analytics.SourceHTTP)
		if !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Translate(%q) err = %v, want ErrInvalidInput", input, err)
		}
		if apperrors.HTTPStatusCode(err) != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", apperrors.HTTPStatusCode(err))
		}
	}
}

func TestTranslateUsesCache(t *testing.T) {
	cache := &mapCache{entries: make(map[string]phonetics.Transcription)}
	svc := newService(Options{Cache: cache})

	first, _ := svc.Translate(context.Background(), "chōz", analytics.SourceHTTP)
	second, _ := svc.Translate(context.Background(), "chōz", analytics.SourceHTTP)
	if first.Cached || !second.Cached {
		t.Errorf("cached flags = %v, %v; want false, true", first.Cached, second.Cached)
	}
	if first.Output != "tʃoʊz" || second.Output != first.Output {
		t.Errorf("outputs %q and %q, want tʃoʊz", first.Output, second.Output)
	}
}

func TestTranslateCacheFailureFallsBack(t *testing.T) {
	svc := newService(Options{Cache: &mapCache{err: errors.New("redis down")}})
	got, err := svc.Translate(context.Background(), "bäḵ", analytics.SourceHTTP)
	if err != nil || got.Output != "bɑx" {
		t.Errorf("got %q, %v; want bɑx", got.Output, err)
	}
}

func TestSymbols(t *testing.T) {
	resp := newService(Options{}).Symbols()
	if resp.Count != 56 || len(resp.Symbols) != 56 {
		t.Errorf("Count = %d, symbols = %d, want 56", resp.Count, len(resp.Symbols))
	}
	if diff := cmp.Diff([]string{"'ə"}, resp.Duplicates); diff != "" {
		t.Errorf("Duplicates mismatch (-want +got):\n%s", diff)
	}
	if resp.Notation != phonetics.NotationMW || resp.Target != phonetics.NotationIPA {
		t.Errorf("notations = %s -> %s", resp.Notation, resp.Target)
	}
}
