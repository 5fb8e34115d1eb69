// Package service runs translations for every front end: it validates input,
// consults the transcription cache, records metrics and trace spans, and
// emits analytics events.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/phonetics"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/tracing"
)

// Cache is implemented by cache.TranscriptionCache.
type Cache interface {
	GetOrCompute(ctx context.Context, input string, compute func() (phonetics.Transcription, error)) (phonetics.Transcription, bool, error)
}

// Tracker is implemented by analytics.Collector.
type Tracker interface {
	Track(event analytics.TranslationEvent)
}

// Options holds the optional collaborators. Nil fields disable the
// corresponding feature.
type Options struct {
	Cache   Cache
	Tracker Tracker
	Metrics *metrics.Metrics
}

// Service translates validated input.
type Service struct {
	translator *phonetics.Translator
	validator  *validator.Validator
	cache      Cache
	tracker    Tracker
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// New creates a Service.
func New(tr *phonetics.Translator, v *validator.Validator, opts Options) *Service {
	return &Service{
		translator: tr,
		validator:  v,
		cache:      opts.Cache,
		tracker:    opts.Tracker,
		metrics:    opts.Metrics,
		logger:     slog.Default().With("component", "translation-service"),
	}
}

// Translator returns the underlying translator.
func (s *Service) Translator() *phonetics.Translator {
	return s.translator
}

// Validator returns the request validator.
func (s *Service) Validator() *validator.Validator {
	return s.validator
}

// Translate validates input and returns its transcription. source labels
// the calling front end in analytics events. The only errors are validation
// failures, returned as *apperrors.AppError wrapping ErrInvalidInput.
func (s *Service) Translate(ctx context.Context, input, source string) (translation.TranslateResponse, error) {
	if err := s.validator.ValidateText(input); err != nil {
		return translation.TranslateResponse{}, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, err.Error())
	}

	ctx, span := tracing.StartChildSpan(ctx, "translate")
	defer span.End()

	start := time.Now()
	t, cached := s.transcribe(ctx, input)
	elapsed := time.Since(start)

	span.SetAttr("tokens", len(t.Tokens))
	span.SetAttr("warning", t.Warning)
	span.SetAttr("cached", cached)

	if s.metrics != nil {
		s.metrics.ObserveTranslation(elapsed.Seconds(), cached, len(t.Tokens), len(t.Unmatched))
	}
	if s.tracker != nil {
		s.tracker.Track(analytics.TranslationEvent{
			Type:      analytics.EventTranslate,
			Input:     input,
			Runes:     utf8.RuneCountInString(input),
			Tokens:    len(t.Tokens),
			Unmatched: t.Unmatched,
			Warning:   t.Warning,
			CacheHit:  cached,
			LatencyUs: elapsed.Microseconds(),
			Source:    source,
			Timestamp: time.Now().UTC(),
			RequestID: logger.RequestID(ctx),
		})
	}
	if t.Warning {
		logger.FromContext(ctx).Debug("input did not fully conform", "input", input, "unmatched", t.Unmatched)
	}

	return ToResponse(t, cached), nil
}

func (s *Service) transcribe(ctx context.Context, input string) (phonetics.Transcription, bool) {
	if s.cache == nil {
		return s.translator.Transcribe(input), false
	}
	t, cached, err := s.cache.GetOrCompute(ctx, input, func() (phonetics.Transcription, error) {
		return s.translator.Transcribe(input), nil
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("cache lookup failed, translating directly", "error", err)
		}
		return s.translator.Transcribe(input), false
	}
	return t, cached
}

// Symbols describes the loaded symbol table.
func (s *Service) Symbols() translation.SymbolsResponse {
	table := s.translator.Table()
	entries := table.Entries()
	resp := translation.SymbolsResponse{
		Notation:   phonetics.NotationMW,
		Target:     phonetics.NotationIPA,
		Count:      table.Len(),
		Symbols:    make([]translation.Symbol, len(entries)),
		Duplicates: table.Duplicates(),
		Ambiguous:  table.Ambiguous(),
	}
	for i, e := range entries {
		resp.Symbols[i] = translation.Symbol{Token: e.Token, IPA: e.IPA}
	}
	return resp
}

// ToResponse converts a transcription into the API response shape.
func ToResponse(t phonetics.Transcription, cached bool) translation.TranslateResponse {
	tokens, symbols := t.Tokens, t.Symbols
	if tokens == nil {
		tokens = []string{}
	}
	if symbols == nil {
		symbols = []string{}
	}
	return translation.TranslateResponse{
		Input:   t.Input,
		Output:  t.IPA(),
		Tokens:  tokens,
		Symbols: symbols,
		Warning: t.Warning,
		Message: t.Message(),
		Cached:  cached,
	}
}
