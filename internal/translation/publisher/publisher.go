// Package publisher stores submitted translation pairs and announces them on
// Kafka. Event publishing is retried and never fails the submission.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/phonetics"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/resilience"
)

// PairSaver is implemented by store.Store.
type PairSaver interface {
	Save(ctx context.Context, pair translation.Pair) (translation.Pair, error)
}

// Tracker is implemented by analytics.Collector.
type Tracker interface {
	Track(event analytics.TranslationEvent)
}

// Publisher coordinates pair persistence and Kafka event production.
type Publisher struct {
	translator *phonetics.Translator
	store      PairSaver
	producer   kafka.Publisher
	tracker    Tracker
	metrics    *metrics.Metrics
	topic      string
	retry      resilience.RetryConfig
	logger     *slog.Logger
}

// Options holds the optional collaborators of a Publisher.
type Options struct {
	Producer kafka.Publisher
	Topic    string
	Tracker  Tracker
	Metrics  *metrics.Metrics
}

// New creates a Publisher. A nil Producer disables event publishing.
func New(tr *phonetics.Translator, store PairSaver, opts Options) *Publisher {
	return &Publisher{
		translator: tr,
		store:      store,
		producer:   opts.Producer,
		tracker:    opts.Tracker,
		metrics:    opts.Metrics,
		topic:      opts.Topic,
		retry: resilience.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 50 * time.Millisecond,
			MaxDelay:     time.Second,
		},
		logger: slog.Default().With("component", "pair-publisher"),
	}
}

// Submit saves the pair described by req, computing the IPA output when
// req.Output is empty, and publishes a PairEvent. Warning records whether
// the input fully conformed to the symbol table.
func (p *Publisher) Submit(ctx context.Context, req translation.PairRequest) (translation.Pair, error) {
	log := logger.FromContext(ctx)

	t := p.translator.Transcribe(req.Input)
	output := req.Output
	if output == "" {
		output = t.IPA()
	}

	pair, err := p.store.Save(ctx, translation.Pair{
		Input:       req.Input,
		Output:      output,
		InNotation:  phonetics.NotationMW,
		OutNotation: phonetics.NotationIPA,
		Warning:     t.Warning,
	})
	if err != nil {
		p.observeSave("error")
		return translation.Pair{}, fmt.Errorf("submitting pair: %w", err)
	}
	p.observeSave("ok")
	log.Info("pair saved", "pair_id", pair.ID, "warning", pair.Warning)

	if p.tracker != nil {
		p.tracker.Track(analytics.TranslationEvent{
			Type:      analytics.EventPairSaved,
			Input:     pair.Input,
			Runes:     utf8.RuneCountInString(pair.Input),
			Warning:   pair.Warning,
			Timestamp: pair.CreatedAt,
			RequestID: logger.RequestID(ctx),
		})
	}

	if p.producer != nil {
		p.publish(ctx, pair)
	}
	return pair, nil
}

func (p *Publisher) publish(ctx context.Context, pair translation.Pair) {
	event := kafka.Event{
		Key: strconv.FormatInt(pair.ID, 10),
		Value: translation.PairEvent{
			PairID:      pair.ID,
			Input:       pair.Input,
			Output:      pair.Output,
			InNotation:  pair.InNotation,
			OutNotation: pair.OutNotation,
			Warning:     pair.Warning,
			SavedAt:     pair.CreatedAt,
		},
		Headers: map[string]string{"request_id": logger.RequestID(ctx)},
	}

	err := resilience.Retry(ctx, "publish-pair", p.retry, func() error {
		return p.producer.Publish(ctx, event)
	})
	status := "ok"
	if err != nil {
		status = "error"
		p.logger.Error("failed to publish pair event",
			"pair_id", pair.ID,
			"error", err,
		)
	}
	if p.metrics != nil {
		p.metrics.EventsPublishedTotal.WithLabelValues(p.topic, status).Inc()
	}
}

func (p *Publisher) observeSave(status string) {
	if p.metrics != nil {
		p.metrics.PairsSavedTotal.WithLabelValues(status).Inc()
	}
}
