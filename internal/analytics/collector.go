package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/metrics"
)

// BatchPublisher is the subset of kafka.Producer the collector needs.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
	Topic() string
}

// Collector buffers events in a channel and publishes them to Kafka in
// batches, flushing when a batch fills or the flush interval elapses.
// Track never blocks; events are dropped when the buffer is full or the
// collector has been closed.
type Collector struct {
	producer      BatchPublisher
	metrics       *metrics.Metrics
	eventCh       chan TranslationEvent
	batchSize     int
	flushInterval time.Duration
	logger        *slog.Logger
	done          chan struct{}

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewCollector creates a Collector. m may be nil.
func NewCollector(producer BatchPublisher, bufferSize int, m *metrics.Metrics) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer:      producer,
		metrics:       m,
		eventCh:       make(chan TranslationEvent, bufferSize),
		batchSize:     100,
		flushInterval: time.Second,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
}

// Start launches the publish loop. The loop exits after ctx is cancelled or
// Close is called, flushing whatever is buffered.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()

		batch := make([]kafka.Event, 0, c.batchSize)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					c.flush(context.Background(), batch)
					return
				}
				batch = append(batch, toKafka(event))
				if len(batch) >= c.batchSize {
					c.flush(ctx, batch)
					batch = batch[:0]
				}
			case <-ticker.C:
				c.flush(ctx, batch)
				batch = batch[:0]
			case <-ctx.Done():
				batch = c.drainInto(batch)
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				c.flush(flushCtx, batch)
				cancel()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.eventCh),
		"batch_size", c.batchSize,
		"flush_interval", c.flushInterval,
	)
}

// Track enqueues an event without blocking.
func (c *Collector) Track(event TranslationEvent) {
	if event.Type == "" {
		event.Type = EventTranslate
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		c.logger.Debug("analytics event dropped (collector closed)", "type", event.Type)
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for the final flush. Later Track
// calls are dropped. Close is safe to call more than once.
func (c *Collector) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.eventCh)
		c.mu.Unlock()
	})
	<-c.done
}

func (c *Collector) drainInto(batch []kafka.Event) []kafka.Event {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return batch
			}
			batch = append(batch, toKafka(event))
		default:
			return batch
		}
	}
}

func (c *Collector) flush(ctx context.Context, batch []kafka.Event) {
	if len(batch) == 0 {
		return
	}
	err := c.producer.PublishBatch(ctx, batch)
	status := "ok"
	if err != nil {
		status = "error"
		c.logger.Error("failed to publish analytics batch", "events", len(batch), "error", err)
	}
	if c.metrics != nil {
		c.metrics.EventsPublishedTotal.WithLabelValues(c.producer.Topic(), status).Add(float64(len(batch)))
	}
}

func toKafka(event TranslationEvent) kafka.Event {
	return kafka.Event{
		Key:     string(event.Type),
		Value:   event,
		Headers: map[string]string{"event_type": string(event.Type)},
	}
}
