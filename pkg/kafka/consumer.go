package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TopicPrefix is the standard prefix for all marketplace topics.
const TopicPrefix = "ecommerce"

// Topic constructs a fully-qualified topic name, e.g. Topic("store", "updated").
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}

// Handler processes one decoded event.
type Handler func(ctx context.Context, event *Event) error

// MessageReader is the subset of *kafka.Reader the consumer relies on.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DeadLetterPublisher receives messages that could not be handled.
type DeadLetterPublisher interface {
	Publish(ctx context.Context, msg kafka.Message, lastErr error, consumerGroup string) error
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers      []string
	GroupID      string
	Topics       []string
	MinBytes     int
	MaxBytes     int
	MaxRetries   int
	RetryBackoff time.Duration
}

// ConsumerOption customizes a Consumer.
type ConsumerOption func(*Consumer)

// WithDeadLetter forwards poison messages to p before committing them.
func WithDeadLetter(p DeadLetterPublisher) ConsumerOption {
	return func(c *Consumer) { c.dlq = p }
}

// WithReader replaces the kafka-go reader, mainly for tests.
func WithReader(r MessageReader) ConsumerOption {
	return func(c *Consumer) { c.reader = r }
}

// Consumer reads events from one consumer group and dispatches them to a
// Handler with bounded retries. A message is always committed eventually so
// a poison message never blocks its partition.
type Consumer struct {
	reader     MessageReader
	group      string
	handler    Handler
	dlq        DeadLetterPublisher
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
	tracer     trace.Tracer
	closeOnce  sync.Once
}

// NewConsumer creates a consumer subscribed to cfg.Topics as group cfg.GroupID.
func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		group:      cfg.GroupID,
		handler:    handler,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
		logger:     logger.With(slog.String("consumer_group", cfg.GroupID)),
		tracer:     otel.Tracer("github.com/utafrali/marketplace/pkg/kafka"),
	}
	if c.maxRetries <= 0 {
		c.maxRetries = 3
	}
	if c.backoff <= 0 {
		c.backoff = 100 * time.Millisecond
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.reader == nil {
		c.reader = kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			GroupID:     cfg.GroupID,
			GroupTopics: cfg.Topics,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
		})
	}
	return c
}

// Start consumes messages until ctx is canceled, then closes the reader.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping")
				return c.Close()
			}
			c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
			if !sleepCtx(ctx, c.backoff) {
				return c.Close()
			}
			continue
		}

		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	start := time.Now()
	consumerMessagesReceived.WithLabelValues(msg.Topic, c.group).Inc()
	defer func() {
		consumerProcessingDuration.WithLabelValues(msg.Topic, c.group).Observe(time.Since(start).Seconds())
	}()

	log := c.logger.With(
		slog.String("topic", msg.Topic),
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
	)

	ctx = otel.GetTextMapPropagator().Extract(ctx, NewHeaderCarrier(&msg))
	ctx, span := c.tracer.Start(ctx, msg.Topic+" process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", msg.Topic),
			attribute.String("messaging.kafka.consumer.group", c.group),
			attribute.Int64("messaging.kafka.message.offset", msg.Offset),
		),
	)
	defer span.End()

	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		log.Error("failed to unmarshal event", slog.String("error", err.Error()))
		span.SetStatus(codes.Error, "decode")
		c.fail(ctx, msg, err, log)
		return
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		lastErr = c.handler(ctx, event)
		if lastErr == nil {
			break
		}
		log.Warn("handler failed, will retry",
			slog.String("event_id", event.EventID),
			slog.String("event_type", event.EventType),
			slog.String("error", lastErr.Error()),
			slog.Int("attempt", attempt),
			slog.Int("max_retries", c.maxRetries),
		)
		if attempt < c.maxRetries && !sleepCtx(ctx, time.Duration(attempt)*c.backoff) {
			return
		}
	}

	if lastErr != nil {
		log.Error("handler failed after all retries, skipping message",
			slog.String("event_id", event.EventID),
			slog.String("event_type", event.EventType),
			slog.String("error", lastErr.Error()),
		)
		span.RecordError(lastErr)
		span.SetStatus(codes.Error, lastErr.Error())
		c.fail(ctx, msg, lastErr, log)
		return
	}

	consumerMessagesProcessed.WithLabelValues(msg.Topic, c.group).Inc()
	c.commit(ctx, msg, log)
}

func (c *Consumer) fail(ctx context.Context, msg kafka.Message, cause error, log *slog.Logger) {
	consumerMessagesFailed.WithLabelValues(msg.Topic, c.group).Inc()
	if c.dlq != nil {
		if err := c.dlq.Publish(ctx, msg, cause, c.group); err != nil {
			log.Error("failed to forward message to DLQ", slog.String("error", err.Error()))
		} else {
			consumerDLQPublished.WithLabelValues(msg.Topic, c.group).Inc()
		}
	}
	c.commit(ctx, msg, log)
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message, log *slog.Logger) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		log.Error("failed to commit message", slog.String("error", err.Error()))
	}
}

// Close closes the consumer. It is safe to call multiple times.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
