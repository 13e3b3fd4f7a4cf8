package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// DLQTopicPrefix is the prefix for dead-letter topics.
const DLQTopicPrefix = TopicPrefix + ".dlq"

// DLQTopic returns the dead-letter topic for originalTopic.
func DLQTopic(originalTopic string) string {
	return DLQTopicPrefix + "." + originalTopic
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DLQProducer copies failed messages to their dead-letter topic, annotated
// with where they came from and why they failed.
type DLQProducer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewDLQProducer creates a synchronous DLQ producer.
func NewDLQProducer(brokers []string, logger *slog.Logger) *DLQProducer {
	return &DLQProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchSize:    1,
			BatchTimeout: 100 * time.Millisecond,
			RequiredAcks: kafka.RequireAll,
		},
		logger: logger,
	}
}

// Publish implements DeadLetterPublisher.
func (d *DLQProducer) Publish(ctx context.Context, msg kafka.Message, lastErr error, consumerGroup string) error {
	topic := DLQTopic(msg.Topic)

	out := kafka.Message{
		Topic:   topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: dlqHeaders(msg, lastErr, consumerGroup),
	}

	if err := d.writer.WriteMessages(ctx, out); err != nil {
		return fmt.Errorf("publish to DLQ %s: %w", topic, err)
	}

	d.logger.Warn("message sent to DLQ",
		slog.String("dlq_topic", topic),
		slog.String("original_topic", msg.Topic),
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
	)
	return nil
}

func dlqHeaders(msg kafka.Message, lastErr error, consumerGroup string) []kafka.Header {
	headers := make([]kafka.Header, 0, len(msg.Headers)+5)
	headers = append(headers, msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: "dlq.original_topic", Value: []byte(msg.Topic)},
		kafka.Header{Key: "dlq.original_partition", Value: []byte(strconv.Itoa(msg.Partition))},
		kafka.Header{Key: "dlq.original_offset", Value: []byte(strconv.FormatInt(msg.Offset, 10))},
		kafka.Header{Key: "dlq.consumer_group", Value: []byte(consumerGroup)},
	)
	if lastErr != nil {
		headers = append(headers, kafka.Header{Key: "dlq.error", Value: []byte(lastErr.Error())})
	}
	return headers
}

// Close flushes and closes the writer.
func (d *DLQProducer) Close() error {
	return d.writer.Close()
}
