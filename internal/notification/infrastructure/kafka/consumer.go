package kafka

import (
	"context"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/orderflow-io/orderflow/pkg/idempotency"
	"github.com/orderflow-io/orderflow/pkg/tracing"
)

// Handler processes one event payload. A non-nil error dead-letters the
// message; it is never retried in place.
type Handler func(ctx context.Context, payload []byte) error

// Deduper reports whether an event key was handled before, marking it as
// handled in the same call.
type Deduper interface {
	Seen(ctx context.Context, key string) (bool, error)
}

type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type deadLetterWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Consumer reads one confirmation topic with at-least-once semantics:
// duplicates are skipped via the deduper (keyed by the order reference the
// producer uses as the message key), and a message whose handler fails goes
// straight to the topic's dead-letter channel, with no retry delay.
type Consumer struct {
	log     *slog.Logger
	reader  reader
	dlq     deadLetterWriter
	dlt     string
	idem    Deduper
	handler Handler
	tracer  trace.Tracer
}

func NewConsumer(log *slog.Logger, brokers []string, topic, group string, idem Deduper, dlq deadLetterWriter, handler Handler) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	return newConsumer(log, r, topic, idem, dlq, handler)
}

func newConsumer(log *slog.Logger, r reader, topic string, idem Deduper, dlq deadLetterWriter, handler Handler) *Consumer {
	return &Consumer{
		log:     log,
		reader:  r,
		dlq:     dlq,
		dlt:     topic + ".dlt",
		idem:    idem,
		handler: handler,
		tracer:  otel.Tracer("notification-consumer"),
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}
		c.process(ctx, msg)
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("commit failed", "topic", msg.Topic, "offset", msg.Offset, "err", err)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	key := idempotency.Key(msg.Topic, string(msg.Key))
	seen, err := c.idem.Seen(ctx, key)
	if err != nil {
		// Dedup store down: handling anyway risks a duplicate email, which
		// at-least-once already allows. Prefer that over losing the event.
		c.log.Error("idempotency check failed", "key", key, "err", err)
	} else if seen {
		c.log.Info("duplicate message skipped", "key", key)
		return
	}

	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "ConsumeConfirmation")
	defer span.End()

	if err := c.handler(msgCtx, msg.Value); err != nil {
		c.log.Error("message processing failed, dead-lettering",
			"topic", msg.Topic, "key", string(msg.Key), "err", err)
		c.deadLetter(msgCtx, msg, err)
	}
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, cause error) {
	dlqMsg := kafka.Message{
		Topic:   c.dlt,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: append(msg.Headers, kafka.Header{Key: "dead_letter_reason", Value: []byte(cause.Error())}),
	}
	if err := c.dlq.WriteMessages(ctx, dlqMsg); err != nil {
		c.log.Error("dead letter write failed", "topic", c.dlt, "key", string(msg.Key), "err", err)
	}
}
