package kafka

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
)

type mapDeduper struct {
	seen map[string]bool
}

func (d *mapDeduper) Seen(ctx context.Context, key string) (bool, error) {
	if d.seen == nil {
		d.seen = map[string]bool{}
	}
	was := d.seen[key]
	d.seen[key] = true
	return was, nil
}

type captureWriter struct {
	msgs []kafka.Message
}

func (w *captureWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func message(key, value string) kafka.Message {
	return kafka.Message{Topic: "order-confirmation", Key: []byte(key), Value: []byte(value)}
}

func testConsumer(handler Handler, dlq *captureWriter) *Consumer {
	log := slog.New(slog.DiscardHandler)
	return newConsumer(log, nil, "order-confirmation", &mapDeduper{}, dlq, handler)
}

func TestProcessHandlesOnce(t *testing.T) {
	var calls int
	dlq := &captureWriter{}
	c := testConsumer(func(ctx context.Context, payload []byte) error {
		calls++
		return nil
	}, dlq)

	msg := message("ORD-1A2B3C4D", `{"orderReference":"ORD-1A2B3C4D"}`)
	c.process(context.Background(), msg)
	c.process(context.Background(), msg) // redelivery

	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}
	if len(dlq.msgs) != 0 {
		t.Errorf("unexpected dead letters: %d", len(dlq.msgs))
	}
}

func TestProcessDeadLettersOnHandlerFailure(t *testing.T) {
	dlq := &captureWriter{}
	c := testConsumer(func(ctx context.Context, payload []byte) error {
		return errors.New("boom")
	}, dlq)

	c.process(context.Background(), message("ORD-DEADBEEF", `not json`))

	if len(dlq.msgs) != 1 {
		t.Fatalf("got %d dead letters, want 1", len(dlq.msgs))
	}
	dl := dlq.msgs[0]
	if dl.Topic != "order-confirmation.dlt" || string(dl.Key) != "ORD-DEADBEEF" || string(dl.Value) != "not json" {
		t.Errorf("dead letter = %+v", dl)
	}
	var reason string
	for _, h := range dl.Headers {
		if h.Key == "dead_letter_reason" {
			reason = string(h.Value)
		}
	}
	if reason != "boom" {
		t.Errorf("dead_letter_reason = %q", reason)
	}
}

type failingDeduper struct{}

func (failingDeduper) Seen(ctx context.Context, key string) (bool, error) {
	return false, errors.New("redis down")
}

func TestProcessContinuesWhenDeduperFails(t *testing.T) {
	var calls int
	log := slog.New(slog.DiscardHandler)
	c := newConsumer(log, nil, "order-confirmation", failingDeduper{}, &captureWriter{}, func(ctx context.Context, payload []byte) error {
		calls++
		return nil
	})

	c.process(context.Background(), message("ORD-1A2B3C4D", `{}`))
	if calls != 1 {
		t.Errorf("handler ran %d times, want 1 (dedup outage must not drop events)", calls)
	}
}
