// Package redpanda publishes activity events to a Redpanda/Kafka topic.
//
// Each logged activity entry becomes one JSON record keyed by user id, so a
// user's events keep their order within a partition.
package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// DefaultTopic is used when no topic is configured.
const DefaultTopic = "career-activity"

// producer is the part of *kgo.Client the publisher needs.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// ActivityPublisher implements domain.ActivityPublisher on a kgo client.
type ActivityPublisher struct {
	client producer
	topic  string
}

var _ domain.ActivityPublisher = (*ActivityPublisher)(nil)

// NewActivityPublisher connects to brokers and makes sure topic exists.
// A failed topic creation is logged and ignored; the broker may auto-create.
func NewActivityPublisher(ctx context.Context, brokers []string, topic string) (*ActivityPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	kotelService := kotel.NewKotel(
		kotel.WithTracer(kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider()))),
	)
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RequestRetries(5),
		kgo.DialTimeout(10*time.Second),
		kgo.ProducerLinger(5*time.Millisecond),
		kgo.WithHooks(kotelService.Hooks()...),
	)
	if err != nil {
		return nil, fmt.Errorf("op=redpanda.new_client: %w", err)
	}
	if err := createTopicIfNotExists(ctx, client, topic, 3, 1); err != nil {
		slog.Warn("failed to create activity topic", slog.String("topic", topic), slog.Any("error", err))
	}
	slog.Info("redpanda activity publisher ready", slog.Any("brokers", brokers), slog.String("topic", topic))
	return &ActivityPublisher{client: client, topic: topic}, nil
}

// Publish writes e synchronously and returns the broker's first error.
func (p *ActivityPublisher) Publish(ctx context.Context, e domain.ActivityEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("op=redpanda.publish: marshal: %w", err)
	}
	rec := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(e.UserID),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "module", Value: []byte(e.Module)},
			{Key: "action", Value: []byte(e.Action)},
		},
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("op=redpanda.publish: %w", err)
	}
	return nil
}

// Close flushes and closes the client.
func (p *ActivityPublisher) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}

// NoopPublisher drops events; used when no brokers are configured.
type NoopPublisher struct{}

// Publish does nothing.
func (NoopPublisher) Publish(context.Context, domain.ActivityEntry) error { return nil }
