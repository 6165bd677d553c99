package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"sitegate/internal/analytics/metrics"
)

// DefaultTopic receives pageview events when no topic is configured.
const DefaultTopic = "portal.pageviews"

// KafkaPublisher produces pageview events to a Kafka topic. Production is
// asynchronous: Publish enqueues into the client's bounded buffer and
// returns; delivery failures are logged and counted, never surfaced to the
// request path.
type KafkaPublisher struct {
	client  *kgo.Client
	topic   string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type KafkaOption func(*KafkaPublisher)

func WithLogger(logger *slog.Logger) KafkaOption {
	return func(p *KafkaPublisher) { p.logger = logger }
}

func WithMetrics(m *metrics.Metrics) KafkaOption {
	return func(p *KafkaPublisher) { p.metrics = m }
}

func WithTopic(topic string) KafkaOption {
	return func(p *KafkaPublisher) {
		if topic != "" {
			p.topic = topic
		}
	}
}

// NewKafka connects to the brokers and ensures the topic exists before any
// traffic is accepted.
func NewKafka(ctx context.Context, brokers []string, opts ...KafkaOption) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}

	p := &KafkaPublisher{
		topic:  DefaultTopic,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(p.topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, p.topic); err != nil {
		client.Close()
		return nil, err
	}

	p.client = client
	return p, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, 1, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("ensure topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("ensure topic %s: %w", topic, resp.Err)
	}
	return nil
}

// Publish serializes the event and enqueues it. The per-record callback
// handles delivery outcomes off the request path.
func (p *KafkaPublisher) Publish(ctx context.Context, view PageView) error {
	payload, err := json.Marshal(view)
	if err != nil {
		p.metrics.IncrementFailed()
		return fmt.Errorf("encode pageview: %w", err)
	}

	if view.DroppedProperties > 0 {
		p.metrics.IncrementTruncated()
	}

	record := &kgo.Record{
		Topic: p.topic,
		Value: payload,
	}
	p.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			p.metrics.IncrementFailed()
			p.logger.Error("pageview delivery failed", "topic", p.topic, "error", err)
			return
		}
		p.metrics.IncrementPublished()
	})
	return nil
}

// Close flushes buffered records with the given context's deadline, then
// releases the client.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	defer p.client.Close()
	if err := p.client.Flush(ctx); err != nil {
		return fmt.Errorf("flush pageviews: %w", err)
	}
	return nil
}
