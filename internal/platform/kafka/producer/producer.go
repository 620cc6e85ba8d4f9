// Package producer wraps the franz-go client behind the small surface the
// alert relay needs: ensure topics exist, produce records, close.
package producer

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"sitewatch/internal/platform/config"
)

// Producer publishes records to Kafka.
type Producer struct {
	client *kgo.Client
}

// New connects to the configured brokers. Returns nil if no brokers are
// configured (relay disabled).
func New(cfg config.KafkaConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Producer{client: client}, nil
}

// EnsureTopics creates the given topics if they do not already exist.
func (p *Producer) EnsureTopics(ctx context.Context, topics ...string) error {
	adm := kadm.NewClient(p.client)
	resps, err := adm.CreateTopics(ctx, 1, 1, nil, topics...)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	for _, resp := range resps.Sorted() {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

// Produce fires a record asynchronously. Delivery failures are reported to
// onErr; the caller never blocks on the broker.
func (p *Producer) Produce(ctx context.Context, topic string, key, value []byte, onErr func(error)) {
	record := &kgo.Record{Topic: topic, Key: key, Value: value}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil && onErr != nil {
			onErr(err)
		}
	})
}

// Close flushes buffered records and tears down the client.
func (p *Producer) Close() {
	p.client.Close()
}
