// Package sink relays alert bus output to external consumers. The relay is
// an ordinary bus subscriber: a slow or unreachable broker costs the relay
// its own queue slots and never stalls the bus.
package sink

import (
	"context"
	"encoding/json"
	"log/slog"

	"sitewatch/internal/alert/bus"
)

// Producer is the transport port. The franz-go wrapper in
// internal/platform/kafka/producer satisfies it; tests use a recorder.
type Producer interface {
	EnsureTopics(ctx context.Context, topics ...string) error
	Produce(ctx context.Context, topic string, key, value []byte, onErr func(error))
}

// KafkaRelay forwards envelopes to per-kind topics.
type KafkaRelay struct {
	bus      *bus.Bus
	producer Producer
	prefix   string
	logger   *slog.Logger
}

func NewKafkaRelay(b *bus.Bus, producer Producer, topicPrefix string, logger *slog.Logger) *KafkaRelay {
	if topicPrefix == "" {
		topicPrefix = "sitewatch"
	}
	return &KafkaRelay{bus: b, producer: producer, prefix: topicPrefix, logger: logger}
}

func (r *KafkaRelay) topics() (alerts, events, system string) {
	return r.prefix + ".alerts", r.prefix + ".compliance", r.prefix + ".system"
}

// Run subscribes and forwards until the context is cancelled. Produce is
// fire-and-forget; delivery failures are logged, not retried, because the
// audit trail is the record of truth and remote dashboards tolerate gaps.
func (r *KafkaRelay) Run(ctx context.Context) error {
	alerts, events, system := r.topics()
	if err := r.producer.EnsureTopics(ctx, alerts, events, system); err != nil {
		return err
	}

	sub := r.bus.Subscribe()
	defer sub.Cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-sub.C():
			if !ok {
				return nil
			}
			r.forward(ctx, env)
		}
	}
}

func (r *KafkaRelay) forward(ctx context.Context, env bus.Envelope) {
	alerts, events, system := r.topics()

	var topic, key string
	switch env.Kind {
	case bus.KindSafetyAlert:
		topic, key = alerts, env.Alert.ID.String()
	case bus.KindComplianceEvent:
		topic, key = events, env.Compliance.ID.String()
	case bus.KindSystemEvent:
		topic, key = system, env.System.Component
	default:
		return
	}

	value, err := json.Marshal(env)
	if err != nil {
		r.logger.Warn("drop unserializable envelope", "kind", env.Kind, "error", err)
		return
	}
	r.producer.Produce(ctx, topic, []byte(key), value, func(err error) {
		r.logger.Warn("kafka delivery failed", "topic", topic, "error", err)
	})
}
