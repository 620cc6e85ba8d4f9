// Package bus is the in-process fan-out for safety alerts, compliance events
// and system events. Publishing never blocks: each subscriber has its own
// bounded queue, and a slow subscriber loses its own oldest unconsumed items
// rather than stalling the publisher or its siblings. The audit trail, not
// the bus, is the authoritative record; dropping here is an availability
// choice for dashboards.
package bus

import (
	"log/slog"
	"sync"
	"time"

	"sitewatch/internal/alert"
	alertmetrics "sitewatch/internal/alert/metrics"
	"sitewatch/internal/compliance"
)

// Kind tags the payload carried by an envelope.
type Kind string

const (
	KindSafetyAlert     Kind = "safety_alert"
	KindComplianceEvent Kind = "compliance_event"
	KindSystemEvent     Kind = "system_event"
)

// Envelope is one delivered bus item. Exactly one payload pointer is set,
// matching Kind.
type Envelope struct {
	Kind        Kind      `json:"kind"`
	Seq         uint64    `json:"seq"`
	PublishedAt time.Time `json:"publishedAt"`

	Alert      *alert.SafetyAlert `json:"alert,omitempty"`
	Compliance *compliance.Event  `json:"compliance,omitempty"`
	System     *alert.SystemEvent `json:"system,omitempty"`
}

// Bus distributes envelopes to N concurrent subscribers with bounded replay
// for late joiners. Delivery is at-least-once in publish order per publisher;
// there is no global order across concurrent publishers.
type Bus struct {
	mu      sync.Mutex
	subs    map[uint64]*Subscription
	nextSub uint64
	seq     uint64
	replay  *replayRing

	bufSize int
	logger  *slog.Logger
	metrics *alertmetrics.Metrics
}

// Option configures the Bus.
type Option func(*Bus)

// WithReplayDepth sets how many recent envelopes a new subscriber receives.
func WithReplayDepth(n int) Option {
	return func(b *Bus) { b.replay = newReplayRing(n) }
}

// WithSubscriberBuffer sets the per-subscriber queue capacity.
func WithSubscriberBuffer(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.bufSize = n
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *alertmetrics.Metrics) Option {
	return func(b *Bus) { b.metrics = m }
}

// New creates a bus with the default replay depth and buffer size.
func New(logger *slog.Logger, opts ...Option) *Bus {
	b := &Bus{
		subs:    make(map[uint64]*Subscription),
		replay:  newReplayRing(10),
		bufSize: 64,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// PublishAlert broadcasts a safety alert.
func (b *Bus) PublishAlert(a alert.SafetyAlert) {
	b.publish(Envelope{Kind: KindSafetyAlert, Alert: &a})
}

// PublishCompliance broadcasts a compliance event.
func (b *Bus) PublishCompliance(ev compliance.Event) {
	b.publish(Envelope{Kind: KindComplianceEvent, Compliance: &ev})
}

// PublishSystem broadcasts a system event.
func (b *Bus) PublishSystem(ev alert.SystemEvent) {
	b.publish(Envelope{Kind: KindSystemEvent, System: &ev})
}

// publish stamps the envelope and fans it out. The bus lock covers only the
// sequence stamp, replay append and subscriber snapshot; enqueueing is
// per-subscriber and non-blocking, so a full or cancelled subscriber cannot
// stall anyone.
func (b *Bus) publish(env Envelope) {
	env.PublishedAt = time.Now().UTC()

	b.mu.Lock()
	b.seq++
	env.Seq = b.seq
	b.replay.add(env)
	targets := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		targets = append(targets, sub)
	}
	b.mu.Unlock()

	for _, sub := range targets {
		sub.enqueue(env)
	}
	if b.metrics != nil {
		b.metrics.EventsPublished.WithLabelValues(string(env.Kind)).Inc()
	}
}

// Subscribe registers a new subscriber. The returned subscription first
// receives the buffered replay (oldest first), then live envelopes. Cancel
// releases the queue deterministically and never disturbs the publisher.
func (b *Bus) Subscribe(opts ...SubscribeOption) *Subscription {
	sub := &Subscription{
		bus: b,
		ch:  make(chan Envelope, b.bufSize),
	}
	for _, opt := range opts {
		opt(sub)
	}

	// Registration and replay preload happen under the bus lock so the
	// subscriber neither misses nor double-receives an envelope published
	// while it joins.
	b.mu.Lock()
	b.nextSub++
	sub.id = b.nextSub
	for _, env := range b.replay.snapshot() {
		sub.enqueue(env)
	}
	b.subs[sub.id] = sub
	count := len(b.subs)
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.Subscribers.Set(float64(count))
	}
	return sub
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	delete(b.subs, id)
	count := len(b.subs)
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.Subscribers.Set(float64(count))
	}
}

// SubscriberCount returns the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*Subscription)

// WithKinds restricts delivery to the given envelope kinds.
func WithKinds(kinds ...Kind) SubscribeOption {
	return func(s *Subscription) {
		s.kinds = make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			s.kinds[k] = true
		}
	}
}

// Subscription is one subscriber's cancellable stream.
type Subscription struct {
	id  uint64
	bus *Bus

	mu      sync.Mutex
	ch      chan Envelope
	closed  bool
	dropped uint64
	kinds   map[Kind]bool
}

// C is the delivery channel. It is closed by Cancel.
func (s *Subscription) C() <-chan Envelope { return s.ch }

// Dropped returns how many envelopes this subscriber lost to backpressure.
func (s *Subscription) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Cancel removes the subscription from the bus and closes the channel.
// Safe to call concurrently with ongoing publishes; idempotent.
func (s *Subscription) Cancel() {
	s.bus.unsubscribe(s.id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// enqueue delivers the envelope without ever blocking: when the queue is
// full, the oldest unconsumed item for this subscriber is discarded.
func (s *Subscription) enqueue(env Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.kinds != nil && !s.kinds[env.Kind] {
		return
	}
	for {
		select {
		case s.ch <- env:
			return
		default:
		}
		select {
		case <-s.ch:
			s.dropped++
			if s.bus.metrics != nil {
				s.bus.metrics.EventsDropped.Inc()
			}
		default:
		}
	}
}
