// Package broadcast fans the core's envelopes out to external
// subscribers. Every subscriber has its own bounded buffer; a subscriber
// that cannot keep up loses the OLDEST undelivered envelope (drop-oldest
// policy) and its lag counter is incremented. Envelopes that are
// delivered are delivered in broadcast order. The policy is fixed; it is
// part of the fabric's contract.
package broadcast

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultBufferSize is the per-subscriber envelope buffer depth.
const DefaultBufferSize = 256

// Envelope is the record every external subscriber receives.
type Envelope struct {
	Type          string `json:"type"`
	Payload       any    `json:"payload"`
	Timestamp     string `json:"timestamp"`
	CorrelationID string `json:"correlationId,omitempty"`
	Sequence      int64  `json:"sequence,omitempty"`
}

// Recorder receives fabric metrics. Implementations must be cheap; they
// run on the broadcast path.
type Recorder interface {
	RecordBroadcast(topic string)
	RecordDrop(topic string)
	SetSubscribers(n int)
}

// Subscription is one external subscriber's handle.
type Subscription struct {
	token   string
	topics  []string
	ch      chan Envelope
	lagged  atomic.Int64
	closed  atomic.Bool
	closeMu sync.Mutex
}

// Token returns the subscription's opaque identifier.
func (s *Subscription) Token() string { return s.token }

// C is the subscriber's envelope channel.
func (s *Subscription) C() <-chan Envelope { return s.ch }

// Lagged reports how many envelopes were dropped for this subscriber.
func (s *Subscription) Lagged() int64 { return s.lagged.Load() }

func (s *Subscription) matches(topic string) bool {
	for _, t := range s.topics {
		if t == topic || t == "*" {
			return true
		}
		// Prefix wildcard, e.g. "state:*" matches "state:ship".
		if prefix, ok := strings.CutSuffix(t, ":*"); ok &&
			strings.HasPrefix(topic, prefix+":") {
			return true
		}
	}
	return false
}

func (s *Subscription) close() {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed.CompareAndSwap(false, true) {
		close(s.ch)
	}
}

// Fabric is the outward fan-out point. Broadcast never blocks on a slow
// subscriber.
type Fabric struct {
	mu       sync.RWMutex
	subs     map[string]*Subscription
	sequence atomic.Int64
	metrics  Recorder
	logger   zerolog.Logger
	bufSize  int
}

// Option configures a Fabric.
type Option func(*Fabric)

// WithBufferSize overrides the per-subscriber buffer depth.
func WithBufferSize(n int) Option {
	return func(f *Fabric) {
		if n > 0 {
			f.bufSize = n
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(f *Fabric) { f.metrics = r }
}

// New creates an empty fabric.
func New(logger zerolog.Logger, opts ...Option) *Fabric {
	f := &Fabric{
		subs:    make(map[string]*Subscription),
		logger:  logger.With().Str("component", "broadcast").Logger(),
		bufSize: DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Subscribe registers a subscriber for a topic set ("*" for everything,
// "state:*" style prefixes allowed) and returns its handle.
func (f *Fabric) Subscribe(topics ...string) *Subscription {
	sub := &Subscription{
		token:  uuid.NewString(),
		topics: topics,
		ch:     make(chan Envelope, f.bufSize),
	}

	f.mu.Lock()
	f.subs[sub.token] = sub
	n := len(f.subs)
	f.mu.Unlock()

	if f.metrics != nil {
		f.metrics.SetSubscribers(n)
	}
	return sub
}

// SubscribeFunc registers a sink function drained by its own goroutine,
// so a slow sink can never stall the projector. Returns the token for
// Unsubscribe.
func (f *Fabric) SubscribeFunc(sink func(Envelope), topics ...string) string {
	sub := f.Subscribe(topics...)
	go func() {
		for env := range sub.ch {
			sink(env)
		}
	}()
	return sub.token
}

// Unsubscribe removes a subscriber and closes its channel.
func (f *Fabric) Unsubscribe(token string) {
	f.mu.Lock()
	sub, ok := f.subs[token]
	if ok {
		delete(f.subs, token)
	}
	n := len(f.subs)
	f.mu.Unlock()

	if !ok {
		return
	}
	sub.close()
	if f.metrics != nil {
		f.metrics.SetSubscribers(n)
	}
}

// Broadcast delivers an envelope to every matching subscriber, stamping
// the current time.
func (f *Fabric) Broadcast(topic string, payload any) {
	f.BroadcastAt(topic, payload, time.Now().UTC().Format(time.RFC3339))
}

// BroadcastAt delivers an envelope with an explicit timestamp. The
// projector uses this so the envelope timestamp always equals the state's
// lastUpdated stamp.
func (f *Fabric) BroadcastAt(topic string, payload any, timestamp string) {
	env := Envelope{
		Type:      topic,
		Payload:   payload,
		Timestamp: timestamp,
		Sequence:  f.sequence.Add(1),
	}

	f.mu.RLock()
	snapshot := make([]*Subscription, 0, len(f.subs))
	for _, sub := range f.subs {
		if sub.matches(topic) {
			snapshot = append(snapshot, sub)
		}
	}
	f.mu.RUnlock()

	for _, sub := range snapshot {
		f.deliver(sub, env)
	}
	if f.metrics != nil {
		f.metrics.RecordBroadcast(topic)
	}
}

func (f *Fabric) deliver(sub *Subscription, env Envelope) {
	sub.closeMu.Lock()
	defer sub.closeMu.Unlock()
	if sub.closed.Load() {
		return
	}
	for {
		select {
		case sub.ch <- env:
			return
		default:
		}
		// Buffer full: drop the oldest undelivered envelope and retry.
		select {
		case dropped := <-sub.ch:
			sub.lagged.Add(1)
			if f.metrics != nil {
				f.metrics.RecordDrop(dropped.Type)
			}
			f.logger.Debug().
				Str("token", sub.token).
				Str("dropped", dropped.Type).
				Int64("lagged", sub.lagged.Load()).
				Msg("slow subscriber, dropped oldest envelope")
		default:
		}
	}
}

// Close shuts down every subscription.
func (f *Fabric) Close() {
	f.mu.Lock()
	subs := f.subs
	f.subs = make(map[string]*Subscription)
	f.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
	if f.metrics != nil {
		f.metrics.SetSubscribers(0)
	}
}
