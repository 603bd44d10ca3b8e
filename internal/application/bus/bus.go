// Package bus is the in-process typed pub/sub connecting the watchers,
// the projector and feature modules. Dispatch is synchronous on the
// publisher's goroutine so the per-file event order stays observable by
// every subscriber; handlers doing heavy work must schedule their own
// goroutine.
package bus

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cmdrlink/edcore/internal/domain/journal"
)

// DefaultListenerCap is the per-topic subscriber count above which the
// bus logs a leak warning. Exceeding it is not an error.
const DefaultListenerCap = 128

// Token identifies one subscription for later removal.
type Token string

// Handler receives every payload published on a subscribed topic.
type Handler func(topic Topic, payload any)

type subscription struct {
	token   Token
	handler Handler
}

// Bus is a synchronous topic-based dispatcher. Subscribers may be added
// or removed at any time, including from inside a handler: an in-progress
// dispatch keeps working off the snapshot it started with.
type Bus struct {
	mu          sync.Mutex
	subs        map[Topic][]subscription
	byToken     map[Token]Topic
	listenerCap int
	logger      zerolog.Logger
}

// New creates an empty bus.
func New(logger zerolog.Logger) *Bus {
	return &Bus{
		subs:        make(map[Topic][]subscription),
		byToken:     make(map[Token]Topic),
		listenerCap: DefaultListenerCap,
		logger:      logger.With().Str("component", "bus").Logger(),
	}
}

// Subscribe registers a handler for a topic and returns its token.
func (b *Bus) Subscribe(topic Topic, handler Handler) Token {
	token := Token(uuid.NewString())

	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs[topic] = append(b.subs[topic], subscription{token: token, handler: handler})
	b.byToken[token] = topic

	if n := len(b.subs[topic]); n > b.listenerCap {
		b.logger.Warn().
			Str("topic", string(topic)).
			Int("listeners", n).
			Msg("listener cap exceeded, possible subscription leak")
	}
	return token
}

// Unsubscribe removes the subscription for a token. Unknown tokens are
// ignored.
func (b *Bus) Unsubscribe(token Token) {
	b.mu.Lock()
	defer b.mu.Unlock()

	topic, ok := b.byToken[token]
	if !ok {
		return
	}
	delete(b.byToken, token)

	subs := b.subs[topic]
	for i := range subs {
		if subs[i].token == token {
			b.subs[topic] = append(append([]subscription{}, subs[:i]...), subs[i+1:]...)
			break
		}
	}
}

// Emit delivers the payload to every subscriber of the topic before
// returning. The subscriber list is snapshotted under the lock; handlers
// run outside it.
func (b *Bus) Emit(topic Topic, payload any) {
	b.mu.Lock()
	snapshot := append([]subscription(nil), b.subs[topic]...)
	b.mu.Unlock()

	for _, sub := range snapshot {
		sub.handler(topic, payload)
	}
}

// EmitJournal publishes a parsed journal event on the wildcard channel
// and then on its per-kind channel.
func (b *Bus) EmitJournal(ev *journal.Event) {
	b.Emit(TopicJournalAll, ev)
	b.Emit(JournalTopic(ev.Name), ev)
}

// EmitCompanion publishes a sidecar update on its per-file channel and
// the companion wildcard.
func (b *Bus) EmitCompanion(update *CompanionUpdate) {
	b.Emit(TopicCompanionAll, update)
	b.Emit(CompanionTopic(update.File), update)
}
