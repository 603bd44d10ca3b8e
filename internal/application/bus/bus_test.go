package bus_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdrlink/edcore/internal/application/bus"
	"github.com/cmdrlink/edcore/internal/domain/journal"
)

func newBus() *bus.Bus {
	return bus.New(zerolog.Nop())
}

func TestEmit_SynchronousDelivery(t *testing.T) {
	// Arrange
	b := newBus()
	var got []string
	b.Subscribe(bus.JournalTopic("FSDJump"), func(_ bus.Topic, payload any) {
		ev := payload.(*journal.Event)
		got = append(got, ev.Str("StarSystem"))
	})

	// Act - delivery completes before Emit returns
	b.Emit(bus.JournalTopic("FSDJump"), journal.ParseLine([]byte(`{"timestamp":"T","event":"FSDJump","StarSystem":"Sol"}`)))

	// Assert
	assert.Equal(t, []string{"Sol"}, got)
}

func TestEmitJournal_WildcardAndPerKind(t *testing.T) {
	b := newBus()
	var order []string
	b.Subscribe(bus.TopicJournalAll, func(bus.Topic, any) { order = append(order, "wildcard") })
	b.Subscribe(bus.JournalTopic("Docked"), func(bus.Topic, any) { order = append(order, "kind") })

	b.EmitJournal(journal.ParseLine([]byte(`{"timestamp":"T","event":"Docked"}`)))

	// Wildcard subscribers run first so the projector sees the event
	// before kind-specific feature handlers.
	assert.Equal(t, []string{"wildcard", "kind"}, order)
}

func TestUnsubscribe(t *testing.T) {
	b := newBus()
	calls := 0
	token := b.Subscribe(bus.TopicGameStateChange, func(bus.Topic, any) { calls++ })

	b.Emit(bus.TopicGameStateChange, nil)
	b.Unsubscribe(token)
	b.Emit(bus.TopicGameStateChange, nil)

	assert.Equal(t, 1, calls)
}

func TestSubscribeDuringDispatchDoesNotAffectInProgress(t *testing.T) {
	b := newBus()
	lateCalls := 0
	b.Subscribe(bus.TopicCompanionAll, func(bus.Topic, any) {
		b.Subscribe(bus.TopicCompanionAll, func(bus.Topic, any) { lateCalls++ })
	})

	b.Emit(bus.TopicCompanionAll, nil)
	require.Equal(t, 0, lateCalls, "handler added mid-dispatch must not run in that dispatch")

	b.Emit(bus.TopicCompanionAll, nil)
	assert.Equal(t, 1, lateCalls)
}

func TestUnsubscribeDuringDispatch(t *testing.T) {
	b := newBus()
	var tokens []bus.Token
	calls := 0
	// First handler removes the second; the snapshot still delivers to it.
	tokens = append(tokens, b.Subscribe(bus.TopicWatcherError, func(bus.Topic, any) {
		b.Unsubscribe(tokens[1])
	}))
	tokens = append(tokens, b.Subscribe(bus.TopicWatcherError, func(bus.Topic, any) { calls++ }))

	b.Emit(bus.TopicWatcherError, nil)
	b.Emit(bus.TopicWatcherError, nil)

	assert.Equal(t, 1, calls)
}

func TestEmitCompanion_PerFileTopic(t *testing.T) {
	b := newBus()
	var files []string
	b.Subscribe(bus.CompanionTopic("Cargo.json"), func(_ bus.Topic, payload any) {
		files = append(files, payload.(*bus.CompanionUpdate).File)
	})
	b.Subscribe(bus.TopicCompanionAll, func(_ bus.Topic, payload any) {
		files = append(files, "*")
	})

	b.EmitCompanion(&bus.CompanionUpdate{File: "Cargo.json", Data: map[string]any{}})
	b.EmitCompanion(&bus.CompanionUpdate{File: "Market.json", Data: map[string]any{}})

	assert.Equal(t, []string{"*", "Cargo.json", "*"}, files)
}
