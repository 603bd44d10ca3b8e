package broadcast_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdrlink/edcore/internal/adapters/broadcast"
)

func newFabric(opts ...broadcast.Option) *broadcast.Fabric {
	return broadcast.New(zerolog.Nop(), opts...)
}

func TestSubscribe_ExactTopic(t *testing.T) {
	f := newFabric()
	sub := f.Subscribe("state:ship")

	f.Broadcast("state:ship", "a")
	f.Broadcast("state:location", "b")

	env := <-sub.C()
	assert.Equal(t, "state:ship", env.Type)
	assert.Equal(t, "a", env.Payload)
	select {
	case env := <-sub.C():
		t.Fatalf("unexpected envelope %q", env.Type)
	default:
	}
}

func TestSubscribe_Wildcards(t *testing.T) {
	f := newFabric()
	all := f.Subscribe("*")
	states := f.Subscribe("state:*")

	f.Broadcast("journal:event", nil)
	f.Broadcast("state:session", nil)

	assert.Equal(t, "journal:event", (<-all.C()).Type)
	assert.Equal(t, "state:session", (<-all.C()).Type)
	assert.Equal(t, "state:session", (<-states.C()).Type)
}

func TestBroadcast_OrderAndSequence(t *testing.T) {
	f := newFabric()
	sub := f.Subscribe("state:*")

	f.Broadcast("state:ship", 1)
	f.Broadcast("state:ship", 2)
	f.Broadcast("state:ship", 3)

	var last int64
	for i := 1; i <= 3; i++ {
		env := <-sub.C()
		assert.Equal(t, i, env.Payload)
		assert.Greater(t, env.Sequence, last)
		last = env.Sequence
	}
}

func TestBroadcastAt_ExplicitTimestamp(t *testing.T) {
	f := newFabric()
	sub := f.Subscribe("state:session")

	f.BroadcastAt("state:session", nil, "2024-05-01T18:03:11Z")

	assert.Equal(t, "2024-05-01T18:03:11Z", (<-sub.C()).Timestamp)
}

func TestSlowSubscriber_DropsOldest(t *testing.T) {
	// Arrange - buffer of 2, nobody draining
	f := newFabric(broadcast.WithBufferSize(2))
	sub := f.Subscribe("journal:event")

	// Act
	for i := 1; i <= 5; i++ {
		f.Broadcast("journal:event", i)
	}

	// Assert - the two newest survive, the rest were dropped oldest-first
	assert.Equal(t, int64(3), sub.Lagged())
	assert.Equal(t, 4, (<-sub.C()).Payload)
	assert.Equal(t, 5, (<-sub.C()).Payload)
}

func TestUnsubscribe_ClosesChannel(t *testing.T) {
	f := newFabric()
	sub := f.Subscribe("*")

	f.Unsubscribe(sub.Token())
	f.Broadcast("state:ship", nil)

	_, open := <-sub.C()
	assert.False(t, open)
}

func TestSubscribeFunc_DrainsOnOwnGoroutine(t *testing.T) {
	f := newFabric()
	got := make(chan broadcast.Envelope, 1)
	token := f.SubscribeFunc(func(env broadcast.Envelope) { got <- env }, "status:flags")
	require.NotEmpty(t, token)

	f.Broadcast("status:flags", "payload")

	select {
	case env := <-got:
		assert.Equal(t, "status:flags", env.Type)
	case <-time.After(time.Second):
		t.Fatal("sink never received the envelope")
	}
	f.Unsubscribe(token)
}
