package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdrlink/edcore/internal/adapters/broadcast"
	"github.com/cmdrlink/edcore/internal/application/bus"
	"github.com/cmdrlink/edcore/internal/application/watcher"
	"github.com/cmdrlink/edcore/internal/domain/journal"
	"github.com/cmdrlink/edcore/internal/domain/state"
	"github.com/cmdrlink/edcore/internal/infrastructure/config"
)

func testConfig(dir string) *config.Config {
	cfg := &config.Config{}
	config.SetDefaults(cfg)
	cfg.Watcher.JournalDir = dir
	cfg.Watcher.NewFileDelay = 30 * time.Millisecond
	cfg.Watcher.StabilityDelay = 20 * time.Millisecond
	cfg.Daemon.SessionTick = 50 * time.Millisecond
	return cfg
}

func seedJournal(t *testing.T, dir string) {
	t.Helper()
	lines := `{"timestamp":"2024-03-01T18:00:00Z","event":"Fileheader","gameversion":"4.0"}
{"timestamp":"2024-03-01T18:00:01Z","event":"Commander","FID":"F100","Name":"Jameson"}
{"timestamp":"2024-03-01T18:00:02Z","event":"LoadGame","FID":"F100","Commander":"Jameson","Credits":1000000,"Ship":"Krait MkII","ShipID":3}
{"timestamp":"2024-03-01T18:00:03Z","event":"Location","StarSystem":"Shinrarta Dezhra","SystemAddress":3932277478106,"Docked":true,"StationName":"Jameson Memorial"}
`
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "Journal.2024-03-01T180000.01.log"), []byte(lines), 0o644))
}

func TestCore_StartReplaysAndBroadcasts(t *testing.T) {
	dir := t.TempDir()
	seedJournal(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Status.json"),
		[]byte(`{"Flags":16842761,"Pips":[4,8,0],"FireGroup":0}`), 0o644))

	c, err := New(testConfig(dir), zerolog.Nop())
	require.NoError(t, err)

	sub := c.SubscribeBroadcast(TopicJournalBatch, "state:full")

	replayed, err := c.Start(context.Background())
	require.NoError(t, err)
	defer c.Stop()
	assert.Equal(t, 4, replayed)

	// journal:batch lands first, carrying the replay count.
	env := <-sub.C()
	require.Equal(t, TopicJournalBatch, env.Type)
	batch, ok := env.Payload.(*BatchInfo)
	require.True(t, ok)
	assert.Equal(t, 4, batch.Events)

	env = <-sub.C()
	require.Equal(t, "state:full", env.Type)
	full, ok := env.Payload.(*state.GameState)
	require.True(t, ok)
	assert.True(t, full.Meta.Initialized)
	assert.Equal(t, "Jameson", full.Commander.Name)
	assert.Equal(t, "Shinrarta Dezhra", full.Location.System)

	assert.True(t, c.IsInitialized())
	assert.EqualValues(t, 4, c.EventsProcessed())
}

func TestCore_LiveEventReachesSubscribers(t *testing.T) {
	dir := t.TempDir()
	seedJournal(t, dir)

	c, err := New(testConfig(dir), zerolog.Nop())
	require.NoError(t, err)

	jumps := make(chan *journal.Event, 1)
	c.SubscribeJournal("FSDJump", func(_ bus.Topic, payload any) {
		if ev, ok := payload.(*journal.Event); ok {
			select {
			case jumps <- ev:
			default:
			}
		}
	})

	_, err = c.Start(context.Background())
	require.NoError(t, err)
	defer c.Stop()

	f, err := os.OpenFile(filepath.Join(dir, "Journal.2024-03-01T180000.01.log"),
		os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"timestamp":"2024-03-01T18:05:00Z","event":"FSDJump","StarSystem":"Sol","SystemAddress":10477373803,"JumpDist":7.56,"FuelUsed":0.8,"FuelLevel":15.2}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	select {
	case ev := <-jumps:
		assert.Equal(t, "Sol", ev.Str("StarSystem"))
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for FSDJump")
	}

	loc, ok := c.GetSlice(state.SliceLocation).(state.Location)
	require.True(t, ok)
	assert.Equal(t, "Sol", loc.System)
}

func TestCore_LiveJournalEnvelopesReachFabric(t *testing.T) {
	dir := t.TempDir()
	seedJournal(t, dir)

	c, err := New(testConfig(dir), zerolog.Nop())
	require.NoError(t, err)

	sub := c.SubscribeBroadcast("*")
	_, err = c.Start(context.Background())
	require.NoError(t, err)
	defer c.Stop()

	f, err := os.OpenFile(filepath.Join(dir, "Journal.2024-03-01T180000.01.log"),
		os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"timestamp":"2024-03-01T18:05:00Z","event":"FSDJump","StarSystem":"Sol","SystemAddress":10477373803,"JumpDist":7.56,"FuelUsed":0.8,"FuelLevel":15.2}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var journalEnv, changeEnv *broadcast.Envelope
	deadline := time.After(3 * time.Second)
	for journalEnv == nil || changeEnv == nil {
		select {
		case env := <-sub.C():
			switch env.Type {
			case TopicJournalEvent:
				// Replayed events stay summarized in journal:batch;
				// only the live append may show up here.
				ev, ok := env.Payload.(*journal.Event)
				require.True(t, ok)
				require.Equal(t, "FSDJump", ev.Name)
				e := env
				journalEnv = &e
			case TopicGameStateChange:
				e := env
				changeEnv = &e
			}
		case <-deadline:
			t.Fatal("timed out waiting for live fabric envelopes")
		}
	}

	// The journal envelope carries the event's own timestamp.
	assert.Equal(t, "2024-03-01T18:05:00Z", journalEnv.Timestamp)

	change, ok := changeEnv.Payload.(*bus.StateChange)
	require.True(t, ok)
	assert.NotEmpty(t, change.Section)
}

func TestCore_StartStopLifecycle(t *testing.T) {
	dir := t.TempDir()
	c, err := New(testConfig(dir), zerolog.Nop())
	require.NoError(t, err)

	assert.ErrorIs(t, c.Stop(), watcher.ErrNotWatching)

	_, err = c.Start(context.Background())
	require.NoError(t, err)

	_, err = c.Start(context.Background())
	assert.Error(t, err)

	require.NoError(t, c.Stop())
	assert.Error(t, c.Stop())
}

func TestCore_ResetSessionClearsCounters(t *testing.T) {
	dir := t.TempDir()
	seedJournal(t, dir)

	c, err := New(testConfig(dir), zerolog.Nop())
	require.NoError(t, err)
	_, err = c.Start(context.Background())
	require.NoError(t, err)
	defer c.Stop()

	c.ResetSession()

	sess, ok := c.GetSlice(state.SliceSession).(state.Session)
	require.True(t, ok)
	assert.Equal(t, 0, sess.Jumps)
	assert.Equal(t, int64(0), sess.CreditsEarned)
}

func TestCore_BroadcastSubscriptionFiltersTopics(t *testing.T) {
	dir := t.TempDir()
	seedJournal(t, dir)

	c, err := New(testConfig(dir), zerolog.Nop())
	require.NoError(t, err)

	sub := c.SubscribeBroadcast("state:commander")
	_, err = c.Start(context.Background())
	require.NoError(t, err)
	defer c.Stop()

	var got []broadcast.Envelope
	deadline := time.After(time.Second)
drain:
	for {
		select {
		case env := <-sub.C():
			got = append(got, env)
		case <-deadline:
			break drain
		}
	}

	require.NotEmpty(t, got)
	for _, env := range got {
		assert.Equal(t, "state:commander", env.Type)
	}
}
