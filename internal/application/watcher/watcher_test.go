package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdrlink/edcore/internal/application/bus"
	"github.com/cmdrlink/edcore/internal/domain/journal"
)

const eventually = 3 * time.Second

type journalSink struct {
	mu     sync.Mutex
	events []*journal.Event
}

func (s *journalSink) attach(b *bus.Bus) {
	b.Subscribe(bus.TopicJournalAll, func(_ bus.Topic, payload any) {
		ev, ok := payload.(*journal.Event)
		if !ok {
			return
		}
		s.mu.Lock()
		s.events = append(s.events, ev)
		s.mu.Unlock()
	})
}

func (s *journalSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.events))
	for i, ev := range s.events {
		names[i] = ev.Name
	}
	return names
}

func (s *journalSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *journalSink) at(i int) *journal.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[i]
}

type companionSink struct {
	mu      sync.Mutex
	updates []*bus.CompanionUpdate
}

func (s *companionSink) attach(b *bus.Bus) {
	b.Subscribe(bus.TopicCompanionAll, func(_ bus.Topic, payload any) {
		update, ok := payload.(*bus.CompanionUpdate)
		if !ok {
			return
		}
		s.mu.Lock()
		s.updates = append(s.updates, update)
		s.mu.Unlock()
	})
}

func (s *companionSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

func (s *companionSink) last() *bus.CompanionUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.updates) == 0 {
		return nil
	}
	return s.updates[len(s.updates)-1]
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func appendFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString(content)
	require.NoError(t, err)
}

func newJournalWatcher(t *testing.T) (*JournalWatcher, *bus.Bus, *journalSink) {
	t.Helper()
	b := bus.New(zerolog.Nop())
	sink := &journalSink{}
	sink.attach(b)
	w := NewJournalWatcher(b, zerolog.Nop(), WithJournalDelays(30*time.Millisecond, 20*time.Millisecond))
	return w, b, sink
}

func TestJournalWatcher_ReplaysNewestOnStart(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Journal.2024-01-01T100000.01.log"),
		`{"timestamp":"2024-01-01T10:00:00Z","event":"Fileheader"}`+"\n")
	writeFile(t, filepath.Join(dir, "Journal.2024-01-02T100000.01.log"),
		`{"timestamp":"2024-01-02T10:00:00Z","event":"Fileheader"}`+"\n"+
			`{"timestamp":"2024-01-02T10:00:01Z","event":"LoadGame","Commander":"Jameson"}`+"\n")

	w, _, sink := newJournalWatcher(t)

	// Act
	replayed, err := w.Start(context.Background(), dir)

	// Assert: only the newest journal is replayed
	require.NoError(t, err)
	assert.Equal(t, 2, replayed)
	assert.Equal(t, []string{"Fileheader", "LoadGame"}, sink.names())

	require.NoError(t, w.Stop())
}

func TestJournalWatcher_TailsAppendedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Journal.2024-01-02T100000.01.log")
	writeFile(t, path, `{"timestamp":"2024-01-02T10:00:00Z","event":"Fileheader"}`+"\n")

	w, _, sink := newJournalWatcher(t)
	_, err := w.Start(context.Background(), dir)
	require.NoError(t, err)
	defer w.Stop()

	appendFile(t, path, `{"timestamp":"2024-01-02T10:01:00Z","event":"FSDJump","StarSystem":"Sol"}`+"\n")

	require.Eventually(t, func() bool { return sink.count() == 2 }, eventually, 10*time.Millisecond)
	assert.Equal(t, "FSDJump", sink.names()[1])
}

func TestJournalWatcher_HoldsPartialLineAcrossReads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Journal.2024-01-02T100000.01.log")
	writeFile(t, path, `{"timestamp":"2024-01-02T10:00:00Z","event":"Fileheader"}`+"\n")

	w, _, sink := newJournalWatcher(t)
	_, err := w.Start(context.Background(), dir)
	require.NoError(t, err)
	defer w.Stop()

	// First flush ends mid-line: nothing new may be published.
	appendFile(t, path, `{"timestamp":"2024-01-02T10:01:00Z","event":"FSD`)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, sink.count())

	// The rest of the line arrives: exactly one whole event comes out.
	appendFile(t, path, `Jump","StarSystem":"Sol"}`+"\n")
	require.Eventually(t, func() bool { return sink.count() == 2 }, eventually, 10*time.Millisecond)

	ev := sink.at(1)
	assert.Equal(t, "FSDJump", ev.Name)
	assert.Equal(t, "Sol", ev.Str("StarSystem"))
}

func TestJournalWatcher_FollowsNewJournalFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Journal.2024-01-02T100000.01.log"),
		`{"timestamp":"2024-01-02T10:00:00Z","event":"Fileheader"}`+"\n")

	w, _, sink := newJournalWatcher(t)
	_, err := w.Start(context.Background(), dir)
	require.NoError(t, err)
	defer w.Stop()

	// New session file created while watching.
	newPath := filepath.Join(dir, "Journal.2024-01-02T110000.01.log")
	writeFile(t, newPath, `{"timestamp":"2024-01-02T11:00:00Z","event":"Fileheader"}`+"\n"+
		`{"timestamp":"2024-01-02T11:00:01Z","event":"Commander","Name":"Jameson"}`+"\n")

	require.Eventually(t, func() bool { return sink.count() == 3 }, eventually, 10*time.Millisecond)
	assert.Equal(t, []string{"Fileheader", "Fileheader", "Commander"}, sink.names())
}

func TestJournalWatcher_SkipsUnparseableLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Journal.2024-01-02T100000.01.log")
	writeFile(t, path, `{"timestamp":"2024-01-02T10:00:00Z","event":"Fileheader"}`+"\n")

	w, _, sink := newJournalWatcher(t)
	_, err := w.Start(context.Background(), dir)
	require.NoError(t, err)
	defer w.Stop()

	appendFile(t, path, "{not json at all\n"+
		`{"timestamp":"2024-01-02T10:01:00Z","event":"Music"}`+"\n")

	require.Eventually(t, func() bool { return sink.count() == 2 }, eventually, 10*time.Millisecond)
	assert.Equal(t, "Music", sink.names()[1])
}

func TestJournalWatcher_StartErrors(t *testing.T) {
	w, _, _ := newJournalWatcher(t)

	_, err := w.Start(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrDirectoryNotFound)

	dir := t.TempDir()
	_, err = w.Start(context.Background(), dir)
	require.NoError(t, err)
	defer w.Stop()

	_, err = w.Start(context.Background(), dir)
	assert.ErrorIs(t, err, ErrAlreadyWatching)
}

func TestJournalWatcher_StopWithoutStart(t *testing.T) {
	w, _, _ := newJournalWatcher(t)
	assert.ErrorIs(t, w.Stop(), ErrNotWatching)
}

func TestJournalWatcher_EmitsLifecycleEvents(t *testing.T) {
	dir := t.TempDir()
	b := bus.New(zerolog.Nop())

	var mu sync.Mutex
	var seen []bus.Topic
	record := func(topic bus.Topic, _ any) {
		mu.Lock()
		seen = append(seen, topic)
		mu.Unlock()
	}
	b.Subscribe(bus.TopicWatcherStarted, record)
	b.Subscribe(bus.TopicWatcherStopped, record)

	w := NewJournalWatcher(b, zerolog.Nop())
	_, err := w.Start(context.Background(), dir)
	require.NoError(t, err)
	require.NoError(t, w.Stop())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bus.Topic{bus.TopicWatcherStarted, bus.TopicWatcherStopped}, seen)
}

func newSidecarWatcher(t *testing.T) (*SidecarWatcher, *bus.Bus, *companionSink) {
	t.Helper()
	b := bus.New(zerolog.Nop())
	sink := &companionSink{}
	sink.attach(b)
	w := NewSidecarWatcher(b, zerolog.Nop(), WithSidecarDelays(30*time.Millisecond, 20*time.Millisecond))
	return w, b, sink
}

func TestSidecarWatcher_ReadsPresentFilesOnStart(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Status.json"), `{"Flags":16842765}`)
	writeFile(t, filepath.Join(dir, "Cargo.json"), `{"Vessel":"Ship","Count":0,"Inventory":[]}`)

	w, _, sink := newSidecarWatcher(t)
	require.NoError(t, w.Start(context.Background(), dir))
	defer w.Stop()

	assert.Equal(t, 2, sink.count())
}

func TestSidecarWatcher_StartReturnsWithPresentStatusFile(t *testing.T) {
	// Status.json is always present in a live game directory, so the
	// initial read path must not wedge Start.
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Status.json"), `{"Flags":1}`)

	w, _, sink := newSidecarWatcher(t)

	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background(), dir) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(eventually):
		t.Fatal("Start did not return with a present sidecar file")
	}
	defer w.Stop()

	assert.Equal(t, 1, sink.count())
	assert.Equal(t, "Status.json", sink.last().File)
}

func TestSidecarWatcher_PublishesOnChange(t *testing.T) {
	dir := t.TempDir()
	w, _, sink := newSidecarWatcher(t)
	require.NoError(t, w.Start(context.Background(), dir))
	defer w.Stop()

	writeFile(t, filepath.Join(dir, "Market.json"), `{"MarketID":3228342528,"Items":[]}`)

	require.Eventually(t, func() bool { return sink.count() == 1 }, eventually, 10*time.Millisecond)
	update := sink.last()
	assert.Equal(t, "Market.json", update.File)
	assert.Equal(t, float64(3228342528), update.Data["MarketID"])
}

func TestSidecarWatcher_DeduplicatesIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cargo.json")
	writeFile(t, path, `{"Vessel":"Ship","Count":2}`)

	w, _, sink := newSidecarWatcher(t)
	require.NoError(t, w.Start(context.Background(), dir))
	defer w.Stop()
	require.Equal(t, 1, sink.count())

	// Same bytes rewritten: no second publish.
	writeFile(t, path, `{"Vessel":"Ship","Count":2}`)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, sink.count())

	// Different content does publish.
	writeFile(t, path, `{"Vessel":"Ship","Count":3}`)
	require.Eventually(t, func() bool { return sink.count() == 2 }, eventually, 10*time.Millisecond)
}

func TestSidecarWatcher_SkipsEmptyAndInvalidContent(t *testing.T) {
	dir := t.TempDir()
	w, _, sink := newSidecarWatcher(t)
	require.NoError(t, w.Start(context.Background(), dir))
	defer w.Stop()

	writeFile(t, filepath.Join(dir, "Status.json"), "")
	writeFile(t, filepath.Join(dir, "Shipyard.json"), `{"PriceList": [truncat`)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 0, sink.count())

	// The next complete write goes through.
	writeFile(t, filepath.Join(dir, "Status.json"), `{"Flags":1}`)
	require.Eventually(t, func() bool { return sink.count() == 1 }, eventually, 10*time.Millisecond)
	assert.Equal(t, "Status.json", sink.last().File)
}

func TestSidecarWatcher_IgnoresUnwatchedFiles(t *testing.T) {
	dir := t.TempDir()
	w, _, sink := newSidecarWatcher(t)
	require.NoError(t, w.Start(context.Background(), dir))
	defer w.Stop()

	writeFile(t, filepath.Join(dir, "Screenshot.json"), `{"hello":1}`)
	writeFile(t, filepath.Join(dir, "notes.txt"), "plain text")
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 0, sink.count())
}

func TestSidecarWatcher_StartErrors(t *testing.T) {
	w, _, _ := newSidecarWatcher(t)
	err := w.Start(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrDirectoryNotFound)

	dir := t.TempDir()
	require.NoError(t, w.Start(context.Background(), dir))
	defer w.Stop()
	assert.ErrorIs(t, w.Start(context.Background(), dir), ErrAlreadyWatching)
}
