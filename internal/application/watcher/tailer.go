// Package watcher turns file-system notifications from the game's write
// directory into bus traffic: tailed journal events and whole-document
// sidecar updates. All reads, parses and publishes for one watcher run
// on a single consumer goroutine, which is what gives the projector its
// serialized view of the stream.
package watcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/cmdrlink/edcore/internal/application/bus"
	"github.com/cmdrlink/edcore/internal/domain/journal"
)

// Timing defaults. The game flushes header events shortly after creating
// a new journal, and keeps appending to the active one in bursts.
const (
	DefaultNewFileDelay   = 200 * time.Millisecond
	DefaultStabilityDelay = 100 * time.Millisecond
)

// Recorder receives watcher metrics. A nil Recorder is allowed.
type Recorder interface {
	RecordParseError()
	RecordJournalRead(events int)
}

// tailState is the per-file cursor plus the held-back partial line.
type tailState struct {
	offset    int64
	remainder []byte
}

// JournalWatcher tails the journal directory: it replays the newest
// journal on start, then follows appends, carrying incomplete lines
// across reads.
type JournalWatcher struct {
	bus     *bus.Bus
	logger  zerolog.Logger
	metrics Recorder

	newFileDelay   time.Duration
	stabilityDelay time.Duration

	mu      sync.Mutex
	started bool
	dir     string
	current string
	cursors map[string]*tailState
	timers  map[string]*time.Timer

	fsw    *fsnotify.Watcher
	readCh chan string
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// JournalOption configures a JournalWatcher.
type JournalOption func(*JournalWatcher)

// WithJournalDelays overrides the new-file and write-stability debounce.
func WithJournalDelays(newFile, stability time.Duration) JournalOption {
	return func(w *JournalWatcher) {
		if newFile > 0 {
			w.newFileDelay = newFile
		}
		if stability > 0 {
			w.stabilityDelay = stability
		}
	}
}

// WithJournalRecorder attaches a metrics recorder.
func WithJournalRecorder(r Recorder) JournalOption {
	return func(w *JournalWatcher) { w.metrics = r }
}

// NewJournalWatcher creates a stopped journal watcher.
func NewJournalWatcher(b *bus.Bus, logger zerolog.Logger, opts ...JournalOption) *JournalWatcher {
	w := &JournalWatcher{
		bus:            b,
		logger:         logger.With().Str("component", "journal-watcher").Logger(),
		newFileDelay:   DefaultNewFileDelay,
		stabilityDelay: DefaultStabilityDelay,
		cursors:        make(map[string]*tailState),
		timers:         make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start replays the newest journal in dir end-to-end, installs the
// directory watch and begins tailing. Idempotent in the error sense:
// calling it on a running watcher returns ErrAlreadyWatching. The
// returned count is the number of events replayed.
func (w *JournalWatcher) Start(ctx context.Context, dir string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return 0, ErrAlreadyWatching
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return 0, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
	}
	w.dir = dir

	replayed, err := w.replayNewest()
	if err != nil {
		return 0, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return 0, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return 0, fmt.Errorf("watch %s: %w", dir, err)
	}
	w.fsw = fsw
	w.readCh = make(chan string, 64)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.started = true

	w.wg.Add(1)
	go w.consume(runCtx)

	w.bus.Emit(bus.TopicWatcherStarted, &bus.WatcherEvent{Watcher: "journal", Dir: dir})
	return replayed, nil
}

// Stop closes the directory watch and emits the stopped lifecycle
// event. A partial line still held in a remainder is discarded, not
// parsed.
func (w *JournalWatcher) Stop() error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return ErrNotWatching
	}
	w.started = false
	cancel := w.cancel
	fsw := w.fsw
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = make(map[string]*time.Timer)
	w.mu.Unlock()

	cancel()
	_ = fsw.Close()
	w.wg.Wait()

	w.bus.Emit(bus.TopicWatcherStopped, &bus.WatcherEvent{Watcher: "journal", Dir: w.dir})
	return nil
}

// replayNewest reads the most recent journal end-to-end, publishes every
// event, and leaves the cursor at end-of-file. Called under w.mu.
func (w *JournalWatcher) replayNewest() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", w.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && journal.IsJournalName(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return 0, nil
	}

	newest := journal.SortByDate(names)[0]
	path := filepath.Join(w.dir, newest)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	events := journal.ParseFile(content)
	for _, ev := range events {
		w.bus.EmitJournal(ev)
	}
	if w.metrics != nil {
		w.metrics.RecordJournalRead(len(events))
	}

	w.current = path
	w.cursors[path] = &tailState{offset: int64(len(content))}
	w.logger.Info().
		Str("file", newest).
		Int("events", len(events)).
		Msg("replayed newest journal")
	return len(events), nil
}

// consume is the single consumer: it drains raw notifications, debounces
// them, and performs every read+parse+publish itself.
func (w *JournalWatcher) consume(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.reportError("journal", err)
			}
		case path := <-w.readCh:
			w.mu.Lock()
			delete(w.timers, path)
			w.mu.Unlock()
			w.readTail(path)
		}
	}
}

func (w *JournalWatcher) handleFSEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if !journal.IsJournalName(name) {
		return
	}

	switch {
	case event.Has(fsnotify.Create):
		// New session: register a zero cursor and give the game a moment
		// to flush the header burst before the first read.
		w.mu.Lock()
		w.cursors[event.Name] = &tailState{}
		w.current = event.Name
		w.mu.Unlock()
		w.schedule(event.Name, w.newFileDelay)
	case event.Has(fsnotify.Write):
		w.mu.Lock()
		_, known := w.cursors[event.Name]
		if !known {
			// A write to a journal we never saw created: tail it from the
			// start of the unseen bytes.
			w.cursors[event.Name] = &tailState{}
			w.current = event.Name
		}
		w.mu.Unlock()
		w.schedule(event.Name, w.stabilityDelay)
	}
}

// schedule arms (or re-arms) the per-file debounce timer; the read only
// happens once writes pause for the delay.
func (w *JournalWatcher) schedule(path string, delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	if timer, ok := w.timers[path]; ok {
		timer.Reset(delay)
		return
	}
	w.timers[path] = time.AfterFunc(delay, func() {
		select {
		case w.readCh <- path:
		default:
			// Consumer backlog: the pending read already covers this write.
		}
	})
}

// readTail reads the bytes appended since the cursor, prepends the held
// remainder, publishes every complete line and keeps the trailing
// partial line for the next read.
func (w *JournalWatcher) readTail(path string) {
	w.mu.Lock()
	ts, ok := w.cursors[path]
	w.mu.Unlock()
	if !ok {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.reportError("journal", err)
		}
		return
	}
	size := info.Size()
	if size <= ts.offset {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.reportError("journal", err)
		}
		return
	}
	defer f.Close()

	if _, err := f.Seek(ts.offset, io.SeekStart); err != nil {
		w.reportError("journal", err)
		return
	}
	chunk := make([]byte, size-ts.offset)
	n, err := io.ReadFull(f, chunk)
	if err != nil && err != io.ErrUnexpectedEOF {
		w.reportError("journal", err)
		return
	}
	chunk = chunk[:n]

	buf := append(ts.remainder, chunk...)
	lines := bytes.Split(buf, []byte("\n"))
	if len(buf) > 0 && buf[len(buf)-1] != '\n' {
		ts.remainder = lines[len(lines)-1]
		lines = lines[:len(lines)-1]
	} else {
		ts.remainder = nil
	}

	published := 0
	for _, line := range lines {
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		ev := journal.ParseLine(trimmed)
		if ev == nil {
			if w.metrics != nil {
				w.metrics.RecordParseError()
			}
			w.logger.Debug().Str("file", filepath.Base(path)).Msg("dropped unparseable journal line")
			continue
		}
		w.bus.EmitJournal(ev)
		published++
	}

	ts.offset += int64(n)
	if w.metrics != nil && published > 0 {
		w.metrics.RecordJournalRead(published)
	}
}

func (w *JournalWatcher) reportError(which string, err error) {
	w.logger.Error().Err(err).Msg("watcher error")
	w.bus.Emit(bus.TopicWatcherError, &bus.WatcherEvent{Watcher: which, Dir: w.dir, Err: err.Error()})
}
