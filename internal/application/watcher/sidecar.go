package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/cmdrlink/edcore/internal/application/bus"
	"github.com/cmdrlink/edcore/internal/domain/watched"
)

// Sidecar timing defaults. Status.json is rewritten several times a
// second, so it gets a tighter debounce plus a rate limiter; the other
// sidecars change on station visits and menu actions.
const (
	DefaultSidecarStability = 100 * time.Millisecond
	DefaultStatusStability  = 50 * time.Millisecond
	DefaultStatusInterval   = 100 * time.Millisecond
)

// SidecarRecorder receives sidecar metrics. A nil recorder is allowed.
type SidecarRecorder interface {
	RecordSidecarUpdate(file string)
}

// SidecarWatcher watches the fixed sidecar files, deduplicates identical
// content and tolerates the half-written reads that come from watching a
// file the game is actively rewriting.
type SidecarWatcher struct {
	bus     *bus.Bus
	logger  zerolog.Logger
	metrics SidecarRecorder

	stability       time.Duration
	statusStability time.Duration
	statusLimiter   *rate.Limiter

	mu          sync.Mutex
	started     bool
	dir         string
	lastContent map[string]string
	timers      map[string]*time.Timer

	fsw    *fsnotify.Watcher
	readCh chan string
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SidecarOption configures a SidecarWatcher.
type SidecarOption func(*SidecarWatcher)

// WithSidecarDelays overrides the stability debounce for ordinary
// sidecars and for Status.json.
func WithSidecarDelays(stability, statusStability time.Duration) SidecarOption {
	return func(w *SidecarWatcher) {
		if stability > 0 {
			w.stability = stability
		}
		if statusStability > 0 {
			w.statusStability = statusStability
		}
	}
}

// WithSidecarRecorder attaches a metrics recorder.
func WithSidecarRecorder(r SidecarRecorder) SidecarOption {
	return func(w *SidecarWatcher) { w.metrics = r }
}

// NewSidecarWatcher creates a stopped sidecar watcher.
func NewSidecarWatcher(b *bus.Bus, logger zerolog.Logger, opts ...SidecarOption) *SidecarWatcher {
	w := &SidecarWatcher{
		bus:             b,
		logger:          logger.With().Str("component", "sidecar-watcher").Logger(),
		stability:       DefaultSidecarStability,
		statusStability: DefaultStatusStability,
		statusLimiter:   rate.NewLimiter(rate.Every(DefaultStatusInterval), 1),
		lastContent:     make(map[string]string),
		timers:          make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start reads every present sidecar once (the initial value), then
// watches the directory for changes.
func (w *SidecarWatcher) Start(ctx context.Context, dir string) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return ErrAlreadyWatching
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
	}
	w.dir = dir

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		w.mu.Unlock()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.fsw = fsw
	w.readCh = make(chan string, 64)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.started = true
	w.wg.Add(1)
	w.mu.Unlock()

	// Initial values outside the lock: readSidecar takes w.mu for the
	// dedup map. Changes landing meanwhile queue on the fsnotify channel
	// until consume starts.
	for _, name := range watched.Sidecars {
		w.readSidecar(filepath.Join(dir, name))
	}

	go w.consume(runCtx)

	w.bus.Emit(bus.TopicWatcherStarted, &bus.WatcherEvent{Watcher: "sidecar", Dir: dir})
	return nil
}

// Stop closes the watch and emits the stopped lifecycle event.
func (w *SidecarWatcher) Stop() error {
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

	w.bus.Emit(bus.TopicWatcherStopped, &bus.WatcherEvent{Watcher: "sidecar", Dir: w.dir})
	return nil
}

func (w *SidecarWatcher) consume(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(event.Name)
			if !watched.IsSidecar(name) {
				continue
			}
			delay := w.stability
			if name == watched.FileStatus {
				delay = w.statusStability
			}
			w.schedule(event.Name, delay)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.reportError(err)
			}
		case path := <-w.readCh:
			w.mu.Lock()
			delete(w.timers, path)
			w.mu.Unlock()

			if filepath.Base(path) == watched.FileStatus && !w.statusLimiter.Allow() {
				// Over the status read budget: re-arm instead of dropping,
				// so the final snapshot of a burst always lands.
				w.schedule(path, w.statusStability)
				continue
			}
			w.readSidecar(path)
		}
	}
}

func (w *SidecarWatcher) schedule(path string, delay time.Duration) {
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
		}
	})
}

// readSidecar reads the whole file and publishes it when it is new
// content and valid JSON. Empty and half-written files are skipped; the
// next change notification retries.
func (w *SidecarWatcher) readSidecar(path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.reportError(err)
		}
		return
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return
	}

	name := filepath.Base(path)
	w.mu.Lock()
	identical := w.lastContent[name] == trimmed
	w.mu.Unlock()
	if identical {
		return
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		// Mid-write read; the producer will trigger another change.
		return
	}

	w.mu.Lock()
	w.lastContent[name] = trimmed
	w.mu.Unlock()

	w.bus.EmitCompanion(&bus.CompanionUpdate{File: name, Data: doc})
	if w.metrics != nil {
		w.metrics.RecordSidecarUpdate(name)
	}
}

func (w *SidecarWatcher) reportError(err error) {
	w.logger.Error().Err(err).Msg("sidecar watcher error")
	w.bus.Emit(bus.TopicWatcherError, &bus.WatcherEvent{Watcher: "sidecar", Dir: w.dir, Err: err.Error()})
}
