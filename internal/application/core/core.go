// Package core assembles the pipeline: watchers feed the bus, the
// projector folds the stream into state, and the fabric fans envelopes
// out to external subscribers. It is the single entry point embedders
// and the daemon use.
package core

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cmdrlink/edcore/internal/adapters/broadcast"
	"github.com/cmdrlink/edcore/internal/adapters/metrics"
	"github.com/cmdrlink/edcore/internal/application/bus"
	"github.com/cmdrlink/edcore/internal/application/projector"
	"github.com/cmdrlink/edcore/internal/application/watcher"
	"github.com/cmdrlink/edcore/internal/domain/journal"
	"github.com/cmdrlink/edcore/internal/domain/state"
	"github.com/cmdrlink/edcore/internal/infrastructure/config"
)

// Fabric topics the core publishes itself, on top of the projector's
// state:* and status:flags envelopes.
const (
	// TopicJournalBatch is broadcast once after the initial replay,
	// before any live event, carrying the replayed event count.
	TopicJournalBatch = "journal:batch"
	// TopicJournalEvent carries every live journal event. Replayed
	// events are summarized by journal:batch instead.
	TopicJournalEvent = "journal:event"
	// TopicGameStateChange mirrors the bus slice-change notification.
	TopicGameStateChange = "gamestate:change"
)

// BatchInfo is the journal:batch payload.
type BatchInfo struct {
	Events int    `json:"events"`
	Dir    string `json:"dir"`
}

// Core owns the assembled pipeline.
type Core struct {
	cfg    *config.Config
	logger zerolog.Logger

	bus       *bus.Bus
	fabric    *broadcast.Fabric
	projector *projector.Projector
	journal   *watcher.JournalWatcher
	sidecar   *watcher.SidecarWatcher
	collector *metrics.CoreMetricsCollector

	metricsServer *http.Server

	mu      sync.Mutex
	started bool
	mirrors []bus.Token
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New wires the pipeline from configuration. Nothing starts until
// Start is called.
func New(cfg *config.Config, logger zerolog.Logger) (*Core, error) {
	c := &Core{
		cfg:    cfg,
		logger: logger.With().Str("component", "core").Logger(),
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		c.collector = metrics.NewCoreMetricsCollector()
		if err := c.collector.Register(); err != nil {
			return nil, err
		}
	}

	c.bus = bus.New(logger)

	fabricOpts := []broadcast.Option{broadcast.WithBufferSize(cfg.Broadcast.BufferSize)}
	if c.collector != nil {
		fabricOpts = append(fabricOpts, broadcast.WithRecorder(c.collector))
	}
	c.fabric = broadcast.New(logger, fabricOpts...)

	var projRecorder projector.Recorder
	if c.collector != nil {
		projRecorder = c.collector
	}
	c.projector = projector.New(c.bus, c.fabric, logger, projRecorder)
	c.projector.Attach()

	journalOpts := []watcher.JournalOption{
		watcher.WithJournalDelays(cfg.Watcher.NewFileDelay, cfg.Watcher.StabilityDelay),
	}
	sidecarOpts := []watcher.SidecarOption{
		watcher.WithSidecarDelays(cfg.Watcher.SidecarStability, cfg.Watcher.StatusStability),
	}
	if c.collector != nil {
		journalOpts = append(journalOpts, watcher.WithJournalRecorder(c.collector))
		sidecarOpts = append(sidecarOpts, watcher.WithSidecarRecorder(c.collector))
	}
	c.journal = watcher.NewJournalWatcher(c.bus, logger, journalOpts...)
	c.sidecar = watcher.NewSidecarWatcher(c.bus, logger, sidecarOpts...)

	// Watcher lifecycle events go out on the fabric too, so external
	// subscribers see the pipeline come and go.
	for _, topic := range []bus.Topic{bus.TopicWatcherStarted, bus.TopicWatcherStopped, bus.TopicWatcherError} {
		c.bus.Subscribe(topic, func(t bus.Topic, payload any) {
			c.fabric.Broadcast(string(t), payload)
		})
	}

	return c, nil
}

// Start replays the newest journal, reads the present sidecars, then
// begins live watching. The journal:batch and state:full envelopes are
// broadcast after the replay settles, before any live event can land.
// Returns the number of replayed events.
func (c *Core) Start(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return 0, watcher.ErrAlreadyWatching
	}

	dir := c.cfg.Watcher.JournalDir
	c.logger.Info().Str("dir", dir).Msg("starting core")

	runCtx, cancel := context.WithCancel(ctx)

	replayed, err := c.journal.Start(runCtx, dir)
	if err != nil {
		cancel()
		return 0, err
	}
	if err := c.sidecar.Start(runCtx, dir); err != nil {
		_ = c.journal.Stop()
		cancel()
		return 0, err
	}

	c.fabric.Broadcast(TopicJournalBatch, &BatchInfo{Events: replayed, Dir: dir})
	c.projector.BroadcastFull()

	// Mirror the live streams onto the fabric only now, so external
	// subscribers always see the batch summary and the full snapshot
	// before the first journal:event or gamestate:change envelope.
	c.mirrors = append(c.mirrors,
		c.bus.Subscribe(bus.TopicJournalAll, func(_ bus.Topic, payload any) {
			ev, ok := payload.(*journal.Event)
			if !ok {
				return
			}
			if ev.Timestamp != "" {
				c.fabric.BroadcastAt(TopicJournalEvent, ev, ev.Timestamp)
				return
			}
			c.fabric.Broadcast(TopicJournalEvent, ev)
		}),
		c.bus.Subscribe(bus.TopicGameStateChange, func(_ bus.Topic, payload any) {
			c.fabric.Broadcast(TopicGameStateChange, payload)
		}),
	)

	if c.cfg.Metrics.Enabled {
		c.metricsServer = metrics.StartServer(c.logger,
			c.cfg.Metrics.Host, c.cfg.Metrics.Port, c.cfg.Metrics.Path)
	}

	c.cancel = cancel
	c.started = true
	c.wg.Add(1)
	go c.tickSession(runCtx)

	c.logger.Info().Int("replayed", replayed).Msg("core started")
	return replayed, nil
}

// Stop tears the pipeline down in reverse order and closes every
// fabric subscription.
func (c *Core) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return watcher.ErrNotWatching
	}
	c.started = false

	for _, token := range c.mirrors {
		c.bus.Unsubscribe(token)
	}
	c.mirrors = nil

	if err := c.sidecar.Stop(); err != nil {
		c.logger.Warn().Err(err).Msg("sidecar watcher stop")
	}
	if err := c.journal.Stop(); err != nil {
		c.logger.Warn().Err(err).Msg("journal watcher stop")
	}

	c.cancel()
	c.wg.Wait()

	if c.metricsServer != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), c.cfg.Daemon.ShutdownTimeout)
		defer done()
		_ = c.metricsServer.Shutdown(shutdownCtx)
		c.metricsServer = nil
	}

	c.fabric.Close()
	c.logger.Info().Msg("core stopped")
	return nil
}

// tickSession bumps the session play-time counter while the core runs.
func (c *Core) tickSession(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.Daemon.SessionTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.projector.TickSession()
		}
	}
}

// GetState returns a deep copy of the whole state document.
func (c *Core) GetState() *state.GameState {
	return c.projector.Snapshot()
}

// GetSlice returns a deep copy of one named slice, or nil for a slice
// that has no data yet.
func (c *Core) GetSlice(name state.SliceName) any {
	return c.projector.SliceSnapshot(name)
}

// IsInitialized reports whether the projector has seen a LoadGame or
// Location event.
func (c *Core) IsInitialized() bool {
	return c.projector.IsInitialized()
}

// EventsProcessed returns the number of journal events the projector
// has seen, replay included.
func (c *Core) EventsProcessed() int64 {
	return c.projector.EventsProcessed()
}

// ResetSession zeroes the session counters without touching any other
// slice.
func (c *Core) ResetSession() {
	c.projector.ResetSession()
}

// SubscribeJournal registers a handler for one journal event kind, or
// every kind when kind is "*".
func (c *Core) SubscribeJournal(kind string, handler bus.Handler) bus.Token {
	if kind == "*" {
		return c.bus.Subscribe(bus.TopicJournalAll, handler)
	}
	return c.bus.Subscribe(bus.JournalTopic(kind), handler)
}

// SubscribeCompanion registers a handler for one sidecar file, or every
// file when file is "*".
func (c *Core) SubscribeCompanion(file string, handler bus.Handler) bus.Token {
	if file == "*" {
		return c.bus.Subscribe(bus.TopicCompanionAll, handler)
	}
	return c.bus.Subscribe(bus.CompanionTopic(file), handler)
}

// SubscribeStateChange registers a handler for every slice mutation.
func (c *Core) SubscribeStateChange(handler bus.Handler) bus.Token {
	return c.bus.Subscribe(bus.TopicGameStateChange, handler)
}

// Unsubscribe removes a bus subscription.
func (c *Core) Unsubscribe(token bus.Token) {
	c.bus.Unsubscribe(token)
}

// SubscribeBroadcast opens an envelope subscription on the fabric.
func (c *Core) SubscribeBroadcast(topics ...string) *broadcast.Subscription {
	return c.fabric.Subscribe(topics...)
}

// SubscribeBroadcastFunc attaches a sink function to the fabric.
func (c *Core) SubscribeBroadcastFunc(sink func(broadcast.Envelope), topics ...string) string {
	return c.fabric.SubscribeFunc(sink, topics...)
}

// UnsubscribeBroadcast closes a fabric subscription.
func (c *Core) UnsubscribeBroadcast(token string) {
	c.fabric.Unsubscribe(token)
}
