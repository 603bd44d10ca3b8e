// Package projector folds the journal event stream and sidecar updates
// into the game-state document. It is the single owner of the state root:
// every mutation happens inside the projector, serialized by its lock,
// and every mutation ends with a per-slice broadcast.
package projector

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/cmdrlink/edcore/internal/application/bus"
	"github.com/cmdrlink/edcore/internal/domain/journal"
	"github.com/cmdrlink/edcore/internal/domain/state"
)

// Topics the projector publishes on the broadcast fabric.
const (
	TopicStatePrefix = "state:"
	TopicStateFull   = "state:full"
	TopicStatusFlags = "status:flags"
)

// Broadcaster is the outward fan-out the projector pushes envelopes to.
type Broadcaster interface {
	BroadcastAt(topic string, payload any, timestamp string)
}

// Recorder receives projector metrics. A nil Recorder is allowed.
type Recorder interface {
	RecordEvent(kind string)
	RecordSliceBroadcast(slice string)
}

type handlerFunc func(*journal.Event) []state.SliceName

type sidecarFunc func(*bus.CompanionUpdate) []state.SliceName

// Projector owns the game state. Handlers run one at a time; external
// readers get deep-copied snapshots.
type Projector struct {
	mu    sync.Mutex
	state *state.GameState

	bus     *bus.Bus
	fabric  Broadcaster
	logger  zerolog.Logger
	metrics Recorder

	handlers map[string]handlerFunc
	sidecars map[string]sidecarFunc

	eventsProcessed atomic.Int64

	// now is swappable for deterministic tests.
	now func() time.Time
}

// New creates a projector over a zeroed state document and registers the
// full handler set.
func New(b *bus.Bus, fabric Broadcaster, logger zerolog.Logger, metrics Recorder) *Projector {
	p := &Projector{
		state:   state.New(),
		bus:     b,
		fabric:  fabric,
		logger:  logger.With().Str("component", "projector").Logger(),
		metrics: metrics,
		now:     time.Now,
	}
	p.registerHandlers()
	return p
}

// Attach subscribes the projector to the journal wildcard and the
// sidecar wildcard so everything the watchers publish flows through it.
func (p *Projector) Attach() {
	p.bus.Subscribe(bus.TopicJournalAll, func(_ bus.Topic, payload any) {
		if ev, ok := payload.(*journal.Event); ok {
			p.HandleEvent(ev)
		}
	})
	p.bus.Subscribe(bus.TopicCompanionAll, func(_ bus.Topic, payload any) {
		if update, ok := payload.(*bus.CompanionUpdate); ok {
			p.HandleCompanion(update)
		}
	})
}

// HandleEvent applies one journal event. Events with no registered
// handler still count toward the processed total; they are not an error.
func (p *Projector) HandleEvent(ev *journal.Event) {
	p.eventsProcessed.Add(1)
	if p.metrics != nil {
		p.metrics.RecordEvent(ev.Name)
	}

	handler, ok := p.handlers[ev.Name]
	if !ok {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	dirty := handler(ev)
	p.broadcastLocked(dirty...)
}

// HandleCompanion applies one sidecar update.
func (p *Projector) HandleCompanion(update *bus.CompanionUpdate) {
	handler, ok := p.sidecars[update.File]
	if !ok {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	dirty := handler(update)
	p.broadcastLocked(dirty...)
}

// broadcastLocked stamps lastUpdated and pushes each dirty slice onto the
// fabric and the gamestate:change bus topic. Callers hold p.mu.
func (p *Projector) broadcastLocked(slices ...state.SliceName) {
	if len(slices) == 0 {
		return
	}
	timestamp := p.now().UTC().Format(time.RFC3339)
	p.state.Meta.LastUpdated = timestamp

	for _, name := range slices {
		snapshot := p.state.Slice(name)
		p.fabric.BroadcastAt(TopicStatePrefix+string(name), snapshot, timestamp)
		p.bus.Emit(bus.TopicGameStateChange, &bus.StateChange{
			Section: string(name),
			Data:    snapshot,
		})
		if p.metrics != nil {
			p.metrics.RecordSliceBroadcast(string(name))
		}
	}
}

// BroadcastFull pushes the whole root document on state:full. Called
// after the initial replay settles.
func (p *Projector) BroadcastFull() {
	p.mu.Lock()
	defer p.mu.Unlock()
	timestamp := p.now().UTC().Format(time.RFC3339)
	p.state.Meta.LastUpdated = timestamp
	p.fabric.BroadcastAt(TopicStateFull, p.state.Clone(), timestamp)
}

// Snapshot returns a deep copy of the whole state document.
func (p *Projector) Snapshot() *state.GameState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Clone()
}

// SliceSnapshot returns a deep copy of one slice.
func (p *Projector) SliceSnapshot(name state.SliceName) any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Slice(name)
}

// IsInitialized reports whether a LoadGame or Location event has been
// observed.
func (p *Projector) IsInitialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Meta.Initialized
}

// EventsProcessed returns the number of journal events seen.
func (p *Projector) EventsProcessed() int64 {
	return p.eventsProcessed.Load()
}

// ResetSession zeroes the session slice, exactly as LoadGame does.
func (p *Projector) ResetSession() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Session.Reset(p.now().UTC().Format(time.RFC3339))
	p.broadcastLocked(state.SliceSession)
}

// TickSession bumps the session elapsed-seconds counter. Runs at 1 Hz
// from the core's ticker; deliberately does not broadcast.
func (p *Projector) TickSession() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Session.ElapsedSeconds++
}

// registerHandlers wires the event registry. Handlers are grouped per
// slice in this package's other files.
func (p *Projector) registerHandlers() {
	p.handlers = map[string]handlerFunc{}
	p.sidecars = map[string]sidecarFunc{}

	p.registerCommanderHandlers()
	p.registerShipHandlers()
	p.registerLocationHandlers()
	p.registerMaterialsHandlers()
	p.registerMissionHandlers()
	p.registerSessionHandlers()
	p.registerCarrierHandlers()
	p.registerOnFootHandlers()
	p.registerSidecarHandlers()
}

func (p *Projector) on(kind string, handler handlerFunc) {
	p.handlers[kind] = handler
}

// markInitialized flips the one-way initialized flag.
func (p *Projector) markInitialized() {
	p.state.Meta.Initialized = true
}
