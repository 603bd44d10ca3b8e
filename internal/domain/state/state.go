// Package state defines the game-state document the projector maintains:
// one root with independent slices, no cross-slice pointers. References
// between slices are by identifier only (ship-id, market-id,
// system-address, mission-id, carrier-id).
package state

// SliceName identifies one top-level section of the game state.
type SliceName string

const (
	SliceCommander SliceName = "commander"
	SliceShip      SliceName = "ship"
	SliceLocation  SliceName = "location"
	SliceMaterials SliceName = "materials"
	SliceMissions  SliceName = "missions"
	SliceSession   SliceName = "session"
	SliceCarrier   SliceName = "carrier"
	SliceOnFoot    SliceName = "odyssey"
)

// Meta carries bookkeeping for the whole document.
type Meta struct {
	// Initialized flips to true on the first LoadGame or Location event
	// and never flips back.
	Initialized bool `json:"initialized"`
	// LastUpdated is the ISO-8601 time of the most recent slice broadcast.
	LastUpdated string `json:"lastUpdated"`
}

// GameState is the root document. It is created once with zeroed slices,
// mutated only by the projector, and lives for the process lifetime. The
// carrier slice stays nil until a CarrierStats event arrives.
type GameState struct {
	Commander Commander `json:"commander"`
	Ship      Ship      `json:"ship"`
	Location  Location  `json:"location"`
	Materials Materials `json:"materials"`
	Missions  []Mission `json:"missions"`
	Session   Session   `json:"session"`
	Carrier   *Carrier  `json:"carrier"`
	OnFoot    OnFoot    `json:"odyssey"`
	Meta      Meta      `json:"meta"`
}

// New returns a zeroed game state document.
func New() *GameState {
	return &GameState{
		Missions: []Mission{},
	}
}

// Clone returns a deep copy of the whole document, safe to hand to
// another goroutine while the projector keeps mutating the original.
func (g *GameState) Clone() *GameState {
	clone := &GameState{
		Commander: g.Commander,
		Ship:      g.Ship.Clone(),
		Location:  g.Location.Clone(),
		Materials: g.Materials.Clone(),
		Missions:  cloneMissions(g.Missions),
		Session:   g.Session.Clone(),
		OnFoot:    g.OnFoot.Clone(),
		Meta:      g.Meta,
	}
	if g.Carrier != nil {
		carrier := g.Carrier.Clone()
		clone.Carrier = &carrier
	}
	return clone
}

// Slice returns a deep copy of the named slice, or nil for an unknown
// name or an absent carrier.
func (g *GameState) Slice(name SliceName) any {
	switch name {
	case SliceCommander:
		return g.Commander
	case SliceShip:
		return g.Ship.Clone()
	case SliceLocation:
		return g.Location.Clone()
	case SliceMaterials:
		return g.Materials.Clone()
	case SliceMissions:
		return cloneMissions(g.Missions)
	case SliceSession:
		return g.Session.Clone()
	case SliceCarrier:
		if g.Carrier == nil {
			return nil
		}
		return g.Carrier.Clone()
	case SliceOnFoot:
		return g.OnFoot.Clone()
	}
	return nil
}
