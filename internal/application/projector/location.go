package projector

import (
	"github.com/cmdrlink/edcore/internal/domain/journal"
	"github.com/cmdrlink/edcore/internal/domain/state"
)

func (p *Projector) registerLocationHandlers() {
	p.on("Location", p.handleLocation)
	p.on("FSDJump", p.handleFSDJump)
	p.on("CarrierJump", p.handleCarrierJump)
	p.on("SupercruiseEntry", p.handleSupercruiseEntry)
	p.on("SupercruiseExit", p.handleSupercruiseExit)
	p.on("Docked", p.handleDocked)
	p.on("Undocked", p.handleUndocked)
	p.on("Touchdown", p.handleTouchdown)
	p.on("Liftoff", p.handleLiftoff)
	p.on("Embark", p.handleEmbark)
	p.on("Disembark", p.handleDisembark)
	p.on("LaunchSRV", p.flagHandler(func(l *state.Location) { l.InSRV = true }))
	p.on("DockSRV", p.flagHandler(func(l *state.Location) { l.InSRV = false }))
	p.on("LaunchFighter", p.flagHandler(func(l *state.Location) { l.InFighter = true }))
	p.on("DockFighter", p.flagHandler(func(l *state.Location) { l.InFighter = false }))
}

func (p *Projector) flagHandler(mutate func(*state.Location)) handlerFunc {
	return func(*journal.Event) []state.SliceName {
		mutate(&p.state.Location)
		return []state.SliceName{state.SliceLocation}
	}
}

// applySystemIdentity fills the system block shared by Location, FSDJump
// and CarrierJump payloads.
func applySystemIdentity(loc *state.Location, ev *journal.Event) {
	loc.System = ev.Str("StarSystem")
	loc.SystemAddress = ev.Int("SystemAddress")
	if pos, ok := ev.Payload["StarPos"].([]any); ok && len(pos) == 3 {
		for i := range loc.StarPos {
			if v, ok := pos[i].(float64); ok {
				loc.StarPos[i] = v
			}
		}
	}
	loc.Body = ev.Str("Body")
	loc.BodyID = ev.Int("BodyID")
	loc.BodyType = ev.Str("BodyType")
	loc.SystemAllegiance = ev.Str("SystemAllegiance")
	loc.SystemEconomy = ev.Str("SystemEconomy")
	loc.SystemSecondEconomy = ev.Str("SystemSecondEconomy")
	loc.SystemGovernment = ev.Str("SystemGovernment")
	loc.SystemSecurity = ev.Str("SystemSecurity")
	loc.Population = ev.Int("Population")
}

func stationFrom(ev *journal.Event) *state.Station {
	name := ev.Str("StationName")
	if name == "" {
		return nil
	}
	return &state.Station{
		Name:     name,
		Type:     ev.Str("StationType"),
		MarketID: ev.Int("MarketID"),
	}
}

// handleLocation fills the whole slice. The game emits it on load and
// after death, so it also counts as a system visit and initializes the
// document.
func (p *Projector) handleLocation(ev *journal.Event) []state.SliceName {
	loc := &p.state.Location
	applySystemIdentity(loc, ev)
	loc.Docked = ev.Bool("Docked")
	loc.DistFromStarLS = ev.Float("DistFromStarLS")
	if loc.Docked {
		loc.Station = stationFrom(ev)
	} else {
		loc.Station = nil
	}
	if ev.Bool("Taxi") {
		loc.InTaxi = true
	}
	if ev.Bool("Multicrew") {
		loc.InMulticrew = true
	}

	p.markInitialized()
	p.state.Session.RecordVisit(loc.System)
	return []state.SliceName{state.SliceLocation, state.SliceSession}
}

// handleFSDJump lands the ship in a new system in supercruise with every
// dock/land/on-foot flag cleared, and rolls the jump into the session
// aggregates.
func (p *Projector) handleFSDJump(ev *journal.Event) []state.SliceName {
	loc := &p.state.Location
	applySystemIdentity(loc, ev)
	loc.Supercruise = true
	loc.Docked = false
	loc.Landed = false
	loc.OnFoot = false
	loc.InSRV = false
	loc.InFighter = false
	loc.Station = nil
	loc.Surface = nil
	loc.DistFromStarLS = 0

	ship := &p.state.Ship
	if ev.Has("FuelLevel") {
		ship.Fuel.Main = ev.Float("FuelLevel")
	}

	session := &p.state.Session
	session.Jumps++
	session.TotalDistance += ev.Float("JumpDist")
	session.FuelUsed += ev.Float("FuelUsed")
	session.RecordVisit(loc.System)

	return []state.SliceName{state.SliceLocation, state.SliceShip, state.SliceSession}
}

// handleCarrierJump relocates the player with their carrier. Docked
// status and station fields survive the jump; the carrier slice, when
// present, follows along.
func (p *Projector) handleCarrierJump(ev *journal.Event) []state.SliceName {
	loc := &p.state.Location
	applySystemIdentity(loc, ev)
	if ev.Bool("Docked") {
		loc.Docked = true
		if station := stationFrom(ev); station != nil {
			loc.Station = station
		}
	}

	dirty := []state.SliceName{state.SliceLocation, state.SliceSession}
	p.state.Session.RecordVisit(loc.System)

	if p.state.Carrier != nil {
		p.state.Carrier.CurrentSystem = loc.System
		p.state.Carrier.CurrentBody = loc.Body
		p.state.Carrier.JumpHistory = append(p.state.Carrier.JumpHistory, loc.System)
		dirty = append(dirty, state.SliceCarrier)
	}
	return dirty
}

func (p *Projector) handleSupercruiseEntry(ev *journal.Event) []state.SliceName {
	loc := &p.state.Location
	loc.Supercruise = true
	loc.Docked = false
	loc.Landed = false
	loc.Station = nil
	loc.Surface = nil
	return []state.SliceName{state.SliceLocation}
}

func (p *Projector) handleSupercruiseExit(ev *journal.Event) []state.SliceName {
	loc := &p.state.Location
	loc.Supercruise = false
	loc.Body = ev.Str("Body")
	loc.BodyID = ev.Int("BodyID")
	loc.BodyType = ev.Str("BodyType")
	return []state.SliceName{state.SliceLocation}
}

func (p *Projector) handleDocked(ev *journal.Event) []state.SliceName {
	loc := &p.state.Location
	loc.Docked = true
	loc.Supercruise = false
	loc.Station = stationFrom(ev)
	if v := ev.Str("StarSystem"); v != "" {
		loc.System = v
	}
	if ev.Has("SystemAddress") {
		loc.SystemAddress = ev.Int("SystemAddress")
	}
	if ev.Has("DistFromStarLS") {
		loc.DistFromStarLS = ev.Float("DistFromStarLS")
	}
	return []state.SliceName{state.SliceLocation}
}

func (p *Projector) handleUndocked(ev *journal.Event) []state.SliceName {
	loc := &p.state.Location
	loc.Docked = false
	loc.Station = nil
	return []state.SliceName{state.SliceLocation}
}

// handleTouchdown only tracks player-controlled landings; NPC crew and
// recalls emit the same event with PlayerControlled=false.
func (p *Projector) handleTouchdown(ev *journal.Event) []state.SliceName {
	if ev.Has("PlayerControlled") && !ev.Bool("PlayerControlled") {
		return nil
	}
	loc := &p.state.Location
	loc.Landed = true
	if ev.Has("Latitude") {
		loc.Surface = &state.Surface{
			Latitude:  ev.Float("Latitude"),
			Longitude: ev.Float("Longitude"),
		}
	}
	if v := ev.Str("Body"); v != "" {
		loc.Body = v
	}
	return []state.SliceName{state.SliceLocation}
}

func (p *Projector) handleLiftoff(ev *journal.Event) []state.SliceName {
	if ev.Has("PlayerControlled") && !ev.Bool("PlayerControlled") {
		return nil
	}
	loc := &p.state.Location
	loc.Landed = false
	loc.Surface = nil
	return []state.SliceName{state.SliceLocation}
}

// handleEmbark is boarding a ship, SRV or taxi from on foot.
func (p *Projector) handleEmbark(ev *journal.Event) []state.SliceName {
	loc := &p.state.Location
	loc.OnFoot = false
	loc.InSRV = ev.Bool("SRV")
	loc.InTaxi = ev.Bool("Taxi")
	loc.InMulticrew = ev.Bool("Multicrew")
	p.state.OnFoot.OnFoot = false
	return []state.SliceName{state.SliceLocation, state.SliceOnFoot}
}

// handleDisembark is stepping out on foot; the vehicle flags clear and a
// station context, when present, is recorded.
func (p *Projector) handleDisembark(ev *journal.Event) []state.SliceName {
	loc := &p.state.Location
	loc.OnFoot = true
	loc.InSRV = false
	loc.InTaxi = false
	loc.InMulticrew = false
	if station := stationFrom(ev); station != nil {
		loc.Station = station
	}
	p.state.OnFoot.OnFoot = true
	return []state.SliceName{state.SliceLocation, state.SliceOnFoot}
}
