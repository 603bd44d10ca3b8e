package projector

import (
	"github.com/cmdrlink/edcore/internal/domain/journal"
	"github.com/cmdrlink/edcore/internal/domain/state"
)

func (p *Projector) registerCommanderHandlers() {
	p.on("Commander", p.handleCommander)
	p.on("LoadGame", p.handleLoadGame)
	p.on("Fileheader", p.handleFileheader)
	p.on("Rank", p.handleRank)
	p.on("Progress", p.handleProgress)
	p.on("Promotion", p.handlePromotion)
	p.on("Reputation", p.handleReputation)
	p.on("SquadronStartup", p.handleSquadronSet)
	p.on("JoinedSquadron", p.handleSquadronSet)
	p.on("LeftSquadron", p.handleSquadronLeft)
	p.on("PowerplayJoin", p.handlePowerplayJoin)
	p.on("PowerplayLeave", p.handlePowerplayLeave)
	p.on("PowerplayDefect", p.handlePowerplayDefect)
	p.on("Powerplay", p.handlePowerplaySnapshot)
}

func (p *Projector) handleCommander(ev *journal.Event) []state.SliceName {
	cmdr := &p.state.Commander
	cmdr.FID = ev.Str("FID")
	cmdr.Name = ev.Str("Name")
	return []state.SliceName{state.SliceCommander}
}

// handleLoadGame is the session boundary: it fills commander identity,
// seeds the ship scaffolding ahead of the authoritative Loadout, flips
// initialized, and resets the session slice. Only the session resets;
// other slices keep prior values until their own events overwrite them.
func (p *Projector) handleLoadGame(ev *journal.Event) []state.SliceName {
	cmdr := &p.state.Commander
	cmdr.FID = ev.Str("FID")
	cmdr.Name = ev.Str("Commander")
	cmdr.Credits = ev.Int("Credits")
	cmdr.Loan = ev.Int("Loan")
	cmdr.Horizons = ev.Bool("Horizons")
	cmdr.Odyssey = ev.Bool("Odyssey")
	cmdr.GameMode = ev.Str("GameMode")
	cmdr.Group = ev.Str("Group")
	cmdr.Language = ev.Str("language")
	cmdr.GameVersion = ev.Str("gameversion")
	cmdr.Build = ev.Str("build")

	ship := &p.state.Ship
	if v := ev.Str("Ship"); v != "" {
		ship.Ship = v
	}
	if ev.Has("ShipID") {
		ship.ShipID = ev.Int("ShipID")
	}
	if v := ev.Str("ShipName"); v != "" {
		ship.Name = v
	}
	if v := ev.Str("ShipIdent"); v != "" {
		ship.Ident = v
	}
	if ev.Has("FuelLevel") {
		ship.Fuel.Main = ev.Float("FuelLevel")
	}
	if ev.Has("FuelCapacity") {
		ship.Fuel.MainCapacity = ev.Float("FuelCapacity")
	}

	p.markInitialized()
	p.state.Session.Reset(ev.Timestamp)

	return []state.SliceName{state.SliceCommander, state.SliceShip, state.SliceSession}
}

func (p *Projector) handleFileheader(ev *journal.Event) []state.SliceName {
	cmdr := &p.state.Commander
	cmdr.Odyssey = ev.Bool("Odyssey")
	if v := ev.Str("gameversion"); v != "" {
		cmdr.GameVersion = v
	}
	if v := ev.Str("language"); v != "" {
		cmdr.Language = v
	}
	return []state.SliceName{state.SliceCommander}
}

func (p *Projector) handleRank(ev *journal.Event) []state.SliceName {
	ranks := &p.state.Commander.Ranks
	ranks.Combat.Rank = int(ev.Int("Combat"))
	ranks.Trade.Rank = int(ev.Int("Trade"))
	ranks.Explore.Rank = int(ev.Int("Explore"))
	ranks.Soldier.Rank = int(ev.Int("Soldier"))
	ranks.Exobiologist.Rank = int(ev.Int("Exobiologist"))
	ranks.Empire.Rank = int(ev.Int("Empire"))
	ranks.Federation.Rank = int(ev.Int("Federation"))
	ranks.CQC.Rank = int(ev.Int("CQC"))
	return []state.SliceName{state.SliceCommander}
}

func (p *Projector) handleProgress(ev *journal.Event) []state.SliceName {
	ranks := &p.state.Commander.Ranks
	ranks.Combat.Progress = int(ev.Int("Combat"))
	ranks.Trade.Progress = int(ev.Int("Trade"))
	ranks.Explore.Progress = int(ev.Int("Explore"))
	ranks.Soldier.Progress = int(ev.Int("Soldier"))
	ranks.Exobiologist.Progress = int(ev.Int("Exobiologist"))
	ranks.Empire.Progress = int(ev.Int("Empire"))
	ranks.Federation.Progress = int(ev.Int("Federation"))
	ranks.CQC.Progress = int(ev.Int("CQC"))
	return []state.SliceName{state.SliceCommander}
}

// handlePromotion overwrites only the categories present in the payload.
func (p *Projector) handlePromotion(ev *journal.Event) []state.SliceName {
	ranks := &p.state.Commander.Ranks
	set := func(key string, target *state.RankProgress) {
		if ev.Has(key) {
			target.Rank = int(ev.Int(key))
			target.Progress = 0
		}
	}
	set("Combat", &ranks.Combat)
	set("Trade", &ranks.Trade)
	set("Explore", &ranks.Explore)
	set("Soldier", &ranks.Soldier)
	set("Exobiologist", &ranks.Exobiologist)
	set("Empire", &ranks.Empire)
	set("Federation", &ranks.Federation)
	set("CQC", &ranks.CQC)
	return []state.SliceName{state.SliceCommander}
}

func (p *Projector) handleReputation(ev *journal.Event) []state.SliceName {
	rep := &p.state.Commander.Reputation
	rep.Empire = ev.Float("Empire")
	rep.Federation = ev.Float("Federation")
	rep.Alliance = ev.Float("Alliance")
	rep.Independent = ev.Float("Independent")
	return []state.SliceName{state.SliceCommander}
}

func (p *Projector) handleSquadronSet(ev *journal.Event) []state.SliceName {
	p.state.Commander.Squadron = ev.Str("SquadronName")
	return []state.SliceName{state.SliceCommander}
}

func (p *Projector) handleSquadronLeft(ev *journal.Event) []state.SliceName {
	p.state.Commander.Squadron = ""
	return []state.SliceName{state.SliceCommander}
}

func (p *Projector) handlePowerplayJoin(ev *journal.Event) []state.SliceName {
	cmdr := &p.state.Commander
	cmdr.Power = ev.Str("Power")
	cmdr.PowerplayMerits = 0
	cmdr.PowerplayRank = 0
	cmdr.TimePledged = 0
	return []state.SliceName{state.SliceCommander}
}

func (p *Projector) handlePowerplayLeave(ev *journal.Event) []state.SliceName {
	cmdr := &p.state.Commander
	cmdr.Power = ""
	cmdr.PowerplayMerits = 0
	cmdr.PowerplayRank = 0
	cmdr.TimePledged = 0
	return []state.SliceName{state.SliceCommander}
}

func (p *Projector) handlePowerplayDefect(ev *journal.Event) []state.SliceName {
	cmdr := &p.state.Commander
	cmdr.Power = ev.Str("ToPower")
	cmdr.PowerplayMerits = 0
	cmdr.PowerplayRank = 0
	cmdr.TimePledged = 0
	return []state.SliceName{state.SliceCommander}
}

// handlePowerplaySnapshot is the periodic full pledge snapshot; it
// overwrites all four powerplay fields.
func (p *Projector) handlePowerplaySnapshot(ev *journal.Event) []state.SliceName {
	cmdr := &p.state.Commander
	cmdr.Power = ev.Str("Power")
	cmdr.PowerplayMerits = ev.Int("Merits")
	cmdr.PowerplayRank = int(ev.Int("Rank"))
	cmdr.TimePledged = ev.Int("TimePledged")
	return []state.SliceName{state.SliceCommander}
}
