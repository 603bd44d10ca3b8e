package projector

import (
	"github.com/cmdrlink/edcore/internal/domain/journal"
	"github.com/cmdrlink/edcore/internal/domain/state"
)

func (p *Projector) registerMissionHandlers() {
	p.on("Missions", p.handleMissionsSnapshot)
	p.on("MissionAccepted", p.handleMissionAccepted)
	p.on("MissionCompleted", p.handleMissionCompleted)
	p.on("MissionAbandoned", p.handleMissionDropped)
	p.on("MissionFailed", p.handleMissionDropped)
	p.on("MissionRedirected", p.handleMissionRedirected)
}

func (p *Projector) findMission(id int64) int {
	for i := range p.state.Missions {
		if p.state.Missions[i].ID == id {
			return i
		}
	}
	return -1
}

func (p *Projector) removeMission(id int64) bool {
	if i := p.findMission(id); i >= 0 {
		p.state.Missions = append(p.state.Missions[:i], p.state.Missions[i+1:]...)
		return true
	}
	return false
}

// handleMissionsSnapshot seeds stubs for every active mission id; the
// per-mission MissionAccepted replays fill in the details.
func (p *Projector) handleMissionsSnapshot(ev *journal.Event) []state.SliceName {
	active := ev.List("Active")
	p.state.Missions = make([]state.Mission, 0, len(active))
	for _, raw := range active {
		id, ok := raw["MissionID"].(float64)
		if !ok {
			continue
		}
		p.state.Missions = append(p.state.Missions, state.Mission{
			ID:        int64(id),
			Name:      str(raw["Name"]),
			Passenger: raw["PassengerMission"] == true,
		})
	}
	return []state.SliceName{state.SliceMissions}
}

// handleMissionAccepted replaces the stub for the id or appends; the
// list holds at most one entry per mission id.
func (p *Projector) handleMissionAccepted(ev *journal.Event) []state.SliceName {
	mission := state.Mission{
		ID:                 ev.Int("MissionID"),
		Name:               ev.Str("Name"),
		Faction:            ev.Str("Faction"),
		Expiry:             ev.Str("Expiry"),
		DestinationSystem:  ev.Str("DestinationSystem"),
		DestinationStation: ev.Str("DestinationStation"),
		TargetFaction:      ev.Str("TargetFaction"),
		Target:             ev.Str("Target"),
		Commodity:          ev.Str("Commodity"),
		Count:              int(ev.Int("Count")),
		KillCount:          int(ev.Int("KillCount")),
		Reward:             ev.Int("Reward"),
		Influence:          ev.Str("Influence"),
		Reputation:         ev.Str("Reputation"),
		Wing:               ev.Bool("Wing"),
		Passenger:          ev.Has("PassengerCount") || ev.Bool("PassengerMission"),
	}

	if i := p.findMission(mission.ID); i >= 0 {
		p.state.Missions[i] = mission
	} else {
		p.state.Missions = append(p.state.Missions, mission)
	}
	return []state.SliceName{state.SliceMissions}
}

func (p *Projector) handleMissionCompleted(ev *journal.Event) []state.SliceName {
	p.removeMission(ev.Int("MissionID"))
	p.state.Session.MissionsCompleted++
	if reward := ev.Int("Reward"); reward > 0 {
		p.state.Session.Earn(reward)
	}

	dirty := []state.SliceName{state.SliceMissions, state.SliceSession}
	if rewards := ev.List("MaterialsReward"); len(rewards) > 0 {
		for _, raw := range rewards {
			p.addMaterial(normalizeCategory(str(raw["Category"])), str(raw["Name"]), str(raw["Name_Localised"]), num(raw["Count"]))
		}
		dirty = append(dirty, state.SliceMaterials)
	}
	return dirty
}

// handleMissionDropped covers both abandoned and failed missions.
func (p *Projector) handleMissionDropped(ev *journal.Event) []state.SliceName {
	p.removeMission(ev.Int("MissionID"))
	p.state.Session.MissionsFailed++
	if fine := ev.Int("Fine"); fine > 0 {
		p.state.Session.Spend(fine)
	}
	return []state.SliceName{state.SliceMissions, state.SliceSession}
}

func (p *Projector) handleMissionRedirected(ev *journal.Event) []state.SliceName {
	i := p.findMission(ev.Int("MissionID"))
	if i < 0 {
		return nil
	}
	p.state.Missions[i].DestinationSystem = ev.Str("NewDestinationSystem")
	p.state.Missions[i].DestinationStation = ev.Str("NewDestinationStation")
	return []state.SliceName{state.SliceMissions}
}
