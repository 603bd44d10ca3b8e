package state

import "slices"

// Session aggregates per-play-session counters. The whole slice resets on
// LoadGame; nothing else does.
type Session struct {
	StartTime string `json:"startTime"`

	Jumps         int     `json:"jumps"`
	TotalDistance float64 `json:"totalDistance"`
	FuelUsed      float64 `json:"fuelUsed"`
	FuelScoops    int     `json:"fuelScoops"`
	FuelScooped   float64 `json:"fuelScooped"`

	CreditsEarned int64 `json:"creditsEarned"`
	CreditsSpent  int64 `json:"creditsSpent"`
	NetProfit     int64 `json:"netProfit"`

	BodiesScanned        int      `json:"bodiesScanned"`
	SystemsVisited       int      `json:"systemsVisited"`
	UniqueSystemsVisited []string `json:"uniqueSystemsVisited"`

	BountiesCollected int   `json:"bountiesCollected"`
	BountyEarnings    int64 `json:"bountyEarnings"`

	MissionsCompleted int `json:"missionsCompleted"`
	MissionsFailed    int `json:"missionsFailed"`
	Deaths            int `json:"deaths"`

	MaterialsCollected  int   `json:"materialsCollected"`
	CargoTraded         int   `json:"cargoTraded"`
	TradeProfit         int64 `json:"tradeProfit"`
	ExplorationEarnings int64 `json:"explorationEarnings"`
	MiningRefined       int   `json:"miningRefined"`

	ElapsedSeconds int64 `json:"elapsedSeconds"`
}

// Reset zeroes every counter and stamps a new start time. Called on
// LoadGame; any future session-scoped metric must be reset here too.
func (s *Session) Reset(startTime string) {
	*s = Session{
		StartTime:            startTime,
		UniqueSystemsVisited: []string{},
	}
}

// RecordVisit counts a system visit, tracking the unique set alongside
// the raw counter.
func (s *Session) RecordVisit(system string) {
	if system == "" {
		return
	}
	s.SystemsVisited++
	if !slices.Contains(s.UniqueSystemsVisited, system) {
		s.UniqueSystemsVisited = append(s.UniqueSystemsVisited, system)
	}
}

// Earn adds to credits earned and recomputes net profit.
func (s *Session) Earn(amount int64) {
	s.CreditsEarned += amount
	s.NetProfit = s.CreditsEarned - s.CreditsSpent
}

// Spend adds to credits spent and recomputes net profit.
func (s *Session) Spend(amount int64) {
	s.CreditsSpent += amount
	s.NetProfit = s.CreditsEarned - s.CreditsSpent
}

// Clone returns a deep copy of the session slice.
func (s Session) Clone() Session {
	clone := s
	clone.UniqueSystemsVisited = append([]string(nil), s.UniqueSystemsVisited...)
	return clone
}
