package state

// Mission is one active mission. The missions list holds at most one
// entry per mission id.
type Mission struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Faction            string `json:"faction"`
	Expiry             string `json:"expiry,omitempty"`
	DestinationSystem  string `json:"destinationSystem,omitempty"`
	DestinationStation string `json:"destinationStation,omitempty"`
	TargetFaction      string `json:"targetFaction,omitempty"`
	Target             string `json:"target,omitempty"`
	Commodity          string `json:"commodity,omitempty"`
	Count              int    `json:"count,omitempty"`
	KillCount          int    `json:"killCount,omitempty"`
	Reward             int64  `json:"reward"`
	Influence          string `json:"influence,omitempty"`
	Reputation         string `json:"reputation,omitempty"`
	Wing               bool   `json:"wing"`
	Passenger          bool   `json:"passenger"`
}

func cloneMissions(missions []Mission) []Mission {
	return append([]Mission(nil), missions...)
}
