package state

// Station describes the docked-at (or disembarked-at) station.
type Station struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	MarketID int64  `json:"marketId"`
}

// Surface is the planetary position while landed or on foot.
type Surface struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Heading   float64 `json:"heading"`
}

// Location is the where-am-I slice: system identity, body, vehicle and
// docking status, and the system-level politics block.
type Location struct {
	System        string     `json:"system"`
	SystemAddress int64      `json:"systemAddress"`
	StarPos       [3]float64 `json:"starPos"`
	Body          string     `json:"body"`
	BodyID        int64      `json:"bodyId"`
	BodyType      string     `json:"bodyType"`

	Docked      bool `json:"docked"`
	Landed      bool `json:"landed"`
	OnFoot      bool `json:"onFoot"`
	Supercruise bool `json:"supercruise"`
	InSRV       bool `json:"inSRV"`
	InFighter   bool `json:"inFighter"`
	InTaxi      bool `json:"inTaxi"`
	InMulticrew bool `json:"inMulticrew"`

	Station *Station `json:"station"`
	Surface *Surface `json:"surface"`

	DistFromStarLS float64 `json:"distFromStarLS"`

	SystemAllegiance    string `json:"systemAllegiance"`
	SystemEconomy       string `json:"systemEconomy"`
	SystemSecondEconomy string `json:"systemSecondEconomy"`
	SystemGovernment    string `json:"systemGovernment"`
	SystemSecurity      string `json:"systemSecurity"`
	Population          int64  `json:"population"`
}

// Clone returns a deep copy of the location slice.
func (l Location) Clone() Location {
	clone := l
	if l.Station != nil {
		station := *l.Station
		clone.Station = &station
	}
	if l.Surface != nil {
		surface := *l.Surface
		clone.Surface = &surface
	}
	return clone
}
