package state

import "maps"

// Fuel tracks the main and reserve tanks against their capacities.
// main <= mainCapacity and reserve <= reserveCapacity always hold.
type Fuel struct {
	Main            float64 `json:"main"`
	Reserve         float64 `json:"reserve"`
	MainCapacity    float64 `json:"mainCapacity"`
	ReserveCapacity float64 `json:"reserveCapacity"`
}

// Module is one outfitted module. Slot strings are unique within a ship.
// Engineering is the raw engineering block from the Loadout/EngineerCraft
// payload, kept unnormalized.
type Module struct {
	Slot         string         `json:"slot"`
	Item         string         `json:"item"`
	On           bool           `json:"on"`
	Priority     int            `json:"priority"`
	Health       float64        `json:"health"`
	Value        int64          `json:"value"`
	AmmoInClip   int            `json:"ammoInClip,omitempty"`
	AmmoInHopper int            `json:"ammoInHopper,omitempty"`
	Engineering  map[string]any `json:"engineering,omitempty"`
}

// CargoItem is one commodity stack in the hold.
type CargoItem struct {
	Name          string `json:"name"`
	LocalizedName string `json:"localizedName,omitempty"`
	Count         int    `json:"count"`
	Stolen        int    `json:"stolen"`
	MissionID     int64  `json:"missionId,omitempty"`
}

// Ship is the active-vessel slice. A Loadout event is authoritative for
// everything except the live booleans, which come from Status.json.
type Ship struct {
	Ship      string `json:"ship"`
	ShipID    int64  `json:"shipId"`
	Name      string `json:"name"`
	Ident     string `json:"ident"`
	HullValue int64  `json:"hullValue"`
	ModValue  int64  `json:"modulesValue"`
	Rebuy     int64  `json:"rebuy"`

	HullHealth    float64 `json:"hullHealth"`
	UnladenMass   float64 `json:"unladenMass"`
	CargoCapacity int     `json:"cargoCapacity"`
	MaxJumpRange  float64 `json:"maxJumpRange"`

	Fuel    Fuel     `json:"fuel"`
	Modules []Module `json:"modules"`

	Cargo      []CargoItem `json:"cargo"`
	CargoCount int         `json:"cargoCount"`

	// Live booleans decoded from the status sidecar.
	HardpointsDeployed bool `json:"hardpointsDeployed"`
	LandingGearDown    bool `json:"landingGearDown"`
	ShieldsUp          bool `json:"shieldsUp"`
	CargoScoopOpen     bool `json:"cargoScoopOpen"`
	LightsOn           bool `json:"lightsOn"`
	FSDCharging        bool `json:"fsdCharging"`
	FSDCooldown        bool `json:"fsdCooldown"`
	FSDMassLocked      bool `json:"fsdMassLocked"`
	SilentRunning      bool `json:"silentRunning"`
	NightVision        bool `json:"nightVision"`
}

// ModuleAt returns the index of the module in the given slot, or -1.
func (s *Ship) ModuleAt(slot string) int {
	for i := range s.Modules {
		if s.Modules[i].Slot == slot {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the ship slice.
func (s Ship) Clone() Ship {
	clone := s
	clone.Modules = make([]Module, len(s.Modules))
	for i, m := range s.Modules {
		clone.Modules[i] = m
		if m.Engineering != nil {
			clone.Modules[i].Engineering = maps.Clone(m.Engineering)
		}
	}
	clone.Cargo = append([]CargoItem(nil), s.Cargo...)
	return clone
}
