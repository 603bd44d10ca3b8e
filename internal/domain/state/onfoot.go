package state

import "strings"

// Suit classes, derived from the suit's internal name by substring match.
const (
	SuitFlight      = "flightsuit"
	SuitExploration = "exploration"
	SuitTactical    = "tactical"
	SuitUtility     = "utility"
)

// Suit is one owned spacesuit.
type Suit struct {
	SuitID int64  `json:"suitId"`
	Name   string `json:"name"`
	Class  string `json:"class"`
}

// SuitWeapon is a weapon in a suit loadout slot.
type SuitWeapon struct {
	Slot       string `json:"slot"`
	Name       string `json:"name"`
	ModuleID   int64  `json:"moduleId,omitempty"`
	Class      int    `json:"class,omitempty"`
}

// SuitLoadout is a named suit + weapons combination.
type SuitLoadout struct {
	LoadoutID int64        `json:"loadoutId"`
	Name      string       `json:"name"`
	Suit      Suit         `json:"suit"`
	Weapons   []SuitWeapon `json:"weapons"`
}

// BackpackItem is one stack in the on-foot backpack, keyed by (name, type).
type BackpackItem struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Backpack holds the four on-foot inventory lists.
type Backpack struct {
	Items       []BackpackItem `json:"items"`
	Components  []BackpackItem `json:"components"`
	Consumables []BackpackItem `json:"consumables"`
	Data        []BackpackItem `json:"data"`
}

// OrganicScan is an exobiology scan in progress, keyed by
// (species, systemAddress, bodyId).
type OrganicScan struct {
	Genus         string `json:"genus"`
	Species       string `json:"species"`
	SystemAddress int64  `json:"systemAddress"`
	BodyID        int64  `json:"bodyId"`
	ScanType      string `json:"scanType"`
}

// OnFoot is the Odyssey slice: suits, backpack and exobiology progress.
type OnFoot struct {
	OnFoot          bool          `json:"onFoot"`
	Suit            *SuitLoadout  `json:"suit"`
	Suits           []Suit        `json:"suits"`
	Loadouts        []SuitLoadout `json:"loadouts"`
	Backpack        Backpack      `json:"backpack"`
	ActiveScans     []OrganicScan `json:"activeScans"`
	SpeciesAnalysed int           `json:"speciesAnalysed"`
}

// Clone returns a deep copy of the on-foot slice.
func (o OnFoot) Clone() OnFoot {
	clone := o
	if o.Suit != nil {
		suit := *o.Suit
		suit.Weapons = append([]SuitWeapon(nil), o.Suit.Weapons...)
		clone.Suit = &suit
	}
	clone.Suits = append([]Suit(nil), o.Suits...)
	clone.Loadouts = make([]SuitLoadout, len(o.Loadouts))
	for i, l := range o.Loadouts {
		clone.Loadouts[i] = l
		clone.Loadouts[i].Weapons = append([]SuitWeapon(nil), l.Weapons...)
	}
	clone.Backpack = Backpack{
		Items:       append([]BackpackItem(nil), o.Backpack.Items...),
		Components:  append([]BackpackItem(nil), o.Backpack.Components...),
		Consumables: append([]BackpackItem(nil), o.Backpack.Consumables...),
		Data:        append([]BackpackItem(nil), o.Backpack.Data...),
	}
	clone.ActiveScans = append([]OrganicScan(nil), o.ActiveScans...)
	return clone
}

// ClassifySuit maps a suit's internal name to its class.
func ClassifySuit(internalName string) string {
	name := strings.ToLower(internalName)
	switch {
	case strings.Contains(name, "exploration"), strings.Contains(name, "artemis"):
		return SuitExploration
	case strings.Contains(name, "tactical"), strings.Contains(name, "dominator"):
		return SuitTactical
	case strings.Contains(name, "utility"), strings.Contains(name, "maverick"):
		return SuitUtility
	default:
		return SuitFlight
	}
}
