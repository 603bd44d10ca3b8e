// Package status decodes the Status.json live-status sidecar: a bitmask of
// ship/on-foot flags plus pips, fuel, cargo mass and optional surface
// position. The file is rewritten by the game several times per second and
// is always a full snapshot, so a cleared bit is authoritative.
package status

// Primary flags bitmask.
const (
	FlagDocked             = 0x00000001
	FlagLanded             = 0x00000002
	FlagLandingGearDown    = 0x00000004
	FlagShieldsUp          = 0x00000008
	FlagSupercruise        = 0x00000010
	FlagHardpointsDeployed = 0x00000040
	FlagLightsOn           = 0x00000100
	FlagCargoScoopOpen     = 0x00000200
	FlagSilentRunning      = 0x00001000
	FlagFSDMassLocked      = 0x00010000
	FlagFSDCharging        = 0x00020000
	FlagFSDCooldown        = 0x00040000
	FlagInFighter          = 0x02000000
	FlagInSRV              = 0x04000000
	FlagInMulticrew        = 0x08000000
	FlagNightVision        = 0x10000000
)

// Secondary (Odyssey) flags bitmask.
const (
	Flag2OnFoot = 0x00000001
	Flag2InTaxi = 0x00000004
)

// ShipFlags are the live booleans decoded from the primary bitmask that
// belong to the ship slice.
type ShipFlags struct {
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

// LocationFlags are the live booleans that belong to the location slice.
type LocationFlags struct {
	Docked      bool `json:"docked"`
	Landed      bool `json:"landed"`
	Supercruise bool `json:"supercruise"`
	InSRV       bool `json:"inSRV"`
	InFighter   bool `json:"inFighter"`
	InMulticrew bool `json:"inMulticrew"`
	OnFoot      bool `json:"onFoot"`
	InTaxi      bool `json:"inTaxi"`
}

// Surface is the planetary position block, present only when near a body.
type Surface struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Heading   float64 `json:"heading"`
}

// Destination is the selected nav target pointer on the status document.
type Destination struct {
	System int64  `json:"system"`
	Body   int64  `json:"body"`
	Name   string `json:"name"`
}

// Document is the decoded live-status snapshot published on the
// status:flags topic. It is derived in full from every read of the file,
// whether or not any state slice changed.
type Document struct {
	Flags        int64         `json:"flags"`
	Flags2       int64         `json:"flags2"`
	Ship         ShipFlags     `json:"ship"`
	Location     LocationFlags `json:"location"`
	Pips         [3]int        `json:"pips"`
	FireGroup    int           `json:"fireGroup"`
	GuiFocus     int           `json:"guiFocus"`
	FuelMain     float64       `json:"fuelMain"`
	FuelReserve  float64       `json:"fuelReserve"`
	Cargo        float64       `json:"cargo"`
	LegalState   string        `json:"legalState"`
	BodyName     string        `json:"bodyName,omitempty"`
	PlanetRadius float64       `json:"planetRadius,omitempty"`
	Surface      *Surface      `json:"surface,omitempty"`
	Destination  *Destination  `json:"destination,omitempty"`
	HasFuel      bool          `json:"-"`
}

// Decode builds a Document from the raw Status.json mapping. A missing
// Flags field is treated as 0, never as "unchanged".
func Decode(raw map[string]any) *Document {
	doc := &Document{
		Flags:      asInt(raw["Flags"]),
		Flags2:     asInt(raw["Flags2"]),
		FireGroup:  int(asInt(raw["FireGroup"])),
		GuiFocus:   int(asInt(raw["GuiFocus"])),
		Cargo:      asFloat(raw["Cargo"]),
		LegalState: asString(raw["LegalState"]),
		BodyName:   asString(raw["BodyName"]),
	}

	doc.Ship = ShipFlags{
		HardpointsDeployed: doc.Flags&FlagHardpointsDeployed != 0,
		LandingGearDown:    doc.Flags&FlagLandingGearDown != 0,
		ShieldsUp:          doc.Flags&FlagShieldsUp != 0,
		CargoScoopOpen:     doc.Flags&FlagCargoScoopOpen != 0,
		LightsOn:           doc.Flags&FlagLightsOn != 0,
		FSDCharging:        doc.Flags&FlagFSDCharging != 0,
		FSDCooldown:        doc.Flags&FlagFSDCooldown != 0,
		FSDMassLocked:      doc.Flags&FlagFSDMassLocked != 0,
		SilentRunning:      doc.Flags&FlagSilentRunning != 0,
		NightVision:        doc.Flags&FlagNightVision != 0,
	}
	doc.Location = LocationFlags{
		Docked:      doc.Flags&FlagDocked != 0,
		Landed:      doc.Flags&FlagLanded != 0,
		Supercruise: doc.Flags&FlagSupercruise != 0,
		InSRV:       doc.Flags&FlagInSRV != 0,
		InFighter:   doc.Flags&FlagInFighter != 0,
		InMulticrew: doc.Flags&FlagInMulticrew != 0,
		OnFoot:      doc.Flags2&Flag2OnFoot != 0,
		InTaxi:      doc.Flags2&Flag2InTaxi != 0,
	}

	if pips, ok := raw["Pips"].([]any); ok && len(pips) == 3 {
		for i := range doc.Pips {
			doc.Pips[i] = int(asInt(pips[i]))
		}
	}
	if fuel, ok := raw["Fuel"].(map[string]any); ok {
		doc.FuelMain = asFloat(fuel["FuelMain"])
		doc.FuelReserve = asFloat(fuel["FuelReservoir"])
		doc.HasFuel = true
	}
	if radius, ok := raw["PlanetRadius"]; ok {
		doc.PlanetRadius = asFloat(radius)
	}
	if _, ok := raw["Latitude"]; ok {
		doc.Surface = &Surface{
			Latitude:  asFloat(raw["Latitude"]),
			Longitude: asFloat(raw["Longitude"]),
			Altitude:  asFloat(raw["Altitude"]),
			Heading:   asFloat(raw["Heading"]),
		}
	}
	if dest, ok := raw["Destination"].(map[string]any); ok {
		doc.Destination = &Destination{
			System: asInt(dest["System"]),
			Body:   asInt(dest["Body"]),
			Name:   asString(dest["Name"]),
		}
	}
	return doc
}

func asFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}

func asInt(v any) int64 {
	return int64(asFloat(v))
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
