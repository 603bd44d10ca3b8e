// Package watched names the fixed set of companion files the game writes
// next to the journal.
package watched

// Sidecar basenames, exactly as the game writes them.
const (
	FileStatus      = "Status.json"
	FileCargo       = "Cargo.json"
	FileNavRoute    = "NavRoute.json"
	FileMarket      = "Market.json"
	FileBackpack    = "Backpack.json"
	FileModulesInfo = "ModulesInfo.json"
	FileShipyard    = "Shipyard.json"
	FileOutfitting  = "Outfitting.json"
)

// Sidecars lists every watched sidecar file.
var Sidecars = []string{
	FileStatus,
	FileCargo,
	FileNavRoute,
	FileMarket,
	FileBackpack,
	FileModulesInfo,
	FileShipyard,
	FileOutfitting,
}

// IsSidecar reports whether a basename is one of the watched sidecars.
func IsSidecar(name string) bool {
	for _, s := range Sidecars {
		if s == name {
			return true
		}
	}
	return false
}
