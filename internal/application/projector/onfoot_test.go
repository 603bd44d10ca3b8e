package projector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdrlink/edcore/internal/domain/state"
)

func TestSuitLoadout_TracksWornAndSavedLoadouts(t *testing.T) {
	p, _ := newProjector()

	apply(t, p, "SuitLoadout", map[string]any{
		"SuitID":      1700000001,
		"SuitName":    "explorationsuit_class3",
		"LoadoutID":   0,
		"LoadoutName": "Exobiology",
		"Modules": []any{
			map[string]any{
				"SlotName": "PrimaryWeapon1", "SuitModuleID": 1700000002,
				"ModuleName": "wpn_m_assaultrifle_laser_fauto", "Class": 2,
			},
		},
	})

	onFoot := onFootOf(p)
	require.NotNil(t, onFoot.Suit)
	assert.Equal(t, "Exobiology", onFoot.Suit.Name)
	assert.Equal(t, state.SuitExploration, onFoot.Suit.Suit.Class)
	require.Len(t, onFoot.Suit.Weapons, 1)
	assert.Equal(t, "PrimaryWeapon1", onFoot.Suit.Weapons[0].Slot)

	require.Len(t, onFoot.Loadouts, 1)
	require.Len(t, onFoot.Suits, 1)
	assert.Equal(t, int64(1700000001), onFoot.Suits[0].SuitID)
}

func TestSwitchSuitLoadout_UpsertsByLoadoutID(t *testing.T) {
	p, _ := newProjector()
	apply(t, p, "SuitLoadout", map[string]any{
		"SuitID": 1700000001, "SuitName": "tacticalsuit_class2", "LoadoutID": 0, "LoadoutName": "Combat",
	})

	apply(t, p, "SwitchSuitLoadout", map[string]any{
		"SuitID": 1700000003, "SuitName": "utilitysuit_class1", "LoadoutID": 1, "LoadoutName": "Salvage",
	})
	apply(t, p, "SwitchSuitLoadout", map[string]any{
		"SuitID": 1700000003, "SuitName": "utilitysuit_class1", "LoadoutID": 1, "LoadoutName": "Salvage II",
	})

	onFoot := onFootOf(p)
	assert.Equal(t, "Salvage II", onFoot.Suit.Name)
	assert.Equal(t, state.SuitUtility, onFoot.Suit.Suit.Class)
	require.Len(t, onFoot.Loadouts, 2)
	assert.Equal(t, "Salvage II", onFoot.Loadouts[1].Name)
	assert.Len(t, onFoot.Suits, 2)
}

func TestBackpackEvent_ReplacesAllLists(t *testing.T) {
	p, _ := newProjector()
	apply(t, p, "BackpackChange", map[string]any{
		"Added": []any{map[string]any{"Name": "oldsample", "Type": "Item", "Count": 1}},
	})

	apply(t, p, "Backpack", map[string]any{
		"Items":       []any{map[string]any{"Name": "largecapacitypowerregulator", "Count": 1}},
		"Components":  []any{map[string]any{"Name": "circuitswitch", "Count": 3}},
		"Consumables": []any{map[string]any{"Name": "healthpack", "Count": 5}},
		"Data":        []any{},
	})

	backpack := onFootOf(p).Backpack
	require.Len(t, backpack.Items, 1)
	assert.Equal(t, "largecapacitypowerregulator", backpack.Items[0].Name)
	assert.Equal(t, "Item", backpack.Items[0].Type)
	assert.Equal(t, 3, backpack.Components[0].Count)
	assert.Equal(t, 5, backpack.Consumables[0].Count)
	assert.Empty(t, backpack.Data)
}

func TestBackpackChange_IncrementalAddAndRemove(t *testing.T) {
	p, _ := newProjector()

	apply(t, p, "BackpackChange", map[string]any{
		"Added": []any{map[string]any{"Name": "healthpack", "Type": "Consumable", "Count": 2}},
	})
	apply(t, p, "BackpackChange", map[string]any{
		"Added": []any{map[string]any{"Name": "healthpack", "Type": "Consumable", "Count": 1}},
	})
	assert.Equal(t, 3, onFootOf(p).Backpack.Consumables[0].Count)

	// Removing the full count drops the entry.
	apply(t, p, "BackpackChange", map[string]any{
		"Removed": []any{map[string]any{"Name": "healthpack", "Type": "Consumable", "Count": 3}},
	})
	assert.Empty(t, onFootOf(p).Backpack.Consumables)
}

func TestBackpackChange_RemoveUnknownIsNoop(t *testing.T) {
	p, _ := newProjector()

	apply(t, p, "BackpackChange", map[string]any{
		"Removed": []any{map[string]any{"Name": "ghostitem", "Type": "Item", "Count": 1}},
	})

	assert.Empty(t, onFootOf(p).Backpack.Items)
}

func TestScanOrganic_UpsertsByScanKey(t *testing.T) {
	p, _ := newProjector()

	apply(t, p, "ScanOrganic", map[string]any{
		"ScanType": "Log", "Genus": "$Codex_Ent_Bacterial_Genus_Name;",
		"Species": "$Codex_Ent_Bacterial_01_Name;", "SystemAddress": 1109989017963, "Body": 12,
	})
	apply(t, p, "ScanOrganic", map[string]any{
		"ScanType": "Sample", "Genus": "$Codex_Ent_Bacterial_Genus_Name;",
		"Species": "$Codex_Ent_Bacterial_01_Name;", "SystemAddress": 1109989017963, "Body": 12,
	})

	onFoot := onFootOf(p)
	require.Len(t, onFoot.ActiveScans, 1)
	assert.Equal(t, "Sample", onFoot.ActiveScans[0].ScanType)
	assert.Zero(t, onFoot.SpeciesAnalysed)

	apply(t, p, "ScanOrganic", map[string]any{
		"ScanType": "Analyse", "Genus": "$Codex_Ent_Bacterial_Genus_Name;",
		"Species": "$Codex_Ent_Bacterial_01_Name;", "SystemAddress": 1109989017963, "Body": 12,
	})
	assert.Equal(t, 1, onFootOf(p).SpeciesAnalysed)
}

func TestScanOrganic_DifferentBodyIsNewScan(t *testing.T) {
	p, _ := newProjector()

	apply(t, p, "ScanOrganic", map[string]any{
		"ScanType": "Log", "Species": "$Codex_Ent_Fungoids_01_Name;", "SystemAddress": 1, "Body": 3,
	})
	apply(t, p, "ScanOrganic", map[string]any{
		"ScanType": "Log", "Species": "$Codex_Ent_Fungoids_01_Name;", "SystemAddress": 1, "Body": 4,
	})

	assert.Len(t, onFootOf(p).ActiveScans, 2)
}
