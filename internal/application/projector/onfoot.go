package projector

import (
	"strings"

	"github.com/cmdrlink/edcore/internal/domain/journal"
	"github.com/cmdrlink/edcore/internal/domain/state"
)

func (p *Projector) registerOnFootHandlers() {
	p.on("SuitLoadout", p.handleSuitLoadout)
	p.on("SwitchSuitLoadout", p.handleSuitLoadout)
	p.on("Backpack", p.handleBackpackEvent)
	p.on("BackpackChange", p.handleBackpackChange)
	p.on("ScanOrganic", p.handleScanOrganic)
}

// handleSuitLoadout parses the worn loadout and tracks it in the saved
// loadout list. SuitLoadout and SwitchSuitLoadout share a payload shape.
func (p *Projector) handleSuitLoadout(ev *journal.Event) []state.SliceName {
	suitName := ev.Str("SuitName")
	loadout := state.SuitLoadout{
		LoadoutID: ev.Int("LoadoutID"),
		Name:      ev.Str("LoadoutName"),
		Suit: state.Suit{
			SuitID: ev.Int("SuitID"),
			Name:   suitName,
			Class:  state.ClassifySuit(suitName),
		},
	}
	for _, raw := range ev.List("Modules") {
		loadout.Weapons = append(loadout.Weapons, state.SuitWeapon{
			Slot:     str(raw["SlotName"]),
			Name:     str(raw["ModuleName"]),
			ModuleID: int64(flt(raw["SuitModuleID"])),
			Class:    num(raw["Class"]),
		})
	}

	onFoot := &p.state.OnFoot
	current := loadout
	onFoot.Suit = &current

	found := false
	for i := range onFoot.Loadouts {
		if onFoot.Loadouts[i].LoadoutID == loadout.LoadoutID {
			onFoot.Loadouts[i] = loadout
			found = true
			break
		}
	}
	if !found {
		onFoot.Loadouts = append(onFoot.Loadouts, loadout)
	}

	p.upsertSuit(loadout.Suit)
	return []state.SliceName{state.SliceOnFoot}
}

func (p *Projector) upsertSuit(suit state.Suit) {
	onFoot := &p.state.OnFoot
	for i := range onFoot.Suits {
		if onFoot.Suits[i].SuitID == suit.SuitID {
			onFoot.Suits[i] = suit
			return
		}
	}
	onFoot.Suits = append(onFoot.Suits, suit)
}

// handleBackpackEvent replaces the four backpack lists; the Backpack.json
// sidecar routes through the same projection.
func (p *Projector) handleBackpackEvent(ev *journal.Event) []state.SliceName {
	p.applyBackpack(ev.Payload)
	return []state.SliceName{state.SliceOnFoot}
}

func (p *Projector) applyBackpack(payload map[string]any) {
	parse := func(key, itemType string) []state.BackpackItem {
		raw, ok := payload[key].([]any)
		if !ok {
			return nil
		}
		out := make([]state.BackpackItem, 0, len(raw))
		for _, el := range raw {
			m, ok := el.(map[string]any)
			if !ok {
				continue
			}
			entry := state.BackpackItem{
				Name:  str(m["Name"]),
				Type:  itemType,
				Count: num(m["Count"]),
			}
			if t := str(m["Type"]); t != "" {
				entry.Type = t
			}
			out = append(out, entry)
		}
		return out
	}

	p.state.OnFoot.Backpack = state.Backpack{
		Items:       parse("Items", "Item"),
		Components:  parse("Components", "Component"),
		Consumables: parse("Consumables", "Consumable"),
		Data:        parse("Data", "Data"),
	}
}

// handleBackpackChange applies incremental adds and removes keyed by
// (name, type); entries whose count drops to zero disappear.
func (p *Projector) handleBackpackChange(ev *journal.Event) []state.SliceName {
	for _, raw := range ev.List("Added") {
		p.adjustBackpack(str(raw["Name"]), str(raw["Type"]), num(raw["Count"]))
	}
	for _, raw := range ev.List("Removed") {
		p.adjustBackpack(str(raw["Name"]), str(raw["Type"]), -num(raw["Count"]))
	}
	return []state.SliceName{state.SliceOnFoot}
}

func (p *Projector) backpackList(itemType string) *[]state.BackpackItem {
	backpack := &p.state.OnFoot.Backpack
	switch strings.ToLower(itemType) {
	case "component":
		return &backpack.Components
	case "consumable":
		return &backpack.Consumables
	case "data":
		return &backpack.Data
	default:
		return &backpack.Items
	}
}

func (p *Projector) adjustBackpack(name, itemType string, delta int) {
	if name == "" || delta == 0 {
		return
	}
	list := p.backpackList(itemType)
	for i := range *list {
		if (*list)[i].Name == name && (*list)[i].Type == itemType {
			(*list)[i].Count += delta
			if (*list)[i].Count <= 0 {
				*list = append((*list)[:i], (*list)[i+1:]...)
			}
			return
		}
	}
	if delta > 0 {
		*list = append(*list, state.BackpackItem{Name: name, Type: itemType, Count: delta})
	}
}

// handleScanOrganic upserts the in-progress exobiology scan keyed by
// (species, systemAddress, bodyId); the final Analyse step bumps the
// species counter.
func (p *Projector) handleScanOrganic(ev *journal.Event) []state.SliceName {
	onFoot := &p.state.OnFoot
	scan := state.OrganicScan{
		Genus:         ev.Str("Genus"),
		Species:       ev.Str("Species"),
		SystemAddress: ev.Int("SystemAddress"),
		BodyID:        ev.Int("Body"),
		ScanType:      ev.Str("ScanType"),
	}

	found := false
	for i := range onFoot.ActiveScans {
		existing := &onFoot.ActiveScans[i]
		if existing.Species == scan.Species &&
			existing.SystemAddress == scan.SystemAddress &&
			existing.BodyID == scan.BodyID {
			*existing = scan
			found = true
			break
		}
	}
	if !found {
		onFoot.ActiveScans = append(onFoot.ActiveScans, scan)
	}

	if scan.ScanType == "Analyse" {
		onFoot.SpeciesAnalysed++
	}
	return []state.SliceName{state.SliceOnFoot}
}
