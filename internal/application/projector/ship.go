package projector

import (
	"strings"

	"github.com/cmdrlink/edcore/internal/domain/journal"
	"github.com/cmdrlink/edcore/internal/domain/state"
)

func (p *Projector) registerShipHandlers() {
	p.on("Loadout", p.handleLoadout)
	p.on("ShipyardSwap", p.handleShipyardSwap)
	p.on("ShipyardBuy", p.handleShipyardBuy)
	p.on("SetUserShipName", p.handleSetUserShipName)
	p.on("ModuleBuy", p.handleModuleBuy)
	p.on("ModuleSell", p.handleModuleSell)
	p.on("ModuleStore", p.handleModuleStore)
	p.on("ModuleRetrieve", p.handleModuleRetrieve)
	p.on("ModuleSwap", p.handleModuleSwap)
	p.on("HullDamage", p.handleHullDamage)
	p.on("FuelScoop", p.handleFuelScoop)
	p.on("RefuelAll", p.handleRefuelAll)
	p.on("RefuelPartial", p.handleRefuelPartial)
	p.on("RepairAll", p.handleRepairAll)
	p.on("Repair", p.handleRepair)
	p.on("RepairDrone", p.handleRepairDrone)
	p.on("AfmuRepairs", p.handleAfmuRepairs)
	p.on("EngineerCraft", p.handleEngineerCraft)
	p.on("Cargo", p.handleCargoEvent)
}

// handleLoadout is authoritative for the current ship: identity, values,
// health, mass, capacities and the full module list replace whatever
// partial updates came before.
func (p *Projector) handleLoadout(ev *journal.Event) []state.SliceName {
	ship := &p.state.Ship
	ship.Ship = ev.Str("Ship")
	ship.ShipID = ev.Int("ShipID")
	ship.Name = ev.Str("ShipName")
	ship.Ident = ev.Str("ShipIdent")
	ship.HullValue = ev.Int("HullValue")
	ship.ModValue = ev.Int("ModulesValue")
	ship.Rebuy = ev.Int("Rebuy")
	if ev.Has("HullHealth") {
		ship.HullHealth = clamp01(ev.Float("HullHealth"))
	}
	ship.UnladenMass = ev.Float("UnladenMass")
	ship.CargoCapacity = int(ev.Int("CargoCapacity"))
	ship.MaxJumpRange = ev.Float("MaxJumpRange")

	if fuel := ev.Object("FuelCapacity"); fuel != nil {
		if v, ok := fuel["Main"].(float64); ok {
			ship.Fuel.MainCapacity = v
		}
		if v, ok := fuel["Reserve"].(float64); ok {
			ship.Fuel.ReserveCapacity = v
		}
	}

	modules := ev.List("Modules")
	ship.Modules = make([]state.Module, 0, len(modules))
	seen := make(map[string]bool, len(modules))
	for _, raw := range modules {
		mod := parseModule(raw)
		if mod.Slot == "" || seen[mod.Slot] {
			continue
		}
		seen[mod.Slot] = true
		ship.Modules = append(ship.Modules, mod)
	}
	return []state.SliceName{state.SliceShip}
}

// handleShipyardSwap changes the active ship. The module list is cleared
// until the matching Loadout arrives; the game always sends one.
func (p *Projector) handleShipyardSwap(ev *journal.Event) []state.SliceName {
	ship := &p.state.Ship
	ship.Ship = ev.Str("ShipType")
	ship.ShipID = ev.Int("ShipID")
	ship.Name = ""
	ship.Ident = ""
	ship.Modules = nil
	return []state.SliceName{state.SliceShip}
}

func (p *Projector) handleShipyardBuy(ev *journal.Event) []state.SliceName {
	ship := &p.state.Ship
	ship.Ship = ev.Str("ShipType")
	ship.Modules = nil
	ship.HullHealth = 1.0
	p.state.Session.Spend(ev.Int("ShipPrice"))
	return []state.SliceName{state.SliceShip, state.SliceSession}
}

func (p *Projector) handleSetUserShipName(ev *journal.Event) []state.SliceName {
	ship := &p.state.Ship
	if ev.Int("ShipID") != ship.ShipID {
		return nil
	}
	ship.Name = ev.Str("UserShipName")
	ship.Ident = ev.Str("UserShipId")
	return []state.SliceName{state.SliceShip}
}

func (p *Projector) handleModuleBuy(ev *journal.Event) []state.SliceName {
	p.setModule(ev.Str("Slot"), ev.Str("BuyItem"))
	return []state.SliceName{state.SliceShip}
}

func (p *Projector) handleModuleSell(ev *journal.Event) []state.SliceName {
	p.removeModule(ev.Str("Slot"))
	return []state.SliceName{state.SliceShip}
}

// handleModuleStore removes the slot unless a replacement item (the
// default module the game refits) is named.
func (p *Projector) handleModuleStore(ev *journal.Event) []state.SliceName {
	slot := ev.Str("Slot")
	if replacement := ev.Str("ReplacementItem"); replacement != "" {
		p.setModule(slot, replacement)
	} else {
		p.removeModule(slot)
	}
	return []state.SliceName{state.SliceShip}
}

func (p *Projector) handleModuleRetrieve(ev *journal.Event) []state.SliceName {
	p.setModule(ev.Str("Slot"), ev.Str("RetrievedItem"))
	return []state.SliceName{state.SliceShip}
}

// handleModuleSwap exchanges the contents of two slots. Slot strings stay
// put; only the fitted items move.
func (p *Projector) handleModuleSwap(ev *journal.Event) []state.SliceName {
	ship := &p.state.Ship
	from := ship.ModuleAt(ev.Str("FromSlot"))
	to := ship.ModuleAt(ev.Str("ToSlot"))

	switch {
	case from >= 0 && to >= 0:
		fromSlot, toSlot := ship.Modules[from].Slot, ship.Modules[to].Slot
		ship.Modules[from], ship.Modules[to] = ship.Modules[to], ship.Modules[from]
		ship.Modules[from].Slot = fromSlot
		ship.Modules[to].Slot = toSlot
	case from >= 0:
		// Swapping into an empty slot moves the module.
		ship.Modules[from].Slot = ev.Str("ToSlot")
	}
	return []state.SliceName{state.SliceShip}
}

// handleHullDamage tracks the player ship only: fighter hulls and crew
// seats report the same event.
func (p *Projector) handleHullDamage(ev *journal.Event) []state.SliceName {
	if !ev.Bool("PlayerPilot") || ev.Bool("Fighter") {
		return nil
	}
	p.state.Ship.HullHealth = clamp01(ev.Float("Health"))
	return []state.SliceName{state.SliceShip}
}

func (p *Projector) handleFuelScoop(ev *journal.Event) []state.SliceName {
	ship := &p.state.Ship
	ship.Fuel.Main = ev.Float("Total")
	if ship.Fuel.MainCapacity > 0 && ship.Fuel.Main > ship.Fuel.MainCapacity {
		ship.Fuel.Main = ship.Fuel.MainCapacity
	}
	p.state.Session.FuelScoops++
	p.state.Session.FuelScooped += ev.Float("Scooped")
	return []state.SliceName{state.SliceShip, state.SliceSession}
}

func (p *Projector) handleRefuelAll(ev *journal.Event) []state.SliceName {
	ship := &p.state.Ship
	if ship.Fuel.MainCapacity > 0 {
		ship.Fuel.Main = ship.Fuel.MainCapacity
	}
	p.state.Session.Spend(ev.Int("Cost"))
	return []state.SliceName{state.SliceShip, state.SliceSession}
}

func (p *Projector) handleRefuelPartial(ev *journal.Event) []state.SliceName {
	ship := &p.state.Ship
	ship.Fuel.Main += ev.Float("Amount")
	if ship.Fuel.MainCapacity > 0 && ship.Fuel.Main > ship.Fuel.MainCapacity {
		ship.Fuel.Main = ship.Fuel.MainCapacity
	}
	p.state.Session.Spend(ev.Int("Cost"))
	return []state.SliceName{state.SliceShip, state.SliceSession}
}

func (p *Projector) handleRepairAll(ev *journal.Event) []state.SliceName {
	ship := &p.state.Ship
	ship.HullHealth = 1.0
	for i := range ship.Modules {
		ship.Modules[i].Health = 1.0
	}
	p.state.Session.Spend(ev.Int("Cost"))
	return []state.SliceName{state.SliceShip, state.SliceSession}
}

// handleRepair restores the hull or one module named by item or slot,
// case-insensitive.
func (p *Projector) handleRepair(ev *journal.Event) []state.SliceName {
	items := []string{}
	if ev.Has("Items") {
		if raw, ok := ev.Payload["Items"].([]any); ok {
			for _, el := range raw {
				if s, ok := el.(string); ok {
					items = append(items, s)
				}
			}
		}
	} else if item := ev.Str("Item"); item != "" {
		items = append(items, item)
	}

	ship := &p.state.Ship
	for _, item := range items {
		lowered := strings.ToLower(item)
		if lowered == "hull" || lowered == "all" {
			ship.HullHealth = 1.0
			continue
		}
		for i := range ship.Modules {
			if strings.EqualFold(ship.Modules[i].Item, item) ||
				strings.EqualFold(ship.Modules[i].Slot, item) {
				ship.Modules[i].Health = 1.0
				break
			}
		}
	}
	return []state.SliceName{state.SliceShip}
}

func (p *Projector) handleRepairDrone(ev *journal.Event) []state.SliceName {
	ship := &p.state.Ship
	ship.HullHealth = clamp01(ship.HullHealth + ev.Float("HullRepaired"))
	return []state.SliceName{state.SliceShip}
}

func (p *Projector) handleAfmuRepairs(ev *journal.Event) []state.SliceName {
	ship := &p.state.Ship
	target := ev.Str("Module")
	for i := range ship.Modules {
		if strings.EqualFold(ship.Modules[i].Item, target) ||
			strings.EqualFold(ship.Modules[i].Slot, target) {
			ship.Modules[i].Health = clamp01(ev.Float("Health"))
			break
		}
	}
	return []state.SliceName{state.SliceShip}
}

// handleEngineerCraft replaces the target slot's engineering block and
// consumes the listed ingredient materials.
func (p *Projector) handleEngineerCraft(ev *journal.Event) []state.SliceName {
	ship := &p.state.Ship
	engineering := map[string]any{}
	for _, key := range []string{"Engineer", "BlueprintName", "Level", "Quality", "ExperimentalEffect", "Modifiers"} {
		if v, ok := ev.Payload[key]; ok {
			engineering[key] = v
		}
	}

	target := ev.Str("Slot")
	if target == "" {
		target = ev.Str("Module")
	}
	for i := range ship.Modules {
		if strings.EqualFold(ship.Modules[i].Slot, target) ||
			strings.EqualFold(ship.Modules[i].Item, target) {
			ship.Modules[i].Engineering = engineering
			break
		}
	}

	p.subtractIngredients(ev.List("Ingredients"))
	return []state.SliceName{state.SliceShip, state.SliceMaterials}
}

// handleCargoEvent mirrors the Cargo journal event; the Cargo.json
// sidecar goes through the same projection.
func (p *Projector) handleCargoEvent(ev *journal.Event) []state.SliceName {
	if vessel := ev.Str("Vessel"); vessel != "" && vessel != "Ship" {
		return nil
	}
	p.applyCargo(ev.List("Inventory"), int(ev.Int("Count")))
	return []state.SliceName{state.SliceShip}
}

// applyCargo replaces the ship cargo list wholesale.
func (p *Projector) applyCargo(inventory []map[string]any, count int) {
	ship := &p.state.Ship
	ship.Cargo = make([]state.CargoItem, 0, len(inventory))
	for _, raw := range inventory {
		item := state.CargoItem{
			Name:   str(raw["Name"]),
			Count:  num(raw["Count"]),
			Stolen: num(raw["Stolen"]),
		}
		item.LocalizedName = str(raw["Name_Localised"])
		if v, ok := raw["MissionID"].(float64); ok {
			item.MissionID = int64(v)
		}
		ship.Cargo = append(ship.Cargo, item)
	}
	ship.CargoCount = count
}

// setModule replaces the item in a slot, adding the slot if absent.
func (p *Projector) setModule(slot, item string) {
	if slot == "" || item == "" {
		return
	}
	ship := &p.state.Ship
	if i := ship.ModuleAt(slot); i >= 0 {
		ship.Modules[i].Item = item
		ship.Modules[i].Health = 1.0
		ship.Modules[i].Engineering = nil
		return
	}
	ship.Modules = append(ship.Modules, state.Module{
		Slot:   slot,
		Item:   item,
		On:     true,
		Health: 1.0,
	})
}

func (p *Projector) removeModule(slot string) {
	ship := &p.state.Ship
	if i := ship.ModuleAt(slot); i >= 0 {
		ship.Modules = append(ship.Modules[:i], ship.Modules[i+1:]...)
	}
}

func parseModule(raw map[string]any) state.Module {
	mod := state.Module{
		Slot:     str(raw["Slot"]),
		Item:     str(raw["Item"]),
		Priority: num(raw["Priority"]),
		Health:   clamp01(flt(raw["Health"])),
	}
	if v, ok := raw["On"].(bool); ok {
		mod.On = v
	}
	if v, ok := raw["Value"].(float64); ok {
		mod.Value = int64(v)
	}
	mod.AmmoInClip = num(raw["AmmoInClip"])
	mod.AmmoInHopper = num(raw["AmmoInHopper"])
	if eng, ok := raw["Engineering"].(map[string]any); ok {
		mod.Engineering = eng
	}
	return mod
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func flt(v any) float64 {
	f, _ := v.(float64)
	return f
}

func num(v any) int {
	return int(flt(v))
}
