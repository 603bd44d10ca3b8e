package projector

import (
	"strings"

	"github.com/cmdrlink/edcore/internal/domain/journal"
	"github.com/cmdrlink/edcore/internal/domain/state"
)

func (p *Projector) registerCarrierHandlers() {
	p.on("CarrierStats", p.handleCarrierStats)
	p.on("CarrierDepositFuel", p.carrierHandler(p.applyCarrierDepositFuel))
	p.on("CarrierFinance", p.carrierHandler(p.applyCarrierFinance))
	p.on("CarrierBankTransfer", p.handleCarrierBankTransfer)
	// The game writes CarrierNameChange; some tooling normalizes it to
	// CarrierNameChanged. Accept both spellings.
	rename := p.carrierHandler(func(c *state.Carrier, ev *journal.Event) {
		c.Name = ev.Str("Name")
	})
	p.on("CarrierNameChange", rename)
	p.on("CarrierNameChanged", rename)
	p.on("CarrierDockingPermission", p.carrierHandler(func(c *state.Carrier, ev *journal.Event) {
		c.DockingAccess = ev.Str("DockingAccess")
		c.AllowNotorious = ev.Bool("AllowNotorious")
	}))
	p.on("CarrierTradeOrder", p.carrierHandler(p.applyCarrierTradeOrder))
	p.on("CarrierCrewServices", p.carrierHandler(p.applyCarrierCrewServices))
	p.on("CarrierModulePack", p.carrierHandler(p.applyCarrierModulePack))
	p.on("CarrierShipPack", p.carrierHandler(p.applyCarrierShipPack))
}

// carrierHandler guards a mutator: it only runs when a carrier slice
// exists and the event's carrier id matches the tracked one.
func (p *Projector) carrierHandler(mutate func(*state.Carrier, *journal.Event)) handlerFunc {
	return func(ev *journal.Event) []state.SliceName {
		carrier := p.state.Carrier
		if carrier == nil || ev.Int("CarrierID") != carrier.ID {
			return nil
		}
		mutate(carrier, ev)
		return []state.SliceName{state.SliceCarrier}
	}
}

// handleCarrierStats replaces the carrier block. Trade orders, jump
// history and the tracked position survive from the previous snapshot;
// the stats event does not carry them.
func (p *Projector) handleCarrierStats(ev *journal.Event) []state.SliceName {
	carrier := &state.Carrier{
		ID:                  ev.Int("CarrierID"),
		Callsign:            ev.Str("Callsign"),
		Name:                ev.Str("Name"),
		DockingAccess:       ev.Str("DockingAccess"),
		AllowNotorious:      ev.Bool("AllowNotorious"),
		FuelLevel:           int(ev.Int("FuelLevel")),
		JumpRangeCurr:       ev.Float("JumpRangeCurr"),
		JumpRangeMax:        ev.Float("JumpRangeMax"),
		PendingDecommission: ev.Bool("PendingDecommission"),
	}

	if usage := ev.Object("SpaceUsage"); usage != nil {
		carrier.SpaceUsage = state.SpaceUsage{
			TotalCapacity:      num(usage["TotalCapacity"]),
			Crew:               num(usage["Crew"]),
			Cargo:              num(usage["Cargo"]),
			CargoSpaceReserved: num(usage["CargoSpaceReserved"]),
			ShipPacks:          num(usage["ShipPacks"]),
			ModulePacks:        num(usage["ModulePacks"]),
			FreeSpace:          num(usage["FreeSpace"]),
		}
	}
	if finance := ev.Object("Finance"); finance != nil {
		carrier.Finance = parseCarrierFinance(finance)
	}
	for _, raw := range ev.List("Crew") {
		carrier.Services = append(carrier.Services, state.CrewService{
			Role:      str(raw["CrewRole"]),
			Activated: raw["Activated"] == true,
			Enabled:   raw["Enabled"] == true,
			CrewName:  str(raw["CrewName"]),
		})
	}
	for _, raw := range ev.List("ShipPacks") {
		carrier.ShipPacks = append(carrier.ShipPacks, state.CarrierPack{
			Theme: str(raw["PackTheme"]),
			Tier:  num(raw["PackTier"]),
		})
	}
	for _, raw := range ev.List("ModulePacks") {
		carrier.ModulePacks = append(carrier.ModulePacks, state.CarrierPack{
			Theme: str(raw["PackTheme"]),
			Tier:  num(raw["PackTier"]),
		})
	}

	if prev := p.state.Carrier; prev != nil {
		carrier.TradeOrders = prev.TradeOrders
		carrier.JumpHistory = prev.JumpHistory
		carrier.CurrentSystem = prev.CurrentSystem
		carrier.CurrentBody = prev.CurrentBody
	}
	p.state.Carrier = carrier
	return []state.SliceName{state.SliceCarrier}
}

func parseCarrierFinance(raw map[string]any) state.CarrierFinance {
	return state.CarrierFinance{
		CarrierBalance:         int64(flt(raw["CarrierBalance"])),
		ReserveBalance:         int64(flt(raw["ReserveBalance"])),
		AvailableBalance:       int64(flt(raw["AvailableBalance"])),
		ReservePercent:         flt(raw["ReservePercent"]),
		TaxRatePioneersupplies: flt(raw["TaxRate_pioneersupplies"]),
		TaxRateShipyard:        flt(raw["TaxRate_shipyard"]),
		TaxRateRearm:           flt(raw["TaxRate_rearm"]),
		TaxRateOutfitting:      flt(raw["TaxRate_outfitting"]),
		TaxRateRefuel:          flt(raw["TaxRate_refuel"]),
		TaxRateRepair:          flt(raw["TaxRate_repair"]),
	}
}

func (p *Projector) applyCarrierDepositFuel(c *state.Carrier, ev *journal.Event) {
	c.FuelLevel = int(ev.Int("Total"))
}

func (p *Projector) applyCarrierFinance(c *state.Carrier, ev *journal.Event) {
	if finance := ev.Object("Finance"); finance != nil {
		c.Finance = parseCarrierFinance(finance)
		return
	}
	// Older writes put the fields at the top level.
	c.Finance.CarrierBalance = ev.Int("CarrierBalance")
	c.Finance.ReserveBalance = ev.Int("ReserveBalance")
	c.Finance.AvailableBalance = ev.Int("AvailableBalance")
	c.Finance.ReservePercent = ev.Float("ReservePercent")
}

// handleCarrierBankTransfer moves credits between the carrier bank and
// the commander's balance, so it touches two slices.
func (p *Projector) handleCarrierBankTransfer(ev *journal.Event) []state.SliceName {
	carrier := p.state.Carrier
	if carrier == nil || ev.Int("CarrierID") != carrier.ID {
		return nil
	}
	carrier.Finance.CarrierBalance = ev.Int("CarrierBalance")
	p.state.Commander.Credits = ev.Int("PlayerBalance")
	return []state.SliceName{state.SliceCarrier, state.SliceCommander}
}

// applyCarrierTradeOrder adds, updates or cancels the order keyed by
// (commodity, blackMarket).
func (p *Projector) applyCarrierTradeOrder(c *state.Carrier, ev *journal.Event) {
	commodity := ev.Str("Commodity")
	blackMarket := ev.Bool("BlackMarket")
	i := c.FindTradeOrder(commodity, blackMarket)

	if ev.Bool("CancelTrade") {
		if i >= 0 {
			c.TradeOrders = append(c.TradeOrders[:i], c.TradeOrders[i+1:]...)
		}
		return
	}

	order := state.TradeOrder{
		Commodity:     commodity,
		BlackMarket:   blackMarket,
		PurchaseOrder: int(ev.Int("PurchaseOrder")),
		SaleOrder:     int(ev.Int("SaleOrder")),
		Price:         ev.Int("Price"),
	}
	if i >= 0 {
		c.TradeOrders[i] = order
	} else {
		c.TradeOrders = append(c.TradeOrders, order)
	}
}

func (p *Projector) applyCarrierCrewServices(c *state.Carrier, ev *journal.Event) {
	role := ev.Str("CrewRole")
	i := c.FindService(role)
	if i < 0 {
		c.Services = append(c.Services, state.CrewService{Role: role})
		i = len(c.Services) - 1
	}
	service := &c.Services[i]

	switch strings.ToLower(ev.Str("Operation")) {
	case "activate":
		service.Activated = true
		service.Enabled = true
	case "deactivate":
		service.Activated = false
		service.Enabled = false
	case "pause":
		service.Enabled = false
	case "resume":
		service.Enabled = true
	case "replace":
	}
	if name := ev.Str("CrewName"); name != "" {
		service.CrewName = name
	}
}

func (p *Projector) applyCarrierModulePack(c *state.Carrier, ev *journal.Event) {
	c.ModulePacks = applyPackOperation(c.ModulePacks, ev)
}

func (p *Projector) applyCarrierShipPack(c *state.Carrier, ev *journal.Event) {
	c.ShipPacks = applyPackOperation(c.ShipPacks, ev)
}

// applyPackOperation buys or sells a pack keyed by (theme, tier).
func applyPackOperation(packs []state.CarrierPack, ev *journal.Event) []state.CarrierPack {
	theme := ev.Str("PackTheme")
	tier := int(ev.Int("PackTier"))

	idx := -1
	for i := range packs {
		if packs[i].Theme == theme && packs[i].Tier == tier {
			idx = i
			break
		}
	}

	op := strings.ToLower(ev.Str("Operation"))
	switch {
	case strings.HasPrefix(op, "buy"):
		if idx < 0 {
			packs = append(packs, state.CarrierPack{Theme: theme, Tier: tier})
		}
	case strings.HasPrefix(op, "sell"):
		if idx >= 0 {
			packs = append(packs[:idx], packs[idx+1:]...)
		}
	}
	return packs
}
