package projector

import (
	"time"

	"github.com/cmdrlink/edcore/internal/application/bus"
	"github.com/cmdrlink/edcore/internal/domain/state"
	"github.com/cmdrlink/edcore/internal/domain/status"
	"github.com/cmdrlink/edcore/internal/domain/watched"
)

func (p *Projector) registerSidecarHandlers() {
	p.sidecars[watched.FileStatus] = p.handleStatusSidecar
	p.sidecars[watched.FileCargo] = p.handleCargoSidecar
	p.sidecars[watched.FileBackpack] = p.handleBackpackSidecar
}

// handleStatusSidecar folds the live-status snapshot into the ship and
// location slices and publishes the derived status:flags envelope on
// every read, whether or not any slice changed.
func (p *Projector) handleStatusSidecar(update *bus.CompanionUpdate) []state.SliceName {
	doc := status.Decode(update.Data)

	ship := &p.state.Ship
	ship.HardpointsDeployed = doc.Ship.HardpointsDeployed
	ship.LandingGearDown = doc.Ship.LandingGearDown
	ship.ShieldsUp = doc.Ship.ShieldsUp
	ship.CargoScoopOpen = doc.Ship.CargoScoopOpen
	ship.LightsOn = doc.Ship.LightsOn
	ship.FSDCharging = doc.Ship.FSDCharging
	ship.FSDCooldown = doc.Ship.FSDCooldown
	ship.FSDMassLocked = doc.Ship.FSDMassLocked
	ship.SilentRunning = doc.Ship.SilentRunning
	ship.NightVision = doc.Ship.NightVision
	if doc.HasFuel {
		ship.Fuel.Main = doc.FuelMain
		ship.Fuel.Reserve = doc.FuelReserve
	}

	loc := &p.state.Location
	loc.Docked = doc.Location.Docked
	loc.Landed = doc.Location.Landed
	loc.Supercruise = doc.Location.Supercruise
	loc.InSRV = doc.Location.InSRV
	loc.InFighter = doc.Location.InFighter
	loc.InMulticrew = doc.Location.InMulticrew
	loc.OnFoot = doc.Location.OnFoot
	loc.InTaxi = doc.Location.InTaxi
	// The status file is a full snapshot: no surface block means the
	// ship left the surface, not that the old fix still holds.
	if doc.Surface != nil {
		loc.Surface = &state.Surface{
			Latitude:  doc.Surface.Latitude,
			Longitude: doc.Surface.Longitude,
			Altitude:  doc.Surface.Altitude,
			Heading:   doc.Surface.Heading,
		}
	} else {
		loc.Surface = nil
	}
	if doc.BodyName != "" {
		loc.Body = doc.BodyName
	}

	p.fabric.BroadcastAt(TopicStatusFlags, doc, p.now().UTC().Format(time.RFC3339))
	return []state.SliceName{state.SliceShip, state.SliceLocation}
}

// handleCargoSidecar mirrors the Cargo journal event for the Cargo.json
// snapshot. Only the ship's own hold counts; SRV cargo is ignored.
func (p *Projector) handleCargoSidecar(update *bus.CompanionUpdate) []state.SliceName {
	if vessel, _ := update.Data["Vessel"].(string); vessel != "" && vessel != "Ship" {
		return nil
	}

	inventory := []map[string]any{}
	if raw, ok := update.Data["Inventory"].([]any); ok {
		for _, el := range raw {
			if m, ok := el.(map[string]any); ok {
				inventory = append(inventory, m)
			}
		}
	}
	p.applyCargo(inventory, num(update.Data["Count"]))
	return []state.SliceName{state.SliceShip}
}

func (p *Projector) handleBackpackSidecar(update *bus.CompanionUpdate) []state.SliceName {
	p.applyBackpack(update.Data)
	return []state.SliceName{state.SliceOnFoot}
}
