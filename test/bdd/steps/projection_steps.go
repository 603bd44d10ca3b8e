package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"

	"github.com/cmdrlink/edcore/internal/application/bus"
	"github.com/cmdrlink/edcore/internal/application/projector"
	"github.com/cmdrlink/edcore/internal/domain/journal"
	"github.com/cmdrlink/edcore/internal/domain/state"
)

// projectionContext drives a projector directly, with the context itself
// standing in for the broadcast fabric.
type projectionContext struct {
	projector  *projector.Projector
	broadcasts []string
}

// sharedProjection is reused by the status steps so both features run
// against the same projected state.
var sharedProjection = &projectionContext{}

func (pc *projectionContext) BroadcastAt(topic string, payload any, timestamp string) {
	pc.broadcasts = append(pc.broadcasts, topic)
}

func (pc *projectionContext) reset() {
	pc.broadcasts = nil
	b := bus.New(zerolog.Nop())
	pc.projector = projector.New(b, pc, zerolog.Nop(), nil)
}

func (pc *projectionContext) location() state.Location {
	return pc.projector.SliceSnapshot(state.SliceLocation).(state.Location)
}

func (pc *projectionContext) session() state.Session {
	return pc.projector.SliceSnapshot(state.SliceSession).(state.Session)
}

func (pc *projectionContext) ship() state.Ship {
	return pc.projector.SliceSnapshot(state.SliceShip).(state.Ship)
}

// Given steps

func (pc *projectionContext) aFreshGameState() error {
	pc.reset()
	return nil
}

// When steps

func (pc *projectionContext) theJournalRecords(doc *godog.DocString) error {
	for _, line := range strings.Split(doc.Content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ev := journal.ParseLine([]byte(line))
		if ev == nil {
			return fmt.Errorf("unparseable journal line: %s", line)
		}
		pc.projector.HandleEvent(ev)
	}
	return nil
}

// Then steps

func (pc *projectionContext) theCurrentSystemShouldBe(system string) error {
	if got := pc.location().System; got != system {
		return fmt.Errorf("expected system %q, got %q", system, got)
	}
	return nil
}

func (pc *projectionContext) theShipShouldBeInSupercruise() error {
	if !pc.location().Supercruise {
		return fmt.Errorf("expected supercruise, but the ship is in normal space")
	}
	return nil
}

func (pc *projectionContext) theSessionShouldCountJumps(jumps int, distance float64) error {
	session := pc.session()
	if session.Jumps != jumps {
		return fmt.Errorf("expected %d jumps, got %d", jumps, session.Jumps)
	}
	if session.TotalDistance != distance {
		return fmt.Errorf("expected %.2f ly travelled, got %.2f", distance, session.TotalDistance)
	}
	return nil
}

func (pc *projectionContext) theCommanderNameShouldBe(name string) error {
	cmdr := pc.projector.SliceSnapshot(state.SliceCommander).(state.Commander)
	if cmdr.Name != name {
		return fmt.Errorf("expected commander %q, got %q", name, cmdr.Name)
	}
	return nil
}

func (pc *projectionContext) theRawMaterialShouldHold(name string, count int) error {
	materials := pc.projector.SliceSnapshot(state.SliceMaterials).(state.Materials)
	for _, mat := range materials.Raw {
		if mat.Name == name {
			if mat.Count != count {
				return fmt.Errorf("expected %d units of %s, got %d", count, name, mat.Count)
			}
			return nil
		}
	}
	return fmt.Errorf("raw material %s not found", name)
}

func (pc *projectionContext) theSessionShouldCountMaterialsCollected(count int) error {
	if got := pc.session().MaterialsCollected; got != count {
		return fmt.Errorf("expected %d materials collected, got %d", count, got)
	}
	return nil
}

func (pc *projectionContext) noMissionsShouldRemain() error {
	missions := pc.projector.SliceSnapshot(state.SliceMissions).([]state.Mission)
	if len(missions) != 0 {
		return fmt.Errorf("expected no missions, got %d", len(missions))
	}
	return nil
}

func (pc *projectionContext) theSessionShouldShowCreditsEarned(credits int64) error {
	if got := pc.session().CreditsEarned; got != credits {
		return fmt.Errorf("expected %d credits earned, got %d", credits, got)
	}
	return nil
}

func (pc *projectionContext) anEnvelopeShouldHaveBeenBroadcast(topic string) error {
	for _, got := range pc.broadcasts {
		if got == topic {
			return nil
		}
	}
	return fmt.Errorf("no %q envelope broadcast; saw %v", topic, pc.broadcasts)
}

func InitializeProjectionScenario(sc *godog.ScenarioContext) {
	pc := sharedProjection
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		pc.reset()
		return ctx, nil
	})

	sc.Step(`^a fresh game state$`, pc.aFreshGameState)
	sc.Step(`^the journal records:$`, pc.theJournalRecords)
	sc.Step(`^the current system should be "([^"]*)"$`, pc.theCurrentSystemShouldBe)
	sc.Step(`^the ship should be in supercruise$`, pc.theShipShouldBeInSupercruise)
	sc.Step(`^the session should count (\d+) jumps and ([\d.]+) ly travelled$`, pc.theSessionShouldCountJumps)
	sc.Step(`^the commander name should be "([^"]*)"$`, pc.theCommanderNameShouldBe)
	sc.Step(`^the raw material "([^"]*)" should hold (\d+) units$`, pc.theRawMaterialShouldHold)
	sc.Step(`^the session should count (\d+) materials collected$`, pc.theSessionShouldCountMaterialsCollected)
	sc.Step(`^no missions should remain$`, pc.noMissionsShouldRemain)
	sc.Step(`^the session should show (\d+) credits earned$`, pc.theSessionShouldShowCreditsEarned)
	sc.Step(`^a "([^"]*)" envelope should have been broadcast$`, pc.anEnvelopeShouldHaveBeenBroadcast)
}
