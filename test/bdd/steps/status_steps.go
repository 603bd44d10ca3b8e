package steps

import (
	"fmt"

	"github.com/cucumber/godog"

	"github.com/cmdrlink/edcore/internal/application/bus"
)

// Status steps run against the shared projection context: the sidecar
// snapshot and the journal fold into the same document.

func statusFileReportsFlags(flags, flags2 int) error {
	sharedProjection.projector.HandleCompanion(&bus.CompanionUpdate{
		File: "Status.json",
		Data: map[string]any{
			"Flags":  float64(flags),
			"Flags2": float64(flags2),
		},
	})
	return nil
}

func hardpointsShouldBeDeployed() error {
	if !sharedProjection.ship().HardpointsDeployed {
		return fmt.Errorf("expected hardpoints deployed")
	}
	return nil
}

func hardpointsShouldNotBeDeployed() error {
	if sharedProjection.ship().HardpointsDeployed {
		return fmt.Errorf("expected hardpoints retracted")
	}
	return nil
}

func shieldsShouldBeUp() error {
	if !sharedProjection.ship().ShieldsUp {
		return fmt.Errorf("expected shields up")
	}
	return nil
}

func commanderShouldBeOnFoot() error {
	if !sharedProjection.location().OnFoot {
		return fmt.Errorf("expected the commander on foot")
	}
	return nil
}

func InitializeStatusScenario(sc *godog.ScenarioContext) {
	sc.Step(`^the status file reports flags (\d+) and flags2 (\d+)$`, statusFileReportsFlags)
	sc.Step(`^hardpoints should be deployed$`, hardpointsShouldBeDeployed)
	sc.Step(`^hardpoints should not be deployed$`, hardpointsShouldNotBeDeployed)
	sc.Step(`^shields should be up$`, shieldsShouldBeUp)
	sc.Step(`^the commander should be on foot$`, commanderShouldBeOnFoot)
}
