package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdrlink/edcore/internal/domain/state"
)

func TestGradeCap(t *testing.T) {
	assert.Equal(t, 300, state.GradeCap(1))
	assert.Equal(t, 250, state.GradeCap(2))
	assert.Equal(t, 200, state.GradeCap(3))
	assert.Equal(t, 150, state.GradeCap(4))
	assert.Equal(t, 100, state.GradeCap(5))
	// Unknown grades fall back to the grade-1 cap.
	assert.Equal(t, 300, state.GradeCap(0))
}

func TestSession_RecordVisit(t *testing.T) {
	var s state.Session
	s.Reset("T0")

	s.RecordVisit("Sol")
	s.RecordVisit("Sol")
	s.RecordVisit("Barnard's Star")
	s.RecordVisit("")

	assert.Equal(t, 3, s.SystemsVisited)
	assert.Equal(t, []string{"Sol", "Barnard's Star"}, s.UniqueSystemsVisited)
}

func TestSession_NetProfit(t *testing.T) {
	var s state.Session

	s.Earn(1000)
	s.Spend(400)

	assert.Equal(t, int64(600), s.NetProfit)
	assert.Equal(t, s.CreditsEarned-s.CreditsSpent, s.NetProfit)
}

func TestGameState_CloneIsIndependent(t *testing.T) {
	// Arrange
	g := state.New()
	g.Ship.Modules = []state.Module{{Slot: "PowerPlant", Item: "int_powerplant_size7_class5", Health: 1}}
	g.Materials.Raw = []state.Material{{Name: "iron", Category: state.CategoryRaw, Grade: 1, Count: 10, Maximum: 300}}
	g.Session.UniqueSystemsVisited = []string{"Sol"}

	// Act
	clone := g.Clone()
	g.Ship.Modules[0].Health = 0.5
	g.Materials.Raw[0].Count = 0
	g.Session.UniqueSystemsVisited[0] = "Achenar"

	// Assert
	require.Len(t, clone.Ship.Modules, 1)
	assert.Equal(t, 1.0, clone.Ship.Modules[0].Health)
	assert.Equal(t, 10, clone.Materials.Raw[0].Count)
	assert.Equal(t, "Sol", clone.Session.UniqueSystemsVisited[0])
}

func TestGameState_SliceCarrierNilUntilStats(t *testing.T) {
	g := state.New()

	assert.Nil(t, g.Slice(state.SliceCarrier))

	g.Carrier = &state.Carrier{ID: 7}
	carrier, ok := g.Slice(state.SliceCarrier).(state.Carrier)
	require.True(t, ok)
	assert.Equal(t, int64(7), carrier.ID)
}

func TestClassifySuit(t *testing.T) {
	assert.Equal(t, state.SuitExploration, state.ClassifySuit("ExplorationSuit_Class1"))
	assert.Equal(t, state.SuitExploration, state.ClassifySuit("artemis_suit"))
	assert.Equal(t, state.SuitTactical, state.ClassifySuit("TacticalSuit_Class3"))
	assert.Equal(t, state.SuitTactical, state.ClassifySuit("dominator_mk2"))
	assert.Equal(t, state.SuitUtility, state.ClassifySuit("UtilitySuit_Class2"))
	assert.Equal(t, state.SuitUtility, state.ClassifySuit("maverick"))
	assert.Equal(t, state.SuitFlight, state.ClassifySuit("FlightSuit"))
	assert.Equal(t, state.SuitFlight, state.ClassifySuit("something_else"))
}
