package projector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdrlink/edcore/internal/application/projector"
	"github.com/cmdrlink/edcore/internal/domain/state"
)

func missionsOf(p *projector.Projector) []state.Mission {
	return p.SliceSnapshot(state.SliceMissions).([]state.Mission)
}

func TestMissionsSnapshot_SeedsStubs(t *testing.T) {
	p, _ := newProjector()

	apply(t, p, "Missions", map[string]any{
		"Active": []any{
			map[string]any{"MissionID": 736124589, "Name": "Mission_Delivery", "Expires": 81835},
			map[string]any{"MissionID": 736124590, "Name": "Mission_Passenger", "PassengerMission": true},
		},
		"Failed":   []any{},
		"Complete": []any{},
	})

	missions := missionsOf(p)
	require.Len(t, missions, 2)
	assert.Equal(t, int64(736124589), missions[0].ID)
	assert.False(t, missions[0].Passenger)
	assert.True(t, missions[1].Passenger)
}

func TestMissionAccepted_ReplacesStub(t *testing.T) {
	p, _ := newProjector()
	apply(t, p, "Missions", map[string]any{
		"Active": []any{map[string]any{"MissionID": 736124589, "Name": "Mission_Delivery"}},
	})

	apply(t, p, "MissionAccepted", map[string]any{
		"MissionID":          736124589,
		"Name":               "Mission_Delivery",
		"Faction":            "Sol Workers' Party",
		"Commodity":          "$Beer_Name;",
		"Count":              12,
		"DestinationSystem":  "Barnard's Star",
		"DestinationStation": "Miller Depot",
		"Reward":             104250,
		"Expiry":             "2026-01-16T20:00:00Z",
		"Wing":               false,
	})

	missions := missionsOf(p)
	require.Len(t, missions, 1)
	assert.Equal(t, "Sol Workers' Party", missions[0].Faction)
	assert.Equal(t, 12, missions[0].Count)
	assert.Equal(t, int64(104250), missions[0].Reward)
}

func TestMissionCompleted_RemovesEarnsAndRewardsMaterials(t *testing.T) {
	p, _ := newProjector()
	apply(t, p, "MissionAccepted", map[string]any{"MissionID": 736124589, "Name": "Mission_Delivery"})

	apply(t, p, "MissionCompleted", map[string]any{
		"MissionID": 736124589,
		"Reward":    104250,
		"MaterialsReward": []any{
			map[string]any{"Name": "iron", "Category": "Raw", "Count": 6},
		},
	})

	assert.Empty(t, missionsOf(p))
	session := sessionOf(p)
	assert.Equal(t, 1, session.MissionsCompleted)
	assert.Equal(t, int64(104250), session.CreditsEarned)
	mats := materialsOf(p)
	require.Len(t, mats.Raw, 1)
	assert.Equal(t, 6, mats.Raw[0].Count)
}

func TestMissionAbandoned_CountsFailureAndFine(t *testing.T) {
	p, _ := newProjector()
	apply(t, p, "MissionAccepted", map[string]any{"MissionID": 736124589, "Name": "Mission_Delivery"})

	apply(t, p, "MissionAbandoned", map[string]any{"MissionID": 736124589, "Fine": 25000})

	assert.Empty(t, missionsOf(p))
	session := sessionOf(p)
	assert.Equal(t, 1, session.MissionsFailed)
	assert.Equal(t, int64(25000), session.CreditsSpent)
}

func TestMissionFailed_SharesDroppedPath(t *testing.T) {
	p, _ := newProjector()
	apply(t, p, "MissionAccepted", map[string]any{"MissionID": 736124590, "Name": "Mission_Massacre"})

	apply(t, p, "MissionFailed", map[string]any{"MissionID": 736124590})

	assert.Empty(t, missionsOf(p))
	assert.Equal(t, 1, sessionOf(p).MissionsFailed)
}

func TestMissionRedirected_UpdatesDestination(t *testing.T) {
	p, _ := newProjector()
	apply(t, p, "MissionAccepted", map[string]any{
		"MissionID": 736124589, "DestinationSystem": "Sol", "DestinationStation": "Abraham Lincoln",
	})

	apply(t, p, "MissionRedirected", map[string]any{
		"MissionID":             736124589,
		"NewDestinationSystem":  "Barnard's Star",
		"NewDestinationStation": "Miller Depot",
	})

	missions := missionsOf(p)
	assert.Equal(t, "Barnard's Star", missions[0].DestinationSystem)
	assert.Equal(t, "Miller Depot", missions[0].DestinationStation)
}

func TestMissionRedirected_UnknownIDIsNoop(t *testing.T) {
	p, spy := newProjector()

	apply(t, p, "MissionRedirected", map[string]any{"MissionID": 999, "NewDestinationSystem": "Sol"})

	assert.Empty(t, missionsOf(p))
	assert.Nil(t, spy.last("state:missions"))
}
