package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/team-schedule/models"
)

func availability(days map[models.Day]models.AvailabilityOption) models.WeekAvailability {
	return models.NewWeekAvailability(days)
}

func sampleSchedule() models.ScheduleData {
	return models.ScheduleData{Players: []models.PlayerAvailability{
		{PlayerID: "a", PlayerName: "Healer One", Role: models.RoleSupport,
			Availability: availability(map[models.Day]models.AvailabilityOption{models.Monday: models.AvailabilityEarly})},
		{PlayerID: "b", PlayerName: "Wall", Role: models.RoleTank,
			Availability: availability(map[models.Day]models.AvailabilityOption{models.Sunday: models.AvailabilityAllBlocks})},
		{PlayerID: "c", PlayerName: "Flanker", Role: models.RoleDPS,
			Availability: availability(map[models.Day]models.AvailabilityOption{models.Friday: models.AvailabilityCannot})},
		{PlayerID: "d", PlayerName: "Healer Two", Role: models.RoleSupport,
			Availability: availability(map[models.Day]models.AvailabilityOption{models.Tuesday: models.AvailabilityLate})},
		{PlayerID: "e", PlayerName: "Shield", Role: models.RoleTank,
			Availability: availability(nil)},
	}}
}

func TestToSheetRows_Layout(t *testing.T) {
	rows := ToSheetRows(sampleSchedule(), "2025-01-06", "2025-01-12", models.RoleSetV1)

	require.Len(t, rows, 3+5)
	assert.Equal(t, []string{"Team Schedule 2025-01-06 - 2025-01-12"}, rows[0])
	assert.Empty(t, rows[1])
	assert.Equal(t, []string{"Role", "Players", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}, rows[2])

	var names []string
	for _, r := range rows[3:] {
		require.Len(t, r, 9)
		names = append(names, r[1])
	}
	// Tank, DPS, Support; внутри роли исходный порядок.
	assert.Equal(t, []string{"Wall", "Shield", "Flanker", "Healer One", "Healer Two"}, names)

	assert.Equal(t, []string{"Tank", "Wall", "unknown", "unknown", "unknown", "unknown", "unknown", "unknown", "All blocks"}, rows[3])
}

func TestToSheetRows_UnlistedRolesFollowInEncounterOrder(t *testing.T) {
	data := models.ScheduleData{Players: []models.PlayerAvailability{
		{PlayerName: "x", Role: "Analyst"},
		{PlayerName: "y", Role: models.RoleCoach},
		{PlayerName: "z", Role: "Analyst"},
		{PlayerName: "w", Role: "Streamer"},
	}}

	rows := ToSheetRows(data, "s", "e", models.RoleSetV1)
	var roles []string
	for _, r := range rows[3:] {
		roles = append(roles, r[0])
	}
	assert.Equal(t, []string{"Coach", "Analyst", "Analyst", "Streamer"}, roles)
}

func TestRoundTrip(t *testing.T) {
	data := sampleSchedule()
	rows := ToSheetRows(data, "permanent", "permanent", models.RoleSetV1)
	imported := FromSheetRows(rows, models.RoleSetV1)

	expected := groupByRole(data.Players, models.RoleSetV1)
	require.Len(t, imported, len(expected))
	for i, p := range imported {
		assert.Equal(t, expected[i].Role, p.Role)
		assert.Equal(t, expected[i].PlayerName, p.PlayerName)
		assert.Equal(t, expected[i].Availability, p.Availability)
	}
}

func TestFromSheetRows_TooFewRows(t *testing.T) {
	assert.Empty(t, FromSheetRows(nil, models.RoleSetV1))
	assert.Empty(t, FromSheetRows([][]string{{"Team Schedule"}, {}, HeaderRow()}, models.RoleSetV1))
	assert.NotNil(t, FromSheetRows(nil, models.RoleSetV1))
}

func TestFromSheetRows_DefaultsAndPositionalIDs(t *testing.T) {
	rows := [][]string{
		{"Team Schedule x - y"},
		{},
		HeaderRow(),
		{"", "", "All blocks"},
		{"only-one-cell"},
		{"DPS", "Sniper", "", "cannot", "", "", "", "", "20:00-22:00 CEST"},
	}

	players := FromSheetRows(rows, models.RoleSetV1)
	require.Len(t, players, 2)

	first := players[0]
	assert.Equal(t, 3, first.Row)
	assert.Equal(t, models.RoleTank, first.Role)
	assert.Equal(t, "Player 3", first.PlayerName)
	assert.Equal(t, models.AvailabilityAllBlocks, first.Availability.On(models.Monday))
	assert.Equal(t, models.AvailabilityUnknown, first.Availability.On(models.Tuesday))

	second := players[1]
	assert.Equal(t, "player-5", second.PositionalID())
	assert.Equal(t, models.AvailabilityUnknown, second.Availability.On(models.Monday))
	assert.Equal(t, models.AvailabilityCannot, second.Availability.On(models.Tuesday))
	assert.Equal(t, models.AvailabilityLate, second.Availability.On(models.Sunday))

	data := ToScheduleData(players)
	require.Len(t, data.Players, 2)
	assert.Equal(t, "player-3", data.Players[0].PlayerID)
	assert.Equal(t, "Sniper", data.Players[1].PlayerName)
}

func TestFromSheetRows_FallbackFollowsRoleSet(t *testing.T) {
	rows := [][]string{{"t"}, {}, HeaderRow(), {"", "Anon"}}
	players := FromSheetRows(rows, models.RoleSetV2)
	require.Len(t, players, 1)
	assert.Equal(t, models.RoleAR, players[0].Role)
}

func TestTabName(t *testing.T) {
	assert.Equal(t, "Week_permanent", TabName("permanent"))
}
