package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/team-schedule/models"
	"github.com/Dosada05/team-schedule/sheets"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newScheduleService(repo *memScheduleRepo, mirror SheetMirror, notifier Notifier) ScheduleService {
	return NewScheduleService(repo, mirror, models.NewValidator(models.RoleSetV1), notifier, discardLogger())
}

func sheetWithOnePlayer() [][]string {
	return [][]string{
		{"Team Schedule 2025-01-06 - 2025-01-12"},
		{},
		sheets.HeaderRow(),
		{"DPS", "Alice", "All blocks", "cannot", "", "", "", "", ""},
	}
}

func TestGetSchedule_ImportsFromSheetWhenNoLocalCopy(t *testing.T) {
	repo := newMemScheduleRepo()
	svc := newScheduleService(repo, &fakeMirror{rows: sheetWithOnePlayer()}, nil)

	schedule, err := svc.GetSchedule(context.Background(), "2025-01-06", "2025-01-12")
	require.NoError(t, err)

	require.Len(t, schedule.ScheduleData.Players, 1)
	p := schedule.ScheduleData.Players[0]
	assert.Equal(t, "player-3", p.PlayerID)
	assert.Equal(t, "Alice", p.PlayerName)
	assert.Equal(t, models.RoleDPS, p.Role)
	assert.Equal(t, models.AvailabilityAllBlocks, p.Availability.On(models.Monday))
	assert.Equal(t, models.AvailabilityCannot, p.Availability.On(models.Tuesday))
	assert.Equal(t, models.AvailabilityUnknown, p.Availability.On(models.Wednesday))
	require.NotNil(t, schedule.GoogleSheetID)
	assert.Equal(t, "Week_2025-01-06", *schedule.GoogleSheetID)

	stored, err := repo.GetByWeek(context.Background(), "2025-01-06", "2025-01-12")
	require.NoError(t, err)
	assert.Equal(t, schedule.ID, stored.ID)
	assert.Len(t, stored.ScheduleData.Players, 1)
}

func TestGetSchedule_LocalCopyWins(t *testing.T) {
	repo := newMemScheduleRepo()
	tab := "Week_w"
	require.NoError(t, repo.Upsert(context.Background(), &models.Schedule{
		ID: "local", WeekStartDate: "w", WeekEndDate: "e",
		ScheduleData:  models.ScheduleData{Players: []models.PlayerAvailability{}},
		GoogleSheetID: &tab,
	}))
	svc := newScheduleService(repo, &fakeMirror{rows: sheetWithOnePlayer()}, nil)

	schedule, err := svc.GetSchedule(context.Background(), "w", "e")
	require.NoError(t, err)
	assert.Equal(t, "local", schedule.ID)
	assert.Empty(t, schedule.ScheduleData.Players)
	assert.Equal(t, 1, repo.upserts)
}

func TestGetSchedule_DegradesToEmpty(t *testing.T) {
	cases := map[string]*fakeMirror{
		"read error":   {readErr: errBoom},
		"header only":  {rows: sheetWithOnePlayer()[:3]},
		"no rows":      {rows: nil},
		"disabled tab": nil,
	}
	for name, mirror := range cases {
		t.Run(name, func(t *testing.T) {
			repo := newMemScheduleRepo()
			var m SheetMirror = sheets.Disabled{}
			if mirror != nil {
				m = mirror
			}
			svc := newScheduleService(repo, m, nil)

			schedule, err := svc.GetSchedule(context.Background(), "permanent", "permanent")
			require.NoError(t, err)
			assert.NotNil(t, schedule.ScheduleData.Players)
			assert.Empty(t, schedule.ScheduleData.Players)
			require.NotNil(t, schedule.GoogleSheetID)
			assert.Equal(t, "Week_permanent", *schedule.GoogleSheetID)
			assert.Equal(t, 1, repo.upserts)
		})
	}
}

func TestGetSchedule_RequiresWeekKey(t *testing.T) {
	svc := newScheduleService(newMemScheduleRepo(), &fakeMirror{}, nil)

	_, err := svc.GetSchedule(context.Background(), "", "2025-01-12")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "weekStartDate", verr.Fields[0].Field)
}

func validInput() SaveScheduleInput {
	return SaveScheduleInput{
		WeekStartDate: "2025-01-06",
		WeekEndDate:   "2025-01-12",
		ScheduleData: models.ScheduleData{Players: []models.PlayerAvailability{{
			PlayerID:     "a",
			PlayerName:   "Alice",
			Role:         models.RoleSupport,
			Availability: models.NewWeekAvailability(map[models.Day]models.AvailabilityOption{models.Friday: models.AvailabilityLate}),
		}}},
	}
}

func TestSaveSchedule_PushesThenStores(t *testing.T) {
	repo := newMemScheduleRepo()
	mirror := &fakeMirror{}
	notifier := &recordingNotifier{}
	svc := newScheduleService(repo, mirror, notifier)

	saved, err := svc.SaveSchedule(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "Week_2025-01-06", mirror.writtenTab)
	require.Len(t, mirror.writtenRows, 4)
	assert.Equal(t, []string{"Support", "Alice", "unknown", "unknown", "unknown", "unknown", "20:00-22:00 CEST", "unknown", "unknown"}, mirror.writtenRows[3])

	require.NotNil(t, saved.GoogleSheetID)
	assert.Equal(t, "Week_2025-01-06", *saved.GoogleSheetID)
	stored, err := repo.GetByWeek(context.Background(), "2025-01-06", "2025-01-12")
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.ScheduleData.Players[0].PlayerName)
	assert.Equal(t, []string{"schedule.saved"}, notifier.kinds())
}

func TestSaveSchedule_PushFailureLeavesLocalUntouched(t *testing.T) {
	repo := newMemScheduleRepo()
	tab := "Week_2025-01-06"
	previous := models.Schedule{
		ID: "old", WeekStartDate: "2025-01-06", WeekEndDate: "2025-01-12",
		ScheduleData:  models.ScheduleData{Players: []models.PlayerAvailability{}},
		GoogleSheetID: &tab,
	}
	require.NoError(t, repo.Upsert(context.Background(), &previous))

	notifier := &recordingNotifier{}
	svc := newScheduleService(repo, &fakeMirror{writeErr: errBoom}, notifier)

	_, err := svc.SaveSchedule(context.Background(), validInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExternalService)
	assert.ErrorIs(t, err, errBoom)

	stored, err := repo.GetByWeek(context.Background(), "2025-01-06", "2025-01-12")
	require.NoError(t, err)
	assert.Empty(t, stored.ScheduleData.Players)
	assert.Equal(t, 1, repo.upserts)
	assert.Empty(t, notifier.kinds())
}

func TestSaveSchedule_ValidationFailsBeforePush(t *testing.T) {
	repo := newMemScheduleRepo()
	mirror := &fakeMirror{}
	svc := newScheduleService(repo, mirror, nil)

	input := validInput()
	input.ScheduleData.Players[0].Role = "Healer"
	input.ScheduleData.Players[0].Availability.Set(models.Monday, "sometimes")

	_, err := svc.SaveSchedule(context.Background(), input)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Contains(t, fields, "scheduleData.players[0].role")
	assert.Contains(t, fields, "scheduleData.players[0].availability.Monday")
	assert.Zero(t, mirror.writes)
	assert.Zero(t, repo.upserts)
}

func TestSaveSchedule_DisabledMirrorSavesLocally(t *testing.T) {
	repo := newMemScheduleRepo()
	svc := newScheduleService(repo, sheets.Disabled{}, nil)

	_, err := svc.SaveSchedule(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.upserts)
}

func TestGetAnalytics(t *testing.T) {
	repo := newMemScheduleRepo()
	svc := newScheduleService(repo, &fakeMirror{}, nil)
	_, err := svc.SaveSchedule(context.Background(), validInput())
	require.NoError(t, err)

	summary, err := svc.GetAnalytics(context.Background(), "2025-01-06", "2025-01-12")
	require.NoError(t, err)
	require.Len(t, summary.BestTimeSlots, 1)
	assert.Equal(t, models.Friday, summary.BestTimeSlots[0].Day)
	assert.Equal(t, 100.0, summary.BestTimeSlots[0].Percentage)
	require.NotNil(t, summary.MostAvailableDay)
	assert.Equal(t, models.Friday, summary.MostAvailableDay.Day)
}

func TestImportFromSheet_OverwritesLocal(t *testing.T) {
	repo := newMemScheduleRepo()
	mirror := &fakeMirror{}
	svc := newScheduleService(repo, mirror, nil)
	_, err := svc.SaveSchedule(context.Background(), validInput())
	require.NoError(t, err)

	mirror.rows = sheetWithOnePlayer()
	imported, err := svc.ImportFromSheet(context.Background(), "2025-01-06", "2025-01-12")
	require.NoError(t, err)
	require.Len(t, imported.ScheduleData.Players, 1)
	assert.Equal(t, "player-3", imported.ScheduleData.Players[0].PlayerID)

	mirror.readErr = errBoom
	_, err = svc.ImportFromSheet(context.Background(), "2025-01-06", "2025-01-12")
	assert.ErrorIs(t, err, ErrExternalService)
}

func TestRepublish(t *testing.T) {
	repo := newMemScheduleRepo()
	mirror := &fakeMirror{}
	svc := newScheduleService(repo, mirror, nil)

	_, err := svc.Republish(context.Background(), "2025-01-06", "2025-01-12")
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	_, err = svc.SaveSchedule(context.Background(), validInput())
	require.NoError(t, err)
	mirror.writtenRows = nil

	_, err = svc.Republish(context.Background(), "2025-01-06", "2025-01-12")
	require.NoError(t, err)
	assert.Len(t, mirror.writtenRows, 4)
	assert.Equal(t, 2, mirror.writes)
}

func TestGetSpreadsheetInfo(t *testing.T) {
	svc := newScheduleService(newMemScheduleRepo(), sheets.Disabled{}, nil)
	_, err := svc.GetSpreadsheetInfo(context.Background())
	assert.ErrorIs(t, err, ErrSpreadsheetNotConfigured)

	mirror := &fakeMirror{info: sheets.SpreadsheetInfo{SpreadsheetID: "sid", URL: sheets.SpreadsheetURL("sid")}}
	svc = newScheduleService(newMemScheduleRepo(), mirror, nil)
	info, err := svc.GetSpreadsheetInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/sid", info.URL)

	mirror.infoErr = errBoom
	_, err = svc.GetSpreadsheetInfo(context.Background())
	assert.ErrorIs(t, err, ErrExternalService)
}
