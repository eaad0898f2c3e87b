package services

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/team-schedule/models"
)

func TestCreateNote_StampsServerTime(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 7, 18, 30, 0, 0, time.UTC))
	repo := &memNoteRepo{}
	notifier := &recordingNotifier{}
	svc := NewTeamNoteService(repo, models.NewValidator(models.RoleSetV1), notifier, clock)

	note, err := svc.CreateNote(context.Background(), CreateTeamNoteInput{SenderName: "Coach", Message: "Scrim moved to 20:00"})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-07T18:30:00Z", note.Timestamp)
	assert.Len(t, repo.notes, 1)
	assert.Equal(t, []string{"note.created"}, notifier.kinds())
}

func TestCreateNote_AcceptsClientTimestamp(t *testing.T) {
	svc := NewTeamNoteService(&memNoteRepo{}, models.NewValidator(models.RoleSetV1), nil, clockwork.NewFakeClock())

	note, err := svc.CreateNote(context.Background(), CreateTeamNoteInput{
		SenderName: "Coach", Message: "hi", Timestamp: strPtr("2025-01-07T20:30:00+02:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-07T18:30:00Z", note.Timestamp)

	_, err = svc.CreateNote(context.Background(), CreateTeamNoteInput{SenderName: "Coach", Message: "hi", Timestamp: strPtr("yesterday")})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "timestamp", verr.Fields[0].Field)
}

func TestCreateNote_RequiresSenderAndMessage(t *testing.T) {
	svc := NewTeamNoteService(&memNoteRepo{}, models.NewValidator(models.RoleSetV1), nil, clockwork.NewFakeClock())

	_, err := svc.CreateNote(context.Background(), CreateTeamNoteInput{Message: "  "})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

func TestDeleteNote(t *testing.T) {
	repo := &memNoteRepo{notes: []models.TeamNote{{ID: "n1", SenderName: "a", Message: "b", Timestamp: "2025-01-01T00:00:00Z"}}}
	svc := NewTeamNoteService(repo, models.NewValidator(models.RoleSetV1), nil, nil)

	note, err := svc.GetNoteByID(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, "b", note.Message)

	require.NoError(t, svc.DeleteNote(context.Background(), "n1"))
	assert.ErrorIs(t, svc.DeleteNote(context.Background(), "n1"), ErrTeamNoteNotFound)
	_, err = svc.GetNoteByID(context.Background(), "n1")
	assert.ErrorIs(t, err, ErrTeamNoteNotFound)
}
