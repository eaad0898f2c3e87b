package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Dosada05/team-schedule/models"
	"github.com/Dosada05/team-schedule/realtime"
	"github.com/Dosada05/team-schedule/repositories"
)

// TeamNoteService: журнал сообщений команды, только добавление и удаление.
type TeamNoteService interface {
	CreateNote(ctx context.Context, input CreateTeamNoteInput) (*models.TeamNote, error)
	GetNoteByID(ctx context.Context, id string) (*models.TeamNote, error)
	GetAllNotes(ctx context.Context) ([]models.TeamNote, error)
	DeleteNote(ctx context.Context, id string) error
}

type CreateTeamNoteInput struct {
	SenderName string  `json:"senderName"`
	Message    string  `json:"message"`
	Timestamp  *string `json:"timestamp"`
}

type teamNoteService struct {
	noteRepo  repositories.TeamNoteRepository
	validator *models.Validator
	notifier  Notifier
	clock     clockwork.Clock
}

func NewTeamNoteService(
	noteRepo repositories.TeamNoteRepository,
	validator *models.Validator,
	notifier Notifier,
	clock clockwork.Clock,
) TeamNoteService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &teamNoteService{
		noteRepo:  noteRepo,
		validator: validator,
		notifier:  orNop(notifier),
		clock:     clock,
	}
}

func (s *teamNoteService) CreateNote(ctx context.Context, input CreateTeamNoteInput) (*models.TeamNote, error) {
	note := &models.TeamNote{
		ID:         newID(),
		SenderName: strings.TrimSpace(input.SenderName),
		Message:    strings.TrimSpace(input.Message),
		Timestamp:  s.clock.Now().UTC().Format(time.RFC3339),
	}
	if ts := trimmedOrNil(input.Timestamp); ts != nil {
		parsed, err := time.Parse(time.RFC3339, *ts)
		if err != nil {
			return nil, models.NewValidationError("timestamp", "must be an RFC 3339 timestamp")
		}
		note.Timestamp = parsed.UTC().Format(time.RFC3339)
	}
	if err := s.validator.Struct(note); err != nil {
		return nil, err
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create team note: %w", err)
	}
	s.notifier.Publish(realtime.TopicNotes, "note.created", note)
	return note, nil
}

func (s *teamNoteService) GetNoteByID(ctx context.Context, id string) (*models.TeamNote, error) {
	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNoteNotFound) {
			return nil, ErrTeamNoteNotFound
		}
		return nil, fmt.Errorf("failed to get team note by id %s: %w", id, err)
	}
	return note, nil
}

func (s *teamNoteService) GetAllNotes(ctx context.Context) ([]models.TeamNote, error) {
	notes, err := s.noteRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get team notes: %w", err)
	}
	if notes == nil {
		return []models.TeamNote{}, nil
	}
	return notes, nil
}

func (s *teamNoteService) DeleteNote(ctx context.Context, id string) error {
	if err := s.noteRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTeamNoteNotFound) {
			return ErrTeamNoteNotFound
		}
		return fmt.Errorf("failed to delete team note %s: %w", id, err)
	}
	s.notifier.Publish(realtime.TopicNotes, "note.deleted", map[string]string{"id": id})
	return nil
}
