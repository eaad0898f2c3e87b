package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/team-schedule/models"
	"github.com/Dosada05/team-schedule/realtime"
	"github.com/Dosada05/team-schedule/repositories"
)

type EventService interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error)
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	GetAllEvents(ctx context.Context) ([]models.Event, error)
	UpdateEvent(ctx context.Context, id string, input UpdateEventInput) (*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	GetEventGames(ctx context.Context, id string) ([]models.Game, error)
	GetRecord(ctx context.Context) (*models.EventRecord, error)
}

type CreateEventInput struct {
	Title        string              `json:"title"`
	EventType    models.EventType    `json:"eventType"`
	Date         string              `json:"date"`
	Time         *string             `json:"time"`
	Description  *string             `json:"description"`
	Result       *models.EventResult `json:"result"`
	OpponentName *string             `json:"opponentName"`
	Notes        *string             `json:"notes"`
}

type UpdateEventInput struct {
	Title        *string             `json:"title"`
	EventType    *models.EventType   `json:"eventType"`
	Date         *string             `json:"date"`
	Time         *string             `json:"time"`
	Description  *string             `json:"description"`
	Result       *models.EventResult `json:"result"`
	OpponentName *string             `json:"opponentName"`
	Notes        *string             `json:"notes"`
}

type eventService struct {
	eventRepo repositories.EventRepository
	gameRepo  repositories.GameRepository
	objects   ObjectService
	validator *models.Validator
	notifier  Notifier
	logger    *slog.Logger
}

func NewEventService(
	eventRepo repositories.EventRepository,
	gameRepo repositories.GameRepository,
	objects ObjectService,
	validator *models.Validator,
	notifier Notifier,
	logger *slog.Logger,
) EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &eventService{
		eventRepo: eventRepo,
		gameRepo:  gameRepo,
		objects:   objects,
		validator: validator,
		notifier:  orNop(notifier),
		logger:    logger,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	event := &models.Event{
		ID:           newID(),
		Title:        strings.TrimSpace(input.Title),
		EventType:    input.EventType,
		Date:         strings.TrimSpace(input.Date),
		Time:         trimmedOrNil(input.Time),
		Description:  trimmedOrNil(input.Description),
		Result:       input.Result,
		OpponentName: trimmedOrNil(input.OpponentName),
		Notes:        trimmedOrNil(input.Notes),
	}
	if err := s.validator.Struct(event); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.notifier.Publish(realtime.TopicEvents, "event.created", event)
	return event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event by id %s: %w", id, err)
	}
	return event, nil
}

func (s *eventService) GetAllEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.eventRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all events: %w", err)
	}
	if events == nil {
		return []models.Event{}, nil
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id string, input UpdateEventInput) (*models.Event, error) {
	event, err := s.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	mergeString(&event.Title, input.Title)
	if input.EventType != nil {
		event.EventType = *input.EventType
	}
	mergeString(&event.Date, input.Date)
	mergeOptional(&event.Time, input.Time)
	mergeOptional(&event.Description, input.Description)
	if input.Result != nil {
		event.Result = input.Result
	}
	mergeOptional(&event.OpponentName, input.OpponentName)
	mergeOptional(&event.Notes, input.Notes)

	if err := s.validator.Struct(event); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event %s: %w", id, err)
	}
	s.notifier.Publish(realtime.TopicEvents, "event.updated", event)
	return event, nil
}

// DeleteEvent применяет политику EventGames: при каскаде игры и их табло удаляются до события.
func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	if _, err := s.GetEventByID(ctx, id); err != nil {
		return err
	}

	games, err := s.gameRepo.GetByEventID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load games of event %s: %w", id, err)
	}

	switch models.EventGames.Policy {
	case models.Cascade:
		if _, err := s.gameRepo.DeleteByEventID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete games of event %s: %w", id, err)
		}
		for _, g := range games {
			removeQuietly(ctx, s.objects, s.logger, g.ScoreboardPath)
		}
	case models.Restrict:
		if len(games) > 0 {
			return ErrEventInUse
		}
	}

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	s.notifier.Publish(realtime.TopicEvents, "event.deleted", map[string]string{"id": id})
	return nil
}

func (s *eventService) GetEventGames(ctx context.Context, id string) ([]models.Game, error) {
	if _, err := s.GetEventByID(ctx, id); err != nil {
		return nil, err
	}
	games, err := s.gameRepo.GetByEventID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get games of event %s: %w", id, err)
	}
	return games, nil
}

// GetRecord считает итоги по всем событиям; событие без результата считается pending.
func (s *eventService) GetRecord(ctx context.Context) (*models.EventRecord, error) {
	events, err := s.GetAllEvents(ctx)
	if err != nil {
		return nil, err
	}

	record := &models.EventRecord{Total: len(events)}
	for _, e := range events {
		result := models.ResultPending
		if e.Result != nil {
			result = *e.Result
		}
		switch result {
		case models.ResultWin:
			record.Wins++
		case models.ResultLoss:
			record.Losses++
		case models.ResultDraw:
			record.Draws++
		default:
			record.Pending++
		}
	}
	return record, nil
}
