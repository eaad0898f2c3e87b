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

type GameService interface {
	CreateGame(ctx context.Context, input CreateGameInput) (*models.Game, error)
	GetGameByID(ctx context.Context, id string) (*models.Game, error)
	GetAllGames(ctx context.Context) ([]models.Game, error)
	UpdateGame(ctx context.Context, id string, input UpdateGameInput) (*models.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

type CreateGameInput struct {
	EventID        string  `json:"eventId"`
	GameCode       string  `json:"gameCode"`
	Score          string  `json:"score"`
	ScoreboardPath *string `json:"scoreboardPath"`
}

type UpdateGameInput struct {
	EventID        *string `json:"eventId"`
	GameCode       *string `json:"gameCode"`
	Score          *string `json:"score"`
	ScoreboardPath *string `json:"scoreboardPath"`
}

type gameService struct {
	gameRepo  repositories.GameRepository
	objects   ObjectService
	validator *models.Validator
	notifier  Notifier
	logger    *slog.Logger
}

func NewGameService(
	gameRepo repositories.GameRepository,
	objects ObjectService,
	validator *models.Validator,
	notifier Notifier,
	logger *slog.Logger,
) GameService {
	if logger == nil {
		logger = slog.Default()
	}
	return &gameService{
		gameRepo:  gameRepo,
		objects:   objects,
		validator: validator,
		notifier:  orNop(notifier),
		logger:    logger,
	}
}

func unknownEvent() error {
	return models.NewValidationError("eventId", "event does not exist")
}

func (s *gameService) CreateGame(ctx context.Context, input CreateGameInput) (*models.Game, error) {
	game := &models.Game{
		ID:             newID(),
		EventID:        strings.TrimSpace(input.EventID),
		GameCode:       strings.TrimSpace(input.GameCode),
		Score:          strings.TrimSpace(input.Score),
		ScoreboardPath: trimmedOrNil(input.ScoreboardPath),
	}
	if err := s.validator.Struct(game); err != nil {
		return nil, err
	}

	if err := s.gameRepo.Create(ctx, game); err != nil {
		if errors.Is(err, repositories.ErrGameEventNotFound) {
			return nil, unknownEvent()
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	s.notifier.Publish(realtime.TopicEvents, "game.created", game)
	return game, nil
}

func (s *gameService) GetGameByID(ctx context.Context, id string) (*models.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game by id %s: %w", id, err)
	}
	return game, nil
}

func (s *gameService) GetAllGames(ctx context.Context) ([]models.Game, error) {
	games, err := s.gameRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all games: %w", err)
	}
	if games == nil {
		return []models.Game{}, nil
	}
	return games, nil
}

func (s *gameService) UpdateGame(ctx context.Context, id string, input UpdateGameInput) (*models.Game, error) {
	game, err := s.GetGameByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousScoreboard := game.ScoreboardPath

	mergeString(&game.EventID, input.EventID)
	mergeString(&game.GameCode, input.GameCode)
	mergeString(&game.Score, input.Score)
	mergeOptional(&game.ScoreboardPath, input.ScoreboardPath)

	if err := s.validator.Struct(game); err != nil {
		return nil, err
	}

	if err := s.gameRepo.Update(ctx, game); err != nil {
		switch {
		case errors.Is(err, repositories.ErrGameNotFound):
			return nil, ErrGameNotFound
		case errors.Is(err, repositories.ErrGameEventNotFound):
			return nil, unknownEvent()
		default:
			return nil, fmt.Errorf("failed to update game %s: %w", id, err)
		}
	}

	if previousScoreboard != nil && (game.ScoreboardPath == nil || *game.ScoreboardPath != *previousScoreboard) {
		removeQuietly(ctx, s.objects, s.logger, previousScoreboard)
	}
	s.notifier.Publish(realtime.TopicEvents, "game.updated", game)
	return game, nil
}

func (s *gameService) DeleteGame(ctx context.Context, id string) error {
	game, err := s.GetGameByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.gameRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("failed to delete game %s: %w", id, err)
	}
	removeQuietly(ctx, s.objects, s.logger, game.ScoreboardPath)
	s.notifier.Publish(realtime.TopicEvents, "game.deleted", map[string]string{"id": id})
	return nil
}
