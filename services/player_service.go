package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/Dosada05/team-schedule/models"
	"github.com/Dosada05/team-schedule/realtime"
	"github.com/Dosada05/team-schedule/repositories"
)

type PlayerService interface {
	CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	GetPlayerByID(ctx context.Context, id string) (*models.Player, error)
	GetAllPlayers(ctx context.Context) ([]models.Player, error)
	UpdatePlayer(ctx context.Context, id string, input UpdatePlayerInput) (*models.Player, error)
	DeletePlayer(ctx context.Context, id string) error
	GetPlayerAttendance(ctx context.Context, id string) ([]models.Attendance, error)
}

type CreatePlayerInput struct {
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
	FullName *string     `json:"fullName"`
	Phone    *string     `json:"phone"`
	Snapchat *string     `json:"snapchat"`
}

type UpdatePlayerInput struct {
	Name     *string      `json:"name"`
	Role     *models.Role `json:"role"`
	FullName *string      `json:"fullName"`
	Phone    *string      `json:"phone"`
	Snapchat *string      `json:"snapchat"`
}

type playerService struct {
	playerRepo     repositories.PlayerRepository
	attendanceRepo repositories.AttendanceRepository
	validator      *models.Validator
	notifier       Notifier
	phoneRegion    string
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	attendanceRepo repositories.AttendanceRepository,
	validator *models.Validator,
	notifier Notifier,
	phoneRegion string,
) PlayerService {
	return &playerService{
		playerRepo:     playerRepo,
		attendanceRepo: attendanceRepo,
		validator:      validator,
		notifier:       orNop(notifier),
		phoneRegion:    strings.ToUpper(phoneRegion),
	}
}

// normalizePhone приводит номер к E.164, если его удаётся разобрать; иначе оставляет как ввели.
func (s *playerService) normalizePhone(raw *string) *string {
	v := trimmedOrNil(raw)
	if v == nil {
		return nil
	}
	num, err := phonenumbers.Parse(*v, s.phoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return v
	}
	formatted := phonenumbers.Format(num, phonenumbers.E164)
	return &formatted
}

func (s *playerService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	player := &models.Player{
		ID:       newID(),
		Name:     strings.TrimSpace(input.Name),
		Role:     input.Role,
		FullName: trimmedOrNil(input.FullName),
		Phone:    s.normalizePhone(input.Phone),
		Snapchat: trimmedOrNil(input.Snapchat),
	}
	if err := s.validator.Struct(player); err != nil {
		return nil, err
	}

	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	s.notifier.Publish(realtime.TopicPlayers, "player.created", player)
	return player, nil
}

func (s *playerService) GetPlayerByID(ctx context.Context, id string) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player by id %s: %w", id, err)
	}
	return player, nil
}

func (s *playerService) GetAllPlayers(ctx context.Context) ([]models.Player, error) {
	players, err := s.playerRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all players: %w", err)
	}
	if players == nil {
		return []models.Player{}, nil
	}
	return players, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id string, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.GetPlayerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	mergeString(&player.Name, input.Name)
	if input.Role != nil {
		player.Role = *input.Role
	}
	mergeOptional(&player.FullName, input.FullName)
	if input.Phone != nil {
		player.Phone = s.normalizePhone(input.Phone)
	}
	mergeOptional(&player.Snapchat, input.Snapchat)

	if err := s.validator.Struct(player); err != nil {
		return nil, err
	}

	if err := s.playerRepo.Update(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to update player %s: %w", id, err)
	}
	s.notifier.Publish(realtime.TopicPlayers, "player.updated", player)
	return player, nil
}

// DeletePlayer применяет политику PlayerAttendance до удаления самого игрока.
func (s *playerService) DeletePlayer(ctx context.Context, id string) error {
	if _, err := s.GetPlayerByID(ctx, id); err != nil {
		return err
	}

	switch models.PlayerAttendance.Policy {
	case models.Cascade:
		if _, err := s.attendanceRepo.DeleteByPlayerID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete attendance of player %s: %w", id, err)
		}
	case models.Restrict:
		records, err := s.attendanceRepo.GetByPlayerID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check attendance of player %s: %w", id, err)
		}
		if len(records) > 0 {
			return ErrPlayerInUse
		}
	}

	if err := s.playerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to delete player %s: %w", id, err)
	}
	s.notifier.Publish(realtime.TopicPlayers, "player.deleted", map[string]string{"id": id})
	return nil
}

func (s *playerService) GetPlayerAttendance(ctx context.Context, id string) ([]models.Attendance, error) {
	if _, err := s.GetPlayerByID(ctx, id); err != nil {
		return nil, err
	}
	records, err := s.attendanceRepo.GetByPlayerID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance of player %s: %w", id, err)
	}
	return records, nil
}
