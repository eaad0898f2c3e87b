package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/team-schedule/models"
	"github.com/Dosada05/team-schedule/realtime"
	"github.com/Dosada05/team-schedule/repositories"
)

type AttendanceService interface {
	CreateAttendance(ctx context.Context, input CreateAttendanceInput) (*models.Attendance, error)
	GetAttendanceByID(ctx context.Context, id string) (*models.Attendance, error)
	GetAllAttendance(ctx context.Context) ([]models.Attendance, error)
	UpdateAttendance(ctx context.Context, id string, input UpdateAttendanceInput) (*models.Attendance, error)
	DeleteAttendance(ctx context.Context, id string) error
	GetSummary(ctx context.Context) ([]models.AttendanceSummary, error)
}

type CreateAttendanceInput struct {
	PlayerID string                  `json:"playerId"`
	Date     string                  `json:"date"`
	Status   models.AttendanceStatus `json:"status"`
	Notes    *string                 `json:"notes"`
	Ringer   *string                 `json:"ringer"`
}

type UpdateAttendanceInput struct {
	PlayerID *string                  `json:"playerId"`
	Date     *string                  `json:"date"`
	Status   *models.AttendanceStatus `json:"status"`
	Notes    *string                  `json:"notes"`
	Ringer   *string                  `json:"ringer"`
}

type attendanceService struct {
	attendanceRepo repositories.AttendanceRepository
	playerRepo     repositories.PlayerRepository
	validator      *models.Validator
	notifier       Notifier
}

func NewAttendanceService(
	attendanceRepo repositories.AttendanceRepository,
	playerRepo repositories.PlayerRepository,
	validator *models.Validator,
	notifier Notifier,
) AttendanceService {
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		playerRepo:     playerRepo,
		validator:      validator,
		notifier:       orNop(notifier),
	}
}

func unknownPlayer() error {
	return models.NewValidationError("playerId", "player does not exist")
}

func (s *attendanceService) CreateAttendance(ctx context.Context, input CreateAttendanceInput) (*models.Attendance, error) {
	record := &models.Attendance{
		ID:       newID(),
		PlayerID: strings.TrimSpace(input.PlayerID),
		Date:     strings.TrimSpace(input.Date),
		Status:   input.Status,
		Notes:    trimmedOrNil(input.Notes),
		Ringer:   trimmedOrNil(input.Ringer),
	}
	if err := s.validator.Struct(record); err != nil {
		return nil, err
	}

	if err := s.attendanceRepo.Create(ctx, record); err != nil {
		if errors.Is(err, repositories.ErrAttendancePlayerNotFound) {
			return nil, unknownPlayer()
		}
		return nil, fmt.Errorf("failed to create attendance: %w", err)
	}
	s.notifier.Publish(realtime.TopicPlayers, "attendance.created", record)
	return record, nil
}

func (s *attendanceService) GetAttendanceByID(ctx context.Context, id string) (*models.Attendance, error) {
	record, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAttendanceNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to get attendance by id %s: %w", id, err)
	}
	return record, nil
}

func (s *attendanceService) GetAllAttendance(ctx context.Context) ([]models.Attendance, error) {
	records, err := s.attendanceRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	if records == nil {
		return []models.Attendance{}, nil
	}
	return records, nil
}

func (s *attendanceService) UpdateAttendance(ctx context.Context, id string, input UpdateAttendanceInput) (*models.Attendance, error) {
	record, err := s.GetAttendanceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	mergeString(&record.PlayerID, input.PlayerID)
	mergeString(&record.Date, input.Date)
	if input.Status != nil {
		record.Status = *input.Status
	}
	mergeOptional(&record.Notes, input.Notes)
	mergeOptional(&record.Ringer, input.Ringer)

	if err := s.validator.Struct(record); err != nil {
		return nil, err
	}

	if err := s.attendanceRepo.Update(ctx, record); err != nil {
		switch {
		case errors.Is(err, repositories.ErrAttendanceNotFound):
			return nil, ErrAttendanceNotFound
		case errors.Is(err, repositories.ErrAttendancePlayerNotFound):
			return nil, unknownPlayer()
		default:
			return nil, fmt.Errorf("failed to update attendance %s: %w", id, err)
		}
	}
	s.notifier.Publish(realtime.TopicPlayers, "attendance.updated", record)
	return record, nil
}

func (s *attendanceService) DeleteAttendance(ctx context.Context, id string) error {
	if err := s.attendanceRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrAttendanceNotFound) {
			return ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to delete attendance %s: %w", id, err)
	}
	s.notifier.Publish(realtime.TopicPlayers, "attendance.deleted", map[string]string{"id": id})
	return nil
}

// GetSummary: счётчики по каждому игроку в порядке справочника, включая игроков без отметок.
func (s *attendanceService) GetSummary(ctx context.Context) ([]models.AttendanceSummary, error) {
	players, err := s.playerRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	records, err := s.GetAllAttendance(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.AttendanceSummary, len(players))
	index := make(map[string]int, len(players))
	for i, p := range players {
		summaries[i] = models.AttendanceSummary{PlayerID: p.ID, PlayerName: p.Name}
		index[p.ID] = i
	}

	for _, r := range records {
		i, ok := index[r.PlayerID]
		if !ok {
			continue
		}
		sum := &summaries[i]
		switch r.Status {
		case models.AttendanceAttended:
			sum.Attended++
		case models.AttendanceLate:
			sum.Late++
		case models.AttendanceAbsent:
			sum.Absent++
		}
		sum.Total++
	}
	return summaries, nil
}
