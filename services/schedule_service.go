package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/team-schedule/analytics"
	"github.com/Dosada05/team-schedule/models"
	"github.com/Dosada05/team-schedule/realtime"
	"github.com/Dosada05/team-schedule/repositories"
	"github.com/Dosada05/team-schedule/sheets"
)

// SheetMirror: внешняя таблица, в которую зеркалируется расписание.
type SheetMirror interface {
	ReadTab(ctx context.Context, tab string) ([][]string, error)
	WriteTab(ctx context.Context, tab string, rows [][]string) error
	SpreadsheetInfo(ctx context.Context) (sheets.SpreadsheetInfo, error)
}

type ScheduleService interface {
	GetSchedule(ctx context.Context, weekStart, weekEnd string) (*models.Schedule, error)
	SaveSchedule(ctx context.Context, input SaveScheduleInput) (*models.Schedule, error)
	GetAnalytics(ctx context.Context, weekStart, weekEnd string) (*analytics.Summary, error)
	// ImportFromSheet перечитывает вкладку и перезаписывает локальную копию.
	ImportFromSheet(ctx context.Context, weekStart, weekEnd string) (*models.Schedule, error)
	// Republish заново выгружает локальную копию в таблицу.
	Republish(ctx context.Context, weekStart, weekEnd string) (*models.Schedule, error)
	GetSpreadsheetInfo(ctx context.Context) (*sheets.SpreadsheetInfo, error)
}

type SaveScheduleInput struct {
	WeekStartDate string              `json:"weekStartDate"`
	WeekEndDate   string              `json:"weekEndDate"`
	ScheduleData  models.ScheduleData `json:"scheduleData"`
}

type scheduleService struct {
	scheduleRepo repositories.ScheduleRepository
	mirror       SheetMirror
	validator    *models.Validator
	notifier     Notifier
	logger       *slog.Logger
}

func NewScheduleService(
	scheduleRepo repositories.ScheduleRepository,
	mirror SheetMirror,
	validator *models.Validator,
	notifier Notifier,
	logger *slog.Logger,
) ScheduleService {
	if mirror == nil {
		mirror = sheets.Disabled{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &scheduleService{
		scheduleRepo: scheduleRepo,
		mirror:       mirror,
		validator:    validator,
		notifier:     orNop(notifier),
		logger:       logger,
	}
}

func validateWeekKey(weekStart, weekEnd string) error {
	verr := &models.ValidationError{}
	if strings.TrimSpace(weekStart) == "" {
		verr.Add("weekStartDate", "is required")
	}
	if strings.TrimSpace(weekEnd) == "" {
		verr.Add("weekEndDate", "is required")
	}
	return verr.Err()
}

// GetSchedule: локальная копия приоритетнее таблицы. Без локальной копии неделя
// импортируется из вкладки; любая ошибка чтения даёт пустое расписание.
func (s *scheduleService) GetSchedule(ctx context.Context, weekStart, weekEnd string) (*models.Schedule, error) {
	if err := validateWeekKey(weekStart, weekEnd); err != nil {
		return nil, err
	}

	existing, err := s.scheduleRepo.GetByWeek(ctx, weekStart, weekEnd)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrScheduleNotFound) {
		return nil, fmt.Errorf("failed to load schedule %s - %s: %w", weekStart, weekEnd, err)
	}

	data := models.ScheduleData{Players: []models.PlayerAvailability{}}
	if imported, ok := s.readFromSheet(ctx, weekStart); ok {
		data = imported
	}
	return s.store(ctx, weekStart, weekEnd, data)
}

func (s *scheduleService) readFromSheet(ctx context.Context, weekStart string) (models.ScheduleData, bool) {
	tab := sheets.TabName(weekStart)
	rows, err := s.mirror.ReadTab(ctx, tab)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read schedule from spreadsheet, using empty schedule",
			slog.String("tab", tab), slog.Any("error", err))
		return models.ScheduleData{}, false
	}
	// Заголовок, пустая строка и шапка: данных нет.
	if len(rows) <= 3 {
		return models.ScheduleData{}, false
	}
	return sheets.ToScheduleData(sheets.FromSheetRows(rows, s.validator.Roles())), true
}

// SaveSchedule сначала пишет в таблицу и только после успеха обновляет локальную копию.
func (s *scheduleService) SaveSchedule(ctx context.Context, input SaveScheduleInput) (*models.Schedule, error) {
	schedule := &models.Schedule{
		WeekStartDate: strings.TrimSpace(input.WeekStartDate),
		WeekEndDate:   strings.TrimSpace(input.WeekEndDate),
		ScheduleData:  input.ScheduleData,
	}
	if schedule.ScheduleData.Players == nil {
		schedule.ScheduleData.Players = []models.PlayerAvailability{}
	}
	if err := s.validator.Schedule(schedule); err != nil {
		return nil, err
	}
	// Канонизация: пустые ячейки превращаются в "unknown".
	for i := range schedule.ScheduleData.Players {
		p := &schedule.ScheduleData.Players[i]
		for _, d := range models.Days() {
			p.Availability.Set(d, p.Availability.On(d))
		}
	}

	if err := s.push(ctx, schedule.WeekStartDate, schedule.WeekEndDate, schedule.ScheduleData); err != nil {
		return nil, err
	}

	saved, err := s.store(ctx, schedule.WeekStartDate, schedule.WeekEndDate, schedule.ScheduleData)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(realtime.TopicSchedule, "schedule.saved", saved)
	return saved, nil
}

func (s *scheduleService) push(ctx context.Context, weekStart, weekEnd string, data models.ScheduleData) error {
	tab := sheets.TabName(weekStart)
	rows := sheets.ToSheetRows(data, weekStart, weekEnd, s.validator.Roles())
	if err := s.mirror.WriteTab(ctx, tab, rows); err != nil {
		s.logger.ErrorContext(ctx, "failed to write schedule to spreadsheet", slog.String("tab", tab), slog.Any("error", err))
		return fmt.Errorf("%w: failed to write schedule to spreadsheet: %w", ErrExternalService, err)
	}
	return nil
}

func (s *scheduleService) store(ctx context.Context, weekStart, weekEnd string, data models.ScheduleData) (*models.Schedule, error) {
	tab := sheets.TabName(weekStart)
	schedule := &models.Schedule{
		ID:            newID(),
		WeekStartDate: weekStart,
		WeekEndDate:   weekEnd,
		ScheduleData:  data,
		GoogleSheetID: &tab,
	}
	if err := s.scheduleRepo.Upsert(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to save schedule %s - %s: %w", weekStart, weekEnd, err)
	}
	return schedule, nil
}

func (s *scheduleService) GetAnalytics(ctx context.Context, weekStart, weekEnd string) (*analytics.Summary, error) {
	schedule, err := s.GetSchedule(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	summary := analytics.Summarize(schedule.ScheduleData.Players)
	return &summary, nil
}

func (s *scheduleService) ImportFromSheet(ctx context.Context, weekStart, weekEnd string) (*models.Schedule, error) {
	if err := validateWeekKey(weekStart, weekEnd); err != nil {
		return nil, err
	}

	tab := sheets.TabName(weekStart)
	rows, err := s.mirror.ReadTab(ctx, tab)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read tab %s: %w", ErrExternalService, tab, err)
	}
	data := sheets.ToScheduleData(sheets.FromSheetRows(rows, s.validator.Roles()))

	saved, err := s.store(ctx, weekStart, weekEnd, data)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(realtime.TopicSchedule, "schedule.imported", saved)
	return saved, nil
}

func (s *scheduleService) Republish(ctx context.Context, weekStart, weekEnd string) (*models.Schedule, error) {
	if err := validateWeekKey(weekStart, weekEnd); err != nil {
		return nil, err
	}

	schedule, err := s.scheduleRepo.GetByWeek(ctx, weekStart, weekEnd)
	if err != nil {
		if errors.Is(err, repositories.ErrScheduleNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to load schedule %s - %s: %w", weekStart, weekEnd, err)
	}
	if err := s.push(ctx, weekStart, weekEnd, schedule.ScheduleData); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *scheduleService) GetSpreadsheetInfo(ctx context.Context) (*sheets.SpreadsheetInfo, error) {
	info, err := s.mirror.SpreadsheetInfo(ctx)
	if err != nil {
		if errors.Is(err, sheets.ErrDisabled) || errors.Is(err, sheets.ErrNotConfigured) {
			return nil, ErrSpreadsheetNotConfigured
		}
		return nil, fmt.Errorf("%w: %w", ErrExternalService, err)
	}
	return &info, nil
}
