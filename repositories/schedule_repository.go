package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/team-schedule/models"
)

var ErrScheduleNotFound = errors.New("schedule not found")

type ScheduleRepository interface {
	GetByID(ctx context.Context, id string) (*models.Schedule, error)
	GetByWeek(ctx context.Context, weekStart, weekEnd string) (*models.Schedule, error)
	GetAll(ctx context.Context) ([]models.Schedule, error)
	// Upsert вставляет расписание или перезаписывает данные существующего с той же парой дат.
	// В schedule.ID записывается id сохранённой строки.
	Upsert(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

type postgresScheduleRepository struct {
	db *sql.DB
}

func NewPostgresScheduleRepository(db *sql.DB) ScheduleRepository {
	return &postgresScheduleRepository{db: db}
}

const scheduleColumns = `id, week_start_date, week_end_date, schedule_data, google_sheet_id`

func scanSchedule(s interface{ Scan(dest ...any) error }, sc *models.Schedule) error {
	return s.Scan(&sc.ID, &sc.WeekStartDate, &sc.WeekEndDate, &sc.ScheduleData, &sc.GoogleSheetID)
}

func (r *postgresScheduleRepository) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`

	var schedule models.Schedule
	if err := scanSchedule(r.db.QueryRowContext(ctx, query, id), &schedule); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *postgresScheduleRepository) GetByWeek(ctx context.Context, weekStart, weekEnd string) (*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE week_start_date = $1 AND week_end_date = $2`

	var schedule models.Schedule
	if err := scanSchedule(r.db.QueryRowContext(ctx, query, weekStart, weekEnd), &schedule); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *postgresScheduleRepository) GetAll(ctx context.Context) ([]models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules ORDER BY week_start_date DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]models.Schedule, 0)
	for rows.Next() {
		var s models.Schedule
		if err := scanSchedule(rows, &s); err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *postgresScheduleRepository) Upsert(ctx context.Context, schedule *models.Schedule) error {
	query := `
		INSERT INTO schedules (id, week_start_date, week_end_date, schedule_data, google_sheet_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (week_start_date, week_end_date) DO UPDATE
		SET schedule_data = EXCLUDED.schedule_data,
		    google_sheet_id = EXCLUDED.google_sheet_id,
		    updated_at = NOW()
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		schedule.ID, schedule.WeekStartDate, schedule.WeekEndDate, schedule.ScheduleData, schedule.GoogleSheetID,
	).Scan(&schedule.ID)
}

func (r *postgresScheduleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrScheduleNotFound)
}
