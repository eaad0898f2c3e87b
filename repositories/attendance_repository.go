package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/team-schedule/models"
)

var (
	ErrAttendanceNotFound       = errors.New("attendance record not found")
	ErrAttendancePlayerNotFound = errors.New("attendance references unknown player")
)

type AttendanceRepository interface {
	Create(ctx context.Context, a *models.Attendance) error
	GetByID(ctx context.Context, id string) (*models.Attendance, error)
	GetAll(ctx context.Context) ([]models.Attendance, error)
	GetByPlayerID(ctx context.Context, playerID string) ([]models.Attendance, error)
	Update(ctx context.Context, a *models.Attendance) error
	Delete(ctx context.Context, id string) error
	DeleteByPlayerID(ctx context.Context, playerID string) (int64, error)
}

type postgresAttendanceRepository struct {
	db *sql.DB
}

func NewPostgresAttendanceRepository(db *sql.DB) AttendanceRepository {
	return &postgresAttendanceRepository{db: db}
}

const attendanceColumns = `id, player_id, to_char(date, 'YYYY-MM-DD'), status, notes, ringer`

func scanAttendance(s interface{ Scan(dest ...any) error }, a *models.Attendance) error {
	return s.Scan(&a.ID, &a.PlayerID, &a.Date, &a.Status, &a.Notes, &a.Ringer)
}

func (r *postgresAttendanceRepository) Create(ctx context.Context, a *models.Attendance) error {
	query := `INSERT INTO attendance (id, player_id, date, status, notes, ringer) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query, a.ID, a.PlayerID, a.Date, a.Status, a.Notes, a.Ringer)
	if err != nil {
		if isPQError(err, pqForeignKeyViolation) {
			return ErrAttendancePlayerNotFound
		}
		return err
	}
	return nil
}

func (r *postgresAttendanceRepository) GetByID(ctx context.Context, id string) (*models.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance WHERE id = $1`

	var a models.Attendance
	if err := scanAttendance(r.db.QueryRowContext(ctx, query, id), &a); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *postgresAttendanceRepository) GetAll(ctx context.Context) ([]models.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance ORDER BY date DESC, created_at ASC`
	return r.list(ctx, query)
}

func (r *postgresAttendanceRepository) GetByPlayerID(ctx context.Context, playerID string) ([]models.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance WHERE player_id = $1 ORDER BY date DESC, created_at ASC`
	return r.list(ctx, query, playerID)
}

func (r *postgresAttendanceRepository) list(ctx context.Context, query string, args ...any) ([]models.Attendance, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.Attendance, 0)
	for rows.Next() {
		var a models.Attendance
		if err := scanAttendance(rows, &a); err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *postgresAttendanceRepository) Update(ctx context.Context, a *models.Attendance) error {
	query := `UPDATE attendance SET player_id = $1, date = $2, status = $3, notes = $4, ringer = $5 WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query, a.PlayerID, a.Date, a.Status, a.Notes, a.Ringer, a.ID)
	if err != nil {
		if isPQError(err, pqForeignKeyViolation) {
			return ErrAttendancePlayerNotFound
		}
		return err
	}
	return checkAffectedRows(result, ErrAttendanceNotFound)
}

func (r *postgresAttendanceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAttendanceNotFound)
}

// DeleteByPlayerID удаляет всю посещаемость игрока и возвращает число удалённых записей.
func (r *postgresAttendanceRepository) DeleteByPlayerID(ctx context.Context, playerID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM attendance WHERE player_id = $1`, playerID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
