package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/team-schedule/models"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	GetAll(ctx context.Context) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

// Дата и время отдаются строками в тех же форматах, в которых принимаются.
const eventColumns = `id, title, event_type, to_char(date, 'YYYY-MM-DD'), to_char(time, 'HH24:MI'),
	description, result, opponent_name, notes`

func scanEvent(s interface{ Scan(dest ...any) error }, e *models.Event) error {
	return s.Scan(&e.ID, &e.Title, &e.EventType, &e.Date, &e.Time,
		&e.Description, &e.Result, &e.OpponentName, &e.Notes)
}

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, title, event_type, date, time, description, result, opponent_name, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.Title, event.EventType, event.Date, event.Time,
		event.Description, event.Result, event.OpponentName, event.Notes,
	)
	return err
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var event models.Event
	if err := scanEvent(r.db.QueryRowContext(ctx, query, id), &event); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *postgresEventRepository) GetAll(ctx context.Context) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date DESC, time ASC NULLS LAST`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var e models.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *postgresEventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET title = $1, event_type = $2, date = $3, time = $4, description = $5,
		    result = $6, opponent_name = $7, notes = $8
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		event.Title, event.EventType, event.Date, event.Time, event.Description,
		event.Result, event.OpponentName, event.Notes, event.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}
