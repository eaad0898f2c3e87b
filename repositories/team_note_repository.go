package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Dosada05/team-schedule/models"
)

var ErrTeamNoteNotFound = errors.New("team note not found")

// TeamNoteRepository без Update: журнал только дополняется.
type TeamNoteRepository interface {
	Create(ctx context.Context, note *models.TeamNote) error
	GetByID(ctx context.Context, id string) (*models.TeamNote, error)
	GetAll(ctx context.Context) ([]models.TeamNote, error)
	Delete(ctx context.Context, id string) error
}

type postgresTeamNoteRepository struct {
	db *sql.DB
}

func NewPostgresTeamNoteRepository(db *sql.DB) TeamNoteRepository {
	return &postgresTeamNoteRepository{db: db}
}

func scanTeamNote(s interface{ Scan(dest ...any) error }, n *models.TeamNote) error {
	var ts time.Time
	if err := s.Scan(&n.ID, &n.SenderName, &n.Message, &ts); err != nil {
		return err
	}
	n.Timestamp = ts.UTC().Format(time.RFC3339)
	return nil
}

func (r *postgresTeamNoteRepository) Create(ctx context.Context, note *models.TeamNote) error {
	query := `INSERT INTO team_notes (id, sender_name, message, timestamp) VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, note.ID, note.SenderName, note.Message, note.Timestamp)
	return err
}

func (r *postgresTeamNoteRepository) GetByID(ctx context.Context, id string) (*models.TeamNote, error) {
	query := `SELECT id, sender_name, message, timestamp FROM team_notes WHERE id = $1`

	var note models.TeamNote
	if err := scanTeamNote(r.db.QueryRowContext(ctx, query, id), &note); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNoteNotFound
		}
		return nil, err
	}
	return &note, nil
}

func (r *postgresTeamNoteRepository) GetAll(ctx context.Context) ([]models.TeamNote, error) {
	query := `SELECT id, sender_name, message, timestamp FROM team_notes ORDER BY timestamp DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]models.TeamNote, 0)
	for rows.Next() {
		var n models.TeamNote
		if err := scanTeamNote(rows, &n); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *postgresTeamNoteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM team_notes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNoteNotFound)
}
