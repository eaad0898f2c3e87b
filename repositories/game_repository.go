package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/team-schedule/models"
)

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameEventNotFound = errors.New("game references unknown event")
)

type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, id string) (*models.Game, error)
	GetAll(ctx context.Context) ([]models.Game, error)
	GetByEventID(ctx context.Context, eventID string) ([]models.Game, error)
	Update(ctx context.Context, game *models.Game) error
	Delete(ctx context.Context, id string) error
	DeleteByEventID(ctx context.Context, eventID string) (int64, error)
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

const gameColumns = `id, event_id, game_code, score, scoreboard_path`

func scanGame(s interface{ Scan(dest ...any) error }, g *models.Game) error {
	return s.Scan(&g.ID, &g.EventID, &g.GameCode, &g.Score, &g.ScoreboardPath)
}

func (r *postgresGameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `INSERT INTO games (id, event_id, game_code, score, scoreboard_path) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, game.ID, game.EventID, game.GameCode, game.Score, game.ScoreboardPath)
	if err != nil {
		if isPQError(err, pqForeignKeyViolation) {
			return ErrGameEventNotFound
		}
		return err
	}
	return nil
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	var game models.Game
	if err := scanGame(r.db.QueryRowContext(ctx, query, id), &game); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

func (r *postgresGameRepository) GetAll(ctx context.Context) ([]models.Game, error) {
	return r.list(ctx, `SELECT `+gameColumns+` FROM games ORDER BY created_at ASC`)
}

func (r *postgresGameRepository) GetByEventID(ctx context.Context, eventID string) ([]models.Game, error) {
	return r.list(ctx, `SELECT `+gameColumns+` FROM games WHERE event_id = $1 ORDER BY created_at ASC`, eventID)
}

func (r *postgresGameRepository) list(ctx context.Context, query string, args ...any) ([]models.Game, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		var g models.Game
		if err := scanGame(rows, &g); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

func (r *postgresGameRepository) Update(ctx context.Context, game *models.Game) error {
	query := `UPDATE games SET event_id = $1, game_code = $2, score = $3, scoreboard_path = $4 WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query, game.EventID, game.GameCode, game.Score, game.ScoreboardPath, game.ID)
	if err != nil {
		if isPQError(err, pqForeignKeyViolation) {
			return ErrGameEventNotFound
		}
		return err
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) DeleteByEventID(ctx context.Context, eventID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE event_id = $1`, eventID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
