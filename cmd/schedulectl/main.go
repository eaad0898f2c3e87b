// schedulectl: служебные операции над тем же окружением, что и сервер:
// схема БД, аналитика недели, синхронизация с таблицей, настройки.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Dosada05/team-schedule/app"
	"github.com/Dosada05/team-schedule/config"
	"github.com/Dosada05/team-schedule/db"
	"github.com/Dosada05/team-schedule/sheets"
)

func main() {
	root, cleanup := newRootCmd(loadRuntime)
	err := root.Execute()
	if closeErr := cleanup(); closeErr != nil {
		fmt.Fprintln(os.Stderr, closeErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

// loadRuntime поднимает зависимости из окружения так же, как сервер, но без HTTP и хаба.
func loadRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return nil, err
	}

	application, err := app.New(ctx, cfg, dbConn, logger)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	_, disabled := application.Mirror.(sheets.Disabled)
	return &runtime{
		schedule:      application.Schedule,
		settings:      application.Settings,
		sheetsEnabled: !disabled,
		applySchema: func(ctx context.Context) error {
			return db.EnsureSchema(ctx, dbConn)
		},
		close: func() error { return closeDB(dbConn) },
	}, nil
}

func closeDB(dbConn *sql.DB) error {
	if err := dbConn.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}
