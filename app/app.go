// Package app собирает репозитории, внешние клиенты и сервисы из конфигурации.
// Используется и HTTP-сервером, и schedulectl.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/Dosada05/team-schedule/config"
	"github.com/Dosada05/team-schedule/models"
	"github.com/Dosada05/team-schedule/realtime"
	"github.com/Dosada05/team-schedule/repositories"
	"github.com/Dosada05/team-schedule/services"
	"github.com/Dosada05/team-schedule/sheets"
	"github.com/Dosada05/team-schedule/storage"
)

type App struct {
	DB     *sql.DB
	Hub    *realtime.Hub
	Logger *slog.Logger

	Validator *models.Validator
	Mirror    services.SheetMirror
	// Tokens nil, если зеркало отключено.
	Tokens *sheets.TokenCache

	Settings repositories.SettingRepository

	Schedule   services.ScheduleService
	Players    services.PlayerService
	Events     services.EventService
	Games      services.GameService
	Attendance services.AttendanceService
	TeamNotes  services.TeamNoteService
	Objects    services.ObjectService
}

// New связывает зависимости. Хаб создаётся, но не запускается: Run вызывает владелец.
func New(ctx context.Context, cfg *config.Config, dbConn *sql.DB, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	clock := clockwork.NewRealClock()

	roles, err := models.LookupRoleSet(cfg.RoleSet)
	if err != nil {
		return nil, err
	}
	validator := models.NewValidator(roles)

	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	attendanceRepo := repositories.NewPostgresAttendanceRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	scheduleRepo := repositories.NewPostgresScheduleRepository(dbConn)
	noteRepo := repositories.NewPostgresTeamNoteRepository(dbConn)
	settingRepo := repositories.NewPostgresSettingRepository(dbConn)

	mirror, tokens, err := newMirror(ctx, cfg, settingRepo, clock, logger)
	if err != nil {
		return nil, err
	}

	store, err := newObjectStore(ctx, cfg, clock)
	if err != nil {
		return nil, err
	}

	hub := realtime.NewHub(logger)
	objects := services.NewObjectService(store, cfg.UploadURLTTL, logger)

	return &App{
		DB:        dbConn,
		Hub:       hub,
		Logger:    logger,
		Validator: validator,
		Mirror:    mirror,
		Tokens:    tokens,
		Settings:  settingRepo,

		Schedule:   services.NewScheduleService(scheduleRepo, mirror, validator, hub, logger),
		Players:    services.NewPlayerService(playerRepo, attendanceRepo, validator, hub, cfg.PhoneDefaultRegion),
		Events:     services.NewEventService(eventRepo, gameRepo, objects, validator, hub, logger),
		Games:      services.NewGameService(gameRepo, objects, validator, hub, logger),
		Attendance: services.NewAttendanceService(attendanceRepo, playerRepo, validator, hub),
		TeamNotes:  services.NewTeamNoteService(noteRepo, validator, hub, clock),
		Objects:    objects,
	}, nil
}

func newMirror(
	ctx context.Context,
	cfg *config.Config,
	settings sheets.SettingStore,
	clock clockwork.Clock,
	logger *slog.Logger,
) (services.SheetMirror, *sheets.TokenCache, error) {
	service, tokens, err := sheets.NewService(ctx, cfg.GoogleCredentialsFile, cfg.GoogleAccessToken, clock)
	if errors.Is(err, sheets.ErrNotConfigured) {
		logger.Warn("google sheets credentials are not configured, schedule is stored locally only")
		return sheets.Disabled{}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	client := sheets.NewClient(service, settings, sheets.ClientConfig{
		SpreadsheetID: cfg.GoogleSpreadsheetID,
		Title:         cfg.SpreadsheetTitle,
	}, logger)
	return client, tokens, nil
}

func newObjectStore(ctx context.Context, cfg *config.Config, clock clockwork.Clock) (storage.ObjectStore, error) {
	switch cfg.ObjectStore {
	case config.ObjectStoreS3:
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 object store: %w", err)
		}
		return store, nil
	default:
		store, err := storage.NewLocalStore(cfg.LocalObjectsDir, cfg.PublicBaseURL, []byte(cfg.ObjectSigningKey), clock)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local object store: %w", err)
		}
		return store, nil
	}
}
