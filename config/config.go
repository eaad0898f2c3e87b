package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ObjectStoreLocal = "local"
	ObjectStoreS3    = "s3"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL string
	ServerPort  int
	LogLevel    slog.Level

	// RoleSet: версия набора ролей (v1 или v2).
	RoleSet            string
	CORSAllowedOrigins []string
	PublicBaseURL      string
	PhoneDefaultRegion string

	GoogleCredentialsFile string
	GoogleAccessToken     string
	GoogleSpreadsheetID   string
	SpreadsheetTitle      string

	ObjectStore      string
	LocalObjectsDir  string
	ObjectSigningKey string
	S3Endpoint       string
	S3Region         string
	S3Bucket         string
	S3AccessKeyID    string
	S3SecretKey      string
	UploadURLTTL     time.Duration
}

// SheetsEnabled: заданы ли учётные данные для Google Sheets.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleCredentialsFile != "" || c.GoogleAccessToken != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Отсутствие .env не ошибка.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv собирает конфигурацию из произвольного источника переменных.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	dbURL := get("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	port, err := strconv.Atoi(get("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	ttl, err := time.ParseDuration(get("UPLOAD_URL_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_URL_TTL environment variable: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("UPLOAD_URL_TTL must be positive, got %s", ttl)
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		ServerPort:         port,
		LogLevel:           level,
		RoleSet:            get("ROLE_SET", "v1"),
		CORSAllowedOrigins: splitList(get("CORS_ALLOWED_ORIGINS", "*")),
		PublicBaseURL:      strings.TrimRight(get("PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%d", port)), "/"),
		PhoneDefaultRegion: strings.ToUpper(get("PHONE_DEFAULT_REGION", "DE")),

		GoogleCredentialsFile: get("GOOGLE_CREDENTIALS_FILE", ""),
		GoogleAccessToken:     get("GOOGLE_ACCESS_TOKEN", ""),
		GoogleSpreadsheetID:   get("GOOGLE_SPREADSHEET_ID", ""),
		SpreadsheetTitle:      get("SPREADSHEET_TITLE", "Marvel Rivals Team Schedule"),

		ObjectStore:      strings.ToLower(get("OBJECT_STORE", ObjectStoreLocal)),
		LocalObjectsDir:  get("LOCAL_OBJECTS_DIR", "./data/objects"),
		ObjectSigningKey: get("OBJECT_SIGNING_KEY", ""),
		S3Endpoint:       get("S3_ENDPOINT", ""),
		S3Region:         get("S3_REGION", "auto"),
		S3Bucket:         get("S3_BUCKET", ""),
		S3AccessKeyID:    get("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:      get("S3_SECRET_ACCESS_KEY", ""),
		UploadURLTTL:     ttl,
	}

	switch cfg.ObjectStore {
	case ObjectStoreLocal:
		if cfg.ObjectSigningKey == "" {
			return nil, fmt.Errorf("OBJECT_SIGNING_KEY environment variable is required for the local object store")
		}
	case ObjectStoreS3:
		if cfg.S3Bucket == "" || cfg.S3AccessKeyID == "" || cfg.S3SecretKey == "" {
			return nil, fmt.Errorf("S3_BUCKET, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY are required for the s3 object store")
		}
	default:
		return nil, fmt.Errorf("OBJECT_STORE must be %q or %q, got %q", ObjectStoreLocal, ObjectStoreS3, cfg.ObjectStore)
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
