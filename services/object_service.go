package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/Dosada05/team-schedule/models"
	"github.com/Dosada05/team-schedule/storage"
)

const (
	ObjectPathPrefix = "/objects/"
	uploadKeyPrefix  = "uploads/"
)

type RequestUploadInput struct {
	ContentType string `json:"contentType"`
}

// UploadTarget: ответ на запрос загрузки: клиент отправляет файл на UploadURL,
// а в сущность записывает ObjectPath.
type UploadTarget struct {
	UploadURL  string            `json:"uploadURL"`
	Method     string            `json:"method"`
	Headers    map[string]string `json:"headers"`
	ObjectPath string            `json:"objectPath"`
}

type ObjectService interface {
	RequestUpload(ctx context.Context, input RequestUploadInput) (*UploadTarget, error)
	Open(ctx context.Context, objectPath string) (io.ReadCloser, *storage.ObjectInfo, error)
	// Receive принимает тело загрузки по токену для хранилищ, которые сами обслуживают ссылку.
	Receive(ctx context.Context, token, contentType string, body io.Reader) (string, error)
	Remove(ctx context.Context, objectPath string) error
}

type objectService struct {
	store     storage.ObjectStore
	uploadTTL time.Duration
	logger    *slog.Logger
}

func NewObjectService(store storage.ObjectStore, uploadTTL time.Duration, logger *slog.Logger) ObjectService {
	if uploadTTL <= 0 {
		uploadTTL = 15 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &objectService{store: store, uploadTTL: uploadTTL, logger: logger}
}

func (s *objectService) RequestUpload(ctx context.Context, input RequestUploadInput) (*UploadTarget, error) {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(input.ContentType))
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return nil, models.NewValidationError("contentType", "must be an image/* content type")
	}

	key := uploadKeyPrefix + newID()
	upload, err := s.store.PresignUpload(ctx, key, mediaType, s.uploadTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExternalService, err)
	}
	return &UploadTarget{
		UploadURL:  upload.URL,
		Method:     upload.Method,
		Headers:    upload.Headers,
		ObjectPath: ObjectPathPrefix + key,
	}, nil
}

func (s *objectService) Open(ctx context.Context, objectPath string) (io.ReadCloser, *storage.ObjectInfo, error) {
	key, err := storage.CleanKey(strings.TrimPrefix(objectPath, ObjectPathPrefix))
	if err != nil {
		return nil, nil, ErrObjectNotFound
	}
	rc, info, err := s.store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrObjectNotFound
		}
		return nil, nil, fmt.Errorf("%w: %w", ErrExternalService, err)
	}
	return rc, info, nil
}

func (s *objectService) Receive(ctx context.Context, token, contentType string, body io.Reader) (string, error) {
	receiver, ok := s.store.(storage.UploadReceiver)
	if !ok {
		return "", ErrObjectNotFound
	}
	key, err := receiver.Receive(ctx, token, contentType, body)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidUpload) || errors.Is(err, storage.ErrInvalidObjectKey) {
			return "", models.NewValidationError("token", err.Error())
		}
		return "", fmt.Errorf("%w: %w", ErrExternalService, err)
	}
	return ObjectPathPrefix + key, nil
}

func (s *objectService) Remove(ctx context.Context, objectPath string) error {
	key, err := storage.CleanKey(strings.TrimPrefix(objectPath, ObjectPathPrefix))
	if err != nil {
		return ErrObjectNotFound
	}
	if err := s.store.Delete(ctx, key); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("%w: %w", ErrExternalService, err)
	}
	return nil
}

// removeQuietly удаляет файл, на который больше никто не ссылается; неудача только логируется.
func removeQuietly(ctx context.Context, objects ObjectService, logger *slog.Logger, objectPath *string) {
	if objects == nil || objectPath == nil || *objectPath == "" {
		return
	}
	if err := objects.Remove(ctx, *objectPath); err != nil && !errors.Is(err, ErrObjectNotFound) {
		logger.WarnContext(ctx, "failed to remove orphaned object", slog.String("path", *objectPath), slog.Any("error", err))
	}
}
