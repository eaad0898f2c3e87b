package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

var (
	ErrObjectNotFound   = errors.New("object not found")
	ErrInvalidObjectKey = errors.New("invalid object key")
	ErrInvalidUpload    = errors.New("upload token is invalid or expired")
)

// PresignedUpload: куда и как клиент должен отправить файл.
type PresignedUpload struct {
	URL     string
	Method  string
	Headers map[string]string
}

type ObjectInfo struct {
	ContentType string
	Size        int64
}

// ObjectStore: хранилище загруженных файлов (скриншоты табло).
type ObjectStore interface {
	PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (*PresignedUpload, error)
	Open(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// UploadReceiver реализуют хранилища, которые сами принимают загрузку по выданной ссылке.
type UploadReceiver interface {
	Receive(ctx context.Context, token, contentType string, body io.Reader) (string, error)
}

// CleanKey нормализует ключ и отсекает выход за пределы хранилища.
func CleanKey(key string) (string, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return "", ErrInvalidObjectKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", ErrInvalidObjectKey
		}
	}
	return key, nil
}
