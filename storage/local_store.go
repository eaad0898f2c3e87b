package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/jonboulle/clockwork"
)

const (
	claimKey         = "key"
	claimContentType = "ct"
	claimExpires     = "exp"

	contentTypeSuffix = ".content-type"
)

// LocalStore хранит файлы на диске. Ссылка на загрузку содержит подписанный HS256 токен,
// который принимает PUT /objects/upload/{token}.
type LocalStore struct {
	dir        string
	baseURL    string
	signingKey []byte
	clock      clockwork.Clock
}

func NewLocalStore(dir, publicBaseURL string, signingKey []byte, clock clockwork.Clock) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("local object store: directory is required")
	}
	if len(signingKey) == 0 {
		return nil, errors.New("local object store: signing key is required")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create object directory: %w", err)
	}
	return &LocalStore{
		dir:        dir,
		baseURL:    strings.TrimSuffix(publicBaseURL, "/"),
		signingKey: signingKey,
		clock:      clock,
	}, nil
}

func (s *LocalStore) PresignUpload(_ context.Context, key, contentType string, ttl time.Duration) (*PresignedUpload, error) {
	key, err := CleanKey(key)
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{
		claimKey:         key,
		claimContentType: contentType,
		claimExpires:     s.clock.Now().Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign upload token: %w", err)
	}

	return &PresignedUpload{
		URL:     s.baseURL + "/objects/upload/" + url.PathEscape(token),
		Method:  "PUT",
		Headers: map[string]string{"Content-Type": contentType},
	}, nil
}

// Receive проверяет токен и сохраняет тело под ключом из токена.
func (s *LocalStore) Receive(_ context.Context, token, contentType string, body io.Reader) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}

	key, _ := claims[claimKey].(string)
	key, err = CleanKey(key)
	if err != nil {
		return "", ErrInvalidUpload
	}
	expected, _ := claims[claimContentType].(string)
	if expected != "" && !strings.EqualFold(expected, contentType) {
		return "", fmt.Errorf("%w: content type %q does not match %q", ErrInvalidUpload, contentType, expected)
	}

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write object (key: %s): %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write object (key: %s): %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to store object (key: %s): %w", key, err)
	}
	if err := os.WriteFile(path+contentTypeSuffix, []byte(contentType), 0o644); err != nil {
		return "", fmt.Errorf("failed to store object metadata (key: %s): %w", key, err)
	}
	return key, nil
}

func (s *LocalStore) parseToken(token string) (jwt.MapClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())

	claims := jwt.MapClaims{}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}
	// Срок проверяем сами: часы инжектируются.
	if !claims.VerifyExpiresAt(s.clock.Now().Unix(), true) {
		return nil, ErrInvalidUpload
	}
	return claims, nil
}

func (s *LocalStore) Open(_ context.Context, key string) (io.ReadCloser, *ObjectInfo, error) {
	key, err := CleanKey(key)
	if err != nil {
		return nil, nil, ErrObjectNotFound
	}
	path := s.path(key)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrObjectNotFound
		}
		return nil, nil, fmt.Errorf("failed to open object (key: %s): %w", key, err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to stat object (key: %s): %w", key, err)
	}

	info := &ObjectInfo{Size: stat.Size(), ContentType: "application/octet-stream"}
	if ct, err := os.ReadFile(path + contentTypeSuffix); err == nil && len(ct) > 0 {
		info.ContentType = string(ct)
	}
	return f, info, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	key, err := CleanKey(key)
	if err != nil {
		return ErrObjectNotFound
	}
	path := s.path(key)

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete object (key: %s): %w", key, err)
	}
	_ = os.Remove(path + contentTypeSuffix)
	return nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key))
}
