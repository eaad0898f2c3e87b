package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newS3Store(t *testing.T, handler http.Handler) (*S3Store, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := NewS3Store(context.Background(), S3Config{
		Endpoint:        srv.URL,
		Region:          "auto",
		Bucket:          "scoreboards",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)
	return store, srv
}

func TestNewS3Store_RequiresBucketAndCredentials(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{Endpoint: "http://localhost"})
	assert.Error(t, err)
}

func TestS3Store_PresignUpload(t *testing.T) {
	store, srv := newS3Store(t, http.NotFoundHandler())

	upload, err := store.PresignUpload(context.Background(), "uploads/abc", "image/png", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, upload.Method)
	assert.Equal(t, "image/png", upload.Headers["Content-Type"])
	assert.NotContains(t, upload.Headers, "Host")

	u, err := url.Parse(upload.URL)
	require.NoError(t, err)
	base, _ := url.Parse(srv.URL)
	assert.Equal(t, base.Host, u.Host)
	assert.Equal(t, "/scoreboards/uploads/abc", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestS3Store_OpenMapsMissingKey(t *testing.T) {
	store, _ := newS3Store(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`))
	}))

	_, _, err := store.Open(context.Background(), "uploads/missing")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestS3Store_OpenStreamsObject(t *testing.T) {
	var gotPath string
	store, _ := newS3Store(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", "3")
		_, _ = w.Write([]byte("png"))
	}))

	rc, info, err := store.Open(context.Background(), "uploads/abc")
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png", string(body))
	assert.Equal(t, "image/png", info.ContentType)
	assert.EqualValues(t, 3, info.Size)
	assert.Equal(t, "/scoreboards/uploads/abc", gotPath)
}

func TestS3Store_Delete(t *testing.T) {
	var method string
	store, _ := newS3Store(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, store.Delete(context.Background(), "uploads/abc"))
	assert.Equal(t, http.MethodDelete, method)
}
