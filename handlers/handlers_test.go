package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/team-schedule/models"
	"github.com/Dosada05/team-schedule/services"
	"github.com/Dosada05/team-schedule/storage"
)

var errBoom = errors.New("boom")

// serve прогоняет запрос через chi, чтобы заполнились URL-параметры.
func serve(t *testing.T, method, pattern, target string, body io.Reader, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Method(method, pattern, h)

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type stubScheduleService struct {
	services.ScheduleService
	get  func(ctx context.Context, start, end string) (*models.Schedule, error)
	save func(ctx context.Context, input services.SaveScheduleInput) (*models.Schedule, error)
}

func (s *stubScheduleService) GetSchedule(ctx context.Context, start, end string) (*models.Schedule, error) {
	return s.get(ctx, start, end)
}

func (s *stubScheduleService) SaveSchedule(ctx context.Context, input services.SaveScheduleInput) (*models.Schedule, error) {
	return s.save(ctx, input)
}

func TestScheduleHandler_GetRequiresWeekKey(t *testing.T) {
	h := NewScheduleHandler(&stubScheduleService{})

	rec := serve(t, http.MethodGet, "/api/schedule", "/api/schedule?weekStartDate=2024-01-01", nil, h.GetSchedule)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "weekEndDate")
}

func TestScheduleHandler_GetReturnsBareSchedule(t *testing.T) {
	h := NewScheduleHandler(&stubScheduleService{
		get: func(_ context.Context, start, end string) (*models.Schedule, error) {
			return &models.Schedule{
				ID:            "s1",
				WeekStartDate: start,
				WeekEndDate:   end,
				ScheduleData:  models.ScheduleData{Players: []models.PlayerAvailability{}},
			}, nil
		},
	})

	rec := serve(t, http.MethodGet, "/api/schedule",
		"/api/schedule?weekStartDate=2024-01-01&weekEndDate=2024-01-07", nil, h.GetSchedule)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "s1", body["id"])
	assert.Equal(t, "2024-01-01", body["weekStartDate"])
	assert.Equal(t, "2024-01-07", body["weekEndDate"])
}

func TestScheduleHandler_SaveValidationError(t *testing.T) {
	h := NewScheduleHandler(&stubScheduleService{
		save: func(context.Context, services.SaveScheduleInput) (*models.Schedule, error) {
			return nil, models.NewValidationError("weekStartDate", "is required")
		},
	})

	rec := serve(t, http.MethodPost, "/api/schedule", "/api/schedule",
		strings.NewReader(`{"weekEndDate":"2024-01-07","scheduleData":{"players":[]}}`), h.SaveSchedule)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "validation failed", body["error"])
	fields, ok := body["fields"].([]interface{})
	require.True(t, ok)
	require.Len(t, fields, 1)
	assert.Equal(t, "weekStartDate", fields[0].(map[string]interface{})["field"])
}

func TestScheduleHandler_SaveExternalFailureIs500(t *testing.T) {
	h := NewScheduleHandler(&stubScheduleService{
		save: func(context.Context, services.SaveScheduleInput) (*models.Schedule, error) {
			return nil, fmt.Errorf("%w: %w", services.ErrExternalService, errBoom)
		},
	})

	rec := serve(t, http.MethodPost, "/api/schedule", "/api/schedule",
		strings.NewReader(`{"weekStartDate":"a","weekEndDate":"b","scheduleData":{"players":[]}}`), h.SaveSchedule)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "boom")
}

func TestScheduleHandler_SaveMalformedJSON(t *testing.T) {
	h := NewScheduleHandler(&stubScheduleService{})

	rec := serve(t, http.MethodPost, "/api/schedule", "/api/schedule", strings.NewReader(`{"weekStartDate":`), h.SaveSchedule)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "body contains badly-formed JSON", decodeBody(t, rec)["error"])
}

type stubPlayerService struct {
	services.PlayerService
	create func(ctx context.Context, input services.CreatePlayerInput) (*models.Player, error)
	get    func(ctx context.Context, id string) (*models.Player, error)
	update func(ctx context.Context, id string, input services.UpdatePlayerInput) (*models.Player, error)
	del    func(ctx context.Context, id string) error
}

func (s *stubPlayerService) CreatePlayer(ctx context.Context, input services.CreatePlayerInput) (*models.Player, error) {
	return s.create(ctx, input)
}

func (s *stubPlayerService) GetPlayerByID(ctx context.Context, id string) (*models.Player, error) {
	return s.get(ctx, id)
}

func (s *stubPlayerService) UpdatePlayer(ctx context.Context, id string, input services.UpdatePlayerInput) (*models.Player, error) {
	return s.update(ctx, id, input)
}

func (s *stubPlayerService) DeletePlayer(ctx context.Context, id string) error {
	return s.del(ctx, id)
}

func TestPlayerHandler_Create(t *testing.T) {
	var got services.CreatePlayerInput
	h := NewPlayerHandler(&stubPlayerService{
		create: func(_ context.Context, input services.CreatePlayerInput) (*models.Player, error) {
			got = input
			return &models.Player{ID: "p1", Name: input.Name, Role: input.Role}, nil
		},
	})

	rec := serve(t, http.MethodPost, "/api/players", "/api/players",
		strings.NewReader(`{"name":"Ana","role":"Support","phone":"0151 23456789"}`), h.CreatePlayer)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, models.RoleSupport, got.Role)
	require.NotNil(t, got.Phone)
	assert.Equal(t, "0151 23456789", *got.Phone)
	assert.Equal(t, "p1", decodeBody(t, rec)["id"])
}

func TestPlayerHandler_GetNotFound(t *testing.T) {
	h := NewPlayerHandler(&stubPlayerService{
		get: func(context.Context, string) (*models.Player, error) {
			return nil, services.ErrPlayerNotFound
		},
	})

	rec := serve(t, http.MethodGet, "/api/players/{id}", "/api/players/missing", nil, h.GetPlayerByID)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, services.ErrPlayerNotFound.Error(), decodeBody(t, rec)["error"])
}

func TestPlayerHandler_UpdatePassesOnlySuppliedFields(t *testing.T) {
	var got services.UpdatePlayerInput
	h := NewPlayerHandler(&stubPlayerService{
		update: func(_ context.Context, id string, input services.UpdatePlayerInput) (*models.Player, error) {
			got = input
			return &models.Player{ID: id, Name: "Ana", Role: models.RoleTank}, nil
		},
	})

	rec := serve(t, http.MethodPut, "/api/players/{id}", "/api/players/p1",
		strings.NewReader(`{"role":"Tank"}`), h.UpdatePlayer)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, got.Name)
	require.NotNil(t, got.Role)
	assert.Equal(t, models.RoleTank, *got.Role)
}

func TestPlayerHandler_Delete(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"missing", services.ErrPlayerNotFound, http.StatusNotFound},
		{"restricted", services.ErrPlayerInUse, http.StatusConflict},
		{"failure", errBoom, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPlayerHandler(&stubPlayerService{
				del: func(context.Context, string) error { return tt.err },
			})

			rec := serve(t, http.MethodDelete, "/api/players/{id}", "/api/players/p1", nil, h.DeletePlayer)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

type stubEventService struct {
	services.EventService
	games func(ctx context.Context, id string) ([]models.Game, error)
}

func (s *stubEventService) GetEventGames(ctx context.Context, id string) ([]models.Game, error) {
	return s.games(ctx, id)
}

func TestEventHandler_GetEventGames(t *testing.T) {
	var gotID string
	h := NewEventHandler(&stubEventService{
		games: func(_ context.Context, id string) ([]models.Game, error) {
			gotID = id
			return []models.Game{{ID: "g1", EventID: id, GameCode: "A1", Score: "2-1"}}, nil
		},
	})

	rec := serve(t, http.MethodGet, "/api/events/{id}/games", "/api/events/e1/games", nil, h.GetEventGames)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "e1", gotID)
	var games []models.Game
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &games))
	require.Len(t, games, 1)
	assert.Equal(t, "2-1", games[0].Score)
}

type stubObjectService struct {
	services.ObjectService
	open    func(ctx context.Context, objectPath string) (io.ReadCloser, *storage.ObjectInfo, error)
	receive func(ctx context.Context, token, contentType string, body io.Reader) (string, error)
}

func (s *stubObjectService) Open(ctx context.Context, objectPath string) (io.ReadCloser, *storage.ObjectInfo, error) {
	return s.open(ctx, objectPath)
}

func (s *stubObjectService) Receive(ctx context.Context, token, contentType string, body io.Reader) (string, error) {
	return s.receive(ctx, token, contentType, body)
}

func TestObjectHandler_ServeObject(t *testing.T) {
	var gotPath string
	h := NewObjectHandler(&stubObjectService{
		open: func(_ context.Context, objectPath string) (io.ReadCloser, *storage.ObjectInfo, error) {
			gotPath = objectPath
			return io.NopCloser(strings.NewReader("png-bytes")), &storage.ObjectInfo{ContentType: "image/png", Size: 9}, nil
		},
	})

	rec := serve(t, http.MethodGet, "/objects/*", "/objects/uploads/abc", nil, h.ServeObject)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/objects/uploads/abc", gotPath)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "9", rec.Header().Get("Content-Length"))
	assert.Equal(t, "png-bytes", rec.Body.String())
}

func TestObjectHandler_ServeObjectNotFound(t *testing.T) {
	h := NewObjectHandler(&stubObjectService{
		open: func(context.Context, string) (io.ReadCloser, *storage.ObjectInfo, error) {
			return nil, nil, services.ErrObjectNotFound
		},
	})

	rec := serve(t, http.MethodGet, "/objects/*", "/objects/uploads/missing", nil, h.ServeObject)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestObjectHandler_ReceiveUpload(t *testing.T) {
	var gotToken, gotType, gotBody string
	h := NewObjectHandler(&stubObjectService{
		receive: func(_ context.Context, token, contentType string, body io.Reader) (string, error) {
			data, err := io.ReadAll(body)
			require.NoError(t, err)
			gotToken, gotType, gotBody = token, contentType, string(data)
			return "/objects/uploads/abc", nil
		},
	})

	router := chi.NewRouter()
	router.Put("/objects/upload/{token}", h.ReceiveUpload)
	req := httptest.NewRequest(http.MethodPut, "/objects/upload/tok", strings.NewReader("img"))
	req.Header.Set("Content-Type", "image/png")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok", gotToken)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "img", gotBody)
	assert.Equal(t, "/objects/uploads/abc", decodeBody(t, rec)["objectPath"])
}

func TestWebSocketHandler_UnknownTopic(t *testing.T) {
	h := NewWebSocketHandler(nil)

	rec := serve(t, http.MethodGet, "/ws/{topic}", "/ws/tournaments", nil, h.ServeWs)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	ok := NewHealthHandler(pingerFunc(func(context.Context) error { return nil }))
	rec := serve(t, http.MethodGet, "/healthz", "/healthz", nil, ok.Healthz)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])

	down := NewHealthHandler(pingerFunc(func(context.Context) error { return errBoom }))
	rec = serve(t, http.MethodGet, "/healthz", "/healthz", nil, down.Healthz)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
