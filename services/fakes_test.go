package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/team-schedule/models"
	"github.com/Dosada05/team-schedule/repositories"
	"github.com/Dosada05/team-schedule/sheets"
	"github.com/Dosada05/team-schedule/storage"
)

type memScheduleRepo struct {
	mu        sync.Mutex
	schedules map[[2]string]models.Schedule
	upserts   int
}

func newMemScheduleRepo() *memScheduleRepo {
	return &memScheduleRepo{schedules: map[[2]string]models.Schedule{}}
}

func (r *memScheduleRepo) GetByID(_ context.Context, id string) (*models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.schedules {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, repositories.ErrScheduleNotFound
}

func (r *memScheduleRepo) GetByWeek(_ context.Context, start, end string) (*models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[[2]string{start, end}]
	if !ok {
		return nil, repositories.ErrScheduleNotFound
	}
	return &s, nil
}

func (r *memScheduleRepo) GetAll(context.Context) ([]models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Schedule, 0, len(r.schedules))
	for _, s := range r.schedules {
		out = append(out, s)
	}
	return out, nil
}

func (r *memScheduleRepo) Upsert(_ context.Context, s *models.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]string{s.WeekStartDate, s.WeekEndDate}
	if existing, ok := r.schedules[key]; ok {
		s.ID = existing.ID
	}
	r.schedules[key] = *s
	r.upserts++
	return nil
}

func (r *memScheduleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, s := range r.schedules {
		if s.ID == id {
			delete(r.schedules, k)
			return nil
		}
	}
	return repositories.ErrScheduleNotFound
}

type fakeMirror struct {
	rows     [][]string
	readErr  error
	writeErr error
	info     sheets.SpreadsheetInfo
	infoErr  error

	writtenTab  string
	writtenRows [][]string
	writes      int
}

func (m *fakeMirror) ReadTab(context.Context, string) ([][]string, error) {
	return m.rows, m.readErr
}

func (m *fakeMirror) WriteTab(_ context.Context, tab string, rows [][]string) error {
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writtenTab = tab
	m.writtenRows = rows
	return nil
}

func (m *fakeMirror) SpreadsheetInfo(context.Context) (sheets.SpreadsheetInfo, error) {
	return m.info, m.infoErr
}

type memPlayerRepo struct {
	players []models.Player
}

func (r *memPlayerRepo) Create(_ context.Context, p *models.Player) error {
	r.players = append(r.players, *p)
	return nil
}

func (r *memPlayerRepo) GetByID(_ context.Context, id string) (*models.Player, error) {
	for _, p := range r.players {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *memPlayerRepo) GetAll(context.Context) ([]models.Player, error) {
	return append([]models.Player{}, r.players...), nil
}

func (r *memPlayerRepo) Update(_ context.Context, p *models.Player) error {
	for i := range r.players {
		if r.players[i].ID == p.ID {
			r.players[i] = *p
			return nil
		}
	}
	return repositories.ErrPlayerNotFound
}

func (r *memPlayerRepo) Delete(_ context.Context, id string) error {
	for i := range r.players {
		if r.players[i].ID == id {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return nil
		}
	}
	return repositories.ErrPlayerNotFound
}

type memAttendanceRepo struct {
	records []models.Attendance
	players *memPlayerRepo
}

func (r *memAttendanceRepo) Create(ctx context.Context, a *models.Attendance) error {
	if r.players != nil {
		if _, err := r.players.GetByID(ctx, a.PlayerID); err != nil {
			return repositories.ErrAttendancePlayerNotFound
		}
	}
	r.records = append(r.records, *a)
	return nil
}

func (r *memAttendanceRepo) GetByID(_ context.Context, id string) (*models.Attendance, error) {
	for _, a := range r.records {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, repositories.ErrAttendanceNotFound
}

func (r *memAttendanceRepo) GetAll(context.Context) ([]models.Attendance, error) {
	return append([]models.Attendance{}, r.records...), nil
}

func (r *memAttendanceRepo) GetByPlayerID(_ context.Context, playerID string) ([]models.Attendance, error) {
	out := []models.Attendance{}
	for _, a := range r.records {
		if a.PlayerID == playerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAttendanceRepo) Update(_ context.Context, a *models.Attendance) error {
	for i := range r.records {
		if r.records[i].ID == a.ID {
			r.records[i] = *a
			return nil
		}
	}
	return repositories.ErrAttendanceNotFound
}

func (r *memAttendanceRepo) Delete(_ context.Context, id string) error {
	for i := range r.records {
		if r.records[i].ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return repositories.ErrAttendanceNotFound
}

func (r *memAttendanceRepo) DeleteByPlayerID(_ context.Context, playerID string) (int64, error) {
	kept := r.records[:0]
	var n int64
	for _, a := range r.records {
		if a.PlayerID == playerID {
			n++
			continue
		}
		kept = append(kept, a)
	}
	r.records = kept
	return n, nil
}

type memEventRepo struct {
	events []models.Event
}

func (r *memEventRepo) Create(_ context.Context, e *models.Event) error {
	r.events = append(r.events, *e)
	return nil
}

func (r *memEventRepo) GetByID(_ context.Context, id string) (*models.Event, error) {
	for _, e := range r.events {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, repositories.ErrEventNotFound
}

func (r *memEventRepo) GetAll(context.Context) ([]models.Event, error) {
	return append([]models.Event{}, r.events...), nil
}

func (r *memEventRepo) Update(_ context.Context, e *models.Event) error {
	for i := range r.events {
		if r.events[i].ID == e.ID {
			r.events[i] = *e
			return nil
		}
	}
	return repositories.ErrEventNotFound
}

func (r *memEventRepo) Delete(_ context.Context, id string) error {
	for i := range r.events {
		if r.events[i].ID == id {
			r.events = append(r.events[:i], r.events[i+1:]...)
			return nil
		}
	}
	return repositories.ErrEventNotFound
}

type memGameRepo struct {
	games  []models.Game
	events *memEventRepo
}

func (r *memGameRepo) Create(ctx context.Context, g *models.Game) error {
	if r.events != nil {
		if _, err := r.events.GetByID(ctx, g.EventID); err != nil {
			return repositories.ErrGameEventNotFound
		}
	}
	r.games = append(r.games, *g)
	return nil
}

func (r *memGameRepo) GetByID(_ context.Context, id string) (*models.Game, error) {
	for _, g := range r.games {
		if g.ID == id {
			return &g, nil
		}
	}
	return nil, repositories.ErrGameNotFound
}

func (r *memGameRepo) GetAll(context.Context) ([]models.Game, error) {
	return append([]models.Game{}, r.games...), nil
}

func (r *memGameRepo) GetByEventID(_ context.Context, eventID string) ([]models.Game, error) {
	out := []models.Game{}
	for _, g := range r.games {
		if g.EventID == eventID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *memGameRepo) Update(_ context.Context, g *models.Game) error {
	for i := range r.games {
		if r.games[i].ID == g.ID {
			r.games[i] = *g
			return nil
		}
	}
	return repositories.ErrGameNotFound
}

func (r *memGameRepo) Delete(_ context.Context, id string) error {
	for i := range r.games {
		if r.games[i].ID == id {
			r.games = append(r.games[:i], r.games[i+1:]...)
			return nil
		}
	}
	return repositories.ErrGameNotFound
}

func (r *memGameRepo) DeleteByEventID(_ context.Context, eventID string) (int64, error) {
	kept := r.games[:0]
	var n int64
	for _, g := range r.games {
		if g.EventID == eventID {
			n++
			continue
		}
		kept = append(kept, g)
	}
	r.games = kept
	return n, nil
}

type memNoteRepo struct {
	notes []models.TeamNote
}

func (r *memNoteRepo) Create(_ context.Context, n *models.TeamNote) error {
	r.notes = append(r.notes, *n)
	return nil
}

func (r *memNoteRepo) GetByID(_ context.Context, id string) (*models.TeamNote, error) {
	for _, n := range r.notes {
		if n.ID == id {
			return &n, nil
		}
	}
	return nil, repositories.ErrTeamNoteNotFound
}

func (r *memNoteRepo) GetAll(context.Context) ([]models.TeamNote, error) {
	return append([]models.TeamNote{}, r.notes...), nil
}

func (r *memNoteRepo) Delete(_ context.Context, id string) error {
	for i := range r.notes {
		if r.notes[i].ID == id {
			r.notes = append(r.notes[:i], r.notes[i+1:]...)
			return nil
		}
	}
	return repositories.ErrTeamNoteNotFound
}

type memObjectStore struct {
	objects map[string]string
	deleted []string
}

func (s *memObjectStore) PresignUpload(_ context.Context, key, contentType string, ttl time.Duration) (*storage.PresignedUpload, error) {
	return &storage.PresignedUpload{
		URL:     "https://objects.example/" + key + "?ttl=" + ttl.String(),
		Method:  "PUT",
		Headers: map[string]string{"Content-Type": contentType},
	}, nil
}

func (s *memObjectStore) Open(_ context.Context, key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	body, ok := s.objects[key]
	if !ok {
		return nil, nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(strings.NewReader(body)), &storage.ObjectInfo{ContentType: "image/png", Size: int64(len(body))}, nil
}

func (s *memObjectStore) Delete(_ context.Context, key string) error {
	if _, ok := s.objects[key]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

type published struct {
	topic string
	kind  string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []published
}

func (n *recordingNotifier) Publish(topic, kind string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, published{topic: topic, kind: kind})
}

func (n *recordingNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.kind
	}
	return out
}

var errBoom = errors.New("boom")

func strPtr(s string) *string { return &s }
