package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/team-schedule/docs" // регистрирует swagger.json
	"github.com/Dosada05/team-schedule/handlers"
	"github.com/Dosada05/team-schedule/middleware"
)

type Handlers struct {
	Schedule   *handlers.ScheduleHandler
	Players    *handlers.PlayerHandler
	Events     *handlers.EventHandler
	Games      *handlers.GameHandler
	Attendance *handlers.AttendanceHandler
	TeamNotes  *handlers.TeamNoteHandler
	Objects    *handlers.ObjectHandler
	WebSocket  *handlers.WebSocketHandler
	Health     *handlers.HealthHandler
}

type Options struct {
	AllowedOrigins []string
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"the requested resource could not be found"}` + "\n"))
	})

	router.Get("/healthz", h.Health.Healthz)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Лента изменений живёт дольше любого таймаута запроса, поэтому вне группы с Timeout.
	router.Get("/ws/{topic}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(chiMiddleware.Timeout(opts.RequestTimeout))
		}

		r.Route("/api", func(r chi.Router) {
			r.Route("/schedule", func(r chi.Router) {
				r.Get("/", h.Schedule.GetSchedule)
				r.Post("/", h.Schedule.SaveSchedule)
				r.Get("/analytics", h.Schedule.GetAnalytics)
			})
			r.Get("/spreadsheet-info", h.Schedule.GetSpreadsheetInfo)

			r.Route("/players", func(r chi.Router) {
				r.Get("/", h.Players.GetAllPlayers)
				r.Post("/", h.Players.CreatePlayer)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Players.GetPlayerByID)
					r.Put("/", h.Players.UpdatePlayer)
					r.Delete("/", h.Players.DeletePlayer)
					r.Get("/attendance", h.Players.GetPlayerAttendance)
				})
			})

			r.Route("/events", func(r chi.Router) {
				r.Get("/", h.Events.GetAllEvents)
				r.Post("/", h.Events.CreateEvent)
				r.Get("/record", h.Events.GetRecord)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Events.GetEventByID)
					r.Put("/", h.Events.UpdateEvent)
					r.Delete("/", h.Events.DeleteEvent)
					r.Get("/games", h.Events.GetEventGames)
				})
			})

			r.Route("/games", func(r chi.Router) {
				r.Get("/", h.Games.GetAllGames)
				r.Post("/", h.Games.CreateGame)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Games.GetGameByID)
					r.Put("/", h.Games.UpdateGame)
					r.Delete("/", h.Games.DeleteGame)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", h.Attendance.GetAllAttendance)
				r.Post("/", h.Attendance.CreateAttendance)
				r.Get("/summary", h.Attendance.GetSummary)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Attendance.GetAttendanceByID)
					r.Put("/", h.Attendance.UpdateAttendance)
					r.Delete("/", h.Attendance.DeleteAttendance)
				})
			})

			r.Route("/team-notes", func(r chi.Router) {
				r.Get("/", h.TeamNotes.GetAllNotes)
				r.Post("/", h.TeamNotes.CreateNote)
				r.Get("/{id}", h.TeamNotes.GetNoteByID)
				r.Delete("/{id}", h.TeamNotes.DeleteNote)
			})

			r.Post("/objects/upload", h.Objects.RequestUpload)
		})

		r.Put("/objects/upload/{token}", h.Objects.ReceiveUpload)
		r.Get("/objects/*", h.Objects.ServeObject)
	})

}
