/*
server.go - HTTP router, middleware and logger configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:      Unique ID per request for tracing
  2. RequestLogger:  Structured request logs (httplog, ECS schema)
  3. Recoverer:      Panic recovery (500 instead of crash)
  4. Heartbeat:      GET /healthz liveness probe
  5. CORS:           Cross-origin requests for the calendar frontend

ROUTE GROUPS:
  /api/employees/{id}/*   Calendar, drafts, balance, history, attendance
  /api/holidays           Holiday list
  /api/scenarios/*        Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewLogger builds the JSON logger shared by handlers and request logging.
func NewLogger(w io.Writer, level slog.Level, env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "production")
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "leave-calendar"),
		slog.String("env", env),
	)
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(h.Logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/employees/{id}", func(r chi.Router) {
			r.Route("/calendar", func(r chi.Router) {
				r.Get("/", h.GetCalendar)
				r.Post("/navigate", h.Navigate)
				r.Post("/click", h.ClickDate)
				r.Post("/clear", h.ClearSelection)
				r.Delete("/notice", h.DismissNotice)
			})

			r.Route("/leave-requests/draft", func(r chi.Router) {
				r.Post("/", h.OpenLeaveDraft)
				r.Get("/", h.GetLeaveDraft)
				r.Put("/", h.UpdateLeaveDraft)
				r.Delete("/", h.CloseLeaveDraft)
				r.Post("/submit", h.SubmitLeaveDraft)
			})

			r.Route("/comp-off-requests/draft", func(r chi.Router) {
				r.Post("/", h.OpenCompOffDraft)
				r.Get("/", h.GetCompOffDraft)
				r.Put("/", h.UpdateCompOffDraft)
				r.Delete("/", h.CloseCompOffDraft)
				r.Post("/submit", h.SubmitCompOffDraft)
			})

			r.Get("/requests", h.ListRequests)
			r.Get("/balance", h.GetBalance)
			r.Put("/balance", h.PutBalance)
			r.Get("/leave-history", h.GetLeaveHistory)
			r.Post("/leave-history", h.CreateLeaveRecord)
			r.Put("/attendance/{date}", h.PutAttendanceDay)
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
