package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aula-lms/aula-lms/internal/accounts"
	"github.com/aula-lms/aula-lms/internal/calendar"
	"github.com/aula-lms/aula-lms/internal/courses"
	"github.com/aula-lms/aula-lms/internal/forums"
	"github.com/aula-lms/aula-lms/internal/observability"
	"github.com/aula-lms/aula-lms/internal/reports"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AccountsHandler *accounts.Handler
	CoursesHandler  *courses.Handler
	ForumsHandler   *forums.Handler
	CalendarHandler *calendar.Handler
	ReportsHandler  *reports.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with the application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	params.AccountsHandler.MountRoutes(r)
	params.CoursesHandler.MountRoutes(r)
	params.ForumsHandler.MountRoutes(r)
	params.CalendarHandler.MountRoutes(r)
	params.ReportsHandler.MountRoutes(r)

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
