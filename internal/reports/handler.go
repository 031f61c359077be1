package reports

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aula-lms/aula-lms/internal/authz"
	"github.com/aula-lms/aula-lms/internal/platform/httpx"
)

// Thresholds of the canned reports.
const (
	minStudentsPerCourse  = 50
	minCoursesPerStudent  = 5
	minCoursesPerLecturer = 3
	topListSize           = 10
)

// Handler wires the read-only report endpoints. Any authenticated session
// may query them.
type Handler struct {
	logger *slog.Logger
	repo   Repository
	gate   authz.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, repo Repository, gate authz.Middleware) *Handler {
	return &Handler{logger: logger, repo: repo, gate: gate}
}

// MountRoutes registers report routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(h.gate.Require())
		r.Get("/courses/50students", h.crowdedCourses)
		r.Get("/students/5courses", h.busyStudents)
		r.Get("/lecturers/3courses", h.busyLecturers)
		r.Get("/top10enrolled", h.topEnrolled)
		r.Get("/top10students", h.topStudents)
	})
}

func (h *Handler) crowdedCourses(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.CoursesWithAtLeastStudents(r.Context(), minStudentsPerCourse)
	if err != nil {
		h.logError(r, "crowded courses report", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) busyStudents(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.StudentsWithAtLeastCourses(r.Context(), minCoursesPerStudent)
	if err != nil {
		h.logError(r, "busy students report", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) busyLecturers(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.LecturersWithAtLeastCourses(r.Context(), minCoursesPerLecturer)
	if err != nil {
		h.logError(r, "busy lecturers report", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) topEnrolled(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.TopEnrolledCourses(r.Context(), topListSize)
	if err != nil {
		h.logError(r, "top enrolled report", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) topStudents(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.TopStudentsByAverageGrade(r.Context(), topListSize)
	if err != nil {
		h.logError(r, "top students report", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) logError(r *http.Request, op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
}
