package calendar

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aula-lms/aula-lms/internal/authz"
	"github.com/aula-lms/aula-lms/internal/platform/httpx"
	"github.com/aula-lms/aula-lms/internal/shared"
)

// Handler wires the HTTP endpoints for course calendars.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      authz.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		gate:      gate,
		validator: validator.New(),
	}
}

// MountRoutes registers calendar routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/course/{code}/calendar", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.gate.Require(shared.RoleLecturer, shared.RoleAdmin))
			r.Post("/", h.createEvent)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.gate.Require())
			r.Get("/", h.eventsForCourse)
			r.Get("/student/{student_id}", h.eventsForCourseStudent)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require())
		r.Get("/calendar/student/{student_id}", h.eventsForStudent)
	})
}

type createEventRequest struct {
	EventName string    `json:"event_name" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}

	e, err := h.service.CreateEvent(r.Context(), shared.SessionFromContext(r.Context()), chi.URLParam(r, "code"), req.EventName, req.Date)
	if err != nil {
		h.logError(r, "create event", err)
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, e)
}

func (h *Handler) eventsForCourse(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.EventsForCourse(r.Context(), shared.SessionFromContext(r.Context()), chi.URLParam(r, "code"))
	if err != nil {
		h.logError(r, "list events", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) eventsForCourseStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.pathID(w, r, "student_id")
	if !ok {
		return
	}

	list, err := h.service.EventsForCourseStudent(r.Context(), shared.SessionFromContext(r.Context()), chi.URLParam(r, "code"), studentID)
	if err != nil {
		h.logError(r, "list course events for student", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) eventsForStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.pathID(w, r, "student_id")
	if !ok {
		return
	}

	list, err := h.service.EventsForStudent(r.Context(), shared.SessionFromContext(r.Context()), studentID)
	if err != nil {
		h.logError(r, "list events for student", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid ID!")
		return 0, false
	}
	return id, true
}

func (h *Handler) logError(r *http.Request, op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
}
