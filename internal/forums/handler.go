package forums

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aula-lms/aula-lms/internal/authz"
	"github.com/aula-lms/aula-lms/internal/platform/httpx"
	"github.com/aula-lms/aula-lms/internal/shared"
)

// Handler wires the HTTP endpoints for course discussion boards.
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

// MountRoutes registers forum routes on the provided router. The singular
// /course prefix follows the original wire contract.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/course/{code}/forums", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.gate.Require(shared.RoleLecturer, shared.RoleAdmin))
			r.Post("/", h.createForum)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.gate.Require())
			r.Get("/", h.forums)
			r.Get("/{forum_id}/threads", h.threads)
			r.Post("/{forum_id}/threads", h.createThread)
			r.Post("/{forum_id}/threads/{thread_id}/reply", h.createReply)
			r.Get("/{forum_id}/threads/{thread_id}/replies", h.replies)
		})
	})
}

func (h *Handler) forums(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ForumsForCourse(r.Context(), shared.SessionFromContext(r.Context()), chi.URLParam(r, "code"))
	if err != nil {
		h.logError(r, "list forums", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

type createForumRequest struct {
	Topic string `json:"topic" validate:"required"`
}

func (h *Handler) createForum(w http.ResponseWriter, r *http.Request) {
	var req createForumRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}

	f, err := h.service.CreateForum(r.Context(), shared.SessionFromContext(r.Context()), chi.URLParam(r, "code"), req.Topic)
	if err != nil {
		h.logError(r, "create forum", err)
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, f)
}

func (h *Handler) threads(w http.ResponseWriter, r *http.Request) {
	forumID, ok := h.pathID(w, r, "forum_id")
	if !ok {
		return
	}

	list, err := h.service.ThreadsForForum(r.Context(), shared.SessionFromContext(r.Context()), chi.URLParam(r, "code"), forumID)
	if err != nil {
		h.logError(r, "list threads", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

type createThreadRequest struct {
	Title string `json:"title" validate:"required"`
	Post  string `json:"post" validate:"required"`
}

func (h *Handler) createThread(w http.ResponseWriter, r *http.Request) {
	forumID, ok := h.pathID(w, r, "forum_id")
	if !ok {
		return
	}

	var req createThreadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}

	t, err := h.service.CreateThread(r.Context(), shared.SessionFromContext(r.Context()), chi.URLParam(r, "code"), forumID, req.Title, req.Post)
	if err != nil {
		h.logError(r, "create thread", err)
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, t)
}

type createReplyRequest struct {
	ReplyText string `json:"reply_text" validate:"required"`
}

func (h *Handler) createReply(w http.ResponseWriter, r *http.Request) {
	forumID, ok := h.pathID(w, r, "forum_id")
	if !ok {
		return
	}
	threadID, ok := h.pathID(w, r, "thread_id")
	if !ok {
		return
	}

	var req createReplyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}

	rep, err := h.service.CreateReply(r.Context(), shared.SessionFromContext(r.Context()), chi.URLParam(r, "code"), forumID, threadID, req.ReplyText)
	if err != nil {
		h.logError(r, "create reply", err)
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, rep)
}

func (h *Handler) replies(w http.ResponseWriter, r *http.Request) {
	forumID, ok := h.pathID(w, r, "forum_id")
	if !ok {
		return
	}
	threadID, ok := h.pathID(w, r, "thread_id")
	if !ok {
		return
	}

	list, err := h.service.RepliesForThread(r.Context(), shared.SessionFromContext(r.Context()), chi.URLParam(r, "code"), forumID, threadID)
	if err != nil {
		h.logError(r, "list replies", err)
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
