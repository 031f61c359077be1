package accounts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aula-lms/aula-lms/internal/authz"
	"github.com/aula-lms/aula-lms/internal/platform/httpx"
	"github.com/aula-lms/aula-lms/internal/shared"
)

// Handler wires the HTTP endpoints for registration and login.
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

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(shared.RoleAdmin))
		r.Post("/auth/accounts", h.createAccount)
	})
}

type registerRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	ContactInfo *string `json:"contact_info"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}

	id, tok, err := h.service.Register(r.Context(), req.Email, req.Password, req.Name, req.ContactInfo)
	if err != nil {
		h.logError(r, "register", err)
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully!",
		"data":    map[string]any{"id": id, "token": tok},
	})
}

type loginRequest struct {
	// The upstream API named the email field user_id; kept for clients.
	Email    string `json:"user_id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}

	tok, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logError(r, "login", err)
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "User logged in successfully!",
		"data":    map[string]any{"token": tok},
	})
}

type createAccountRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	AccountType string  `json:"account_type" validate:"required"`
	ContactInfo *string `json:"contact_info"`
	Department  *string `json:"department"`
	Major       *string `json:"major"`
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}

	role, err := shared.ParseRole(req.AccountType)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Unknown account type!")
		return
	}

	id, err := h.service.CreateAccount(r.Context(), NewAccount{
		Email:       req.Email,
		Name:        req.Name,
		Role:        role,
		ContactInfo: req.ContactInfo,
		Department:  req.Department,
		Major:       req.Major,
	}, req.Password)
	if err != nil {
		h.logError(r, "create account", err)
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully!",
		"data":    map[string]any{"id": id},
	})
}

func (h *Handler) logError(r *http.Request, op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
}
