package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clavis/internal/auth/service"
	"clavis/internal/platform/middleware"
	"clavis/internal/user/models"
	dErrors "clavis/pkg/domain-errors"
	"clavis/pkg/httputil"
)

// Service defines the interface for authentication operations.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	Login(ctx context.Context, email, password string) (*service.TokenPair, error)
	Register(ctx context.Context, cmd service.RegisterCommand) (*models.User, error)
	Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public authentication routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/refresh", h.HandleRefresh)
}

// RegisterProtected mounts routes that require an authenticated principal.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/auth/me", h.HandleMe)
}

// HandleRegister creates a new account and returns its public profile.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger)
	if !ok {
		return
	}

	cmd, err := req.ToCommand()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.Register(ctx, cmd)
	if err != nil {
		h.logger.ErrorContext(ctx, "register failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleLogin verifies credentials and returns a token pair.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger)
	if !ok {
		return
	}

	pair, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toTokenPairResponse(pair))
}

// HandleRefresh exchanges a refresh token for a fresh access token.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RefreshRequest](w, r, h.logger)
	if !ok {
		return
	}

	pair, err := h.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		h.logger.WarnContext(ctx, "refresh failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toTokenPairResponse(pair))
}

// HandleMe returns the profile of the authenticated user.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.Principal(r.Context())
	if user == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "not authenticated"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}
