package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clavis/internal/platform/middleware"
	"clavis/internal/user/models"
	"clavis/internal/user/service"
	id "clavis/pkg/domain"
	dErrors "clavis/pkg/domain-errors"
	"clavis/pkg/httputil"
)

// Service defines the interface for user management operations.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	Create(ctx context.Context, principal *models.User, cmd service.CreateCommand) (*models.User, error)
	Get(ctx context.Context, principal *models.User, userID id.UserID) (*models.User, error)
	List(ctx context.Context, principal *models.User, offset, limit int) ([]*models.User, error)
	Update(ctx context.Context, principal *models.User, userID id.UserID, cmd service.UpdateCommand) (*models.User, error)
	Delete(ctx context.Context, principal *models.User, userID id.UserID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts user management routes. All of them expect an
// authenticated principal in the request context.
func (h *Handler) Register(r chi.Router) {
	r.Post("/users", h.HandleCreate)
	r.Get("/users", h.HandleList)
	r.Get("/users/{id}", h.HandleGet)
	r.Put("/users/{id}", h.HandleUpdate)
	r.Delete("/users/{id}", h.HandleDelete)
}

// HandleCreate creates a user on behalf of an administrator.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	principal := middleware.Principal(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateUserRequest](w, r, h.logger)
	if !ok {
		return
	}

	cmd, err := req.ToCommand()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.Create(ctx, principal, cmd)
	if err != nil {
		h.logger.ErrorContext(ctx, "create user failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleList returns users with offset/limit pagination.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	principal := middleware.Principal(ctx)

	offset, limit := pageParams(r)
	users, err := h.service.List(ctx, principal, offset, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list users failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toUserListResponse(users))
}

// HandleGet returns a single user.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	principal := middleware.Principal(ctx)

	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	user, err := h.service.Get(ctx, principal, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user failed", "error", err, "request_id", requestID, "user_id", userID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleUpdate applies a partial update to a user.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	principal := middleware.Principal(ctx)

	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateUserRequest](w, r, h.logger)
	if !ok {
		return
	}

	cmd, err := req.ToCommand()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.Update(ctx, principal, userID, cmd)
	if err != nil {
		h.logger.WarnContext(ctx, "update user failed", "error", err, "request_id", requestID, "user_id", userID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleDelete removes a user.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	principal := middleware.Principal(ctx)

	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	if err := h.service.Delete(ctx, principal, userID); err != nil {
		h.logger.WarnContext(ctx, "delete user failed", "error", err, "request_id", requestID, "user_id", userID)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pageParams(r *http.Request) (offset, limit int) {
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	return offset, limit
}
