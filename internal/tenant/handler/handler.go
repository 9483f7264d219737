package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clavis/internal/platform/middleware"
	"clavis/internal/tenant/models"
	usermodels "clavis/internal/user/models"
	id "clavis/pkg/domain"
	dErrors "clavis/pkg/domain-errors"
	"clavis/pkg/httputil"
)

// Service defines the interface for tenant operations.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	Create(ctx context.Context, principal *usermodels.User, name string) (*models.Tenant, error)
	Get(ctx context.Context, principal *usermodels.User, tenantID id.TenantID) (*models.Tenant, []*usermodels.User, error)
	List(ctx context.Context, principal *usermodels.User, offset, limit int) ([]*models.Tenant, error)
	Update(ctx context.Context, principal *usermodels.User, tenantID id.TenantID, name string) (*models.Tenant, error)
	Delete(ctx context.Context, principal *usermodels.User, tenantID id.TenantID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts tenant management routes. All of them expect an
// authenticated principal in the request context.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tenants", h.HandleCreate)
	r.Get("/tenants", h.HandleList)
	r.Get("/tenants/{id}", h.HandleGet)
	r.Put("/tenants/{id}", h.HandleUpdate)
	r.Delete("/tenants/{id}", h.HandleDelete)
}

// HandleCreate creates a tenant.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	principal := middleware.Principal(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateTenantRequest](w, r, h.logger)
	if !ok {
		return
	}

	tenant, err := h.service.Create(ctx, principal, req.Name)
	if err != nil {
		h.logger.ErrorContext(ctx, "create tenant failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toTenantResponse(tenant))
}

// HandleList returns tenants with offset/limit pagination.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	principal := middleware.Principal(ctx)

	offset, limit := pageParams(r)
	tenants, err := h.service.List(ctx, principal, offset, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list tenants failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toTenantListResponse(tenants))
}

// HandleGet returns a tenant together with its member users.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	principal := middleware.Principal(ctx)

	tenantID, err := id.ParseTenantID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid tenant id"))
		return
	}

	tenant, members, err := h.service.Get(ctx, principal, tenantID)
	if err != nil {
		h.logger.WarnContext(ctx, "get tenant failed", "error", err, "request_id", requestID, "tenant_id", tenantID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toTenantDetailsResponse(tenant, members))
}

// HandleUpdate renames a tenant.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	principal := middleware.Principal(ctx)

	tenantID, err := id.ParseTenantID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid tenant id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateTenantRequest](w, r, h.logger)
	if !ok {
		return
	}

	tenant, err := h.service.Update(ctx, principal, tenantID, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "update tenant failed", "error", err, "request_id", requestID, "tenant_id", tenantID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toTenantResponse(tenant))
}

// HandleDelete removes a tenant and all of its users.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	principal := middleware.Principal(ctx)

	tenantID, err := id.ParseTenantID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid tenant id"))
		return
	}

	if err := h.service.Delete(ctx, principal, tenantID); err != nil {
		h.logger.WarnContext(ctx, "delete tenant failed", "error", err, "request_id", requestID, "tenant_id", tenantID)
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
