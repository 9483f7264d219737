// Package service implements tenant lifecycle management. All operations
// are restricted to superusers by the authorization policy.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"clavis/internal/auth/policy"
	"clavis/internal/sentinel"
	"clavis/internal/tenant/models"
	usermodels "clavis/internal/user/models"
	id "clavis/pkg/domain"
	dErrors "clavis/pkg/domain-errors"
)

// TenantStore defines the persistence interface for tenants. Find methods
// return sentinel.ErrNotFound (wrapped) on a miss; Create/Update return
// sentinel.ErrAlreadyUsed on a name collision.
type TenantStore interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error)
	FindByName(ctx context.Context, name string) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	Delete(ctx context.Context, tenantID id.TenantID) error
	List(ctx context.Context, offset, limit int) ([]*models.Tenant, error)
}

// UserStore exposes the member operations the tenant service needs for
// membership listing and cascade deletion.
type UserStore interface {
	FindByTenant(ctx context.Context, tenantID id.TenantID) ([]*usermodels.User, error)
	DeleteByTenant(ctx context.Context, tenantID id.TenantID) (int, error)
}

// Service orchestrates tenant management.
type Service struct {
	tenants TenantStore
	users   UserStore
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithNow overrides the service clock for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the tenant management service.
func NewService(tenants TenantStore, users UserStore, opts ...Option) *Service {
	s := &Service{
		tenants: tenants,
		users:   users,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Create adds a tenant with a unique name.
func (s *Service) Create(ctx context.Context, principal *usermodels.User, name string) (*models.Tenant, error) {
	if err := policy.Decide(principal, policy.ActionCreateTenant, policy.Target{}); err != nil {
		return nil, err
	}

	tenant, err := models.New(id.NewTenantID(), name, s.now())
	if err != nil {
		return nil, err
	}

	if _, err := s.tenants.FindByName(ctx, tenant.Name); err == nil {
		return nil, errTenantNameTaken
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create tenant")
	}

	if err := s.tenants.Create(ctx, tenant); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, errTenantNameTaken
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create tenant")
	}

	s.logger.InfoContext(ctx, "tenant created",
		"tenant_id", tenant.ID.String(),
		"created_by", principal.ID.String(),
	)
	return tenant, nil
}

// Get returns a tenant together with its member users. The two reads are
// independent and run concurrently.
func (s *Service) Get(ctx context.Context, principal *usermodels.User, tenantID id.TenantID) (*models.Tenant, []*usermodels.User, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, nil, err
	}
	if err := policy.Decide(principal, policy.ActionReadTenant, policy.Target{}); err != nil {
		return nil, nil, err
	}

	var (
		tenant  *models.Tenant
		members []*usermodels.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tenants.FindByID(gctx, tenantID)
		if err != nil {
			return wrapTenantErr(err)
		}
		tenant = t
		return nil
	})
	g.Go(func() error {
		u, err := s.users.FindByTenant(gctx, tenantID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tenant users")
		}
		members = u
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return tenant, members, nil
}

// List returns tenants with pagination.
func (s *Service) List(ctx context.Context, principal *usermodels.User, offset, limit int) ([]*models.Tenant, error) {
	if err := policy.Decide(principal, policy.ActionListTenants, policy.Target{}); err != nil {
		return nil, err
	}
	offset, limit = clampPage(offset, limit)
	tenants, err := s.tenants.List(ctx, offset, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tenants")
	}
	return tenants, nil
}

// Update renames a tenant.
func (s *Service) Update(ctx context.Context, principal *usermodels.User, tenantID id.TenantID, name string) (*models.Tenant, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	if err := policy.Decide(principal, policy.ActionUpdateTenant, policy.Target{}); err != nil {
		return nil, err
	}

	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, wrapTenantErr(err)
	}
	if err := tenant.Rename(name, s.now()); err != nil {
		return nil, err
	}

	if other, err := s.tenants.FindByName(ctx, tenant.Name); err == nil && other.ID != tenant.ID {
		return nil, errTenantNameTaken
	} else if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update tenant")
	}

	if err := s.tenants.Update(ctx, tenant); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, errTenantNameTaken
		}
		return nil, wrapTenantErr(err)
	}

	s.logger.InfoContext(ctx, "tenant updated",
		"tenant_id", tenant.ID.String(),
		"updated_by", principal.ID.String(),
	)
	return tenant, nil
}

// Delete removes a tenant and every user that belongs to it. Members are
// removed first so a failure partway leaves no orphaned users pointing at a
// missing tenant.
func (s *Service) Delete(ctx context.Context, principal *usermodels.User, tenantID id.TenantID) error {
	if err := requireTenantID(tenantID); err != nil {
		return err
	}
	if err := policy.Decide(principal, policy.ActionDeleteTenant, policy.Target{}); err != nil {
		return err
	}

	if _, err := s.tenants.FindByID(ctx, tenantID); err != nil {
		return wrapTenantErr(err)
	}

	removed, err := s.users.DeleteByTenant(ctx, tenantID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete tenant users")
	}

	if err := s.tenants.Delete(ctx, tenantID); err != nil {
		return wrapTenantErr(err)
	}

	s.logger.InfoContext(ctx, "tenant deleted",
		"tenant_id", tenantID.String(),
		"users_removed", removed,
		"deleted_by", principal.ID.String(),
	)
	return nil
}

const (
	defaultPageLimit = 100
	maxPageLimit     = 200
)

func clampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return offset, limit
}

var errTenantNameTaken = dErrors.New(dErrors.CodeConflict, "tenant name already in use")

func requireTenantID(tenantID id.TenantID) error {
	if tenantID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "tenant ID required")
	}
	return nil
}

func wrapTenantErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "tenant not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "tenant operation failed")
}
