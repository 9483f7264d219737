// Package service implements administrative user management. Every
// operation takes the acting principal and consults the authorization
// policy before touching the store.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"clavis/internal/auth/policy"
	"clavis/internal/sentinel"
	tenantmodels "clavis/internal/tenant/models"
	"clavis/internal/user/models"
	id "clavis/pkg/domain"
	dErrors "clavis/pkg/domain-errors"
)

// UserStore defines the persistence interface for user management.
// Error Contract: Find methods return sentinel.ErrNotFound (wrapped) when
// the entity doesn't exist; Create/Update return sentinel.ErrAlreadyUsed on
// an email collision.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID id.UserID) error
	List(ctx context.Context, offset, limit int) ([]*models.User, error)
}

// TenantFinder validates tenant references on create and reassignment.
type TenantFinder interface {
	FindByID(ctx context.Context, tenantID id.TenantID) (*tenantmodels.Tenant, error)
}

// PasswordHasher hashes replacement passwords; plaintext never reaches the
// store.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// Service orchestrates user lifecycle management.
type Service struct {
	users   UserStore
	tenants TenantFinder
	hasher  PasswordHasher
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

// NewService wires the user management service.
func NewService(users UserStore, tenants TenantFinder, hasher PasswordHasher, opts ...Option) *Service {
	s := &Service{
		users:   users,
		tenants: tenants,
		hasher:  hasher,
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

// CreateCommand carries administrative user creation input. Unlike public
// registration it may set the superuser flag directly.
type CreateCommand struct {
	Email     string
	Password  string
	FullName  string
	Superuser bool
	TenantID  id.TenantID
}

// Create adds a user on behalf of an administrator.
func (s *Service) Create(ctx context.Context, principal *models.User, cmd CreateCommand) (*models.User, error) {
	if err := policy.Decide(principal, policy.ActionCreateUser, policy.Target{}); err != nil {
		return nil, err
	}

	email := models.NormalizeEmail(cmd.Email)
	if err := models.ValidateEmail(email); err != nil {
		return nil, err
	}
	if cmd.Password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "password cannot be empty")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	if !cmd.TenantID.IsNil() {
		if err := s.requireTenant(ctx, cmd.TenantID); err != nil {
			return nil, err
		}
	}

	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, err
	}

	user, err := models.New(id.NewUserID(), email, hash, s.now())
	if err != nil {
		return nil, err
	}
	user.FullName = cmd.FullName
	user.Superuser = cmd.Superuser
	user.TenantID = cmd.TenantID

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.logger.InfoContext(ctx, "user created",
		"user_id", user.ID.String(),
		"created_by", principal.ID.String(),
	)
	return user, nil
}

// Get returns a user. Superusers may read anyone; others only themselves.
func (s *Service) Get(ctx context.Context, principal *models.User, userID id.UserID) (*models.User, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	if err := policy.Decide(principal, policy.ActionReadUser, policy.SelfTarget(userID)); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	return user, nil
}

// List returns users with pagination. Superuser only.
func (s *Service) List(ctx context.Context, principal *models.User, offset, limit int) ([]*models.User, error) {
	if err := policy.Decide(principal, policy.ActionListUsers, policy.Target{}); err != nil {
		return nil, err
	}
	offset, limit = clampPage(offset, limit)
	users, err := s.users.List(ctx, offset, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

// UpdateCommand is an explicit patch: only present fields are applied.
// Password, when present, goes through the hasher; it is never assigned
// directly. A present TenantID with the nil UUID clears the tenant link.
type UpdateCommand struct {
	Email     *string
	Password  *string
	FullName  *string
	Active    *bool
	Superuser *bool
	TenantID  *id.TenantID
}

// elevates reports whether the patch would change the target's superuser
// flag or tenant reference - the two fields a user may never change on
// themselves.
func (cmd UpdateCommand) elevates(current *models.User) bool {
	if cmd.Superuser != nil && *cmd.Superuser != current.Superuser {
		return true
	}
	if cmd.TenantID != nil && *cmd.TenantID != current.TenantID {
		return true
	}
	return false
}

// Update applies a patch to a user. Superusers may update anyone; a regular
// user may update their own profile but not their own privilege or tenant
// linkage.
func (s *Service) Update(ctx context.Context, principal *models.User, userID id.UserID, cmd UpdateCommand) (*models.User, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err)
	}

	target := policy.Target{UserID: userID, Elevates: cmd.elevates(user)}
	if err := policy.Decide(principal, policy.ActionUpdateUser, target); err != nil {
		return nil, err
	}

	if cmd.Email != nil {
		email := models.NormalizeEmail(*cmd.Email)
		if err := models.ValidateEmail(email); err != nil {
			return nil, err
		}
		if other, err := s.users.FindByEmail(ctx, email); err == nil && other.ID != user.ID {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
		}
		user.Email = email
	}
	if cmd.Password != nil {
		hash, err := s.hasher.Hash(*cmd.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if cmd.FullName != nil {
		user.FullName = *cmd.FullName
	}
	if cmd.Active != nil {
		user.Active = *cmd.Active
	}
	if cmd.Superuser != nil {
		user.Superuser = *cmd.Superuser
	}
	if cmd.TenantID != nil {
		if !cmd.TenantID.IsNil() {
			if err := s.requireTenant(ctx, *cmd.TenantID); err != nil {
				return nil, err
			}
		}
		user.TenantID = *cmd.TenantID
	}
	user.UpdatedAt = s.now()

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, wrapUserErr(err)
	}

	s.logger.InfoContext(ctx, "user updated",
		"user_id", user.ID.String(),
		"updated_by", principal.ID.String(),
	)
	return user, nil
}

// Delete removes a user. Superuser only.
func (s *Service) Delete(ctx context.Context, principal *models.User, userID id.UserID) error {
	if err := requireUserID(userID); err != nil {
		return err
	}
	if err := policy.Decide(principal, policy.ActionDeleteUser, policy.Target{}); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return wrapUserErr(err)
	}
	s.logger.InfoContext(ctx, "user deleted",
		"user_id", userID.String(),
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

func requireUserID(userID id.UserID) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "user ID required")
	}
	return nil
}

func wrapUserErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "user operation failed")
}

func (s *Service) requireTenant(ctx context.Context, tenantID id.TenantID) error {
	if _, err := s.tenants.FindByID(ctx, tenantID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "tenant not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to validate tenant")
	}
	return nil
}
