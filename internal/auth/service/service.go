// Package service orchestrates the authentication workflows: login,
// registration, refresh and principal resolution. Each invocation is a
// stateless unit of work; the only shared mutable resource is the store.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	authmetrics "clavis/internal/auth/metrics"
	"clavis/internal/auth/password"
	"clavis/internal/auth/token"
	tenantmodels "clavis/internal/tenant/models"
	usermodels "clavis/internal/user/models"
	id "clavis/pkg/domain"
	dErrors "clavis/pkg/domain-errors"
)

// UserStore defines the persistence interface the auth workflows need.
// Error Contract: Find methods return sentinel.ErrNotFound (wrapped) when
// the entity doesn't exist; Create returns sentinel.ErrAlreadyUsed on an
// email collision.
type UserStore interface {
	Create(ctx context.Context, user *usermodels.User) error
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
	FindByEmail(ctx context.Context, email string) (*usermodels.User, error)
}

// TenantFinder validates tenant references during registration.
type TenantFinder interface {
	FindByID(ctx context.Context, tenantID id.TenantID) (*tenantmodels.Tenant, error)
}

// TokenCodec issues and parses bearer tokens.
type TokenCodec interface {
	IssueAccess(subject id.UserID) (string, error)
	IssueRefresh(subject id.UserID) (string, error)
	Parse(tokenString string, expected token.Kind) (*token.Claims, error)
}

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, storedHash string) bool
}

// TokenPair is the credential pair handed to a client after login or refresh.
type TokenPair struct {
	Access  string
	Refresh string
}

// Service implements the authentication workflows.
type Service struct {
	users   UserStore
	tenants TenantFinder
	codec   TokenCodec
	hasher  PasswordHasher
	logger  *slog.Logger
	metrics *authmetrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *authmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithNow overrides the service clock for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the auth workflows. Stores, codec and hasher are
// required; logger and metrics are optional.
func NewService(users UserStore, tenants TenantFinder, codec TokenCodec, hasher PasswordHasher, opts ...Option) *Service {
	s := &Service{
		users:   users,
		tenants: tenants,
		codec:   codec,
		hasher:  hasher,
		now:     time.Now,
		tracer:  otel.Tracer("clavis/auth"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Login authenticates the email/password pair and issues a token pair.
// Unknown email and wrong password produce the same error so the response
// does not reveal which emails are registered; a deactivated account is a
// distinct outcome since the credentials were known-valid.
func (s *Service) Login(ctx context.Context, email, plaintext string) (*TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "auth.login")
	var err error
	defer func() { endSpan(span, err) }()

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.LoginDurationMs.Observe(float64(time.Since(start).Milliseconds()))
		}
	}()

	email = usermodels.NormalizeEmail(email)

	user, findErr := s.users.FindByEmail(ctx, email)
	if findErr != nil {
		if isNotFound(findErr) {
			// Burn the same bcrypt work as a real verification so response
			// timing does not distinguish unknown emails.
			s.hasher.Verify(plaintext, password.DummyHash)
			s.authFailure(ctx, "unknown_email")
			err = errInvalidCredentials()
			return nil, err
		}
		err = dErrors.Wrap(findErr, dErrors.CodeInternal, "login failed")
		return nil, err
	}

	if !s.hasher.Verify(plaintext, user.PasswordHash) {
		s.authFailure(ctx, "wrong_password", "user_id", user.ID.String())
		err = errInvalidCredentials()
		return nil, err
	}

	if !user.Active {
		s.authFailure(ctx, "inactive_user", "user_id", user.ID.String())
		err = errInactiveUser()
		return nil, err
	}

	pair, issueErr := s.issuePair(user.ID)
	if issueErr != nil {
		err = issueErr
		return nil, err
	}

	s.logger.InfoContext(ctx, "login succeeded", "user_id", user.ID.String())
	if s.metrics != nil {
		s.metrics.Logins.Inc()
	}
	return pair, nil
}

// RegisterCommand carries the registration input. TenantID may be the nil
// UUID for users that belong to no tenant.
type RegisterCommand struct {
	Email    string
	Password string
	FullName string
	TenantID id.TenantID
}

// Register creates a new user. The email pre-check gives a friendly
// conflict without hitting the unique index, but the store's uniqueness
// violation remains the authoritative outcome when registrations race.
// No token is issued; registration and login are separate flows.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*usermodels.User, error) {
	ctx, span := s.tracer.Start(ctx, "auth.register")
	var err error
	defer func() { endSpan(span, err) }()

	email := usermodels.NormalizeEmail(cmd.Email)
	if err = usermodels.ValidateEmail(email); err != nil {
		return nil, err
	}
	if len(cmd.Password) < minPasswordLength {
		err = dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
		return nil, err
	}

	if _, findErr := s.users.FindByEmail(ctx, email); findErr == nil {
		err = errEmailTaken()
		return nil, err
	} else if !isNotFound(findErr) {
		err = dErrors.Wrap(findErr, dErrors.CodeInternal, "registration failed")
		return nil, err
	}

	if !cmd.TenantID.IsNil() {
		if _, findErr := s.tenants.FindByID(ctx, cmd.TenantID); findErr != nil {
			if isNotFound(findErr) {
				err = dErrors.New(dErrors.CodeNotFound, "tenant not found")
				return nil, err
			}
			err = dErrors.Wrap(findErr, dErrors.CodeInternal, "registration failed")
			return nil, err
		}
	}

	hash, hashErr := s.hasher.Hash(cmd.Password)
	if hashErr != nil {
		err = hashErr
		return nil, err
	}

	user, newErr := usermodels.New(id.NewUserID(), email, hash, s.now())
	if newErr != nil {
		err = newErr
		return nil, err
	}
	user.FullName = cmd.FullName
	user.TenantID = cmd.TenantID

	if createErr := s.users.Create(ctx, user); createErr != nil {
		if isConflict(createErr) {
			// The pre-check raced; the store's unique index is the arbiter.
			err = errEmailTaken()
			return nil, err
		}
		err = dErrors.Wrap(createErr, dErrors.CodeInternal, "failed to create user")
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID.String())
	if s.metrics != nil {
		s.metrics.Registrations.Inc()
	}
	return user, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// presented refresh token is returned unchanged: refresh is not single-use
// and does not invalidate prior tokens.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	_, span := s.tracer.Start(ctx, "auth.refresh")
	var err error
	defer func() { endSpan(span, err) }()

	claims, parseErr := s.codec.Parse(refreshToken, token.KindRefresh)
	if parseErr != nil {
		err = wrapTokenErr(parseErr)
		return nil, err
	}

	subject, parseIDErr := id.ParseUserID(claims.Subject)
	if parseIDErr != nil || subject.IsNil() {
		err = errMalformedSubject()
		return nil, err
	}

	access, issueErr := s.codec.IssueAccess(subject)
	if issueErr != nil {
		err = dErrors.Wrap(issueErr, dErrors.CodeInternal, "failed to issue access token")
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TokenRefreshes.Inc()
		s.metrics.TokensIssued.WithLabelValues(string(token.KindAccess)).Inc()
	}
	return &TokenPair{Access: access, Refresh: refreshToken}, nil
}

const minPasswordLength = 8

func (s *Service) issuePair(userID id.UserID) (*TokenPair, error) {
	access, err := s.codec.IssueAccess(userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	refresh, err := s.codec.IssueRefresh(userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue refresh token")
	}
	if s.metrics != nil {
		s.metrics.TokensIssued.WithLabelValues(string(token.KindAccess)).Inc()
		s.metrics.TokensIssued.WithLabelValues(string(token.KindRefresh)).Inc()
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *Service) authFailure(ctx context.Context, reason string, attrs ...any) {
	args := append([]any{"reason", reason}, attrs...)
	s.logger.WarnContext(ctx, "authentication failure", args...)
	if s.metrics != nil {
		s.metrics.LoginFailures.WithLabelValues(reason).Inc()
	}
}
