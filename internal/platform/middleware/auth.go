package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"clavis/internal/user/models"
	dErrors "clavis/pkg/domain-errors"
	"clavis/pkg/httputil"
)

// PrincipalResolver turns a bearer access token into the user it belongs
// to. Implemented by the auth service.
type PrincipalResolver interface {
	ResolveActive(ctx context.Context, tokenString string) (*models.User, error)
}

type principalKey struct{}

// Principal retrieves the authenticated user from the context. Returns nil
// outside of RequireAuth-protected routes.
func Principal(ctx context.Context) *models.User {
	if user, ok := ctx.Value(principalKey{}).(*models.User); ok {
		return user
	}
	return nil
}

// WithPrincipal stores a user in the context. Exposed for handler tests.
func WithPrincipal(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, principalKey{}, user)
}

// RequireAuth authenticates the request with the Authorization header. The
// resolved user is stored in the request context for handlers downstream.
// Requests with a missing, malformed, expired, or revoked-subject token get
// a 401; tokens of deactivated users get a 403.
func RequireAuth(resolver PrincipalResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			user, err := resolver.ResolveActive(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - token rejected",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, user)))
		})
	}
}
