package service

import (
	"context"

	"clavis/internal/auth/token"
	usermodels "clavis/internal/user/models"
	id "clavis/pkg/domain"
	dErrors "clavis/pkg/domain-errors"
)

// Resolve recovers the calling principal from a presented access token.
// The user record is re-fetched on every call - there is no caching - so a
// deactivation or tenant reassignment takes effect on the very next request.
func (s *Service) Resolve(ctx context.Context, tokenString string) (*usermodels.User, error) {
	claims, err := s.codec.Parse(tokenString, token.KindAccess)
	if err != nil {
		return nil, wrapTokenErr(err)
	}

	subject, err := id.ParseUserID(claims.Subject)
	if err != nil || subject.IsNil() {
		return nil, errMalformedSubject()
	}

	user, err := s.users.FindByID(ctx, subject)
	if err != nil {
		if isNotFound(err) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve principal")
	}
	return user, nil
}

// ResolveActive resolves the principal and additionally rejects deactivated
// accounts. Every state-mutating operation must go through this check.
func (s *Service) ResolveActive(ctx context.Context, tokenString string) (*usermodels.User, error) {
	user, err := s.Resolve(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, errInactiveUser()
	}
	return user, nil
}
