package service

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"clavis/internal/auth/token"
	"clavis/internal/sentinel"
	dErrors "clavis/pkg/domain-errors"
)

// Error constructors keep the externally visible taxonomy in one place.
// Messages are deliberately generic where detail would leak information:
// invalid credentials never says whether the email or the password failed.

func errInvalidCredentials() error {
	return dErrors.New(dErrors.CodeUnauthorized, "incorrect email or password")
}

func errInactiveUser() error {
	return dErrors.New(dErrors.CodeForbidden, "user account is inactive")
}

func errEmailTaken() error {
	return dErrors.New(dErrors.CodeConflict, "email already registered")
}

// errMalformedSubject covers a structurally valid token whose subject is
// absent or not a well-formed UUID. Externally it is indistinguishable from
// any other invalid token.
func errMalformedSubject() error {
	return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
}

// wrapTokenErr translates codec errors into domain errors. Expired and
// invalid stay distinguishable by message so clients know when a refresh is
// worth attempting; both map to an unauthorized transport signal.
func wrapTokenErr(err error) error {
	switch {
	case errors.Is(err, token.ErrExpired):
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, "token expired")
	case errors.Is(err, token.ErrInvalid):
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "token handling failed")
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, sentinel.ErrAlreadyUsed)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
