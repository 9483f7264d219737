// Package policy holds the stateless permission decision for the service.
// Only superusers manage tenants and users other than themselves; any active
// user may read and update their own profile but not their own privilege or
// tenant linkage.
package policy

import (
	usermodels "clavis/internal/user/models"
	id "clavis/pkg/domain"
	dErrors "clavis/pkg/domain-errors"
)

// Action names a requested operation.
type Action string

const (
	ActionCreateUser Action = "user.create"
	ActionReadUser   Action = "user.read"
	ActionUpdateUser Action = "user.update"
	ActionDeleteUser Action = "user.delete"
	ActionListUsers  Action = "user.list"

	ActionCreateTenant Action = "tenant.create"
	ActionReadTenant   Action = "tenant.read"
	ActionUpdateTenant Action = "tenant.update"
	ActionDeleteTenant Action = "tenant.delete"
	ActionListTenants  Action = "tenant.list"
)

// Target identifies what the action applies to. UserID is set for
// user-scoped actions. Elevates marks an update that touches the superuser
// flag or the tenant reference; self-service updates may never elevate.
type Target struct {
	UserID   id.UserID
	Elevates bool
}

// SelfTarget is a convenience constructor for user-scoped targets.
func SelfTarget(userID id.UserID) Target {
	return Target{UserID: userID}
}

// Decide evaluates (principal, action, target) and returns nil when the
// action is allowed or a forbidden domain error when it is not. Rules are
// evaluated in precedence order, first match wins:
//
//  1. superuser principals may do anything;
//  2. a principal may read and update their own profile, except that
//     changing their own superuser flag or tenant reference falls through
//     to rule 1;
//  3. everything else is denied.
//
// The denial message deliberately does not say which rule failed.
func Decide(principal *usermodels.User, action Action, target Target) error {
	if principal == nil {
		return deny()
	}
	if principal.Superuser {
		return nil
	}

	switch action {
	case ActionReadUser, ActionUpdateUser:
		if !target.UserID.IsNil() && target.UserID == principal.ID && !target.Elevates {
			return nil
		}
	}

	return deny()
}

func deny() error {
	return dErrors.New(dErrors.CodeForbidden, "insufficient privilege")
}
