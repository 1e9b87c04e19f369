package auth

import (
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal"
)

// The guard functions are pure checks: they touch no state and run at the
// start of every mutation before anything is loaded or written.
//
// Cross-org access is reported as not-found rather than forbidden so a
// caller cannot probe which ids exist in other organizations.

// RequireRole fails when the actor is missing, belongs to a different org,
// or ranks below minRole.
func RequireRole(actor *Actor, minRole Role, orgID int64) error {
	if actor == nil {
		return internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken)
	}
	if actor.OrgID != orgID {
		return internal.ErrReportNotFound
	}
	if !actor.Role.AtLeast(minRole) {
		return internal.ErrInsufficientRole
	}
	return nil
}

// RequireOwnershipOrManager passes for the resource author and for any
// manager or admin of the same org. This is the rule that lets authors edit
// their own reports and lets managers act on others'.
func RequireOwnershipOrManager(actor *Actor, resourceAuthorID, orgID int64) error {
	if actor == nil {
		return internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken)
	}
	if actor.OrgID != orgID {
		return internal.ErrReportNotFound
	}
	if actor.ID == resourceAuthorID {
		return nil
	}
	if actor.Role.AtLeast(RoleManager) {
		return nil
	}
	return internal.ErrInsufficientRole
}
