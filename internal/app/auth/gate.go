package auth

import (
	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
)

// Redirect targets of a denied request
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Requirement is the role a route demands
type Requirement struct {
	anyRole bool
	role    models.Role
}

// AnyRole admits every authenticated caller
func AnyRole() Requirement {
	return Requirement{anyRole: true}
}

// OnlyRole admits callers holding exactly role. Administrators are always admitted.
func OnlyRole(role models.Role) Requirement {
	return Requirement{role: role}
}

// String implements fmt.Stringer
func (r Requirement) String() string {
	if r.anyRole {
		return "any"
	}
	return string(r.role)
}

// DenyReason explains a denied request
type DenyReason string

const (
	ReasonNone                   DenyReason = ""
	ReasonAuthenticationRequired DenyReason = "authentication_required"
	ReasonPermissionDenied       DenyReason = "permission_denied"
)

// Decision is the outcome of Authorize
type Decision struct {
	Allowed  bool
	Reason   DenyReason
	Redirect string
}

// Err returns the error matching a denied decision, or nil
func (d Decision) Err() error {
	switch d.Reason {
	case ReasonAuthenticationRequired:
		return apperrors.ErrAuthenticationRequired
	case ReasonPermissionDenied:
		return apperrors.ErrPermissionDenied
	default:
		return nil
	}
}

// Authorize decides whether identity may enter a route guarded by req.
// A nil identity is an unauthenticated caller.
func Authorize(identity *models.Identity, req Requirement) Decision {
	if identity == nil {
		return Decision{Reason: ReasonAuthenticationRequired, Redirect: LoginPath}
	}

	// Administrators pass every role check
	if identity.Role == models.RoleAdmin || req.anyRole || identity.Role == req.role {
		return Decision{Allowed: true}
	}

	return Decision{Reason: ReasonPermissionDenied, Redirect: HomePath}
}
