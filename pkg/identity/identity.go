// Package identity carries the authenticated caller through a request context.
// Identities are issued by an external provider; this package only reads them.
package identity

import (
	"context"
	"slices"

	apperrors "stowaway/pkg/errors"
)

type Identity struct {
	UserID  string
	IsAdmin bool
}

func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// CanAccess reports whether i may act on a resource owned by ownerID.
func (i Identity) CanAccess(ownerID string) bool {
	if !i.Authenticated() {
		return false
	}
	return i.IsAdmin || i.UserID == ownerID
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the caller, or the zero Identity for anonymous requests.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(contextKey{}).(Identity)
	return id
}

// Require returns the caller or an Unauthorized error.
func Require(ctx context.Context) (Identity, error) {
	id := FromContext(ctx)
	if !id.Authenticated() {
		return Identity{}, apperrors.Unauthorized("Authentication required")
	}
	return id, nil
}

// RequireAdmin returns the caller when it is an administrator.
func RequireAdmin(ctx context.Context) (Identity, error) {
	id, err := Require(ctx)
	if err != nil {
		return Identity{}, err
	}
	if !id.IsAdmin {
		return Identity{}, apperrors.AccessDenied()
	}
	return id, nil
}

// Resolver decides whether a subject is an administrator.
type Resolver struct {
	adminRole    string
	adminUserIDs []string
}

func NewResolver(adminRole string, adminUserIDs []string) *Resolver {
	return &Resolver{adminRole: adminRole, adminUserIDs: adminUserIDs}
}

func (r *Resolver) Resolve(subject string, roles []string) Identity {
	isAdmin := slices.Contains(r.adminUserIDs, subject)
	if !isAdmin && r.adminRole != "" {
		isAdmin = slices.Contains(roles, r.adminRole)
	}
	return Identity{UserID: subject, IsAdmin: isAdmin}
}
