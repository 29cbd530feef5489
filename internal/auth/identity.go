package auth

import (
	"context"
	"time"
)

// Identity is the authenticated principal reconstructed from a verified token
// or returned by login. Its role and permission copies reflect the credential
// record as of token issuance, not necessarily the current record.
type Identity struct {
	ID          string       `json:"id"`
	Name        string       `json:"name,omitempty"`
	Email       string       `json:"email"`
	Role        Role         `json:"role"`
	Site        string       `json:"site,omitempty"`
	Avatar      string       `json:"avatar,omitempty"`
	Permissions []Permission `json:"permissions"`
	TokenExpiry time.Time    `json:"tokenExpiry,omitempty"`
}

// HasPermission reports whether the identity carries the permission.
func (id Identity) HasPermission(p Permission) bool {
	return HasPermission(id.Permissions, p)
}

// IsRole reports whether the identity holds any of the given roles.
func (id Identity) IsRole(roles ...Role) bool {
	for _, r := range roles {
		if id.Role == r {
			return true
		}
	}
	return false
}

type identityContextKey struct{}
type tokenContextKey struct{}

// ContextWithIdentity attaches the authenticated identity to the context.
// Absence of an identity marks the request as anonymous.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, &identity)
}

// IdentityFromContext extracts the authenticated identity from the context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	v, ok := ctx.Value(identityContextKey{}).(*Identity)
	if !ok || v == nil {
		return Identity{}, false
	}
	return *v, true
}

// ContextWithToken stores the raw bearer token inside the context.
func ContextWithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext returns the bearer token if it was previously attached.
func TokenFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(tokenContextKey{}).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
