package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"buildsmart.in/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// withAuth reconstructs the identity from the bearer token. A missing or
// malformed token marks the request anonymous and lets it continue; routes
// that need an identity reject later through requireRole/requirePermission.
// An expired token is the one verification failure rejected here, with its
// own code, so clients can prompt re-login instead of degrading to anonymous.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := extractBearerToken(r.Header.Get(authHeader))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := a.auth.VerifyToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				writeErrorCode(w, r, http.StatusUnauthorized, "Token expired", "TOKEN_EXPIRED")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		identity := auth.Identity{
			ID:          claims.Subject,
			Email:       claims.Email,
			Role:        claims.Role,
			Permissions: claims.Permissions,
		}
		if claims.ExpiresAt != nil {
			identity.TokenExpiry = claims.ExpiresAt.Time
		}
		ctx := auth.ContextWithIdentity(r.Context(), identity)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireIdentity rejects anonymous requests.
func (a *API) requireIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeErrorCode(w, r, http.StatusUnauthorized, "Authentication required", "AUTH_REQUIRED")
		return auth.Identity{}, false
	}
	return identity, true
}

// requireRole gates a route on role membership. Admin always passes.
func (a *API) requireRole(w http.ResponseWriter, r *http.Request, allowed ...auth.Role) (auth.Identity, bool) {
	identity, ok := a.requireIdentity(w, r)
	if !ok {
		return auth.Identity{}, false
	}
	if identity.Role == auth.RoleAdmin {
		return identity, true
	}
	if len(allowed) > 0 && !identity.IsRole(allowed...) {
		names := make([]string, len(allowed))
		for i, role := range allowed {
			names[i] = string(role)
		}
		writeErrorPayload(w, r, http.StatusForbidden, map[string]any{
			"error":         "Insufficient permissions",
			"code":          "FORBIDDEN",
			"requiredRoles": names,
			"userRole":      string(identity.Role),
		})
		return auth.Identity{}, false
	}
	return identity, true
}

// requirePermission gates a route on the identity holding every permission.
func (a *API) requirePermission(w http.ResponseWriter, r *http.Request, required ...auth.Permission) (auth.Identity, bool) {
	identity, ok := a.requireIdentity(w, r)
	if !ok {
		return auth.Identity{}, false
	}
	if !auth.HasAllPermissions(identity.Permissions, required) {
		writeErrorPayload(w, r, http.StatusForbidden, map[string]any{
			"error":    "Insufficient permissions",
			"code":     "PERMISSION_DENIED",
			"required": required,
			"current":  identity.Permissions,
		})
		return auth.Identity{}, false
	}
	return identity, true
}

func extractBearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" || !strings.HasPrefix(header, bearer) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", false
	}
	return token, true
}
