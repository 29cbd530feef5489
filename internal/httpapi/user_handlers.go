package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"buildsmart.in/internal/audit"
	"buildsmart.in/internal/auth"
)

type updateUserRequest struct {
	Name        *string            `json:"name"`
	Avatar      *string            `json:"avatar"`
	Phone       *string            `json:"phone"`
	Site        *string            `json:"site"`
	Department  *string            `json:"department"`
	EmployeeID  *string            `json:"employeeId"`
	Role        *string            `json:"role"`
	Permissions *[]auth.Permission `json:"permissions"`
	IsActive    *bool              `json:"isActive"`
}

type updatePermissionsRequest struct {
	Permissions []auth.Permission `json:"permissions"`
}

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requireRole(w, r, auth.RoleAdmin, auth.RoleProjectManager); !ok {
		return
	}

	var filter auth.UserFilter
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("role")); raw != "" {
		role := auth.Role(raw)
		filter.Role = &role
	}
	filter.Site = strings.TrimSpace(q.Get("site"))
	if raw := strings.TrimSpace(q.Get("isActive")); raw != "" {
		active := raw == "true"
		filter.IsActive = &active
	}
	filter.Search = strings.TrimSpace(q.Get("search"))

	users, err := a.users.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(users),
		"users":   users,
	})
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/users/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if path == "stats/summary" {
		a.userStats(w, r)
		return
	}
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1:
		id := parts[0]
		switch r.Method {
		case http.MethodGet:
			a.getUser(w, r, id)
		case http.MethodPut:
			a.updateUser(w, r, id)
		case http.MethodDelete:
			a.deactivateUser(w, r, id)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
		}
	case len(parts) == 2 && parts[1] == "permissions":
		if r.Method != http.MethodPut {
			methodNotAllowed(w, r, http.MethodPut)
			return
		}
		a.updateUserPermissions(w, r, parts[0])
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request, id string) {
	identity, ok := a.requireIdentity(w, r)
	if !ok {
		return
	}
	// Own profile, or anyone when Admin.
	if identity.ID != id && identity.Role != auth.RoleAdmin {
		writeError(w, r, http.StatusForbidden, "Unauthorized to view this user")
		return
	}
	user, err := a.users.FindByID(r.Context(), id)
	if err != nil {
		a.handleUserStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

// updateUser applies a partial update. Non-admin callers may only touch their
// own record and their privileged fields (role, permissions, isActive) are
// silently dropped, matching the coarse self-service contract. The password
// is never updatable through this endpoint.
func (a *API) updateUser(w http.ResponseWriter, r *http.Request, id string) {
	identity, ok := a.requireIdentity(w, r)
	if !ok {
		return
	}
	if identity.ID != id && identity.Role != auth.RoleAdmin {
		writeError(w, r, http.StatusForbidden, "Unauthorized to update this user")
		return
	}

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	isAdmin := identity.Role == auth.RoleAdmin
	if !isAdmin {
		req.Role = nil
		req.Permissions = nil
		req.IsActive = nil
	}

	user, err := a.users.FindByID(r.Context(), id)
	if err != nil {
		a.handleUserStoreError(w, r, err)
		return
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Site != nil {
		user.Site = *req.Site
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	if req.EmployeeID != nil {
		user.EmployeeID = *req.EmployeeID
	}
	if req.Role != nil {
		role, err := auth.ParseRole(*req.Role)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "unknown role")
			return
		}
		user.Role = role
	}
	if req.Permissions != nil {
		user.Permissions = *req.Permissions
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedAt = time.Now().UTC()

	if err := a.users.Update(r.Context(), user); err != nil {
		a.handleUserStoreError(w, r, err)
		return
	}
	if isAdmin && identity.ID != id {
		_ = audit.LogEvent(r.Context(), "users.update", map[string]any{
			"user_id": id,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

// deactivateUser is the soft delete: Admin only, never hard-removes the
// record, and an Admin cannot deactivate their own account.
func (a *API) deactivateUser(w http.ResponseWriter, r *http.Request, id string) {
	identity, ok := a.requireRole(w, r, auth.RoleAdmin)
	if !ok {
		return
	}
	if identity.ID == id {
		writeError(w, r, http.StatusBadRequest, "Cannot deactivate your own account")
		return
	}

	user, err := a.users.FindByID(r.Context(), id)
	if err != nil {
		a.handleUserStoreError(w, r, err)
		return
	}
	user.IsActive = false
	user.UpdatedAt = time.Now().UTC()
	if err := a.users.Update(r.Context(), user); err != nil {
		a.handleUserStoreError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "users.deactivate", map[string]any{
		"user_id": id,
		"email":   user.Email,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User deactivated successfully",
		"user":    user,
	})
}

func (a *API) updateUserPermissions(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := a.requireRole(w, r, auth.RoleAdmin); !ok {
		return
	}

	var req updatePermissionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Permissions == nil {
		writeError(w, r, http.StatusBadRequest, "Permissions must be an array")
		return
	}

	user, err := a.users.FindByID(r.Context(), id)
	if err != nil {
		a.handleUserStoreError(w, r, err)
		return
	}
	user.Permissions = req.Permissions
	user.UpdatedAt = time.Now().UTC()
	if err := a.users.Update(r.Context(), user); err != nil {
		a.handleUserStoreError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "users.permissions.update", map[string]any{
		"user_id": id,
		"count":   len(req.Permissions),
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Permissions updated successfully",
		"user":    user,
	})
}

func (a *API) userStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requireRole(w, r, auth.RoleAdmin, auth.RoleProjectManager); !ok {
		return
	}

	users, err := a.users.List(r.Context(), auth.UserFilter{})
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to fetch statistics")
		return
	}
	active := 0
	byRole := make(map[string]int)
	for _, u := range users {
		if u.IsActive {
			active++
		}
		byRole[string(u.Role)]++
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats": map[string]any{
			"total":    len(users),
			"active":   active,
			"inactive": len(users) - active,
			"byRole":   byRole,
		},
	})
}

func (a *API) handleUserStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "User not found")
	case errors.Is(err, auth.ErrAlreadyExists):
		writeErrorCode(w, r, http.StatusConflict, "User already exists", "USER_EXISTS")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
