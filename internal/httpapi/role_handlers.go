package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"buildsmart.in/internal/auth"
)

// handleRoleResource serves read-only projections of the role catalog:
// /api/roles/{role}, /api/roles/{role}/navigation, /api/roles/{role}/widgets.
func (a *API) handleRoleResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requireIdentity(w, r); !ok {
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/roles/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.SplitN(path, "/", 2)

	role, err := auth.ParseRole(parts[0])
	if err != nil {
		writeError(w, r, http.StatusNotFound, "unknown role")
		return
	}

	if len(parts) == 1 {
		def, err := auth.Definition(role)
		if err != nil {
			writeError(w, r, http.StatusNotFound, "unknown role")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"role":    string(role),
			"definition": map[string]any{
				"title":           def.Title,
				"description":     def.Description,
				"dashboardType":   def.DashboardType,
				"permissions":     def.Permissions,
				"navigationItems": def.NavigationItems,
				"widgets":         def.Widgets,
			},
		})
		return
	}

	switch parts[1] {
	case "navigation":
		items, err := auth.NavigationItems(role)
		if err != nil {
			a.handleRoleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"role":       string(role),
			"navigation": items,
		})
	case "widgets":
		widgets, err := auth.DashboardWidgets(role)
		if err != nil {
			a.handleRoleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"role":    string(role),
			"widgets": widgets,
		})
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleRoleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, auth.ErrUnknownRole) {
		writeError(w, r, http.StatusNotFound, "unknown role")
		return
	}
	writeError(w, r, http.StatusInternalServerError, "internal error")
}
