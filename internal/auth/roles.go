package auth

import (
	"errors"
	"fmt"
	"strings"
)

// Role is one of the fixed set of site roles. The set is closed: roles are
// defined at build time and never created or destroyed at runtime.
type Role string

const (
	RoleAdmin          Role = "Admin"
	RoleProjectManager Role = "Project Manager"
	RoleSupervisor     Role = "Supervisor"
	RoleWorker         Role = "Worker"
)

// ErrUnknownRole indicates a role value outside the closed enum.
var ErrUnknownRole = errors.New("auth: unknown role")

// Roles lists every role in rank order, highest privilege first. The index in
// this slice is the role's rank: lower index means broader visibility.
var Roles = []Role{RoleAdmin, RoleProjectManager, RoleSupervisor, RoleWorker}

// RoleDefinition describes what a role sees and may do: its permission bundle
// plus the navigation items and dashboard widgets the frontend renders for it.
type RoleDefinition struct {
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	DashboardType   string       `json:"dashboardType"`
	Permissions     []Permission `json:"permissions"`
	NavigationItems []string     `json:"navigationItems"`
	Widgets         []string     `json:"widgets"`
}

var roleDefinitions = map[Role]RoleDefinition{
	RoleAdmin: {
		Title:         "Executive Dashboard",
		Description:   "Complete system oversight and control",
		DashboardType: "executive",
		Permissions: []Permission{
			PermViewBudget, PermManageUsers, PermApproveTasks, PermViewAllTasks,
			PermViewReports, PermViewSafety, PermTechnicalReview, PermAssignTasks,
			PermManageMaterials, PermManageWorkforce, PermSystemSettings,
		},
		NavigationItems: []string{"dashboard", "installation", "tasks", "materials", "workforce", "safety", "reports"},
		Widgets: []string{
			"ai_predictions", "budget_overview", "project_status", "team_analytics",
			"critical_tasks", "inventory_alerts", "safety_summary", "timeline",
		},
	},
	RoleProjectManager: {
		Title:         "Project Management Dashboard",
		Description:   "Planning, scheduling & comprehensive reporting",
		DashboardType: "management",
		Permissions: []Permission{
			PermViewBudget, PermApproveTasks, PermViewAllTasks, PermViewReports,
			PermViewSafety, PermAssignTasks, PermManageMaterials, PermManageWorkforce,
		},
		NavigationItems: []string{"dashboard", "installation", "tasks", "materials", "workforce", "safety", "reports"},
		Widgets: []string{
			"ai_predictions", "project_status", "team_analytics", "critical_tasks",
			"inventory_alerts", "safety_summary", "progress_charts",
		},
	},
	RoleSupervisor: {
		Title:         "Site Supervision Dashboard",
		Description:   "Team coordination & task management",
		DashboardType: "operational",
		Permissions: []Permission{
			PermAssignTasks, PermViewAllTasks, PermViewSafety, PermUploadPhotos,
			PermManageWorkforce,
		},
		NavigationItems: []string{"dashboard", "tasks", "workforce", "safety"},
		Widgets: []string{
			"team_status", "task_overview", "attendance", "safety_checklist", "daily_progress",
		},
	},
	RoleWorker: {
		Title:         "Field Worker Dashboard",
		Description:   "Task execution & daily reporting",
		DashboardType: "field",
		Permissions:   []Permission{PermViewSafety, PermUploadPhotos, PermViewMyTasks},
		NavigationItems: []string{"dashboard", "tasks", "safety"},
		Widgets: []string{
			"my_tasks", "attendance", "safety_alerts", "task_progress",
		},
	},
}

// ParseRole maps a wire string onto the closed role enum.
func ParseRole(s string) (Role, error) {
	for _, role := range Roles {
		if strings.EqualFold(strings.TrimSpace(s), string(role)) {
			return role, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Valid reports whether the role belongs to the closed enum.
func (r Role) Valid() bool {
	_, ok := roleDefinitions[r]
	return ok
}

// rank returns the hierarchy index; unknown roles sink below every real one.
func (r Role) rank() int {
	for i, role := range Roles {
		if role == r {
			return i
		}
	}
	return len(Roles)
}

// Definition returns the catalog entry for a role. It is total over the enum
// and fails with ErrUnknownRole for anything else rather than defaulting.
func Definition(role Role) (RoleDefinition, error) {
	def, ok := roleDefinitions[role]
	if !ok {
		return RoleDefinition{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return def, nil
}

// DefaultPermissions returns the permission bundle granted to a role at
// registration time.
func DefaultPermissions(role Role) []Permission {
	def, ok := roleDefinitions[role]
	if !ok {
		return nil
	}
	out := make([]Permission, len(def.Permissions))
	copy(out, def.Permissions)
	return out
}

// NavigationItems returns the navigation whitelist for a role.
func NavigationItems(role Role) ([]string, error) {
	def, err := Definition(role)
	if err != nil {
		return nil, err
	}
	return def.NavigationItems, nil
}

// DashboardWidgets returns the dashboard widget list for a role.
func DashboardWidgets(role Role) ([]string, error) {
	def, err := Definition(role)
	if err != nil {
		return nil, err
	}
	return def.Widgets, nil
}

// CanViewUser reports whether a viewer may see a target user's data. The check
// is a coarse rank comparison: a viewer sees users at their own rank or deeper.
func CanViewUser(viewer, target Role) bool {
	if !viewer.Valid() || !target.Valid() {
		return false
	}
	return viewer.rank() <= target.rank()
}
