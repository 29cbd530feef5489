package auth

// Permission is an opaque capability key. The catalog is closed and flat:
// permissions never nest or imply one another, membership is set inclusion.
type Permission string

const (
	PermViewBudget      Permission = "view_budget"
	PermManageUsers     Permission = "manage_users"
	PermApproveTasks    Permission = "approve_tasks"
	PermViewAllTasks    Permission = "view_all_tasks"
	PermViewReports     Permission = "view_reports"
	PermUploadPhotos    Permission = "upload_photos"
	PermViewSafety      Permission = "view_safety"
	PermTechnicalReview Permission = "technical_review"
	PermAssignTasks     Permission = "assign_tasks"
	PermManageMaterials Permission = "manage_materials"
	PermManageWorkforce Permission = "manage_workforce"
	PermSystemSettings  Permission = "system_settings"
	PermViewMyTasks     Permission = "view_my_tasks"
)

// AllPermissions lists the full catalog.
var AllPermissions = []Permission{
	PermViewBudget, PermManageUsers, PermApproveTasks, PermViewAllTasks,
	PermViewReports, PermUploadPhotos, PermViewSafety, PermTechnicalReview,
	PermAssignTasks, PermManageMaterials, PermManageWorkforce,
	PermSystemSettings, PermViewMyTasks,
}

// actionPermissions maps a mutation action to the permission it requires.
// Actions absent from this map are denied for every non-admin caller.
var actionPermissions = map[string]Permission{
	"create_task":    PermAssignTasks,
	"edit_task":      PermViewAllTasks,
	"delete_task":    PermAssignTasks,
	"manage_user":    PermManageUsers,
	"edit_material":  PermManageMaterials,
	"edit_workforce": PermManageWorkforce,
	"approve":        PermApproveTasks,
	"view_reports":   PermViewReports,
	"view_budget":    PermViewBudget,
}

// HasPermission reports whether the granted set contains the permission.
func HasPermission(granted []Permission, required Permission) bool {
	for _, p := range granted {
		if p == required {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether the granted set intersects the required
// list. An empty required list means no restriction and always passes.
func HasAnyPermission(granted []Permission, required []Permission) bool {
	if len(required) == 0 {
		return true
	}
	for _, p := range required {
		if HasPermission(granted, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every required permission is granted.
// An empty required list is vacuously true.
func HasAllPermissions(granted []Permission, required []Permission) bool {
	for _, p := range required {
		if !HasPermission(granted, p) {
			return false
		}
	}
	return true
}

// CanPerformAction decides whether a caller may execute an action on a
// resource type. Admin always passes. Every other role needs the permission
// the action maps to; unmapped actions fail closed.
func CanPerformAction(role Role, granted []Permission, action, resourceType string) bool {
	if role == RoleAdmin {
		return true
	}
	required, ok := actionPermissions[action]
	if !ok {
		return false
	}
	return HasPermission(granted, required)
}
