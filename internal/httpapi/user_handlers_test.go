package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"buildsmart.in/internal/auth"
)

func TestListUsersRoleGate(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Rajesh Kumar", "rajesh@buildsmart.in", "demo123", auth.RoleAdmin)
	env.seedUser(t, "Ramesh Singh", "ramesh@buildsmart.in", "demo123", auth.RoleWorker)

	worker := env.tokenFor(t, "ramesh@buildsmart.in", "demo123")
	rec := env.do(t, http.MethodGet, "/api/users", worker, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("worker list: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var denied struct {
		Code          string   `json:"code"`
		RequiredRoles []string `json:"requiredRoles"`
		UserRole      string   `json:"userRole"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &denied); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if denied.Code != "FORBIDDEN" || denied.UserRole != "Worker" {
		t.Fatalf("body %s", rec.Body.String())
	}
	if len(denied.RequiredRoles) != 2 || denied.RequiredRoles[0] != "Admin" || denied.RequiredRoles[1] != "Project Manager" {
		t.Fatalf("requiredRoles = %v", denied.RequiredRoles)
	}

	admin := env.tokenFor(t, "rajesh@buildsmart.in", "demo123")
	ok := env.do(t, http.MethodGet, "/api/users", admin, "")
	if ok.Code != http.StatusOK || !strings.Contains(ok.Body.String(), `"count":2`) {
		t.Fatalf("admin list: status = %d, body %s", ok.Code, ok.Body.String())
	}

	anon := env.do(t, http.MethodGet, "/api/users", "", "")
	if anon.Code != http.StatusUnauthorized || !strings.Contains(anon.Body.String(), "AUTH_REQUIRED") {
		t.Fatalf("anonymous list: status = %d, body %s", anon.Code, anon.Body.String())
	}
}

func TestUpdateUserStripsPrivilegedFields(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "Ramesh Singh", "ramesh@buildsmart.in", "demo123", auth.RoleWorker)
	token := env.tokenFor(t, "ramesh@buildsmart.in", "demo123")

	rec := env.do(t, http.MethodPut, "/api/users/"+u.ID, token,
		`{"name":"Ramesh S.","role":"Admin","isActive":false,"permissions":["manage_users"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	stored, err := env.store.Users().FindByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Name != "Ramesh S." {
		t.Fatalf("name not updated: %q", stored.Name)
	}
	if stored.Role != auth.RoleWorker {
		t.Fatalf("role escalated to %q", stored.Role)
	}
	if !stored.IsActive {
		t.Fatalf("isActive changed by non-admin")
	}
	if auth.HasPermission(stored.Permissions, auth.PermManageUsers) {
		t.Fatalf("permissions changed by non-admin: %v", stored.Permissions)
	}
}

func TestUpdateUserCrossUserDenied(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Ramesh Singh", "ramesh@buildsmart.in", "demo123", auth.RoleWorker)
	other := env.seedUser(t, "Amit Patel", "amit@buildsmart.in", "demo123", auth.RoleSupervisor)
	token := env.tokenFor(t, "ramesh@buildsmart.in", "demo123")

	rec := env.do(t, http.MethodPut, "/api/users/"+other.ID, token, `{"name":"Hacked"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestAdminUpdateChangesRole(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Rajesh Kumar", "rajesh@buildsmart.in", "demo123", auth.RoleAdmin)
	target := env.seedUser(t, "Ramesh Singh", "ramesh@buildsmart.in", "demo123", auth.RoleWorker)
	admin := env.tokenFor(t, "rajesh@buildsmart.in", "demo123")

	rec := env.do(t, http.MethodPut, "/api/users/"+target.ID, admin, `{"role":"Supervisor"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	stored, err := env.store.Users().FindByID(context.Background(), target.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Role != auth.RoleSupervisor {
		t.Fatalf("role = %q, want Supervisor", stored.Role)
	}
}

func TestDeactivateUser(t *testing.T) {
	env := newTestEnv(t)
	adminUser := env.seedUser(t, "Rajesh Kumar", "rajesh@buildsmart.in", "demo123", auth.RoleAdmin)
	target := env.seedUser(t, "Ramesh Singh", "ramesh@buildsmart.in", "demo123", auth.RoleWorker)
	admin := env.tokenFor(t, "rajesh@buildsmart.in", "demo123")

	selfRec := env.do(t, http.MethodDelete, "/api/users/"+adminUser.ID, admin, "")
	if selfRec.Code != http.StatusBadRequest {
		t.Fatalf("self-deactivation: status = %d, body %s", selfRec.Code, selfRec.Body.String())
	}

	rec := env.do(t, http.MethodDelete, "/api/users/"+target.ID, admin, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "deactivated") {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	stored, err := env.store.Users().FindByID(context.Background(), target.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.IsActive {
		t.Fatalf("target still active")
	}
}

func TestUpdatePermissionsRequiresArray(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Rajesh Kumar", "rajesh@buildsmart.in", "demo123", auth.RoleAdmin)
	target := env.seedUser(t, "Ramesh Singh", "ramesh@buildsmart.in", "demo123", auth.RoleWorker)
	admin := env.tokenFor(t, "rajesh@buildsmart.in", "demo123")

	bad := env.do(t, http.MethodPut, "/api/users/"+target.ID+"/permissions", admin, `{}`)
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("missing array: status = %d, body %s", bad.Code, bad.Body.String())
	}

	rec := env.do(t, http.MethodPut, "/api/users/"+target.ID+"/permissions", admin,
		`{"permissions":["view_safety","upload_photos"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	stored, err := env.store.Users().FindByID(context.Background(), target.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(stored.Permissions) != 2 || stored.Permissions[0] != auth.PermViewSafety {
		t.Fatalf("permissions = %v", stored.Permissions)
	}
}

func TestUserStatsSummary(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Rajesh Kumar", "rajesh@buildsmart.in", "demo123", auth.RoleAdmin)
	inactive := env.seedUser(t, "Ramesh Singh", "ramesh@buildsmart.in", "demo123", auth.RoleWorker)
	inactive.IsActive = false
	if err := env.store.Users().Update(context.Background(), inactive); err != nil {
		t.Fatalf("Update: %v", err)
	}
	admin := env.tokenFor(t, "rajesh@buildsmart.in", "demo123")

	rec := env.do(t, http.MethodGet, "/api/users/stats/summary", admin, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Stats struct {
			Total    int            `json:"total"`
			Active   int            `json:"active"`
			Inactive int            `json:"inactive"`
			ByRole   map[string]int `json:"byRole"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Stats.Total != 2 || resp.Stats.Active != 1 || resp.Stats.Inactive != 1 {
		t.Fatalf("stats = %+v", resp.Stats)
	}
	if resp.Stats.ByRole["Worker"] != 1 {
		t.Fatalf("byRole = %v", resp.Stats.ByRole)
	}
}
