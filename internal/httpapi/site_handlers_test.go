package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"buildsmart.in/internal/auth"
)

func TestTaskMutationPermissionGate(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Ramesh Singh", "ramesh@buildsmart.in", "demo123", auth.RoleWorker)
	env.seedUser(t, "Amit Patel", "amit@buildsmart.in", "demo123", auth.RoleSupervisor)

	// Workers lack assign_tasks.
	worker := env.tokenFor(t, "ramesh@buildsmart.in", "demo123")
	rec := env.do(t, http.MethodPost, "/api/tasks", worker, `{"title":"Pour slab"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("worker create: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var denied struct {
		Code     string   `json:"code"`
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &denied); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if denied.Code != "PERMISSION_DENIED" || len(denied.Required) != 1 || denied.Required[0] != "assign_tasks" {
		t.Fatalf("body %s", rec.Body.String())
	}

	// Supervisors carry assign_tasks.
	supervisor := env.tokenFor(t, "amit@buildsmart.in", "demo123")
	created := env.do(t, http.MethodPost, "/api/tasks", supervisor, `{"title":"Pour slab","priority":"high"}`)
	if created.Code != http.StatusCreated {
		t.Fatalf("supervisor create: status = %d, body %s", created.Code, created.Body.String())
	}

	// Reads stay open to any authenticated caller, workers included.
	list := env.do(t, http.MethodGet, "/api/tasks", worker, "")
	if list.Code != http.StatusOK || !strings.Contains(list.Body.String(), "Pour slab") {
		t.Fatalf("worker list: status = %d, body %s", list.Code, list.Body.String())
	}

	anon := env.do(t, http.MethodGet, "/api/tasks", "", "")
	if anon.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous list: status = %d", anon.Code)
	}
}

func TestTaskUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Rajesh Kumar", "rajesh@buildsmart.in", "demo123", auth.RoleAdmin)
	admin := env.tokenFor(t, "rajesh@buildsmart.in", "demo123")

	created := env.do(t, http.MethodPost, "/api/tasks", admin, `{"title":"Install scaffolding"}`)
	if created.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", created.Code, created.Body.String())
	}
	var resp struct {
		Task struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"task"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Task.Status != "pending" {
		t.Fatalf("initial status = %q", resp.Task.Status)
	}

	updated := env.do(t, http.MethodPut, "/api/tasks/"+resp.Task.ID, admin, `{"status":"in_progress"}`)
	if updated.Code != http.StatusOK || !strings.Contains(updated.Body.String(), `"in_progress"`) {
		t.Fatalf("update: status = %d, body %s", updated.Code, updated.Body.String())
	}

	deleted := env.do(t, http.MethodDelete, "/api/tasks/"+resp.Task.ID, admin, "")
	if deleted.Code != http.StatusOK {
		t.Fatalf("delete: status = %d, body %s", deleted.Code, deleted.Body.String())
	}

	missing := env.do(t, http.MethodGet, "/api/tasks/"+resp.Task.ID, admin, "")
	if missing.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status = %d", missing.Code)
	}
}

func TestMaterialGateAndSafetyFilter(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Priya Sharma", "priya@buildsmart.in", "demo123", auth.RoleProjectManager)
	env.seedUser(t, "Ramesh Singh", "ramesh@buildsmart.in", "demo123", auth.RoleWorker)
	pm := env.tokenFor(t, "priya@buildsmart.in", "demo123")
	worker := env.tokenFor(t, "ramesh@buildsmart.in", "demo123")

	rec := env.do(t, http.MethodPost, "/api/materials", pm,
		`{"itemName":"Cement OPC 53","quantity":500,"unit":"bags","reorderLevel":100}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("material create: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if denied := env.do(t, http.MethodPost, "/api/materials", worker, `{"itemName":"Sand"}`); denied.Code != http.StatusForbidden {
		t.Fatalf("worker material create: status = %d", denied.Code)
	}

	// Workers hold view_safety, so they may report alerts.
	alert := env.do(t, http.MethodPost, "/api/safety", worker,
		`{"type":"ppe_violation","severity":"low","description":"missing helmet"}`)
	if alert.Code != http.StatusCreated {
		t.Fatalf("safety create: status = %d, body %s", alert.Code, alert.Body.String())
	}
	var created struct {
		Alert struct {
			ID string `json:"id"`
		} `json:"alert"`
	}
	if err := json.Unmarshal(alert.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	resolved := env.do(t, http.MethodPut, "/api/safety/"+created.Alert.ID, worker, `{"resolved":true}`)
	if resolved.Code != http.StatusOK {
		t.Fatalf("safety resolve: status = %d, body %s", resolved.Code, resolved.Body.String())
	}

	unresolved := env.do(t, http.MethodGet, "/api/safety?resolved=false", worker, "")
	if unresolved.Code != http.StatusOK || !strings.Contains(unresolved.Body.String(), `"count":0`) {
		t.Fatalf("unresolved filter: status = %d, body %s", unresolved.Code, unresolved.Body.String())
	}
}

func TestWorkforceCheckin(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Amit Patel", "amit@buildsmart.in", "demo123", auth.RoleSupervisor)
	supervisor := env.tokenFor(t, "amit@buildsmart.in", "demo123")

	created := env.do(t, http.MethodPost, "/api/workforce", supervisor,
		`{"name":"Suresh Yadav","role":"Mason","employeeId":"EMP042"}`)
	if created.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", created.Code, created.Body.String())
	}
	var resp struct {
		Member struct {
			ID string `json:"id"`
		} `json:"member"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	checkin := env.do(t, http.MethodPost, "/api/workforce/"+resp.Member.ID+"/checkin", supervisor, "")
	if checkin.Code != http.StatusOK || !strings.Contains(checkin.Body.String(), `"present"`) {
		t.Fatalf("checkin: status = %d, body %s", checkin.Code, checkin.Body.String())
	}
}

func TestRoleCatalogEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Ramesh Singh", "ramesh@buildsmart.in", "demo123", auth.RoleWorker)
	token := env.tokenFor(t, "ramesh@buildsmart.in", "demo123")

	def := env.do(t, http.MethodGet, "/api/roles/Supervisor", token, "")
	if def.Code != http.StatusOK || !strings.Contains(def.Body.String(), `"dashboardType"`) {
		t.Fatalf("definition: status = %d, body %s", def.Code, def.Body.String())
	}

	nav := env.do(t, http.MethodGet, "/api/roles/Worker/navigation", token, "")
	if nav.Code != http.StatusOK || !strings.Contains(nav.Body.String(), `"navigation"`) {
		t.Fatalf("navigation: status = %d, body %s", nav.Code, nav.Body.String())
	}

	unknown := env.do(t, http.MethodGet, "/api/roles/Contractor", token, "")
	if unknown.Code != http.StatusNotFound {
		t.Fatalf("unknown role: status = %d", unknown.Code)
	}
}
