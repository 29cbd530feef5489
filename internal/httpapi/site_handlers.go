package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"buildsmart.in/internal/auth"
	"buildsmart.in/internal/ids"
	"buildsmart.in/internal/site"
)

// Resource CRUD. Reads are open to any authenticated caller; mutations are
// gated on the permission matching each collection.

type taskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssignedTo  *string `json:"assignedTo"`
	DueDate     *string `json:"dueDate"`
}

type materialRequest struct {
	ItemName     *string  `json:"itemName"`
	Quantity     *float64 `json:"quantity"`
	Unit         *string  `json:"unit"`
	ReorderLevel *float64 `json:"reorderLevel"`
}

type workforceRequest struct {
	Name              *string  `json:"name"`
	Role              *string  `json:"role"`
	EmployeeID        *string  `json:"employeeId"`
	AttendanceStatus  *string  `json:"attendanceStatus"`
	LastCheckIn       *string  `json:"lastCheckIn"`
	ProductivityScore *float64 `json:"productivityScore"`
}

type safetyRequest struct {
	Type        *string `json:"type"`
	Severity    *string `json:"severity"`
	Description *string `json:"description"`
	Resolved    *bool   `json:"resolved"`
	Timestamp   *string `json:"timestamp"`
}

// Tasks ---------------------------------------------------------------------

func (a *API) handleTasksCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requireIdentity(w, r); !ok {
			return
		}
		tasks, err := a.resources.Tasks().List(r.Context())
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "Failed to fetch tasks")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(tasks), "tasks": tasks})
	case http.MethodPost:
		if _, ok := a.requirePermission(w, r, auth.PermAssignTasks); !ok {
			return
		}
		var req taskRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
			writeError(w, r, http.StatusBadRequest, "title is required")
			return
		}
		now := time.Now().UTC()
		task := &site.Task{
			ID:        ids.New(),
			Title:     strings.TrimSpace(*req.Title),
			Status:    "pending",
			CreatedAt: now,
			UpdatedAt: now,
		}
		applyTaskPatch(task, req)
		if err := a.resources.Tasks().Create(r.Context(), task); err != nil {
			writeError(w, r, http.StatusInternalServerError, "Failed to create task")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "task": task})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleTaskResource(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r, "/api/tasks/")
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requireIdentity(w, r); !ok {
			return
		}
		task, err := a.resources.Tasks().Find(r.Context(), id)
		if err != nil {
			a.handleSiteError(w, r, err, "task")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "task": task})
	case http.MethodPut:
		if _, ok := a.requirePermission(w, r, auth.PermAssignTasks); !ok {
			return
		}
		var req taskRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		task, err := a.resources.Tasks().Find(r.Context(), id)
		if err != nil {
			a.handleSiteError(w, r, err, "task")
			return
		}
		applyTaskPatch(task, req)
		task.UpdatedAt = time.Now().UTC()
		if err := a.resources.Tasks().Update(r.Context(), task); err != nil {
			a.handleSiteError(w, r, err, "task")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "task": task})
	case http.MethodDelete:
		if _, ok := a.requirePermission(w, r, auth.PermAssignTasks); !ok {
			return
		}
		if err := a.resources.Tasks().Delete(r.Context(), id); err != nil {
			a.handleSiteError(w, r, err, "task")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Task deleted"})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func applyTaskPatch(task *site.Task, req taskRequest) {
	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.AssignedTo != nil {
		task.AssignedTo = *req.AssignedTo
	}
	if req.DueDate != nil {
		task.DueDate = *req.DueDate
	}
}

// Materials -----------------------------------------------------------------

func (a *API) handleMaterialsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requireIdentity(w, r); !ok {
			return
		}
		materials, err := a.resources.Materials().List(r.Context())
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "Failed to fetch materials")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(materials), "materials": materials})
	case http.MethodPost:
		if _, ok := a.requirePermission(w, r, auth.PermManageMaterials); !ok {
			return
		}
		var req materialRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if req.ItemName == nil || strings.TrimSpace(*req.ItemName) == "" {
			writeError(w, r, http.StatusBadRequest, "itemName is required")
			return
		}
		now := time.Now().UTC()
		material := &site.Material{
			ID:        ids.New(),
			ItemName:  strings.TrimSpace(*req.ItemName),
			CreatedAt: now,
			UpdatedAt: now,
		}
		applyMaterialPatch(material, req)
		if err := a.resources.Materials().Create(r.Context(), material); err != nil {
			writeError(w, r, http.StatusInternalServerError, "Failed to create material")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "material": material})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleMaterialResource(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r, "/api/materials/")
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requireIdentity(w, r); !ok {
			return
		}
		material, err := a.resources.Materials().Find(r.Context(), id)
		if err != nil {
			a.handleSiteError(w, r, err, "material")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "material": material})
	case http.MethodPut:
		if _, ok := a.requirePermission(w, r, auth.PermManageMaterials); !ok {
			return
		}
		var req materialRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		material, err := a.resources.Materials().Find(r.Context(), id)
		if err != nil {
			a.handleSiteError(w, r, err, "material")
			return
		}
		applyMaterialPatch(material, req)
		material.UpdatedAt = time.Now().UTC()
		if err := a.resources.Materials().Update(r.Context(), material); err != nil {
			a.handleSiteError(w, r, err, "material")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "material": material})
	case http.MethodDelete:
		if _, ok := a.requirePermission(w, r, auth.PermManageMaterials); !ok {
			return
		}
		if err := a.resources.Materials().Delete(r.Context(), id); err != nil {
			a.handleSiteError(w, r, err, "material")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Material deleted"})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func applyMaterialPatch(material *site.Material, req materialRequest) {
	if req.ItemName != nil {
		material.ItemName = strings.TrimSpace(*req.ItemName)
	}
	if req.Quantity != nil {
		material.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		material.Unit = *req.Unit
	}
	if req.ReorderLevel != nil {
		material.ReorderLevel = *req.ReorderLevel
	}
}

// Workforce -----------------------------------------------------------------

func (a *API) handleWorkforceCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requireIdentity(w, r); !ok {
			return
		}
		members, err := a.resources.Workforce().List(r.Context())
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "Failed to fetch workforce")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(members), "workforce": members})
	case http.MethodPost:
		if _, ok := a.requirePermission(w, r, auth.PermManageWorkforce); !ok {
			return
		}
		var req workforceRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
			writeError(w, r, http.StatusBadRequest, "name is required")
			return
		}
		now := time.Now().UTC()
		member := &site.WorkforceMember{
			ID:        ids.New(),
			Name:      strings.TrimSpace(*req.Name),
			CreatedAt: now,
			UpdatedAt: now,
		}
		applyWorkforcePatch(member, req)
		if err := a.resources.Workforce().Create(r.Context(), member); err != nil {
			writeError(w, r, http.StatusInternalServerError, "Failed to create workforce member")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "member": member})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleWorkforceResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/workforce/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if id, found := strings.CutSuffix(path, "/checkin"); found {
		a.workforceCheckin(w, r, id)
		return
	}
	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	id := path
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requireIdentity(w, r); !ok {
			return
		}
		member, err := a.resources.Workforce().Find(r.Context(), id)
		if err != nil {
			a.handleSiteError(w, r, err, "workforce member")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "member": member})
	case http.MethodPut:
		if _, ok := a.requirePermission(w, r, auth.PermManageWorkforce); !ok {
			return
		}
		var req workforceRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		member, err := a.resources.Workforce().Find(r.Context(), id)
		if err != nil {
			a.handleSiteError(w, r, err, "workforce member")
			return
		}
		applyWorkforcePatch(member, req)
		member.UpdatedAt = time.Now().UTC()
		if err := a.resources.Workforce().Update(r.Context(), member); err != nil {
			a.handleSiteError(w, r, err, "workforce member")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "member": member})
	case http.MethodDelete:
		if _, ok := a.requirePermission(w, r, auth.PermManageWorkforce); !ok {
			return
		}
		if err := a.resources.Workforce().Delete(r.Context(), id); err != nil {
			a.handleSiteError(w, r, err, "workforce member")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Workforce member deleted"})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// workforceCheckin marks a member present with the current timestamp.
func (a *API) workforceCheckin(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if _, ok := a.requirePermission(w, r, auth.PermManageWorkforce); !ok {
		return
	}
	member, err := a.resources.Workforce().Find(r.Context(), id)
	if err != nil {
		a.handleSiteError(w, r, err, "workforce member")
		return
	}
	now := time.Now().UTC()
	member.AttendanceStatus = "present"
	member.LastCheckIn = now.Format(time.RFC3339)
	member.UpdatedAt = now
	if err := a.resources.Workforce().Update(r.Context(), member); err != nil {
		a.handleSiteError(w, r, err, "workforce member")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "member": member})
}

func applyWorkforcePatch(member *site.WorkforceMember, req workforceRequest) {
	if req.Name != nil {
		member.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		member.Role = *req.Role
	}
	if req.EmployeeID != nil {
		member.EmployeeID = *req.EmployeeID
	}
	if req.AttendanceStatus != nil {
		member.AttendanceStatus = *req.AttendanceStatus
	}
	if req.LastCheckIn != nil {
		member.LastCheckIn = *req.LastCheckIn
	}
	if req.ProductivityScore != nil {
		member.ProductivityScore = *req.ProductivityScore
	}
}

// Safety ---------------------------------------------------------------------

func (a *API) handleSafetyCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requireIdentity(w, r); !ok {
			return
		}
		alerts, err := a.resources.Safety().List(r.Context())
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "Failed to fetch safety alerts")
			return
		}
		if r.URL.Query().Get("resolved") == "false" {
			unresolved := alerts[:0]
			for _, alert := range alerts {
				if !alert.Resolved {
					unresolved = append(unresolved, alert)
				}
			}
			alerts = unresolved
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(alerts), "alerts": alerts})
	case http.MethodPost:
		if _, ok := a.requirePermission(w, r, auth.PermViewSafety); !ok {
			return
		}
		var req safetyRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if req.Type == nil || strings.TrimSpace(*req.Type) == "" {
			writeError(w, r, http.StatusBadRequest, "type is required")
			return
		}
		alert := &site.SafetyAlert{
			ID:        ids.New(),
			Type:      strings.TrimSpace(*req.Type),
			CreatedAt: time.Now().UTC(),
		}
		applySafetyPatch(alert, req)
		if alert.Timestamp == "" {
			alert.Timestamp = alert.CreatedAt.Format(time.RFC3339)
		}
		if err := a.resources.Safety().Create(r.Context(), alert); err != nil {
			writeError(w, r, http.StatusInternalServerError, "Failed to create safety alert")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "alert": alert})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleSafetyResource(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r, "/api/safety/")
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requireIdentity(w, r); !ok {
			return
		}
		alert, err := a.resources.Safety().Find(r.Context(), id)
		if err != nil {
			a.handleSiteError(w, r, err, "safety alert")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "alert": alert})
	case http.MethodPut:
		if _, ok := a.requirePermission(w, r, auth.PermViewSafety); !ok {
			return
		}
		var req safetyRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		alert, err := a.resources.Safety().Find(r.Context(), id)
		if err != nil {
			a.handleSiteError(w, r, err, "safety alert")
			return
		}
		applySafetyPatch(alert, req)
		if err := a.resources.Safety().Update(r.Context(), alert); err != nil {
			a.handleSiteError(w, r, err, "safety alert")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "alert": alert})
	case http.MethodDelete:
		if _, ok := a.requirePermission(w, r, auth.PermViewSafety); !ok {
			return
		}
		if err := a.resources.Safety().Delete(r.Context(), id); err != nil {
			a.handleSiteError(w, r, err, "safety alert")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Safety alert deleted"})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func applySafetyPatch(alert *site.SafetyAlert, req safetyRequest) {
	if req.Type != nil {
		alert.Type = strings.TrimSpace(*req.Type)
	}
	if req.Severity != nil {
		alert.Severity = *req.Severity
	}
	if req.Description != nil {
		alert.Description = *req.Description
	}
	if req.Resolved != nil {
		alert.Resolved = *req.Resolved
	}
	if req.Timestamp != nil {
		alert.Timestamp = *req.Timestamp
	}
}

// ----------------------------------------------------------------------------

func resourceID(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return "", false
	}
	return path, true
}

func (a *API) handleSiteError(w http.ResponseWriter, r *http.Request, err error, kind string) {
	switch {
	case errors.Is(err, site.ErrNotFound):
		writeError(w, r, http.StatusNotFound, kind+" not found")
	case errors.Is(err, site.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
