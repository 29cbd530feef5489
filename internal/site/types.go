// Package site holds the construction-site resource entities managed through
// the dashboard: tasks, materials, workforce members and safety alerts.
package site

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("site: not found")
	ErrInvalidInput = errors.New("site: invalid input")
)

// Task is a unit of site work assignable to a workforce member.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority,omitempty"`
	AssignedTo  string    `json:"assignedTo,omitempty"`
	DueDate     string    `json:"dueDate,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Material is an inventory line item.
type Material struct {
	ID           string    `json:"id"`
	ItemName     string    `json:"itemName"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit,omitempty"`
	ReorderLevel float64   `json:"reorderLevel,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// WorkforceMember is an on-site worker tracked for attendance.
type WorkforceMember struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Role              string    `json:"role,omitempty"`
	EmployeeID        string    `json:"employeeId,omitempty"`
	AttendanceStatus  string    `json:"attendanceStatus,omitempty"`
	LastCheckIn       string    `json:"lastCheckIn,omitempty"`
	ProductivityScore float64   `json:"productivityScore,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// SafetyAlert is a reported safety incident or hazard.
type SafetyAlert struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Severity    string    `json:"severity,omitempty"`
	Description string    `json:"description,omitempty"`
	Resolved    bool      `json:"resolved"`
	Timestamp   string    `json:"timestamp,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TaskStore is the task repository.
type TaskStore interface {
	Create(ctx context.Context, t *Task) error
	Find(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
}

// MaterialStore is the material repository.
type MaterialStore interface {
	Create(ctx context.Context, m *Material) error
	Find(ctx context.Context, id string) (*Material, error)
	List(ctx context.Context) ([]*Material, error)
	Update(ctx context.Context, m *Material) error
	Delete(ctx context.Context, id string) error
}

// WorkforceStore is the workforce repository.
type WorkforceStore interface {
	Create(ctx context.Context, w *WorkforceMember) error
	Find(ctx context.Context, id string) (*WorkforceMember, error)
	List(ctx context.Context) ([]*WorkforceMember, error)
	Update(ctx context.Context, w *WorkforceMember) error
	Delete(ctx context.Context, id string) error
}

// SafetyStore is the safety-alert repository.
type SafetyStore interface {
	Create(ctx context.Context, a *SafetyAlert) error
	Find(ctx context.Context, id string) (*SafetyAlert, error)
	List(ctx context.Context) ([]*SafetyAlert, error)
	Update(ctx context.Context, a *SafetyAlert) error
	Delete(ctx context.Context, id string) error
}

// Store bundles the resource repositories of one persistence backend.
type Store interface {
	Tasks() TaskStore
	Materials() MaterialStore
	Workforce() WorkforceStore
	Safety() SafetyStore
}
