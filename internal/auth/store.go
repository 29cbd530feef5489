package auth

import (
	"context"
	"time"
)

// User is the server-side credential record. The password hash never crosses
// the serialization boundary: it is excluded from JSON on every path.
type User struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Role         Role         `json:"role"`
	Site         string       `json:"site"`
	Avatar       string       `json:"avatar,omitempty"`
	Permissions  []Permission `json:"permissions"`
	EmployeeID   string       `json:"employeeId,omitempty"`
	Department   string       `json:"department,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	IsActive     bool         `json:"isActive"`
	LastLogin    *time.Time   `json:"lastLogin,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Clone returns a deep copy so callers can mutate without aliasing store state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Permissions = make([]Permission, len(u.Permissions))
	copy(cp.Permissions, u.Permissions)
	if u.LastLogin != nil {
		t := *u.LastLogin
		cp.LastLogin = &t
	}
	return &cp
}

// UserFilter narrows List results.
type UserFilter struct {
	Role     *Role
	Site     string
	IsActive *bool
	// Search matches name, email or employee id, case-insensitively.
	Search string
}

// UserStore is the credential-record repository. Both persistence modes
// (Postgres, flat JSON files) implement it.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	// FindByEmail matches case-insensitively; callers pass lowercased input.
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]*User, error)
	Update(ctx context.Context, u *User) error
}
