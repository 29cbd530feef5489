package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"buildsmart.in/internal/auth"
)

// userCollection is the credential-record file. Unlike the generic
// collections it persists the password hash, which the auth.User JSON tags
// deliberately drop, so records go through a private envelope type.
type userCollection struct {
	path string

	mu    sync.RWMutex
	users map[string]*auth.User
}

type userRecord struct {
	auth.User
	PasswordHash string `json:"passwordHash"`
}

func newUserCollection(path string) (*userCollection, error) {
	c := &userCollection{path: path, users: make(map[string]*auth.User)}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *userCollection) load() error {
	b, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("jsonfile: read %s: %w", c.path, err)
	}
	if len(b) == 0 {
		return nil
	}
	var decoded []userRecord
	if err := json.Unmarshal(b, &decoded); err != nil {
		return fmt.Errorf("jsonfile: decode %s: %w", c.path, err)
	}
	for i := range decoded {
		rec := decoded[i]
		if strings.TrimSpace(rec.ID) == "" {
			continue
		}
		u := rec.User
		u.PasswordHash = rec.PasswordHash
		c.users[u.ID] = &u
	}
	return nil
}

func (c *userCollection) persistLocked() error {
	out := make([]userRecord, 0, len(c.users))
	for _, u := range c.users {
		out = append(out, userRecord{User: *u.Clone(), PasswordHash: u.PasswordHash})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encode %s: %w", c.path, err)
	}
	return writeAtomic(c.path, b, 0o600)
}

func (c *userCollection) Create(_ context.Context, u *auth.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return auth.ErrAlreadyExists
		}
	}
	c.users[u.ID] = u.Clone()
	return c.persistLocked()
}

func (c *userCollection) FindByID(_ context.Context, id string) (*auth.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return u.Clone(), nil
}

func (c *userCollection) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, u := range c.users {
		if strings.EqualFold(u.Email, email) {
			return u.Clone(), nil
		}
	}
	return nil, auth.ErrNotFound
}

func (c *userCollection) List(_ context.Context, filter auth.UserFilter) ([]*auth.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*auth.User, 0, len(c.users))
	for _, u := range c.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Site != "" && u.Site != filter.Site {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		if filter.Search != "" && !matchesSearch(u, filter.Search) {
			continue
		}
		out = append(out, u.Clone())
	}
	// Newest first, matching the dashboard's user list ordering.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (c *userCollection) Update(_ context.Context, u *auth.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.users[u.ID]; !ok {
		return auth.ErrNotFound
	}
	c.users[u.ID] = u.Clone()
	return c.persistLocked()
}

func matchesSearch(u *auth.User, search string) bool {
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(u.Name), search) ||
		strings.Contains(strings.ToLower(u.Email), search) ||
		strings.Contains(strings.ToLower(u.EmployeeID), search)
}
