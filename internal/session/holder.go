package session

import (
	"context"
	"encoding/json"
	"sync"

	"buildsmart.in/internal/auth"
)

type persistedSession struct {
	Token    string        `json:"token"`
	Identity auth.Identity `json:"identity"`
}

// Holder keeps the current session on the client side. It restores a
// persisted {token, identity} pair on construction and answers permission
// checks from the local identity copy without a server round trip.
type Holder struct {
	client  *Client
	storage Storage

	mu       sync.RWMutex
	identity *auth.Identity
	token    string
	lastErr  error
}

// NewHolder restores any persisted session. A corrupt blob is wiped and the
// holder starts anonymous; restore never fails construction.
func NewHolder(client *Client, storage Storage) *Holder {
	h := &Holder{client: client, storage: storage}
	h.restore()
	return h
}

func (h *Holder) restore() {
	data, err := h.storage.Load()
	if err != nil || len(data) == 0 {
		return
	}
	var sess persistedSession
	if err := json.Unmarshal(data, &sess); err != nil || sess.Token == "" || sess.Identity.ID == "" {
		_ = h.storage.Clear()
		return
	}
	h.identity = &sess.Identity
	h.token = sess.Token
}

// Login authenticates against the server and persists the session.
func (h *Holder) Login(ctx context.Context, email, password string) error {
	identity, token, err := h.client.Login(ctx, email, password)
	if err != nil {
		h.setError(err)
		return err
	}
	return h.adopt(identity, token)
}

// DemoLogin authenticates as the pre-provisioned demo account for a role.
func (h *Holder) DemoLogin(ctx context.Context, role auth.Role) error {
	identity, token, err := h.client.DemoLogin(ctx, role)
	if err != nil {
		h.setError(err)
		return err
	}
	return h.adopt(identity, token)
}

// Refresh swaps the current token for a fresh one, keeping the identity.
func (h *Holder) Refresh(ctx context.Context) error {
	h.mu.RLock()
	token := h.token
	h.mu.RUnlock()
	if token == "" {
		h.setError(auth.ErrInvalidToken)
		return auth.ErrInvalidToken
	}
	fresh, err := h.client.Refresh(ctx, token)
	if err != nil {
		h.setError(err)
		return err
	}
	h.mu.Lock()
	h.token = fresh
	h.lastErr = nil
	err = h.persistLocked()
	h.mu.Unlock()
	return err
}

// Logout clears the in-memory identity and the persisted pair. Both are gone
// before Logout returns: IsAuthenticated flips false with no stale window.
func (h *Holder) Logout() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.identity = nil
	h.token = ""
	h.lastErr = nil
	return h.storage.Clear()
}

// UpdateUser merges non-privileged profile fields into the local identity and
// persists the result. It does not talk to the server.
func (h *Holder) UpdateUser(patch auth.Identity) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.identity == nil {
		return auth.ErrInvalidToken
	}
	if patch.Name != "" {
		h.identity.Name = patch.Name
	}
	if patch.Avatar != "" {
		h.identity.Avatar = patch.Avatar
	}
	if patch.Site != "" {
		h.identity.Site = patch.Site
	}
	return h.persistLocked()
}

func (h *Holder) adopt(identity auth.Identity, token string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.identity = &identity
	h.token = token
	h.lastErr = nil
	return h.persistLocked()
}

func (h *Holder) persistLocked() error {
	data, err := json.Marshal(persistedSession{Token: h.token, Identity: *h.identity})
	if err != nil {
		return err
	}
	return h.storage.Save(data)
}

func (h *Holder) setError(err error) {
	h.mu.Lock()
	h.lastErr = err
	h.mu.Unlock()
}

// Identity returns the current identity, if authenticated.
func (h *Holder) Identity() (auth.Identity, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.identity == nil {
		return auth.Identity{}, false
	}
	return *h.identity, true
}

// Token returns the current bearer token, empty when anonymous.
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *Holder) IsAuthenticated() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.identity != nil && h.token != ""
}

// LastError returns the most recent authentication failure, cleared on the
// next success or logout.
func (h *Holder) LastError() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastErr
}

func (h *Holder) HasPermission(p auth.Permission) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.identity != nil && h.identity.HasPermission(p)
}

func (h *Holder) IsRole(roles ...auth.Role) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.identity != nil && h.identity.IsRole(roles...)
}
