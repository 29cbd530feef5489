package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"buildsmart.in/internal/ids"
)

// DemoUser identifies one pre-provisioned demo account per role. Demo
// accounts are created by an explicit seed step, never lazily during login.
type DemoUser struct {
	Name  string
	Email string
	Role  Role
}

// DemoUsers is the canonical demo account set, one per role.
var DemoUsers = map[Role]DemoUser{
	RoleAdmin:          {Name: "Rajesh Kumar", Email: "rajesh@buildsmart.in", Role: RoleAdmin},
	RoleProjectManager: {Name: "Priya Sharma", Email: "priya@buildsmart.in", Role: RoleProjectManager},
	RoleSupervisor:     {Name: "Amit Patel", Email: "amit@buildsmart.in", Role: RoleSupervisor},
	RoleWorker:         {Name: "Ramesh Singh", Email: "ramesh@buildsmart.in", Role: RoleWorker},
}

// DefaultSite is assigned to accounts registered without an explicit site.
const DefaultSite = "Mumbai Metro Line 3 - Phase II"

// Service orchestrates login, registration, session restore and refresh on
// top of a credential store and a token signer.
type Service struct {
	store  UserStore
	tokens *TokenService
	now    func() time.Time

	demoEnabled bool
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithDemoLogin enables the password-bypassing demo login path. It must stay
// off in deployments holding real credentials.
func WithDemoLogin(enabled bool) ServiceOption {
	return func(s *Service) { s.demoEnabled = enabled }
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the authentication service.
func NewService(store UserStore, tokens *TokenService, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: user store is required")
	}
	if tokens == nil {
		return nil, errors.New("auth: token service is required")
	}
	svc := &Service{store: store, tokens: tokens, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Session is the result of a successful authentication: the identity plus the
// signed token proving it.
type Session struct {
	Identity Identity
	Token    string
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password fail identically so the response does not leak which occurred.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if !user.IsActive {
		return Session{}, ErrAccountInactive
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	now := s.now().UTC()
	user.LastLogin = &now
	user.UpdatedAt = now
	if err := s.store.Update(ctx, user); err != nil {
		return Session{}, fmt.Errorf("update last login: %w", err)
	}
	return s.issueSession(user)
}

// RegisterParams carries registration input.
type RegisterParams struct {
	Name       string
	Email      string
	Password   string
	Role       Role
	Site       string
	EmployeeID string
}

// Register creates a credential record with the role's default permission
// bundle and logs the new account in.
func (s *Service) Register(ctx context.Context, p RegisterParams) (Session, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = NormalizeEmail(p.Email)
	if p.Name == "" || p.Email == "" || p.Password == "" {
		return Session{}, fmt.Errorf("%w: name, email, and password are required", ErrInvalidInput)
	}
	if !strings.Contains(p.Email, "@") {
		return Session{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if len(p.Password) < MinPasswordLength {
		return Session{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}
	if p.Role == "" {
		p.Role = RoleWorker
	}
	if !p.Role.Valid() {
		return Session{}, fmt.Errorf("%w: %q", ErrUnknownRole, p.Role)
	}
	if p.Site == "" {
		p.Site = DefaultSite
	}

	if _, err := s.store.FindByEmail(ctx, p.Email); err == nil {
		return Session{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return Session{}, err
	}

	hash, err := HashPassword(p.Password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	user := &User{
		ID:           ids.New(),
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: hash,
		Role:         p.Role,
		Site:         p.Site,
		Permissions:  DefaultPermissions(p.Role),
		EmployeeID:   p.EmployeeID,
		Department:   "Construction",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return Session{}, err
	}
	return s.issueSession(user)
}

// DemoLogin authenticates as the pre-provisioned demo account for a role,
// bypassing password verification. Unknown roles derive to Worker, matching
// the catalog's most restricted entry. Fails when demo login is disabled or
// the seed step has not run.
func (s *Service) DemoLogin(ctx context.Context, role Role) (Session, error) {
	if !s.demoEnabled {
		return Session{}, ErrDemoDisabled
	}
	demo, ok := DemoUsers[role]
	if !ok {
		demo = DemoUsers[RoleWorker]
	}
	user, err := s.store.FindByEmail(ctx, NormalizeEmail(demo.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, fmt.Errorf("%w: demo user %s not provisioned, run the seed command", ErrNotFound, demo.Email)
		}
		return Session{}, err
	}
	now := s.now().UTC()
	user.LastLogin = &now
	user.UpdatedAt = now
	if err := s.store.Update(ctx, user); err != nil {
		return Session{}, fmt.Errorf("update last login: %w", err)
	}
	return s.issueSession(user)
}

// Me re-reads the credential record behind a verified identity. This is one
// of the two call sites (with Refresh) that re-consults server state, so a
// deactivation becomes visible here even while the token itself stays valid.
func (s *Service) Me(ctx context.Context, id string) (*User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	return user, nil
}

// Refresh verifies the existing token, re-checks the credential record and
// issues a new token with a fresh expiry. Role or permission changes made
// since the old token was issued take effect here.
func (s *Service) Refresh(ctx context.Context, token string) (Session, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return Session{}, err
	}
	user, err := s.store.FindByID(ctx, claims.Subject)
	if err != nil {
		return Session{}, err
	}
	if !user.IsActive {
		return Session{}, ErrAccountInactive
	}
	return s.issueSession(user)
}

// VerifyToken exposes token verification to the HTTP layer.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	return s.tokens.Verify(token)
}

func (s *Service) issueSession(user *User) (Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, user.Role, user.Permissions)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	identity := Identity{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		Site:        user.Site,
		Avatar:      user.Avatar,
		Permissions: append([]Permission(nil), user.Permissions...),
		TokenExpiry: expiresAt,
	}
	return Session{Identity: identity, Token: token}, nil
}

// NormalizeEmail lowercases and trims an email for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
