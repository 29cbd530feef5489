package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"buildsmart.in/internal/auth"
	"buildsmart.in/internal/ids"
	"buildsmart.in/internal/store/jsonfile"
)

const testSecret = "test-signing-secret"

type testEnv struct {
	api   *API
	h     http.Handler
	svc   *auth.Service
	store *jsonfile.Store
}

func newTestEnv(t *testing.T, opts ...auth.ServiceOption) *testEnv {
	t.Helper()
	store, err := jsonfile.New(t.TempDir())
	if err != nil {
		t.Fatalf("jsonfile.New: %v", err)
	}
	tokens, err := auth.NewTokenService(testSecret)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	svc, err := auth.NewService(store.Users(), tokens, opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	api := New(svc, store.Users(), store, ReadyProbe{}, "test")
	return &testEnv{api: api, h: api.Handler(), svc: svc, store: store}
}

// seedUser provisions a credential record directly in the store.
func (env *testEnv) seedUser(t *testing.T, name, email, password string, role auth.Role) *auth.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	now := time.Now().UTC()
	u := &auth.User{
		ID:           ids.New(),
		Name:         name,
		Email:        auth.NormalizeEmail(email),
		PasswordHash: hash,
		Role:         role,
		Site:         auth.DefaultSite,
		Permissions:  auth.DefaultPermissions(role),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := env.store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return u
}

// tokenFor logs the user in through the service and returns the bearer token.
func (env *testEnv) tokenFor(t *testing.T, email, password string) string {
	t.Helper()
	sess, err := env.svc.Login(context.Background(), email, password)
	if err != nil {
		t.Fatalf("Login(%s): %v", email, err)
	}
	return sess.Token
}

func (env *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.1:4321"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.h.ServeHTTP(rec, req)
	return rec
}
