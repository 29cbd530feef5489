package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"buildsmart.in/internal/auth"
	"buildsmart.in/internal/site"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, dir
}

func testUser(id, email string) *auth.User {
	now := time.Now().UTC()
	return &auth.User{
		ID:           id,
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
		Role:         auth.RoleWorker,
		Site:         auth.DefaultSite,
		Permissions:  auth.DefaultPermissions(auth.RoleWorker),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRoundTripAcrossReload(t *testing.T) {
	s, dir := newTestStore(t)
	ctx := context.Background()

	if err := s.Users().Create(ctx, testUser("u1", "ramesh@buildsmart.in")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A fresh store over the same directory must see the persisted record,
	// password hash included.
	reloaded, err := New(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	u, err := reloaded.Users().FindByEmail(ctx, "ramesh@buildsmart.in")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if u.PasswordHash == "" {
		t.Fatalf("password hash lost across reload")
	}
	if u.Role != auth.RoleWorker {
		t.Fatalf("unexpected role %q", u.Role)
	}
}

func TestUserFileNeverLeaksHashUnderPublicKey(t *testing.T) {
	s, dir := newTestStore(t)
	if err := s.Users().Create(context.Background(), testUser("u1", "a@b.c")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "users.json"))
	if err != nil {
		t.Fatalf("read users.json: %v", err)
	}
	// The on-disk envelope stores the hash under its own key; the public
	// "password" field of the API must never appear.
	if !strings.Contains(string(b), `"passwordHash"`) {
		t.Fatalf("expected passwordHash envelope key on disk")
	}
	if strings.Contains(string(b), `"password"`+`:`) {
		t.Fatalf("unexpected plain password key on disk")
	}
}

func TestUserDuplicateEmailRejected(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	if err := s.Users().Create(ctx, testUser("u1", "a@b.c")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := s.Users().Create(ctx, testUser("u2", "A@B.C"))
	if !errors.Is(err, auth.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for case-insensitive duplicate, got %v", err)
	}
}

func TestUserListFilters(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	admin := testUser("u1", "rajesh@buildsmart.in")
	admin.Name = "Rajesh Kumar"
	admin.Role = auth.RoleAdmin
	worker := testUser("u2", "ramesh@buildsmart.in")
	worker.Name = "Ramesh Singh"
	worker.IsActive = false

	for _, u := range []*auth.User{admin, worker} {
		if err := s.Users().Create(ctx, u); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	role := auth.RoleAdmin
	byRole, err := s.Users().List(ctx, auth.UserFilter{Role: &role})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(byRole) != 1 || byRole[0].ID != "u1" {
		t.Fatalf("role filter failed: %v", byRole)
	}

	active := true
	byActive, err := s.Users().List(ctx, auth.UserFilter{IsActive: &active})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(byActive) != 1 || byActive[0].ID != "u1" {
		t.Fatalf("isActive filter failed")
	}

	bySearch, err := s.Users().List(ctx, auth.UserFilter{Search: "singh"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(bySearch) != 1 || bySearch[0].ID != "u2" {
		t.Fatalf("search filter failed")
	}
}

func TestTaskCRUD(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	task := &site.Task{ID: "t1", Title: "Pour foundation", Status: "Pending", CreatedAt: now, UpdatedAt: now}
	if err := s.Tasks().Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Tasks().Find(ctx, "t1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.Title != "Pour foundation" {
		t.Fatalf("unexpected title %q", got.Title)
	}

	got.Status = "In Progress"
	if err := s.Tasks().Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, err := s.Tasks().Find(ctx, "t1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if updated.Status != "In Progress" {
		t.Fatalf("update not applied")
	}

	if err := s.Tasks().Delete(ctx, "t1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Tasks().Find(ctx, "t1"); !errors.Is(err, site.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Tasks().Delete(ctx, "t1"); !errors.Is(err, site.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for double delete, got %v", err)
	}
}

func TestPersistReplacesFileAtomically(t *testing.T) {
	s, dir := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// An abandoned temp file from an interrupted earlier write must neither
	// break the store nor survive alongside the real collection files.
	stale := filepath.Join(dir, "tasks.json.tmp-123")
	if err := os.WriteFile(stale, []byte("{truncat"), 0o644); err != nil {
		t.Fatalf("write stale temp: %v", err)
	}

	for i, title := range []string{"Set rebar", "Pour slab", "Cure slab"} {
		task := &site.Task{ID: "t" + strings.Repeat("x", i+1), Title: title, Status: "pending", CreatedAt: now, UpdatedAt: now}
		if err := s.Tasks().Create(ctx, task); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if e.Name() == filepath.Base(stale) {
			continue
		}
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file %s left behind after persist", e.Name())
		}
	}

	// The renamed-in file must always be complete, parseable JSON.
	reloaded, err := New(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	tasks, err := reloaded.Tasks().List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks after reload, got %d", len(tasks))
	}
}

func TestCorruptCollectionFileFailsLoud(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tasks.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if _, err := New(dir); err == nil {
		t.Fatal("expected error for corrupt collection file")
	}
}
