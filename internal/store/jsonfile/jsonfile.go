// Package jsonfile persists every collection as a flat JSON file under a data
// directory. It is the zero-dependency persistence mode; the Postgres store
// is the other.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"buildsmart.in/internal/auth"
	"buildsmart.in/internal/site"
)

// Store keeps each collection in memory behind a lock and writes the backing
// file through on every mutation.
type Store struct {
	users     *userCollection
	tasks     *collection[site.Task]
	materials *collection[site.Material]
	workforce *collection[site.WorkforceMember]
	safety    *collection[site.SafetyAlert]
}

// New loads (or lazily creates) the collection files under dir.
func New(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("jsonfile: data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("jsonfile: create data dir: %w", err)
	}

	users, err := newUserCollection(filepath.Join(dir, "users.json"))
	if err != nil {
		return nil, err
	}
	tasks, err := newCollection[site.Task](filepath.Join(dir, "tasks.json"), func(t *site.Task) string { return t.ID })
	if err != nil {
		return nil, err
	}
	materials, err := newCollection[site.Material](filepath.Join(dir, "materials.json"), func(m *site.Material) string { return m.ID })
	if err != nil {
		return nil, err
	}
	workforce, err := newCollection[site.WorkforceMember](filepath.Join(dir, "workforce.json"), func(w *site.WorkforceMember) string { return w.ID })
	if err != nil {
		return nil, err
	}
	safety, err := newCollection[site.SafetyAlert](filepath.Join(dir, "safety.json"), func(a *site.SafetyAlert) string { return a.ID })
	if err != nil {
		return nil, err
	}

	return &Store{
		users:     users,
		tasks:     tasks,
		materials: materials,
		workforce: workforce,
		safety:    safety,
	}, nil
}

// Users returns the credential-record repository.
func (s *Store) Users() auth.UserStore { return s.users }

func (s *Store) Tasks() site.TaskStore           { return taskStore{s.tasks} }
func (s *Store) Materials() site.MaterialStore   { return materialStore{s.materials} }
func (s *Store) Workforce() site.WorkforceStore  { return workforceStore{s.workforce} }
func (s *Store) Safety() site.SafetyStore        { return safetyStore{s.safety} }

// collection is a file-backed map of records keyed by id.
type collection[T any] struct {
	path string
	key  func(*T) string

	mu      sync.RWMutex
	records map[string]*T
}

func newCollection[T any](path string, key func(*T) string) (*collection[T], error) {
	c := &collection[T]{path: path, key: key, records: make(map[string]*T)}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *collection[T]) load() error {
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
	var decoded []*T
	if err := json.Unmarshal(b, &decoded); err != nil {
		return fmt.Errorf("jsonfile: decode %s: %w", c.path, err)
	}
	for _, rec := range decoded {
		id := c.key(rec)
		if strings.TrimSpace(id) == "" {
			continue
		}
		c.records[id] = rec
	}
	return nil
}

func (c *collection[T]) persistLocked() error {
	out := make([]*T, 0, len(c.records))
	for _, rec := range c.records {
		out = append(out, rec)
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encode %s: %w", c.path, err)
	}
	return writeAtomic(c.path, b, 0o644)
}

// writeAtomic replaces path via a temp file and rename, so a crash mid-write
// never leaves a truncated collection file behind.
func writeAtomic(path string, data []byte, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("jsonfile: write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("jsonfile: write %s: %w", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("jsonfile: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("jsonfile: write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("jsonfile: write %s: %w", path, err)
	}
	return nil
}

func (c *collection[T]) create(rec *T) error {
	id := c.key(rec)
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", site.ErrInvalidInput)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *rec
	c.records[id] = &cp
	return c.persistLocked()
}

func (c *collection[T]) find(id string) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[id]
	if !ok {
		return nil, site.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (c *collection[T]) list() []*T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*T, 0, len(c.records))
	for _, rec := range c.records {
		cp := *rec
		out = append(out, &cp)
	}
	return out
}

func (c *collection[T]) update(rec *T) error {
	id := c.key(rec)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[id]; !ok {
		return site.ErrNotFound
	}
	cp := *rec
	c.records[id] = &cp
	return c.persistLocked()
}

func (c *collection[T]) delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[id]; !ok {
		return site.ErrNotFound
	}
	delete(c.records, id)
	return c.persistLocked()
}

// Typed wrappers so each repository satisfies its site interface.

type taskStore struct{ c *collection[site.Task] }

func (s taskStore) Create(_ context.Context, t *site.Task) error      { return s.c.create(t) }
func (s taskStore) Find(_ context.Context, id string) (*site.Task, error) { return s.c.find(id) }
func (s taskStore) List(_ context.Context) ([]*site.Task, error)      { return s.c.list(), nil }
func (s taskStore) Update(_ context.Context, t *site.Task) error      { return s.c.update(t) }
func (s taskStore) Delete(_ context.Context, id string) error         { return s.c.delete(id) }

type materialStore struct{ c *collection[site.Material] }

func (s materialStore) Create(_ context.Context, m *site.Material) error { return s.c.create(m) }
func (s materialStore) Find(_ context.Context, id string) (*site.Material, error) {
	return s.c.find(id)
}
func (s materialStore) List(_ context.Context) ([]*site.Material, error) { return s.c.list(), nil }
func (s materialStore) Update(_ context.Context, m *site.Material) error { return s.c.update(m) }
func (s materialStore) Delete(_ context.Context, id string) error        { return s.c.delete(id) }

type workforceStore struct{ c *collection[site.WorkforceMember] }

func (s workforceStore) Create(_ context.Context, w *site.WorkforceMember) error {
	return s.c.create(w)
}
func (s workforceStore) Find(_ context.Context, id string) (*site.WorkforceMember, error) {
	return s.c.find(id)
}
func (s workforceStore) List(_ context.Context) ([]*site.WorkforceMember, error) {
	return s.c.list(), nil
}
func (s workforceStore) Update(_ context.Context, w *site.WorkforceMember) error {
	return s.c.update(w)
}
func (s workforceStore) Delete(_ context.Context, id string) error { return s.c.delete(id) }

type safetyStore struct{ c *collection[site.SafetyAlert] }

func (s safetyStore) Create(_ context.Context, a *site.SafetyAlert) error { return s.c.create(a) }
func (s safetyStore) Find(_ context.Context, id string) (*site.SafetyAlert, error) {
	return s.c.find(id)
}
func (s safetyStore) List(_ context.Context) ([]*site.SafetyAlert, error) { return s.c.list(), nil }
func (s safetyStore) Update(_ context.Context, a *site.SafetyAlert) error { return s.c.update(a) }
func (s safetyStore) Delete(_ context.Context, id string) error           { return s.c.delete(id) }
