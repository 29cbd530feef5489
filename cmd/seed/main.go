// Command seed provisions the demo accounts into the configured store. It is
// idempotent: accounts that already exist are left untouched.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"buildsmart.in/internal/auth"
	"buildsmart.in/internal/config"
	"buildsmart.in/internal/ids"
	"buildsmart.in/internal/store/jsonfile"
	"buildsmart.in/internal/store/pg"
)

var employeeIDs = map[auth.Role]string{
	auth.RoleAdmin:          "EMP001",
	auth.RoleProjectManager: "EMP002",
	auth.RoleSupervisor:     "EMP003",
	auth.RoleWorker:         "EMP004",
}

func main() {
	password := flag.String("password", "demo123", "password assigned to every seeded account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var users auth.UserStore
	switch cfg.Store.Mode {
	case config.StorePostgres:
		db, err := sql.Open("pgx", cfg.Store.PGDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer db.Close()
		users = pg.New(db).Users()
	case config.StoreJSON:
		store, err := jsonfile.New(cfg.Store.DataDir)
		if err != nil {
			log.Fatalf("open json store: %v", err)
		}
		users = store.Users()
	default:
		log.Fatalf("unknown store mode %q", cfg.Store.Mode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := seed(ctx, users, *password); err != nil {
		log.Fatalf("seed: %v", err)
	}
}

func seed(ctx context.Context, users auth.UserStore, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	for _, role := range auth.Roles {
		demo, ok := auth.DemoUsers[role]
		if !ok {
			continue
		}
		if _, err := users.FindByEmail(ctx, auth.NormalizeEmail(demo.Email)); err == nil {
			fmt.Printf("skip  %-28s (exists)\n", demo.Email)
			continue
		} else if !errors.Is(err, auth.ErrNotFound) {
			return err
		}
		now := time.Now().UTC()
		user := &auth.User{
			ID:           ids.New(),
			Name:         demo.Name,
			Email:        auth.NormalizeEmail(demo.Email),
			PasswordHash: hash,
			Role:         role,
			Site:         auth.DefaultSite,
			Permissions:  auth.DefaultPermissions(role),
			EmployeeID:   employeeIDs[role],
			Department:   "Construction",
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("create %s: %w", demo.Email, err)
		}
		fmt.Printf("seed  %-28s role=%s\n", demo.Email, role)
	}
	return nil
}
