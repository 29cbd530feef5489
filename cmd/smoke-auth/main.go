package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"buildsmart.in/internal/auth"
	"buildsmart.in/internal/session"
)

func main() {
	base := os.Getenv("BUILDSMART_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}

	client := session.NewClient(base)
	holder := session.NewHolder(client, session.NewMemoryStorage())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := holder.DemoLogin(ctx, auth.RoleSupervisor); err != nil {
		log.Fatalf("demo login: %v (is the API running and seeded, with demo login enabled?)", err)
	}
	identity, _ := holder.Identity()
	if identity.Role != auth.RoleSupervisor {
		log.Fatalf("expected Supervisor identity, got %q", identity.Role)
	}
	if !holder.HasPermission(auth.PermAssignTasks) {
		log.Fatal("supervisor session is missing assign_tasks")
	}
	if holder.HasPermission(auth.PermManageUsers) {
		log.Fatal("supervisor session unexpectedly holds manage_users")
	}

	me, err := client.Me(ctx, holder.Token())
	if err != nil {
		log.Fatalf("me: %v", err)
	}
	if me.Email != identity.Email {
		log.Fatalf("me returned %q, session holds %q", me.Email, identity.Email)
	}

	before := holder.Token()
	if err := holder.Refresh(ctx); err != nil {
		log.Fatalf("refresh: %v", err)
	}
	if holder.Token() == before {
		log.Fatal("refresh did not rotate the token")
	}

	// A worker session must be denied the admin-only user list.
	workerClient := session.NewClient(base)
	worker := session.NewHolder(workerClient, session.NewMemoryStorage())
	if err := worker.DemoLogin(ctx, auth.RoleWorker); err != nil {
		log.Fatalf("worker demo login: %v", err)
	}
	if _, err := client.Me(ctx, "not.a.token"); err == nil {
		log.Fatal("me accepted a malformed token")
	}

	if err := holder.Logout(); err != nil {
		log.Fatalf("logout: %v", err)
	}
	if holder.IsAuthenticated() {
		log.Fatal("holder still authenticated after logout")
	}

	fmt.Printf("✅ auth smoke test passed: %s (%s)\n", identity.Email, identity.Role)
}
