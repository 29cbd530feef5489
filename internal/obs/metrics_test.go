package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                                "/",
		"/metrics":                        "/metrics",
		"/api/users":                      "/api/users",
		"/api/users/01ABC":                "/api/users/:id",
		"/api/users/01ABC/permissions":    "/api/users/:id/permissions",
		"/api/users/stats/summary":        "/api/users/:id/summary",
		"/api/tasks/01ABC":                "/api/tasks/:id",
		"/api/materials/01ABC?fields=all": "/api/materials/:id",
		"/api/auth/login":                 "/api/auth/login",
		"/api/safety/01ABC/extra/deep":    "/api/safety/01ABC/extra/deep",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
