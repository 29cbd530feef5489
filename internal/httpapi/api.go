// Package httpapi is the HTTP layer: route registration, the bearer-token
// middleware, and handlers mapping domain errors onto the wire taxonomy.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"buildsmart.in/internal/auth"
	"buildsmart.in/internal/obs"
	"buildsmart.in/internal/site"
)

// ReadyProbe reports readiness, pinging the database when one is configured.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP surface.
type API struct {
	auth      *auth.Service
	users     auth.UserStore
	resources site.Store

	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	rateBurst  int
	ratePerSec int
}

// Option configures optional API behavior.
type Option func(*API)

// WithRateLimit enables the per-IP token bucket on the whole surface.
func WithRateLimit(burst, perSecond int) Option {
	return func(a *API) {
		a.rateBurst = burst
		a.ratePerSec = perSecond
	}
}

func New(svc *auth.Service, users auth.UserStore, resources site.Store, rp ReadyProbe, version string, opts ...Option) *API {
	a := &API{
		auth:       svc,
		users:      users,
		resources:  resources,
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/api/auth/login", a.handleLogin)
	a.mux.HandleFunc("/api/auth/register", a.handleRegister)
	a.mux.HandleFunc("/api/auth/demo-login", a.handleDemoLogin)
	a.mux.HandleFunc("/api/auth/refresh", a.handleRefresh)
	a.mux.HandleFunc("/api/auth/me", a.handleMe)

	a.mux.HandleFunc("/api/users", a.handleUsersCollection)
	a.mux.HandleFunc("/api/users/", a.handleUserResource)

	a.mux.HandleFunc("/api/roles/", a.handleRoleResource)

	a.mux.HandleFunc("/api/tasks", a.handleTasksCollection)
	a.mux.HandleFunc("/api/tasks/", a.handleTaskResource)
	a.mux.HandleFunc("/api/materials", a.handleMaterialsCollection)
	a.mux.HandleFunc("/api/materials/", a.handleMaterialResource)
	a.mux.HandleFunc("/api/workforce", a.handleWorkforceCollection)
	a.mux.HandleFunc("/api/workforce/", a.handleWorkforceResource)
	a.mux.HandleFunc("/api/safety", a.handleSafetyCollection)
	a.mux.HandleFunc("/api/safety/", a.handleSafetyResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler assembles the middleware chain around the mux. Instrumentation sits
// outermost so every request, including rejected ones, is counted.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	if a.rateBurst > 0 && a.ratePerSec > 0 {
		h = RateLimit(h, a.rateBurst, a.ratePerSec)
	}
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "buildsmart-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
