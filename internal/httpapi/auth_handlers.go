package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"buildsmart.in/internal/audit"
	"buildsmart.in/internal/auth"
	"buildsmart.in/internal/obs"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Site       string `json:"site"`
	EmployeeID string `json:"employeeId"`
}

type demoLoginRequest struct {
	Role string `json:"role"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "Email and password are required")
		return
	}

	sess, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		obs.CountLogin("failure")
		a.handleAuthError(w, r, err)
		return
	}

	obs.CountLogin("success")
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"user_id": sess.Identity.ID,
		"email":   sess.Identity.Email,
		"role":    string(sess.Identity.Role),
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   sess.Token,
		"user":    sess.Identity,
	})
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := a.auth.Register(r.Context(), auth.RegisterParams{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       auth.Role(req.Role),
		Site:       req.Site,
		EmployeeID: req.EmployeeID,
	})
	if err != nil {
		a.handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.register", map[string]any{
		"user_id": sess.Identity.ID,
		"email":   sess.Identity.Email,
		"role":    string(sess.Identity.Role),
	})
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"token":   sess.Token,
		"user":    sess.Identity,
	})
}

func (a *API) handleDemoLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req demoLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := a.auth.DemoLogin(r.Context(), auth.Role(req.Role))
	if err != nil {
		a.handleAuthError(w, r, err)
		return
	}

	obs.CountLogin("demo")
	_ = audit.LogEvent(r.Context(), "auth.demo_login", map[string]any{
		"user_id": sess.Identity.ID,
		"role":    string(sess.Identity.Role),
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   sess.Token,
		"user":    sess.Identity,
		"message": "Demo login successful",
	})
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	token, ok := auth.TokenFromContext(r.Context())
	if !ok {
		writeErrorCode(w, r, http.StatusUnauthorized, "Authentication required", "AUTH_REQUIRED")
		return
	}

	sess, err := a.auth.Refresh(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotFound), errors.Is(err, auth.ErrAccountInactive):
			writeError(w, r, http.StatusForbidden, "User not found or inactive")
		case errors.Is(err, auth.ErrTokenExpired):
			writeErrorCode(w, r, http.StatusUnauthorized, "Token expired", "TOKEN_EXPIRED")
		case errors.Is(err, auth.ErrInvalidToken):
			writeErrorCode(w, r, http.StatusUnauthorized, "Invalid token", "INVALID_TOKEN")
		default:
			writeError(w, r, http.StatusInternalServerError, "Token refresh failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   sess.Token,
	})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := a.auth.Me(r.Context(), identity.ID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "User not found")
		case errors.Is(err, auth.ErrAccountInactive):
			writeErrorCode(w, r, http.StatusForbidden, "Account is deactivated", "ACCOUNT_INACTIVE")
		default:
			writeError(w, r, http.StatusInternalServerError, "Failed to get profile")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

// handleAuthError maps authentication service errors onto the wire taxonomy.
func (a *API) handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidInput), errors.Is(err, auth.ErrUnknownRole):
		writeError(w, r, http.StatusBadRequest, userMessage(err))
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeErrorCode(w, r, http.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS")
	case errors.Is(err, auth.ErrAccountInactive):
		writeErrorCode(w, r, http.StatusForbidden, "Account is deactivated", "ACCOUNT_INACTIVE")
	case errors.Is(err, auth.ErrAlreadyExists):
		writeErrorCode(w, r, http.StatusConflict, "User already exists", "USER_EXISTS")
	case errors.Is(err, auth.ErrDemoDisabled):
		writeError(w, r, http.StatusNotFound, "Demo login is not available")
	case errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, userMessage(err))
	default:
		writeError(w, r, http.StatusInternalServerError, "Authentication failed")
	}
}

// userMessage strips the package prefix from sentinel-wrapped validation
// errors before they reach the client.
func userMessage(err error) string {
	return strings.TrimPrefix(err.Error(), "auth: ")
}
