// Package session is the client side of the authentication flow: an HTTP
// client for the API plus a holder that keeps the current identity, persists
// it across restarts and answers permission checks locally.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"buildsmart.in/internal/auth"
)

// APIError is a failure response from the server, carrying the
// machine-readable code when the server supplied one.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("session: api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("session: api error %d: %s", e.Status, e.Message)
}

// Client talks to the authentication API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type sessionResponse struct {
	Success bool          `json:"success"`
	Token   string        `json:"token"`
	User    auth.Identity `json:"user"`
	Message string        `json:"message"`
}

func (c *Client) Login(ctx context.Context, email, password string) (auth.Identity, string, error) {
	var resp sessionResponse
	err := c.post(ctx, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return auth.Identity{}, "", err
	}
	return resp.User, resp.Token, nil
}

func (c *Client) DemoLogin(ctx context.Context, role auth.Role) (auth.Identity, string, error) {
	var resp sessionResponse
	err := c.post(ctx, "/api/auth/demo-login", "", map[string]string{
		"role": string(role),
	}, &resp)
	if err != nil {
		return auth.Identity{}, "", err
	}
	return resp.User, resp.Token, nil
}

func (c *Client) Register(ctx context.Context, params auth.RegisterParams) (auth.Identity, string, error) {
	var resp sessionResponse
	err := c.post(ctx, "/api/auth/register", "", map[string]string{
		"name":       params.Name,
		"email":      params.Email,
		"password":   params.Password,
		"role":       string(params.Role),
		"site":       params.Site,
		"employeeId": params.EmployeeID,
	}, &resp)
	if err != nil {
		return auth.Identity{}, "", err
	}
	return resp.User, resp.Token, nil
}

func (c *Client) Me(ctx context.Context, token string) (*auth.User, error) {
	var resp struct {
		User *auth.User `json:"user"`
	}
	if err := c.get(ctx, "/api/auth/me", token, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) Refresh(ctx context.Context, token string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, "/api/auth/refresh", token, nil, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) get(ctx context.Context, path, token string, out any) error {
	return c.do(ctx, http.MethodGet, path, token, nil, out)
}

func (c *Client) post(ctx context.Context, path, token string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, token, body, out)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("session: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var failure struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(payload, &failure) == nil && failure.Error != "" {
			apiErr.Message = failure.Error
			apiErr.Code = failure.Code
		}
		return apiErr
	}
	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("session: decode response: %w", err)
		}
	}
	return nil
}
