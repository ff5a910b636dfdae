// Package hosted contains HTTP clients for the hosted backend: the token auth
// API, the REST data API, and the object storage API sharing one base URL and
// API key.
package hosted

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"campuseventhub/internal/domain"
)

// AuthClient implements domain.AuthProvider against the hosted auth API.
// It keeps the current session and fans session-change notifications out to
// subscribers, in emission order.
type AuthClient struct {
	baseURL string
	apiKey  string
	client  *http.Client

	mu      sync.Mutex
	session *domain.Session
	subs    map[int]func(*domain.Session)
	nextSub int
}

// NewAuthClient returns an AuthClient for the given backend base URL and API key.
func NewAuthClient(baseURL, apiKey string, client *http.Client) *AuthClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &AuthClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		subs:    make(map[int]func(*domain.Session)),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type apiErrorResponse struct {
	Message          string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *apiErrorResponse) text() string {
	for _, s := range []string{e.ErrorDescription, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (c *AuthClient) SignIn(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	var resp tokenResponse
	if err := c.post(ctx, "/auth/v1/token?grant_type=password", body, "", &resp); err != nil {
		return err
	}
	session := c.sessionFromToken(resp)
	c.setSession(session)
	return nil
}

func (c *AuthClient) SignUp(ctx context.Context, email, password string, meta domain.SignUpMetadata) error {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     meta,
	}
	// Signup does not establish a session here; the backend requires email
	// verification before the first sign-in.
	return c.post(ctx, "/auth/v1/signup", body, "", nil)
}

func (c *AuthClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := ""
	if c.session != nil {
		token = c.session.AccessToken
	}
	c.mu.Unlock()
	if token != "" {
		if err := c.post(ctx, "/auth/v1/logout", struct{}{}, token, nil); err != nil {
			return err
		}
	}
	c.setSession(nil)
	return nil
}

func (c *AuthClient) CurrentSession() *domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// AccessToken returns the current bearer token, or empty when signed out.
// The data and storage clients use it for per-request authorization.
func (c *AuthClient) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.AccessToken
}

func (c *AuthClient) OnSessionChange(cb func(*domain.Session)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = cb
	current := c.session
	var copied *domain.Session
	if current != nil {
		s := *current
		copied = &s
	}
	c.mu.Unlock()

	// Initial delivery with the current session, per the provider contract.
	cb(copied)

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *AuthClient) setSession(s *domain.Session) {
	c.mu.Lock()
	c.session = s
	cbs := make([]func(*domain.Session), 0, len(c.subs))
	for _, cb := range c.subs {
		cbs = append(cbs, cb)
	}
	c.mu.Unlock()
	for _, cb := range cbs {
		var copied *domain.Session
		if s != nil {
			cp := *s
			copied = &cp
		}
		cb(copied)
	}
}

// sessionFromToken builds the local session mirror from a token response,
// preferring the access token's own claims for subject, email, and expiry.
func (c *AuthClient) sessionFromToken(resp tokenResponse) *domain.Session {
	session := &domain.Session{
		AccessToken: resp.AccessToken,
		UserID:      resp.User.ID,
		Email:       resp.User.Email,
	}
	if resp.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	claims := jwt.MapClaims{}
	// The signing secret lives with the backend; the client reads claims
	// without verifying.
	if _, _, err := jwt.NewParser().ParseUnverified(resp.AccessToken, claims); err == nil {
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			session.UserID = sub
		}
		if email, ok := claims["email"].(string); ok && email != "" {
			session.Email = email
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			session.ExpiresAt = exp.Time
		}
	}
	return session
}

func (c *AuthClient) post(ctx context.Context, path string, body any, bearer string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr apiErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return classifyAuthError(resp.StatusCode, apiErr.text())
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode auth response: %w", err)
		}
	}
	return nil
}

// classifyAuthError maps the auth API's status and message onto the domain's
// sentinel errors so callers can branch with errors.Is.
func classifyAuthError(status int, message string) error {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "already registered"), strings.Contains(lower, "already exists"):
		return fmt.Errorf("%s: %w", message, domain.ErrDuplicateEmail)
	case strings.Contains(lower, "password"):
		return fmt.Errorf("%s: %w", message, domain.ErrWeakPassword)
	case status == http.StatusBadRequest, status == http.StatusUnauthorized:
		if message == "" {
			return domain.ErrInvalidCredentials
		}
		return fmt.Errorf("%s: %w", message, domain.ErrInvalidCredentials)
	}
	if message == "" {
		message = fmt.Sprintf("auth api returned status %d", status)
	}
	return fmt.Errorf("auth api: %s", message)
}
