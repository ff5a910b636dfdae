package hosted

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"campuseventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthClient_SignIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/v1/token", r.URL.Path)
		require.Equal(t, "password", r.URL.Query().Get("grant_type"))
		require.Equal(t, "test-key", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.edu", body["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "opaque-token",
			"expires_in": 3600,
			"user": {"id": "u1", "email": "ada@example.edu"}
		}`))
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL, "test-key", srv.Client())

	var notified []*domain.Session
	client.OnSessionChange(func(s *domain.Session) { notified = append(notified, s) })
	require.Len(t, notified, 1, "initial delivery on registration")
	assert.Nil(t, notified[0])

	require.NoError(t, client.SignIn(context.Background(), "ada@example.edu", "secret"))

	session := client.CurrentSession()
	require.NotNil(t, session)
	assert.Equal(t, "u1", session.UserID)
	assert.Equal(t, "ada@example.edu", session.Email)
	assert.Equal(t, "opaque-token", client.AccessToken())
	assert.False(t, session.Expired())

	require.Len(t, notified, 2)
	require.NotNil(t, notified[1])
	assert.Equal(t, "u1", notified[1].UserID)
}

func TestAuthClient_SignIn_ReadsClaimsFromJWT(t *testing.T) {
	// Unsigned-alg token with sub and email claims; the client parses without
	// verification.
	const token = "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." +
		"eyJzdWIiOiJjbGFpbS11c2VyIiwiZW1haWwiOiJjbGFpbUBleGFtcGxlLmVkdSJ9."

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "` + token + `", "expires_in": 60, "user": {"id": "u1", "email": "ada@example.edu"}}`))
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL, "test-key", srv.Client())
	require.NoError(t, client.SignIn(context.Background(), "ada@example.edu", "secret"))

	session := client.CurrentSession()
	require.NotNil(t, session)
	assert.Equal(t, "claim-user", session.UserID)
	assert.Equal(t, "claim@example.edu", session.Email)
}

func TestAuthClient_SignIn_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_description": "Invalid login credentials"}`))
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL, "test-key", srv.Client())
	err := client.SignIn(context.Background(), "ada@example.edu", "wrong")

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Nil(t, client.CurrentSession())
}

func TestAuthClient_SignUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/signup", r.URL.Path)
		var body struct {
			Email string                `json:"email"`
			Data  domain.SignUpMetadata `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ada", body.Data.FirstName)
		assert.Equal(t, domain.RoleUser, body.Data.Role)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL, "test-key", srv.Client())
	meta := domain.SignUpMetadata{FirstName: "Ada", LastName: "Lovelace", Role: domain.RoleUser}
	require.NoError(t, client.SignUp(context.Background(), "ada@example.edu", "secret123", meta))

	// No session until the verified first sign-in.
	assert.Nil(t, client.CurrentSession())
}

func TestAuthClient_SignUp_ErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "duplicate email", status: 422, body: `{"msg": "User already registered"}`, wantErr: domain.ErrDuplicateEmail},
		{name: "weak password", status: 422, body: `{"msg": "Password should be at least 6 characters"}`, wantErr: domain.ErrWeakPassword},
		{name: "generic 400", status: 400, body: `{}`, wantErr: domain.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewAuthClient(srv.URL, "test-key", srv.Client())
			err := client.SignUp(context.Background(), "ada@example.edu", "pw", domain.SignUpMetadata{})

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthClient_SignOut(t *testing.T) {
	var sawLogout bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/v1/token":
			_, _ = w.Write([]byte(`{"access_token": "tok", "expires_in": 60, "user": {"id": "u1", "email": "a@b.edu"}}`))
		case "/auth/v1/logout":
			sawLogout = true
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL, "test-key", srv.Client())
	require.NoError(t, client.SignIn(context.Background(), "a@b.edu", "pw"))

	var lastNotified *domain.Session
	client.OnSessionChange(func(s *domain.Session) { lastNotified = s })

	require.NoError(t, client.SignOut(context.Background()))

	assert.True(t, sawLogout)
	assert.Nil(t, client.CurrentSession())
	assert.Nil(t, lastNotified)
	assert.Empty(t, client.AccessToken())
}

func TestAuthClient_SignOutWithoutSessionSkipsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL, "test-key", srv.Client())
	require.NoError(t, client.SignOut(context.Background()))
}

func TestAuthClient_Unsubscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "tok", "expires_in": 60, "user": {"id": "u1", "email": "a@b.edu"}}`))
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL, "test-key", srv.Client())
	calls := 0
	unsubscribe := client.OnSessionChange(func(*domain.Session) { calls++ })
	require.Equal(t, 1, calls)

	unsubscribe()
	require.NoError(t, client.SignIn(context.Background(), "a@b.edu", "pw"))

	assert.Equal(t, 1, calls)
}
