package hosted

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageClient_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/storage/v1/object/event-posters/123-jazz.png", r.URL.Path)
		require.Equal(t, "image/png", r.Header.Get("Content-Type"))
		require.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "png-bytes", string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Key": "event-posters/123-jazz.png"}`))
	}))
	defer srv.Close()

	client := NewStorageClient(srv.URL, "test-key", srv.Client(), func() string { return "user-token" })
	path, err := client.Upload(context.Background(), "event-posters", "123-jazz.png", "image/png", strings.NewReader("png-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "123-jazz.png", path)
}

func TestStorageClient_UploadWithoutTokenFallsBackToAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Key": "b/f.png"}`))
	}))
	defer srv.Close()

	client := NewStorageClient(srv.URL, "test-key", srv.Client(), nil)
	_, err := client.Upload(context.Background(), "b", "f.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
}

func TestStorageClient_UploadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		_, _ = w.Write([]byte(`{"message": "payload too large"}`))
	}))
	defer srv.Close()

	client := NewStorageClient(srv.URL, "test-key", srv.Client(), nil)
	_, err := client.Upload(context.Background(), "b", "f.png", "image/png", strings.NewReader("x"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "413")
}

func TestStorageClient_PublicURL(t *testing.T) {
	client := NewStorageClient("https://backend.example.edu", "test-key", nil, nil)

	got := client.PublicURL("event-posters", "123-jazz.png")

	assert.Equal(t, "https://backend.example.edu/storage/v1/object/public/event-posters/123-jazz.png", got)
}
