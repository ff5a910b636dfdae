package hosted

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// StorageClient implements domain.BlobStore against the hosted object
// storage API.
type StorageClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	token   func() string
}

// NewStorageClient returns a StorageClient. token may be nil for anonymous access.
func NewStorageClient(baseURL, apiKey string, client *http.Client, token func() string) *StorageClient {
	if client == nil {
		client = http.DefaultClient
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &StorageClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		token:   token,
	}
}

type uploadResponse struct {
	Key string `json:"Key"`
}

func (c *StorageClient) Upload(ctx context.Context, bucket, filename, contentType string, content io.Reader) (string, error) {
	path := fmt.Sprintf("/storage/v1/object/%s/%s", url.PathEscape(bucket), url.PathEscape(filename))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, content)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	bearer := c.token()
	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("storage api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode storage response: %w", err)
	}
	// Key comes back as "bucket/filename"; the object path is the remainder.
	objectPath := strings.TrimPrefix(out.Key, bucket+"/")
	if objectPath == "" {
		objectPath = filename
	}
	return objectPath, nil
}

func (c *StorageClient) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, url.PathEscape(bucket), url.PathEscape(path))
}
