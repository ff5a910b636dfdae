package controllers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBlobStore records uploads and serves deterministic public URLs.
type fakeBlobStore struct {
	uploadErr error

	lastBucket      string
	lastFilename    string
	lastContentType string
	lastBody        []byte
}

func (f *fakeBlobStore) Upload(ctx context.Context, bucket, filename, contentType string, body io.Reader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.lastBucket = bucket
	f.lastFilename = filename
	f.lastContentType = contentType
	f.lastBody, _ = io.ReadAll(body)
	return filename, nil
}

func (f *fakeBlobStore) PublicURL(bucket, path string) string {
	return "https://cdn.example.edu/" + bucket + "/" + path
}

func multipartUpload(t *testing.T, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads/poster", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadPoster(t *testing.T) {
	blobs := &fakeBlobStore{}
	ctrl := NewUploadController(testLogger, blobs, "event-posters")

	rr := httptest.NewRecorder()
	ctrl.UploadPoster(rr, multipartUpload(t, "jazz.png", "image/png", []byte("png-bytes")))

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "event-posters", blobs.lastBucket)
	assert.Equal(t, "image/png", blobs.lastContentType)
	assert.Equal(t, []byte("png-bytes"), blobs.lastBody)
	// Stored name keeps the original base name behind a timestamp prefix.
	assert.Regexp(t, `^\d+-jazz\.png$`, blobs.lastFilename)
	assert.Contains(t, rr.Body.String(), "https://cdn.example.edu/event-posters/")
}

func TestUploadPoster_RejectsNonImage(t *testing.T) {
	blobs := &fakeBlobStore{}
	ctrl := NewUploadController(testLogger, blobs, "event-posters")

	rr := httptest.NewRecorder()
	ctrl.UploadPoster(rr, multipartUpload(t, "notes.pdf", "application/pdf", []byte("%PDF")))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "only image files")
	assert.Empty(t, blobs.lastFilename)
}

func TestUploadPoster_MissingFilePart(t *testing.T) {
	ctrl := NewUploadController(testLogger, &fakeBlobStore{}, "event-posters")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/uploads/poster", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rr := httptest.NewRecorder()
	ctrl.UploadPoster(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "missing file")
}

func TestUploadPoster_OversizedUpload(t *testing.T) {
	ctrl := NewUploadController(testLogger, &fakeBlobStore{}, "event-posters")

	big := bytes.Repeat([]byte("x"), 5<<20+1)
	rr := httptest.NewRecorder()
	ctrl.UploadPoster(rr, multipartUpload(t, "huge.png", "image/png", big))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "5MB")
}

func TestUploadPoster_StoreFailure(t *testing.T) {
	blobs := &fakeBlobStore{uploadErr: errors.New("storage down")}
	ctrl := NewUploadController(testLogger, blobs, "event-posters")

	rr := httptest.NewRecorder()
	ctrl.UploadPoster(rr, multipartUpload(t, "jazz.png", "image/png", []byte("png")))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
