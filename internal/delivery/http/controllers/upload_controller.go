package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"campuseventhub/internal/delivery/http/helpers"
	"campuseventhub/internal/domain"
)

// maxPosterSize is the upload limit for event posters.
const maxPosterSize = 5 << 20

// UploadController serves poster image uploads into the blob store.
type UploadController struct {
	Logger *slog.Logger
	Blobs  domain.BlobStore
	Bucket string
}

func NewUploadController(logger *slog.Logger, blobs domain.BlobStore, bucket string) *UploadController {
	return &UploadController{
		Logger: logger,
		Blobs:  blobs,
		Bucket: bucket,
	}
}

// UploadPosterResponse is the data payload for POST /uploads/poster (201).
type UploadPosterResponse struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// UploadPosterSuccessResponse is the success response envelope for POST /uploads/poster (201).
type UploadPosterSuccessResponse struct {
	Data  UploadPosterResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// UploadPoster godoc
// @Summary Upload an event poster image
// @Description Accepts a multipart form with a "file" part. Only image content types up to 5MB are accepted. The stored filename is prefixed with a millisecond timestamp to avoid collisions, and the response contains the public URL. Admin only.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file"
// @Success 201 {object} controllers.UploadPosterSuccessResponse "data contains path and public URL"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (not an image or too large)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /uploads/poster [post]
func (c *UploadController) UploadPoster(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPosterSize)
	if err := r.ParseMultipartForm(maxPosterSize); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "image must be 5MB or smaller")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "only image files are accepted")
		return
	}
	if header.Size > maxPosterSize {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "image must be 5MB or smaller")
		return
	}

	filename := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(header.Filename))
	path, err := c.Blobs.Upload(r.Context(), c.Bucket, filename, contentType, file)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, UploadPosterResponse{
		Path: path,
		URL:  c.Blobs.PublicURL(c.Bucket, path),
	})
}
