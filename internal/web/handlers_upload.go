package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/JonMunkholm/tabcheck/internal/logging"
	"github.com/go-chi/chi/v5"
)

// UploadResult is the response to a stored upload.
type UploadResult struct {
	ResourceID string `json:"resource_id"`
	Size       int64  `json:"size"`
}

// handleUpload stores the request body as the file of a resource. The
// body is the raw file; its size is capped by STORAGE_MAX_UPLOAD_SIZE.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resourceID")
	maxSize := s.cfg.Storage.MaxUploadSize

	if r.ContentLength > maxSize {
		s.respondError(w, r, errUploadTooLarge)
		return
	}

	body := &countingReader{r: http.MaxBytesReader(w, r.Body, maxSize)}
	if err := s.uploads.Put(r.Context(), resourceID, body, r.ContentLength); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			err = errUploadTooLarge
		}
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("upload stored",
		"resource_id", resourceID,
		"bytes", body.n,
	)
	writeJSONStatus(w, http.StatusCreated, UploadResult{ResourceID: resourceID, Size: body.n})
}

// countingReader counts the bytes read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
