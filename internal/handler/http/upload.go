package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/training-records-backend/internal/handler/http/response"
)

const (
	// formOverhead leaves room for the text fields and part headers next to the file.
	formOverhead = 1 << 20

	// maxJSONBody caps JSON bodies that carry no file content.
	maxJSONBody = 1 << 20
)

// parseUploadForm caps the body and parses a multipart or urlencoded form.
// It writes the error response itself and returns false on failure.
func parseUploadForm(w http.ResponseWriter, r *http.Request, maxUploadSize int64) bool {
	limit := maxUploadSize + formOverhead
	if r.ContentLength > limit {
		response.RequestEntityTooLarge(w, "Request body exceeds the upload size limit")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var err error
	if isMultipart(r) {
		err = r.ParseMultipartForm(maxUploadSize)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		response.RequestEntityTooLarge(w, "Request body exceeds the upload size limit")
		return false
	}

	slog.Error("Failed to parse form", "error", err)
	response.BadRequest(w, "Failed to parse form data", nil)
	return false
}

// decodeJSON reads at most limit bytes of JSON into dst.
// It writes the error response itself and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, limit int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		response.RequestEntityTooLarge(w, "Request body exceeds the size limit")
		return false
	}

	slog.Debug("Failed to decode JSON body", "path", r.URL.Path, "error", err)
	response.BadRequest(w, "Invalid request format", nil)
	return false
}

// inlineRefLimit is the JSON body size that fits a base64 data URI of maxUploadSize bytes.
func inlineRefLimit(maxUploadSize int64) int64 {
	return (maxUploadSize+2)/3*4 + formOverhead
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && (mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"))
}
