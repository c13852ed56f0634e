package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jmylchreest/yourpalette/internal/colour"
	"github.com/jmylchreest/yourpalette/internal/export"
	imageutil "github.com/jmylchreest/yourpalette/internal/image"
)

var (
	// errBadRequest marks malformed requests (bad JSON, broken multipart).
	errBadRequest = errors.New("bad request")

	// errPayloadTooLarge marks bodies over the configured size limit.
	errPayloadTooLarge = errors.New("payload too large")
)

// clientErrors are the error kinds reported to the caller as 400.
var clientErrors = []error{
	imageutil.ErrNoFile,
	imageutil.ErrEmptyFilename,
	imageutil.ErrDisallowedExtension,
	imageutil.ErrUnreadableImage,
	colour.ErrEmptySamples,
	colour.ErrTooManyClusters,
	export.ErrUnsupportedFormat,
	errBadRequest,
	errPayloadTooLarge,
}

// statusFor maps an error to the HTTP status reported for it.
func statusFor(err error) int {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
