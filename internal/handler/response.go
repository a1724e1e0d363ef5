package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-shop-api/internal/model"
	"go-shop-api/internal/reporting"
	"go-shop-api/pkg/apierror"
)

const maxBodyBytes = 1 << 20

type validator interface {
	Struct(s any) error
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError renders err as an ErrorResponse. Anything that is not an
// *apierror.APIError is logged, reported and hidden behind a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierror.APIError
	if !errors.As(err, &apiErr) {
		slog.Error("unhandled error in writeError",
			"error", err.Error(),
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Header.Get("X-Request-ID"),
		)
		reporting.CaptureError(r, err)
		apiErr = apierror.Server("Unexpected server error")
	}

	writeJSON(w, apiErr.HTTPStatus, model.ErrorResponse{
		Status:  apiErr.HTTPStatus,
		Kind:    string(apiErr.Kind),
		Message: apiErr.Message,
		Errors:  apiErr.Fields,
	})
}

// decodeAndValidate reads a JSON body into dst and runs the validation stage.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v validator, dst any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apierror.Validation("invalid JSON body", nil)
	}

	return v.Struct(dst)
}
