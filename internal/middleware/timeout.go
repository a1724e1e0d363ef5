package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go-shop-api/internal/model"
	"go-shop-api/pkg/apierror"
)

func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	apiErr := apierror.Unavailable("request timed out")
	body, _ := json.Marshal(model.ErrorResponse{
		Status:  apiErr.HTTPStatus,
		Kind:    string(apiErr.Kind),
		Message: apiErr.Message,
	})
	message := string(body)

	return func(next http.Handler) http.Handler {
		timed := http.TimeoutHandler(next, timeout, message)

		// TimeoutHandler writes its body straight to w, so the content type
		// has to be set up front. Handler headers still win on success.
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			timed.ServeHTTP(w, r)
		})
	}
}
