package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"go-shop-api/internal/reporting"
	"go-shop-api/pkg/apierror"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			if recovered == http.ErrAbortHandler {
				panic(recovered)
			}

			slog.Error("panic recovered",
				"error", fmt.Sprintf("%v", recovered),
				"request_id", r.Header.Get(requestIDHeader),
				"stack", string(debug.Stack()),
			)
			reporting.CapturePanic(r, recovered)
			writeAPIError(w, apierror.Server("Unexpected server error"))
		}()

		next.ServeHTTP(w, r)
	})
}
