package reporting

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

// Init configures the global Sentry client. An empty DSN leaves reporting
// disabled and every capture becomes a no-op.
func Init(dsn string, environment string) error {
	if dsn == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	}); err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}

	slog.Info("sentry reporting enabled", "environment", environment)
	return nil
}

func hubFor(r *http.Request) *sentry.Hub {
	if r != nil {
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			return hub
		}
	}
	return sentry.CurrentHub().Clone()
}

// CaptureError reports err with the request's method, path and request id.
func CaptureError(r *http.Request, err error) {
	if err == nil || sentry.CurrentHub().Client() == nil {
		return
	}

	hub := hubFor(r)
	hub.WithScope(func(scope *sentry.Scope) {
		if r != nil {
			scope.SetRequest(r)
			scope.SetTag("request_id", r.Header.Get("X-Request-ID"))
		}
		hub.CaptureException(err)
	})
}

func CapturePanic(r *http.Request, recovered any) {
	if sentry.CurrentHub().Client() == nil {
		return
	}

	hub := hubFor(r)
	hub.WithScope(func(scope *sentry.Scope) {
		if r != nil {
			scope.SetRequest(r)
		}
		hub.Recover(recovered)
	})
}

func Flush(timeout time.Duration) {
	if sentry.CurrentHub().Client() == nil {
		return
	}
	sentry.Flush(timeout)
}
