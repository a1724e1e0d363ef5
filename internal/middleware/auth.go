package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go-shop-api/internal/token"
	"go-shop-api/pkg/apierror"
)

// AccessTokenHeader carries the access token on authenticated routes.
const AccessTokenHeader = "access_token"

type accessVerifier interface {
	VerifyAccess(accessToken string) (*token.Claims, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

type AuthMiddleware struct {
	verifier accessVerifier
}

func NewAuthMiddleware(verifier accessVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(AccessTokenHeader))
		if raw == "" {
			writeAPIError(w, apierror.Unauthorized("missing access token"))
			return
		}

		claims, err := m.verifier.VerifyAccess(raw)
		if err != nil {
			var apiErr *apierror.APIError
			if !errors.As(err, &apiErr) {
				apiErr = apierror.Unauthorized("invalid token")
			}
			writeAPIError(w, apiErr)
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*token.Claims)
	return claims, ok
}

// WithClaims returns ctx carrying claims, as RequireAuth would.
func WithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, authClaimsContextKey, claims)
}
