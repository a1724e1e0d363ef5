package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"go-shop-api/internal/middleware"
	"go-shop-api/internal/model"
	"go-shop-api/internal/token"
	"go-shop-api/internal/validation"
	"go-shop-api/pkg/apierror"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()

	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteErrorHidesUnclassifiedErrors(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	writeError(rec, req, errors.New(`pq: relation "users" does not exist`))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "SERVER_ERROR", body.Kind)
	require.Equal(t, "Unexpected server error", body.Message)
	require.NotContains(t, rec.Body.String(), "relation")
}

func TestWriteErrorRendersAPIError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signup", nil)
	writeError(rec, req, apierror.Validation("invalid request body", map[string]string{"email": "is required"}))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	require.Equal(t, http.StatusUnprocessableEntity, body.Status)
	require.Equal(t, map[string]string{"email": "is required"}, body.Errors)
}

type stubAuth struct {
	signups int
}

func (s *stubAuth) Signup(context.Context, model.SignupRequest) (string, error) {
	s.signups++
	return "u-1", nil
}

func (s *stubAuth) Login(context.Context, model.LoginRequest) (model.TokenPair, error) {
	return model.TokenPair{}, nil
}

func (s *stubAuth) Refresh(context.Context, string) (model.TokenPair, error) {
	return model.TokenPair{}, nil
}

func (s *stubAuth) CurrentUser(context.Context, string) (model.PublicUser, error) {
	return model.PublicUser{}, nil
}

func TestSignupRejectsMalformedJSONBeforeService(t *testing.T) {
	t.Parallel()

	svc := &stubAuth{}
	h := NewAuthHandler(svc, validation.New())

	rec := httptest.NewRecorder()
	h.Signup(rec, httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"name":`)))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "VALIDATION_ERROR", decode(t, rec).Kind)
	require.Zero(t, svc.signups)

	rec = httptest.NewRecorder()
	h.Signup(rec, httptest.NewRequest(http.MethodPost, "/signup",
		strings.NewReader(`{"name":"Alice","email":"a@x.com","password":"pw123"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, svc.signups)
}

type stubCart struct{}

func (stubCart) AddItem(context.Context, string, model.AddToCartRequest) error { return nil }

func (stubCart) Items(context.Context, string) ([]model.CartItem, error) {
	return []model.CartItem{}, nil
}

func (stubCart) Checkout(context.Context, string) (model.Checkout, error) {
	return model.Checkout{TotalCents: 100, Items: 1}, nil
}

func TestCartListRequiresOwnership(t *testing.T) {
	t.Parallel()

	h := NewCartHandler(stubCart{}, validation.New())
	claims := &token.Claims{Purpose: token.PurposeAccess}
	claims.Subject = "owner"

	r := chi.NewRouter()
	r.Get("/cart/{user_id}", h.List)

	for path, want := range map[string]int{"/cart/owner": http.StatusOK, "/cart/someone-else": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req = req.WithContext(middleware.WithClaims(req.Context(), claims))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, want, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart/owner", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
