package handler

import (
	"context"
	"net/http"
	"strings"

	"go-shop-api/internal/middleware"
	"go-shop-api/internal/model"
	"go-shop-api/pkg/apierror"
)

type authService interface {
	Signup(ctx context.Context, req model.SignupRequest) (string, error)
	Login(ctx context.Context, req model.LoginRequest) (model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	CurrentUser(ctx context.Context, userID string) (model.PublicUser, error)
}

type AuthHandler struct {
	service  authService
	validate validator
}

func NewAuthHandler(service authService, validate validator) *AuthHandler {
	return &AuthHandler{service: service, validate: validate}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload model.SignupRequest
	if err := decodeAndValidate(w, r, h.validate, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	userID, err := h.service.Signup(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.SignupResponse{
		Status:  http.StatusCreated,
		Message: "You have been successfully registered.",
		UserID:  userID,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeAndValidate(w, r, h.validate, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	tokens, err := h.service.Login(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.TokenResponse{Status: http.StatusOK, TokenPair: tokens})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := strings.TrimSpace(r.Header.Get(middleware.RefreshTokenHeader))

	tokens, err := h.service.Refresh(r.Context(), refreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.TokenResponse{Status: http.StatusOK, TokenPair: tokens})
}

func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, apierror.Unauthorized("authentication required"))
		return
	}

	user, err := h.service.CurrentUser(r.Context(), claims.UserID())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.UserResponse{Status: http.StatusOK, User: user})
}
