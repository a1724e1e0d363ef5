package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-shop-api/internal/middleware"
	"go-shop-api/internal/model"
	"go-shop-api/pkg/apierror"
)

type cartService interface {
	AddItem(ctx context.Context, userID string, req model.AddToCartRequest) error
	Items(ctx context.Context, userID string) ([]model.CartItem, error)
	Checkout(ctx context.Context, userID string) (model.Checkout, error)
}

type CartHandler struct {
	service  cartService
	validate validator
}

func NewCartHandler(service cartService, validate validator) *CartHandler {
	return &CartHandler{service: service, validate: validate}
}

func callerID(r *http.Request) (string, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return "", apierror.Unauthorized("authentication required")
	}
	return claims.UserID(), nil
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload model.AddToCartRequest
	if err := decodeAndValidate(w, r, h.validate, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.AddItem(r.Context(), userID, payload); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.MessageResponse{
		Status:  http.StatusCreated,
		Message: "You have successfully added item into a cart",
	})
}

func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if owner := chi.URLParam(r, "user_id"); owner != userID {
		writeError(w, r, apierror.Forbidden("cannot read another user's cart"))
		return
	}

	items, err := h.service.Items(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CartResponse{
		Status:  http.StatusOK,
		Message: "Successfully get data",
		Data:    items,
	})
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.service.Checkout(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CheckoutResponse{
		Status:     http.StatusOK,
		Message:    fmt.Sprintf("Checkout of %d items with a total of %d cents succeeded", out.Items, out.TotalCents),
		TotalCents: out.TotalCents,
	})
}
