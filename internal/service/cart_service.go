package service

import (
	"context"
	"errors"
	"strconv"

	"go-shop-api/internal/model"
	"go-shop-api/pkg/apierror"
)

type CartStore interface {
	Add(ctx context.Context, userID string, productID int64, qty int) error
	Items(ctx context.Context, userID string) ([]model.CartItem, error)
	Total(ctx context.Context, userID string) (model.Checkout, error)
}

type CartService struct {
	carts CartStore
}

func NewCartService(carts CartStore) *CartService {
	return &CartService{carts: carts}
}

func (s *CartService) AddItem(ctx context.Context, userID string, req model.AddToCartRequest) error {
	err := s.carts.Add(ctx, userID, req.ProductID, req.Qty)
	if errors.Is(err, model.ErrProductNotFound) {
		return apierror.NotFound("product not found", strconv.FormatInt(req.ProductID, 10))
	}
	return err
}

func (s *CartService) Items(ctx context.Context, userID string) ([]model.CartItem, error) {
	return s.carts.Items(ctx, userID)
}

// Checkout totals the cart. The cart is left untouched.
func (s *CartService) Checkout(ctx context.Context, userID string) (model.Checkout, error) {
	out, err := s.carts.Total(ctx, userID)
	if err != nil {
		return model.Checkout{}, err
	}
	if out.Items == 0 {
		return model.Checkout{}, apierror.Validation(model.ErrCartEmpty.Error(), nil)
	}
	return out, nil
}
