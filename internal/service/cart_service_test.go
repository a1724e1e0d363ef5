package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-shop-api/internal/model"
	"go-shop-api/pkg/apierror"
)

type cartStoreMock struct {
	mock.Mock
}

func (m *cartStoreMock) Add(ctx context.Context, userID string, productID int64, qty int) error {
	return m.Called(ctx, userID, productID, qty).Error(0)
}

func (m *cartStoreMock) Items(ctx context.Context, userID string) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *cartStoreMock) Total(ctx context.Context, userID string) (model.Checkout, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Checkout), args.Error(1)
}

func TestCartAddItem(t *testing.T) {
	t.Parallel()

	store := &cartStoreMock{}
	svc := NewCartService(store)
	ctx := context.Background()

	store.On("Add", ctx, "u-1", int64(1), 2).Return(nil).Once()
	store.On("Add", ctx, "u-1", int64(99), 1).Return(model.ErrProductNotFound).Once()

	require.NoError(t, svc.AddItem(ctx, "u-1", model.AddToCartRequest{ProductID: 1, Qty: 2}))

	err := svc.AddItem(ctx, "u-1", model.AddToCartRequest{ProductID: 99, Qty: 1})
	requireAPIError(t, err, apierror.KindNotFound, http.StatusNotFound)

	store.AssertExpectations(t)
}

func TestCartItemsPassesThrough(t *testing.T) {
	t.Parallel()

	store := &cartStoreMock{}
	svc := NewCartService(store)
	ctx := context.Background()
	want := []model.CartItem{{ID: 1, ProductID: 1, Name: "Coffee mug", PriceCents: 1299, Qty: 2}}

	store.On("Items", ctx, "u-1").Return(want, nil).Once()

	got, err := svc.Items(ctx, "u-1")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestCartCheckout(t *testing.T) {
	t.Parallel()

	store := &cartStoreMock{}
	svc := NewCartService(store)
	ctx := context.Background()

	store.On("Total", ctx, "u-1").Return(model.Checkout{TotalCents: 3097, Items: 2}, nil).Once()
	store.On("Total", ctx, "u-2").Return(model.Checkout{}, nil).Once()
	store.On("Total", ctx, "u-3").Return(model.Checkout{}, errors.New("db down")).Once()

	out, err := svc.Checkout(ctx, "u-1")
	require.NoError(t, err)
	require.Equal(t, int64(3097), out.TotalCents)

	_, err = svc.Checkout(ctx, "u-2")
	requireAPIError(t, err, apierror.KindValidation, http.StatusUnprocessableEntity)

	_, err = svc.Checkout(ctx, "u-3")
	require.Equal(t, apierror.KindServer, apierror.KindOf(err))

	store.AssertExpectations(t)
}
