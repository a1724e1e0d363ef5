package repository

import (
	"context"
	"fmt"

	"go-shop-api/internal/database"
	"go-shop-api/internal/model"
)

type CartRepository struct {
	db database.Querier
}

func NewCartRepository(db database.Querier) *CartRepository {
	return &CartRepository{db: db}
}

// Add appends a cart line. An unknown product yields model.ErrProductNotFound.
func (r *CartRepository) Add(ctx context.Context, userID string, productID int64, qty int) error {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO user_product (user_id, product_id, qty) VALUES ($1, $2, $3)`,
		userID, productID, qty)
	if pgCode(err) == pgForeignKeyViolation {
		return model.ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("add cart item: %d rows affected", tag.RowsAffected())
	}
	return nil
}

func (r *CartRepository) Items(ctx context.Context, userID string) ([]model.CartItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT up.id, p.id, p.name, p.price_cents, up.qty
		 FROM user_product up
		 JOIN products p ON p.id = up.product_id
		 WHERE up.user_id = $1
		 ORDER BY up.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	items := make([]model.CartItem, 0)
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Name, &it.PriceCents, &it.Qty); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}
	return items, nil
}

// Total sums price times quantity over every line in the cart.
func (r *CartRepository) Total(ctx context.Context, userID string) (model.Checkout, error) {
	var out model.Checkout
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(p.price_cents * up.qty), 0), COUNT(up.id)
		 FROM user_product up
		 JOIN products p ON p.id = up.product_id
		 WHERE up.user_id = $1`, userID).
		Scan(&out.TotalCents, &out.Items)
	if err != nil {
		return model.Checkout{}, fmt.Errorf("cart total: %w", err)
	}
	return out, nil
}
