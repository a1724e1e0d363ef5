package model

type CartItem struct {
	ID         int64  `json:"id"`
	ProductID  int64  `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Qty        int    `json:"qty"`
}

type Checkout struct {
	TotalCents int64 `json:"total_cents"`
	Items      int   `json:"items"`
}
