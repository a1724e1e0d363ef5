package model

// Response bodies keep the flat `{"status": <code>, ...}` shape that clients
// of this API already depend on.

type SignupResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type TokenResponse struct {
	Status int `json:"status"`
	TokenPair
}

type UserResponse struct {
	Status int        `json:"status"`
	User   PublicUser `json:"user"`
}

type MessageResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type CartResponse struct {
	Status  int        `json:"status"`
	Message string     `json:"message"`
	Data    []CartItem `json:"data"`
}

type CheckoutResponse struct {
	Status     int    `json:"status"`
	Message    string `json:"message"`
	TotalCents int64  `json:"total_cents"`
}

type ErrorResponse struct {
	Status  int               `json:"status"`
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}
