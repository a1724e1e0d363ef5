package model

import "errors"

var (
	// User related errors
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")

	// Refresh whitelist errors
	ErrTokenNotFound   = errors.New("refresh token not whitelisted")
	ErrTokenNotRotated = errors.New("refresh token was not rotated")
	ErrWhitelistWrite  = errors.New("refresh token was not whitelisted")

	// Cart related errors
	ErrProductNotFound = errors.New("product not found")
	ErrCartEmpty       = errors.New("cart is empty")
)
