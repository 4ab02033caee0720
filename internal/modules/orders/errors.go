package orders

import "errors"

var (
	ErrCartEmpty       = errors.New("cart is empty")
	ErrUnknownIntent   = errors.New("no order for payment intent")
	ErrOrderNotPending = errors.New("order is no longer pending")
	ErrNotFound        = errors.New("order not found")
)
