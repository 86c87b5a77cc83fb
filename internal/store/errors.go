package store

import "errors"

// Checkout rejections surfaced to the customer as dismissible notices.
// Everything else in the store is a silent no-op on absent ids.
var (
	ErrShopClosed   = errors.New("shop is closed")
	ErrEmptyCart    = errors.New("cart is empty")
	ErrInvalidTable = errors.New("invalid table number")
)
