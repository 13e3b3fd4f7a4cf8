package domain

import "errors"

var (
	// ErrInvalidShippingMethod means a product carries a billing method
	// outside ITEM, WEIGHT and FIXED.
	ErrInvalidShippingMethod = errors.New("invalid shipping fee method")
	ErrInvalidQuantity       = errors.New("quantity must be at least 1")
	ErrInvalidWeight         = errors.New("weight must not be negative")
	ErrInvalidSortKey        = errors.New("unknown sort key")
)
