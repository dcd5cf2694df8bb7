package loyalty

import "errors"

var (
	ErrBelowMinimum = errors.New("points below minimum convertible amount")
	ErrInvalidRate  = errors.New("conversion rate must be positive")
	ErrInternal     = errors.New("internal loyalty error")
)
