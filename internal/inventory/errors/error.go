// Package errors provides custom error types for inventory operations.
package errors

import "errors"

var ErrItemNotFound = errors.New("item not found")

// ErrInvalidQuantity and ErrInvalidPrice report raw input that does not parse as a number.
var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidPrice    = errors.New("invalid price")
)

// ErrFormatMismatch reports persisted content that cannot be decoded.
var ErrFormatMismatch = errors.New("unrecognized inventory format")
