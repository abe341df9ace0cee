package service

import (
	"fmt"
	"strconv"
	"strings"

	ierrors "github.com/abgdnv/stockroom/internal/inventory/errors"
)

// ParseQuantity parses raw operator input as an integer quantity.
// Surrounding whitespace is ignored. Negative and zero values are accepted.
func ParseQuantity(raw string) (int, error) {
	q, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ierrors.ErrInvalidQuantity, raw)
	}
	return q, nil
}

// ParsePrice parses raw operator input as a decimal price.
func ParsePrice(raw string) (float64, error) {
	p, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ierrors.ErrInvalidPrice, raw)
	}
	return p, nil
}
