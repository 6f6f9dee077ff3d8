package pricing

import "github.com/pkg/errors"

var (
	ErrItemUnavailable        = errors.New("item unavailable")
	ErrInvalidConfiguration   = errors.New("invalid configuration")
	ErrUnknownVariationPolicy = errors.New("unknown variation policy")
)
