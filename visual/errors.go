package visual

import "errors"

var (
	ErrMelConfig = errors.New("invalid mel band configuration")
)
