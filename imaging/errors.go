package imaging

import "errors"

var (
	// ErrDecodeImage is returned when raw bytes are not a supported image.
	ErrDecodeImage = errors.New("imaging: cannot decode image")

	// ErrUnknownFilter is returned by ParseFilter for unrecognised names.
	ErrUnknownFilter = errors.New("imaging: unknown filter")
)
