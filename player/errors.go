package player

import (
	"errors"
	"fmt"

	"mediadeck/transport"
)

var (
	ErrClosed            = errors.New("output context closed")
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format", transport.ErrDecode)
	ErrEmptyBuffer       = fmt.Errorf("%w: no audio frames", transport.ErrDecode)
)
