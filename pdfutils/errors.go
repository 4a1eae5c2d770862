package pdfutils

import "github.com/pkg/errors"

// Error kinds raised while placing annotations. Callers match them with
// errors.Is after wrapping.
var (
	ErrFontNotFound        = errors.New("font not found")
	ErrEmptyContent        = errors.New("empty content")
	ErrPageIndexOutOfRange = errors.New("page index out of range")
	ErrMissingImageSource  = errors.New("missing image source")
	ErrInvalidAnchor       = errors.New("invalid anchor")
	ErrMalformedRequest    = errors.New("malformed request")
)
