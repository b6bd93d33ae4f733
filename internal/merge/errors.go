package merge

import "errors"

var (
	// ErrDuplicateCollection is returned by Register for a name that is
	// already registered.
	ErrDuplicateCollection = errors.New("collection already registered")

	// ErrMalformedCollection wraps a collection document that does not have
	// the shape its kind expects.
	ErrMalformedCollection = errors.New("malformed collection")

	// ErrInvalidTimestamp is returned for a timestamp that is neither an
	// epoch-millisecond number nor an RFC 3339 string.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)
