package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidVersion    = errors.New("invalid version")
	ErrInvalidTimestamp  = errors.New("invalid timestamp")
	ErrNotInitialized    = errors.New("metadata is not initialized")
	ErrEmptyData         = errors.New("data is required")
	ErrInvalidDataType   = errors.New("data must be an object or an encrypted string")
	ErrEmptyEncryptedBox = errors.New("encrypted data is empty")
)
