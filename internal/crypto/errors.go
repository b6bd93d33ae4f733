package crypto

import "errors"

var (
	// ErrDecryptionFailed is returned when a blob cannot be opened: wrong
	// password, truncated data or broken base64.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrEmptyPassword is returned when an empty password is passed in.
	ErrEmptyPassword = errors.New("empty password")
)
