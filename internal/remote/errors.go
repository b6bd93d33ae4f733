package remote

import "errors"

var (
	// ErrNotExist is returned when a path does not exist in the folder.
	ErrNotExist = errors.New("path does not exist")

	// ErrInvalidRef is returned for a folder reference that cannot be parsed.
	ErrInvalidRef = errors.New("invalid folder reference")

	// ErrOutsideRoot is returned for a path escaping the folder root.
	ErrOutsideRoot = errors.New("path escapes the folder root")

	// ErrIsDirectory is returned when a file operation targets a directory.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrUnauthorized is returned when the folder server rejects the token.
	ErrUnauthorized = errors.New("folder server rejected credentials")

	// ErrLocked is returned when the folder lock cannot be taken before the
	// context expires.
	ErrLocked = errors.New("sync folder is locked by another process")
)
