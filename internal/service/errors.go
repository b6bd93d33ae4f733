package service

import "errors"

var (
	ErrNoFolder          = errors.New("no sync folder configured")
	ErrSyncInProgress    = errors.New("sync already in progress")
	ErrFirstSyncRequired = errors.New("remote folder has history, pull it before editing")
	ErrPasswordRequired  = errors.New("password required for encrypted sync")

	ErrRemoteRead    = errors.New("remote read failed")
	ErrRemotePayload = errors.New("remote payload is malformed")
	ErrRemoteWrite   = errors.New("remote write failed")

	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrUnknownCollection   = errors.New("unknown collection")
	ErrEntityNotFound      = errors.New("entity not found")

	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrVersionIsNotSpecified   = errors.New("app version is not specified")
	ErrInvalidPath             = errors.New("invalid path")
)
