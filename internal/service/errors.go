package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrValidationNoUserID  = errors.New("no user ID was given")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")

	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrTokenCreationFailed     = errors.New("token creation failed")

	// ErrSyncInProgress is returned by RunCycle when another cycle holds the
	// engine. A follow-up cycle has been scheduled.
	ErrSyncInProgress = errors.New("sync cycle already in progress")

	ErrUnknownResolution = errors.New("unknown resolution strategy")
	ErrRecordDeleted     = errors.New("record is deleted")
)
