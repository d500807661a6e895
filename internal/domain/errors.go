package domain

import "errors"

var (
	ErrEntryNotFound          = errors.New("dispatch log entry not found")
	ErrUnknownTimezone        = errors.New("unknown IANA timezone")
	ErrMalformedClockTime     = errors.New("malformed wall-clock time, expected HH:MM")
	ErrPersistenceUnavailable = errors.New("dispatch log store unavailable")
)
