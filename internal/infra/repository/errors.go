package repository

import "errors"

var (
	ErrInvalidEntryData = errors.New("invalid dispatch log entry data")
)
