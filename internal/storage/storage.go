package storage

import "errors"

var (
	ErrPendingNotFound = errors.New("pending verification not found or expired")
)
