package service

import (
	"errors"
	"fmt"
)

// ErrValidation indicates a missing or malformed required identifier or
// numeric field. No state changes when it is returned.
var ErrValidation = errors.New("validation failed")

// ErrPersistence indicates a storage operation failed. The affected record is
// left at its last-known-good state; retrying is the caller's decision.
var ErrPersistence = errors.New("persistence failure")

func wrapPersistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
