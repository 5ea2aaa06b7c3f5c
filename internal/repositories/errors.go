package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate record")
	// ErrExpired is returned when a single-use token is past its validity.
	ErrExpired = errors.New("token expired")
)

// wrapGormError maps GORM errors onto the repository sentinels and wraps
// anything else with the failed operation.
func wrapGormError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDuplicate), errors.Is(err, ErrExpired):
		return err
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
