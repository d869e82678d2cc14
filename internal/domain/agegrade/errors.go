package agegrade

import (
	"errors"
	"fmt"

	"github.com/okian/agegrader/internal/domain/model"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotFound     = errors.New("reference data not found")
	ErrInvalidInput = errors.New("invalid input")
)

// NotFoundError reports that the table has no entries for a gender.
type NotFoundError struct {
	Gender model.Gender
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no reference entries for gender %s", e.Gender)
}

// Is makes errors.Is(err, ErrNotFound) hold for any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
