package records

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRecord matches every *ValidationError.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrDuplicateRecord matches every *DuplicateError.
	ErrDuplicateRecord = errors.New("duplicate record")
)

// ValidationError rejects a record whose fields are invalid on their own,
// regardless of what the store already holds.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRecord
}

// DuplicateError rejects a record equal to one already admitted.
type DuplicateError struct {
	Record Record
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate record: %s already exists", e.Record)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicateRecord
}
