package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrAlreadyReconciled is returned together with the stored record when a
	// (date, route, collector) group is reconciled a second time.
	ErrAlreadyReconciled = errors.New("group already reconciled")

	// ErrAllocationConflict signals a detected concurrent allocation; the
	// caller must re-read state before retrying.
	ErrAllocationConflict = errors.New("concurrent allocation detected")
)

// ValidationError rejects bad input before any state is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError wraps a failure talking to the backing store. Transient
// errors on pure reads may be retried; writes must not be.
type StorageError struct {
	Op        string
	Transient bool
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func Storage(op string, transient bool, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Transient: transient, Err: err}
}

// IsTransientStorage reports whether err is a storage failure safe to retry.
func IsTransientStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Transient
}
