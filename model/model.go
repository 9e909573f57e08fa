// Package model defines the errors a persistence layer reports to the
// request pipeline: failed model validation, missing objects and integrity
// violations. Errors from database/sql and go-sqlite3 are recognized
// directly, so repositories may return driver errors unchanged.
package model

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// ErrNotFound reports that a requested object does not exist.
var ErrNotFound = errors.New("object does not exist")

// ValidationError reports that a model failed its own validation, as
// opposed to a malformed request.
type ValidationError struct {
	Messages []string
}

// Invalid returns a ValidationError with the given messages.
func Invalid(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, " ")
}

// IntegrityError reports a violated storage constraint.
type IntegrityError struct {
	Constraint string
	Err        error
}

func (e *IntegrityError) Error() string {
	if e.Constraint == "" {
		return fmt.Sprintf("integrity violation: %v", e.Err)
	}
	return fmt.Sprintf("integrity violation of %s: %v", e.Constraint, e.Err)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// IsNotFound tells whether err reports a missing object.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}

// IsIntegrity tells whether err reports a constraint violation.
func IsIntegrity(err error) bool {
	var integrityErr *IntegrityError
	if errors.As(err, &integrityErr) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}

// AsValidation returns the ValidationError in err's chain, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}
