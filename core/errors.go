package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError means the input is malformed or misses required fields.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return "invalid input"
	}
	return err.Err.Error()
}

// InvalidReferenceError means a referenced entity does not exist.
type InvalidReferenceError struct {
	message string
}

func NewInvalidReferenceError(msg string) error {
	return &InvalidReferenceError{message: msg}
}

func (err InvalidReferenceError) Error() string {
	return err.message
}

// DuplicateError means a uniqueness rule was violated.
type DuplicateError struct {
	message string
}

func NewDuplicateError(msg string) error {
	return &DuplicateError{message: msg}
}

func (err DuplicateError) Error() string {
	return err.message
}

// NotFoundError means the addressed entity does not exist.
type NotFoundError struct {
	Entity string
}

func NewNotFoundError(entity string) error {
	return &NotFoundError{Entity: entity}
}

func (err NotFoundError) Error() string {
	return err.Entity + " not found"
}

// ConflictError means the operation is blocked by dependent data.
type ConflictError struct {
	message string
}

func NewConflictError(msg string) error {
	return &ConflictError{message: msg}
}

func (err ConflictError) Error() string {
	return err.message
}

// PersistenceError wraps any other storage failure.
// Unavailable is set when the store could not be reached at all.
type PersistenceError struct {
	Op          string
	Err         error
	Unavailable bool
}

func NewPersistenceError(op string, err error, unavailable bool) error {
	return &PersistenceError{Op: op, Err: err, Unavailable: unavailable}
}

func (err PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", err.Op, err.Err)
}

func (err PersistenceError) Unwrap() error {
	return err.Err
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
