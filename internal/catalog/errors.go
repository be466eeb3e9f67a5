package catalog

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery is returned when a search query is blank after trimming.
var ErrEmptyQuery = errors.New("search query is empty")

// ErrNoHomeLocation is returned when locating a book that has no shelf home.
var ErrNoHomeLocation = errors.New("book has no home location")

// ValidationError reports malformed input: bad dimensions, out-of-bounds
// coordinates, malformed location strings, or invalid ISBNs.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an absent book or shelf.
type NotFoundError struct {
	Resource string // "book" or "bookshelf"
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// ConflictError reports a uniqueness violation: duplicate shelf, duplicate
// ISBN, an occupied shelf cell, or deleting a shelf that still homes books.
type ConflictError struct {
	Msg string

	// OccupiedBy is the ISBN already claiming a shelf cell, when relevant.
	OccupiedBy string

	// BookCount is the number of books still homed on a shelf whose
	// deletion or shrink was rejected, when relevant.
	BookCount int
}

func (e *ConflictError) Error() string {
	return e.Msg
}

// StateError reports a checkout/checkin precondition violation.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string {
	return e.Msg
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsStateError reports whether err is a StateError.
func IsStateError(err error) bool {
	var s *StateError
	return errors.As(err, &s)
}
