package usecase

import "errors"

var (
	// ErrNotFound means the referenced book, user, or checkout does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists means a uniqueness rule was violated on create.
	ErrAlreadyExists = errors.New("already exists")

	// ErrAlreadyCheckedOut means the book has an active checkout.
	ErrAlreadyCheckedOut = errors.New("book is already checked out")

	// ErrNotCheckedOut means a return was requested for a book with no
	// active checkout.
	ErrNotCheckedOut = errors.New("book is not checked out")

	// ErrCheckoutMismatch means the checkout id or holder on a return does
	// not match the active checkout.
	ErrCheckoutMismatch = errors.New("checkout id or holder does not match")

	// ErrSerialization is a serialization failure reported by the database
	// engine. The whole command may be retried by the caller; it is never
	// retried internally.
	ErrSerialization = errors.New("transaction serialization conflict")

	// ErrRowsAffected means a write affected an unexpected number of rows
	// after its precondition was checked in the same transaction. It
	// signals a broken invariant, not a business-rule failure.
	ErrRowsAffected = errors.New("write affected unexpected number of rows")
)
