// Package repository contains the repository interfaces and related errors.
package repository

import "errors"

// Repository errors define common error conditions across all repositories.
// These errors are used to communicate specific failure conditions
// from the data access layer to the application layer.
var (
	// ErrVegetableNotFound is returned when a vegetable cannot be found by ID.
	ErrVegetableNotFound = errors.New("vegetable not found")

	// ErrCartNotFound is returned when a cart session does not exist or expired.
	ErrCartNotFound = errors.New("cart not found")

	// ErrDuplicateVegetable is returned when trying to create a vegetable with
	// a name that already exists.
	ErrDuplicateVegetable = errors.New("vegetable name already exists")

	// ErrConnectionFailed is returned when the database connection fails.
	ErrConnectionFailed = errors.New("database connection failed")

	// ErrTransactionFailed is returned when a database transaction fails.
	ErrTransactionFailed = errors.New("database transaction failed")

	// ErrInvalidInput is returned when repository receives invalid input.
	ErrInvalidInput = errors.New("invalid input provided")
)

// IsNotFoundError checks if the error is a not found error.
//
// Parameters:
//   - err: error to check
//
// Returns:
//   - bool: true if the error indicates a resource was not found
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrVegetableNotFound) ||
		errors.Is(err, ErrCartNotFound)
}

// IsDuplicateError checks if the error is a duplicate entry error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicateVegetable)
}
