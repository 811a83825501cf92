// Package repository contains the repository interfaces (ports) for data access.
package repository

import (
	"context"

	"github.com/hapkiduki/apnacart/internal/domain/entity"
	"github.com/hapkiduki/apnacart/internal/domain/valueobject"
)

// VegetableFilter contains criteria for filtering vegetables.
type VegetableFilter struct {
	// SearchTerm matches vegetable names case-insensitively.
	SearchTerm string

	// Weight filters vegetables sold in this pack size.
	Weight *valueobject.WeightToken

	// Limit specifies the maximum number of results (0 means no limit)
	Limit int

	// Offset specifies the starting position for pagination
	Offset int
}

// VegetableRepository defines the interface for catalog persistance operations.
// Listings are ordered newest first.
//
// Example usage:
//
// repo := sqlstore.NewVegetableRepository(db)
// vegetables, err := repo.FindAll(ctx, repository.VegetableFilter{})
type VegetableRepository interface {
	// Create persists a new vegetable and assigns its ID.
	//
	// Parameters:
	//   - ctx: context for cancellation and deadlines
	//   - vegetable: the vegetable to create; ID is set on success
	//
	// Returns:
	//   - error: ErrDuplicateVegetable if the name is taken
	Create(ctx context.Context, vegetable *entity.Vegetable) error

	// GetByID retrieves a vegetable by its identifier.
	//
	// Parameters:
	//   - ctx: context for cancellation and deadlines
	//   - id: the vegetable ID
	//
	// Returns:
	//   - *entity.Vegetable: the retrieved vegetable
	//   - error: ErrVegetableNotFound if it doesn't exist
	GetByID(ctx context.Context, id int) (*entity.Vegetable, error)

	// Update persists changes to an existing vegetable.
	//
	// Returns:
	//   - error: ErrVegetableNotFound if it doesn't exist
	Update(ctx context.Context, vegetable *entity.Vegetable) error

	// Delete removes a vegetable from the catalog.
	//
	// Returns:
	//   - error: ErrVegetableNotFound if it doesn't exist
	Delete(ctx context.Context, id int) error

	// FindAll retrieves vegetables matching the filter, newest first.
	FindAll(ctx context.Context, filter VegetableFilter) ([]*entity.Vegetable, error)

	// Count returns the number of vegetables matching the filter,
	// ignoring Limit and Offset.
	Count(ctx context.Context, filter VegetableFilter) (int64, error)

	// ReplaceAll deletes every vegetable and inserts the given ones in a
	// single transaction. IDs are assigned on success.
	//
	// Returns:
	//   - error: ErrTransactionFailed if the replacement could not commit
	ReplaceAll(ctx context.Context, vegetables []*entity.Vegetable) error
}
