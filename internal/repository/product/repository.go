package product

import (
	"context"

	"storefront/internal/domain"
)

// Filter narrows a catalog listing. Empty fields match everything.
type Filter struct {
	// Query matches a case-insensitive substring of the product name.
	Query    string
	Category string
}

type Repository interface {
	List(ctx context.Context, f Filter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
