package category

import (
	"context"

	"storefront/internal/domain"
)

// Repository stores catalog categories keyed by their slug-like key.
type Repository interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByKey(ctx context.Context, key string) (*domain.Category, error)
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}
