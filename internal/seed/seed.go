package seed

import (
	"context"
	"fmt"

	"storefront/internal/domain"
)

type productUpserter interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type categoryUpserter interface {
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

var categories = []domain.Category{
	{Key: "running", Name: "Running", Slug: "running"},
	{Key: "basketball", Name: "Basketball", Slug: "basketball"},
	{Key: "lifestyle", Name: "Lifestyle", Slug: "lifestyle"},
	{Key: "training", Name: "Training", Slug: "training"},
}

var products = []domain.Product{
	{ID: "1", Name: "Air Max Pulse", Image: "/images/air-max-pulse.png", Price: 13995, Category: "Running", Colors: []string{"black", "white"}},
	{ID: "2", Name: "Pegasus 41", Image: "/images/pegasus-41.png", Price: 11895, Category: "Running", Colors: []string{"blue"}},
	{ID: "3", Name: "Jordan Stadium 90", Image: "/images/jordan-stadium-90.png", Price: 10295, Category: "Basketball", Colors: []string{"red", "white"}},
	{ID: "4", Name: "Court Vision Low", Image: "/images/court-vision-low.png", Price: 5695, Category: "Lifestyle"},
	{ID: "5", Name: "Metcon 9", Image: "/images/metcon-9.png", Price: 12295, Category: "Training", Colors: []string{"grey"}},
	{ID: "6", Name: "Dunk Low Retro", Image: "/images/dunk-low-retro.png", Price: 8695, Category: "Lifestyle", Colors: []string{"green", "white"}},
}

// Apply inserts a demo catalog for manual testing. It is idempotent via upserts.
func Apply(ctx context.Context, productRepo productUpserter, categoryRepo categoryUpserter) error {
	for _, c := range categories {
		if _, err := categoryRepo.Upsert(ctx, c); err != nil {
			return fmt.Errorf("upsert category %s: %w", c.Key, err)
		}
	}
	for _, p := range products {
		if _, err := productRepo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}
	return nil
}
