package category

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/domain"
	"storefront/internal/migrate"
)

func TestPostgres_UpsertAndList(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	cat, err := repo.Upsert(ctx, domain.Category{Key: "running", Name: "Running", Slug: "running"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if cat.ID == "" || cat.Key != "running" {
		t.Fatalf("unexpected category %+v", cat)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "running" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestPostgres_UpsertUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	first, err := repo.Upsert(ctx, domain.Category{Key: "running", Name: "Running", Slug: "running"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second, err := repo.Upsert(ctx, domain.Category{Key: "running", Name: "Road Running"})
	if err != nil {
		t.Fatalf("upsert update: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same ID after update")
	}
	if second.Name != "Road Running" || second.Slug != "running" {
		t.Fatalf("expected updated name and kept slug, got %+v", second)
	}
}

func TestPostgres_GetByKeyCountsProducts(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	if _, err := repo.Upsert(ctx, domain.Category{Key: "trail-running", Name: "Trail Running"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := pool.Exec(ctx, `
		INSERT INTO products (id, name, price, category) VALUES
		('1', 'Speedgoat', 150, 'trail running'),
		('2', 'Peregrine', 130, 'Trail-Running'),
		('3', 'Pegasus', 120, 'Road')
	`); err != nil {
		t.Fatalf("insert products: %v", err)
	}

	cat, err := repo.GetByKey(ctx, "trail-running")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cat.ProductCount != 2 {
		t.Fatalf("expected 2 products in category, got %d", cat.ProductCount)
	}

	if _, err := repo.GetByKey(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("ping db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE products, categories`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
