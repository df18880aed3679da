package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

// Products belong to a category when their category column matches its name or key, ignoring case.
const selectWithCount = `
SELECT c.id::text, c.key, c.name, COALESCE(c.slug, ''), c.created_at, COUNT(p.id)
FROM categories c
LEFT JOIN products p
  ON lower(p.category) = lower(c.name) OR lower(p.category) = lower(c.key)
`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, selectWithCount+`
GROUP BY c.id
ORDER BY c.name ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	result := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return result, nil
}

func (r *postgresRepo) GetByKey(ctx context.Context, key string) (*domain.Category, error) {
	row := r.pool.QueryRow(ctx, selectWithCount+`
WHERE c.key = $1
GROUP BY c.id
`, key)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get category %s: %w", key, err)
	}
	return &c, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
INSERT INTO categories (key, name, slug)
VALUES ($1, $2, NULLIF($3, ''))
ON CONFLICT (key) DO UPDATE
SET name = EXCLUDED.name,
    slug = COALESCE(EXCLUDED.slug, categories.slug)
RETURNING id::text, created_at, COALESCE(slug, '')
`
	out := domain.Category{Key: c.Key, Name: c.Name}
	err := r.pool.QueryRow(ctx, q, c.Key, c.Name, c.Slug).Scan(&out.ID, &out.CreatedAt, &out.Slug)
	if err != nil {
		return nil, fmt.Errorf("upsert category %s: %w", c.Key, err)
	}
	return &out, nil
}

func scanCategory(row pgx.Row) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.Key, &c.Name, &c.Slug, &c.CreatedAt, &c.ProductCount)
	return c, err
}
