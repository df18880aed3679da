package product

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const selectColumns = `id, name, image, price::float8, category, colors, created_at`

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Product, error) {
	const q = `
SELECT ` + selectColumns + `
FROM products
WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
  AND ($2 = '' OR lower(category) = lower($2))
ORDER BY created_at ASC, id ASC
`
	query := escapeLike(strings.TrimSpace(f.Query))
	rows, err := r.pool.Query(ctx, q, query, strings.TrimSpace(f.Category))
	if err != nil {
		r.logger.Printf("product repo: list q=%q category=%q error=%v", f.Query, f.Category, err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Image, &p.Price, &p.Category, &p.Colors, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}
	r.logger.Printf("product repo: list q=%q category=%q count=%d", f.Query, f.Category, len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT ` + selectColumns + `
FROM products
WHERE id = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Image, &p.Price, &p.Category, &p.Colors, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, name, image, price, category, colors)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    image = EXCLUDED.image,
    price = EXCLUDED.price,
    category = EXCLUDED.category,
    colors = EXCLUDED.colors
RETURNING created_at
`
	colors := product.Colors
	if colors == nil {
		colors = []string{}
	}
	res := product
	res.Colors = colors
	err := r.pool.QueryRow(ctx, q,
		product.ID,
		product.Name,
		product.Image,
		product.Price,
		product.Category,
		colors,
	).Scan(&res.CreatedAt)
	if err != nil {
		r.logger.Printf("product repo: upsert id=%s error=%v", product.ID, err)
		return nil, err
	}
	r.logger.Printf("product repo: upserted id=%s", res.ID)
	return &res, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
