package category

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repository/category"
)

var ErrInvalidCategory = errors.New("invalid category")

type Service struct {
	repo category.Repository
}

func New(repo category.Repository) *Service {
	return &Service{repo: repo}
}

// List returns every category with its product count, ordered by name.
func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, key string) (*domain.Category, error) {
	return s.repo.GetByKey(ctx, domain.Slugify(key))
}

// Upsert normalises the key and slug from the name when they are missing.
func (s *Service) Upsert(ctx context.Context, c domain.Category) (*domain.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, ErrInvalidCategory
	}
	c.Key = domain.Slugify(c.Key)
	if c.Key == "" {
		c.Key = domain.Slugify(c.Name)
	}
	if c.Key == "" {
		return nil, ErrInvalidCategory
	}
	c.Slug = domain.Slugify(c.Slug)
	if c.Slug == "" {
		c.Slug = c.Key
	}
	return s.repo.Upsert(ctx, c)
}
