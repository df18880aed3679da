package product

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

var ErrInvalidProduct = errors.New("invalid product")

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// List returns catalog products whose name contains query and whose category matches category.
func (s *Service) List(ctx context.Context, query, category string) ([]domain.Product, error) {
	return s.repo.List(ctx, productrepo.Filter{Query: query, Category: category})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// LineItem resolves a catalog product into a cart line.
func (s *Service) LineItem(ctx context.Context, id string) (domain.LineItem, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.LineItem{}, err
	}
	return domain.LineItemFromProduct(*p), nil
}

func (s *Service) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	if p.ID == "" || p.Name == "" || p.Price < 0 {
		return nil, ErrInvalidProduct
	}
	return s.repo.Upsert(ctx, p)
}
