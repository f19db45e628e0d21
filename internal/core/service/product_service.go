package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rl1809/webshop/internal/core/domain"
	"github.com/rl1809/webshop/internal/port"
)

// ProductService is the catalog surface: public reads, admin writes.
type ProductService struct {
	products   port.ProductRepository
	categories port.CategoryRepository
}

func NewProductService(products port.ProductRepository, categories port.CategoryRepository) *ProductService {
	return &ProductService{products: products, categories: categories}
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	return s.products.FindAll(ctx)
}

func (s *ProductService) ListByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	return s.products.FindByCategory(ctx, categoryID)
}

func (s *ProductService) Search(ctx context.Context, namePart string) ([]domain.Product, error) {
	return s.products.SearchByName(ctx, namePart)
}

func (s *ProductService) ListByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]domain.Product, error) {
	if min.GreaterThan(max) {
		return nil, fmt.Errorf("%w: min price exceeds max price", domain.ErrValidation)
	}
	return s.products.FindByPriceRange(ctx, min.String(), max.String())
}

func (s *ProductService) Create(ctx context.Context, identity domain.Identity, product domain.Product) (*domain.Product, error) {
	if !identity.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	if err := s.validate(ctx, &product); err != nil {
		return nil, err
	}

	now := time.Now()
	product.ID = uuid.NewString()
	product.CreatedAt = now
	product.UpdatedAt = now
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &product, nil
}

func (s *ProductService) Update(ctx context.Context, identity domain.Identity, product domain.Product) (*domain.Product, error) {
	if !identity.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	existing, err := s.products.FindByID(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &product); err != nil {
		return nil, err
	}

	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return &product, nil
}

// Delete removes a product from the catalog. Historic order items keep
// their captured name and price.
func (s *ProductService) Delete(ctx context.Context, identity domain.Identity, id string) error {
	if !identity.IsAdmin() {
		return domain.ErrUnauthorized
	}
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (s *ProductService) validate(ctx context.Context, product *domain.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return fmt.Errorf("%w: product name cannot be empty", domain.ErrValidation)
	}
	if product.Price.IsNegative() {
		return fmt.Errorf("%w: price must be non-negative", domain.ErrValidation)
	}
	if product.Quantity < 0 {
		return fmt.Errorf("%w: quantity must be non-negative", domain.ErrValidation)
	}
	if product.CategoryID != "" {
		if _, err := s.categories.FindByID(ctx, product.CategoryID); err != nil {
			return err
		}
	}
	return nil
}
