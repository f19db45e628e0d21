package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/webshop/internal/core/domain"
	"github.com/rl1809/webshop/internal/port"
)

// CategoryService enforces name uniqueness and the no-delete-while-
// owning-products rule. All mutations are admin only.
type CategoryService struct {
	categories port.CategoryRepository
	products   port.ProductRepository
}

func NewCategoryService(categories port.CategoryRepository, products port.ProductRepository) *CategoryService {
	return &CategoryService{categories: categories, products: products}
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.categories.FindAll(ctx)
}

// ListWithProductCounts returns every category together with how many
// products it currently owns.
func (s *CategoryService) ListWithProductCounts(ctx context.Context) ([]domain.CategoryWithProductCount, error) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CategoryWithProductCount, 0, len(categories))
	for _, c := range categories {
		count, err := s.products.CountByCategory(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("count products for category %s: %w", c.ID, err)
		}
		out = append(out, domain.CategoryWithProductCount{Category: c, ProductCount: count})
	}
	return out, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	return s.categories.FindByID(ctx, id)
}

func (s *CategoryService) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	return s.categories.FindByName(ctx, name)
}

func (s *CategoryService) Create(ctx context.Context, identity domain.Identity, name string) (*domain.Category, error) {
	if !identity.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name cannot be empty", domain.ErrValidation)
	}

	exists, err := s.categories.ExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: category %q already exists", domain.ErrDuplicateName, name)
	}

	now := time.Now()
	category := domain.Category{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, identity domain.Identity, id, name string) (*domain.Category, error) {
	if !identity.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name cannot be empty", domain.ErrValidation)
	}

	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if category.Name != name {
		exists, err := s.categories.ExistsByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("check category name: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("%w: category %q already exists", domain.ErrDuplicateName, name)
		}
	}

	category.Name = name
	category.UpdatedAt = time.Now()
	if err := s.categories.Update(ctx, *category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

// Delete removes a category that owns no products.
func (s *CategoryService) Delete(ctx context.Context, identity domain.Identity, id string) error {
	if !identity.IsAdmin() {
		return domain.ErrUnauthorized
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return err
	}
	count, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d products assigned, reassign or delete them first",
			domain.ErrCategoryNotEmpty, count)
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// DeleteWithReassignment moves every product of the category to
// targetID (nil detaches them) and deletes the category, as one
// all-or-nothing operation.
func (s *CategoryService) DeleteWithReassignment(ctx context.Context, identity domain.Identity, id string, targetID *string) error {
	if !identity.IsAdmin() {
		return domain.ErrUnauthorized
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return err
	}
	if targetID != nil {
		if *targetID == id {
			return fmt.Errorf("%w: target category must differ from the deleted one", domain.ErrValidation)
		}
		if _, err := s.categories.FindByID(ctx, *targetID); err != nil {
			return err
		}
	}
	if err := s.categories.DeleteWithReassign(ctx, id, targetID); err != nil {
		return fmt.Errorf("delete category with reassignment: %w", err)
	}

	slog.Info("category deleted with product reassignment", "category_id", id)
	return nil
}

func (s *CategoryService) ProductsInCategory(ctx context.Context, id string) ([]domain.Product, error) {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.products.FindByCategory(ctx, id)
}
