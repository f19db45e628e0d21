package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rl1809/webshop/internal/core/domain"
)

var adminIdentity = domain.Identity{UserID: "admin-1", Roles: []domain.Role{domain.RoleAdmin}}

func newCategoryFixture(categories []domain.Category, products []domain.Product) (*CategoryService, *fakeCategoryRepo, *fakeProductRepo) {
	categoryRepo := newFakeCategoryRepo(categories...)
	productRepo := newFakeProductRepo(products...)
	return NewCategoryService(categoryRepo, productRepo), categoryRepo, productRepo
}

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCategoryFixture(nil, nil)

	category, err := svc.Create(ctx, adminIdentity, "  Kitchen  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if category.Name != "Kitchen" {
		t.Errorf("expected trimmed name, got %q", category.Name)
	}
	if category.ID == "" {
		t.Error("expected non-empty id")
	}
}

func TestCreateCategory_DuplicateName(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCategoryFixture([]domain.Category{
		{ID: "c1", Name: "Kitchen"},
	}, nil)

	_, err := svc.Create(ctx, adminIdentity, "Kitchen")
	if !errors.Is(err, domain.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got: %v", err)
	}
}

func TestCreateCategory_EmptyName(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCategoryFixture(nil, nil)

	_, err := svc.Create(ctx, adminIdentity, "   ")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got: %v", err)
	}
}

func TestCreateCategory_RequiresAdmin(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCategoryFixture(nil, nil)

	_, err := svc.Create(ctx, domain.Identity{UserID: "user-1"}, "Kitchen")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got: %v", err)
	}
}

func TestUpdateCategory_RenameToTakenName(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCategoryFixture([]domain.Category{
		{ID: "c1", Name: "Kitchen"},
		{ID: "c2", Name: "Garden"},
	}, nil)

	_, err := svc.Update(ctx, adminIdentity, "c1", "Garden")
	if !errors.Is(err, domain.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got: %v", err)
	}

	// Keeping its own name is not a conflict.
	updated, err := svc.Update(ctx, adminIdentity, "c1", "Kitchen")
	if err != nil {
		t.Fatalf("same-name update: %v", err)
	}
	if updated.Name != "Kitchen" {
		t.Errorf("expected Kitchen, got %q", updated.Name)
	}
}

func TestDeleteCategory_Empty(t *testing.T) {
	ctx := context.Background()
	svc, categoryRepo, _ := newCategoryFixture([]domain.Category{
		{ID: "c1", Name: "Kitchen"},
	}, nil)

	if err := svc.Delete(ctx, adminIdentity, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := categoryRepo.FindByID(ctx, "c1"); !domain.IsNotFound(err) {
		t.Errorf("expected category gone, got: %v", err)
	}
}

func TestDeleteCategory_WithProducts(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCategoryFixture(
		[]domain.Category{{ID: "c1", Name: "Kitchen"}},
		[]domain.Product{{ID: "p1", Name: "Mug", CategoryID: "c1"}},
	)

	err := svc.Delete(ctx, adminIdentity, "c1")
	if !errors.Is(err, domain.ErrCategoryNotEmpty) {
		t.Errorf("expected ErrCategoryNotEmpty, got: %v", err)
	}
}

func TestDeleteWithReassignment(t *testing.T) {
	ctx := context.Background()
	svc, categoryRepo, _ := newCategoryFixture(
		[]domain.Category{
			{ID: "c1", Name: "Kitchen"},
			{ID: "c2", Name: "Garden"},
		},
		[]domain.Product{{ID: "p1", Name: "Mug", CategoryID: "c1"}},
	)

	target := "c2"
	if err := svc.DeleteWithReassignment(ctx, adminIdentity, "c1", &target); err != nil {
		t.Fatalf("delete with reassignment: %v", err)
	}
	if got, ok := categoryRepo.reassigned["c1"]; !ok || got == nil || *got != "c2" {
		t.Errorf("expected products reassigned to c2, got %v", got)
	}
}

func TestDeleteWithReassignment_TargetMustDiffer(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCategoryFixture([]domain.Category{
		{ID: "c1", Name: "Kitchen"},
	}, nil)

	target := "c1"
	err := svc.DeleteWithReassignment(ctx, adminIdentity, "c1", &target)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got: %v", err)
	}
}

func TestDeleteWithReassignment_UnknownTarget(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCategoryFixture([]domain.Category{
		{ID: "c1", Name: "Kitchen"},
	}, nil)

	target := "missing"
	err := svc.DeleteWithReassignment(ctx, adminIdentity, "c1", &target)
	if !domain.IsNotFound(err) {
		t.Errorf("expected not-found error, got: %v", err)
	}
}

func TestListWithProductCounts(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCategoryFixture(
		[]domain.Category{
			{ID: "c1", Name: "Kitchen", CreatedAt: time.Now()},
			{ID: "c2", Name: "Garden", CreatedAt: time.Now()},
		},
		[]domain.Product{
			{ID: "p1", Name: "Mug", CategoryID: "c1"},
			{ID: "p2", Name: "Plate", CategoryID: "c1"},
		},
	)

	counts, err := svc.ListWithProductCounts(ctx)
	if err != nil {
		t.Fatalf("list with counts: %v", err)
	}
	byID := make(map[string]int64)
	for _, c := range counts {
		byID[c.Category.ID] = c.ProductCount
	}
	if byID["c1"] != 2 {
		t.Errorf("expected c1 count 2, got %d", byID["c1"])
	}
	if byID["c2"] != 0 {
		t.Errorf("expected c2 count 0, got %d", byID["c2"])
	}
}
