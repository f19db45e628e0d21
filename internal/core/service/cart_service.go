package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/webshop/internal/core/domain"
	"github.com/rl1809/webshop/internal/port"
)

// CartService manages the single ACTIVE cart per guest session or user.
type CartService struct {
	carts    port.CartRepository
	products port.ProductRepository
}

func NewCartService(carts port.CartRepository, products port.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// GetOrCreate returns the owner's ACTIVE cart, creating it lazily on
// first access.
func (s *CartService) GetOrCreate(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	cart, err := s.carts.FindActive(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("find active cart: %w", err)
	}
	if cart != nil {
		return cart, nil
	}

	now := time.Now()
	cart = &domain.Cart{
		ID:        uuid.NewString(),
		SessionID: owner.SessionID,
		UserID:    owner.UserID,
		Status:    domain.CartStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.carts.Create(ctx, *cart); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}

// AddItem puts quantity units of the product into the cart, folding
// into an existing line when the product is already present. The
// resulting line quantity must not exceed current stock.
func (s *CartService) AddItem(ctx context.Context, owner domain.CartOwner, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}

	newQuantity := quantity
	if line := cart.ItemFor(productID); line != nil {
		newQuantity += line.Quantity
	}
	if newQuantity > product.Quantity {
		return nil, fmt.Errorf("%w: product %s has %d on hand, requested %d",
			domain.ErrInsufficientStock, product.Name, product.Quantity, newQuantity)
	}

	item := domain.CartItem{
		ProductID: productID,
		Quantity:  newQuantity,
		Price:     product.Price,
	}
	if err := s.carts.UpsertItem(ctx, cart.ID, item); err != nil {
		return nil, fmt.Errorf("upsert cart item: %w", err)
	}
	return s.carts.FindActive(ctx, owner)
}

// UpdateItemQuantity sets the line to newQuantity, removing it when
// newQuantity <= 0. Raising the quantity re-validates stock.
func (s *CartService) UpdateItemQuantity(ctx context.Context, owner domain.CartOwner, productID string, newQuantity int) (*domain.Cart, error) {
	cart, err := s.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart.ItemFor(productID) == nil {
		return nil, domain.ErrItemNotInCart
	}

	if newQuantity <= 0 {
		if err := s.carts.RemoveItem(ctx, cart.ID, productID); err != nil {
			return nil, fmt.Errorf("remove cart item: %w", err)
		}
		return s.carts.FindActive(ctx, owner)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if newQuantity > product.Quantity {
		return nil, fmt.Errorf("%w: product %s has %d on hand, requested %d",
			domain.ErrInsufficientStock, product.Name, product.Quantity, newQuantity)
	}

	item := domain.CartItem{
		ProductID: productID,
		Quantity:  newQuantity,
		Price:     product.Price,
	}
	if err := s.carts.UpsertItem(ctx, cart.ID, item); err != nil {
		return nil, fmt.Errorf("upsert cart item: %w", err)
	}
	return s.carts.FindActive(ctx, owner)
}

func (s *CartService) RemoveItem(ctx context.Context, owner domain.CartOwner, productID string) (*domain.Cart, error) {
	cart, err := s.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart.ItemFor(productID) == nil {
		return nil, domain.ErrItemNotInCart
	}
	if err := s.carts.RemoveItem(ctx, cart.ID, productID); err != nil {
		return nil, fmt.Errorf("remove cart item: %w", err)
	}
	return s.carts.FindActive(ctx, owner)
}

func (s *CartService) Clear(ctx context.Context, owner domain.CartOwner) error {
	cart, err := s.GetOrCreate(ctx, owner)
	if err != nil {
		return err
	}
	if err := s.carts.Clear(ctx, cart.ID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// MergeGuestCart folds the guest session's cart into the user's cart
// after login. Quantities for the same product are summed and the
// guest cart is marked ABANDONED; nothing is lost or duplicated.
func (s *CartService) MergeGuestCart(ctx context.Context, sessionID, userID string) (*domain.Cart, error) {
	guest, err := s.carts.FindActive(ctx, domain.CartOwner{SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("find guest cart: %w", err)
	}

	userOwner := domain.CartOwner{UserID: userID}
	if guest == nil {
		return s.GetOrCreate(ctx, userOwner)
	}
	if guest.IsEmpty() {
		if err := s.carts.UpdateStatus(ctx, guest.ID, domain.CartStatusAbandoned); err != nil {
			return nil, fmt.Errorf("abandon guest cart: %w", err)
		}
		return s.GetOrCreate(ctx, userOwner)
	}

	userCart, err := s.GetOrCreate(ctx, userOwner)
	if err != nil {
		return nil, err
	}
	if err := s.carts.Merge(ctx, guest.ID, userCart.ID); err != nil {
		return nil, fmt.Errorf("merge carts: %w", err)
	}

	slog.Info("merged guest cart",
		"guest_cart_id", guest.ID, "user_cart_id", userCart.ID, "lines", len(guest.Items))
	return s.carts.FindActive(ctx, userOwner)
}
