package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rl1809/webshop/internal/core/domain"
	"github.com/rl1809/webshop/internal/port"
)

// OrderService runs checkout and the order status state machine.
type OrderService struct {
	orders   port.OrderRepository
	carts    port.CartRepository
	products port.ProductRepository
	sessions port.SessionRepository
}

func NewOrderService(
	orders port.OrderRepository,
	carts port.CartRepository,
	products port.ProductRepository,
	sessions port.SessionRepository,
) *OrderService {
	return &OrderService{
		orders:   orders,
		carts:    carts,
		products: products,
		sessions: sessions,
	}
}

// Checkout converts the caller's ACTIVE cart into a PENDING order.
// Line items freeze the product name and price at this instant, stock
// is decremented per line inside one transaction (any shortfall fails
// the whole operation) and the cart is marked COMPLETED.
func (s *OrderService) Checkout(ctx context.Context, identity domain.Identity, details domain.CheckoutDetails) (*domain.Order, error) {
	if err := details.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.carts.FindActive(ctx, identity.CartOwner())
	if err != nil {
		return nil, fmt.Errorf("find active cart: %w", err)
	}
	if cart == nil || cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	// Double-submit guard: one checkout attempt per cart at a time.
	idempotencyKey := fmt.Sprintf("checkout:%s", cart.ID)
	ok, err := s.sessions.SetIdempotency(ctx, idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return nil, domain.ErrDuplicateRequest
	}

	order, err := s.buildOrder(ctx, identity, cart, details)
	if err == nil {
		err = s.orders.CreateFromCart(ctx, *order, cart.ID)
	}
	if err != nil {
		if releaseErr := s.sessions.ReleaseIdempotency(ctx, idempotencyKey); releaseErr != nil {
			slog.Error("failed to release checkout idempotency key",
				"cart_id", cart.ID, "error", releaseErr)
		}
		return nil, err
	}

	slog.Info("order created",
		"order_id", order.ID, "order_number", order.Number,
		"lines", len(order.Items), "total", order.TotalAmount.String())
	return order, nil
}

func (s *OrderService) buildOrder(ctx context.Context, identity domain.Identity, cart *domain.Cart, details domain.CheckoutDetails) (*domain.Order, error) {
	ids := make([]string, 0, len(cart.Items))
	for _, line := range cart.Items {
		ids = append(ids, line.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	now := time.Now()
	order := &domain.Order{
		ID:              uuid.NewString(),
		Number:          fmt.Sprintf("ORD-%d", now.UnixNano()),
		UserID:          identity.UserID,
		CustomerName:    details.CustomerName,
		CustomerEmail:   details.CustomerEmail,
		CustomerPhone:   details.CustomerPhone,
		ShippingAddress: details.FullAddress(),
		PaymentMethod:   details.PaymentMethod,
		Notes:           details.Notes,
		Status:          domain.OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	total := decimal.Zero
	for _, line := range cart.Items {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, domain.NewNotFoundError("product", line.ProductID)
		}
		if line.Quantity > product.Quantity {
			return nil, fmt.Errorf("%w: product %s has %d on hand, requested %d",
				domain.ErrInsufficientStock, product.Name, product.Quantity, line.Quantity)
		}
		item := domain.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Price:       product.Price,
			Quantity:    line.Quantity,
		}
		order.Items = append(order.Items, item)
		total = total.Add(item.Subtotal())
	}
	order.TotalAmount = total
	return order, nil
}

// GetOrder returns the order when the caller owns it or is an admin.
func (s *OrderService) GetOrder(ctx context.Context, identity domain.Identity, orderID string) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !identity.IsAdmin() && order.UserID != identity.UserID {
		return nil, domain.ErrUnauthorized
	}
	return order, nil
}

// ListUserOrders returns the caller's orders, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, identity domain.Identity) ([]domain.Order, error) {
	if !identity.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}
	return s.orders.FindByUser(ctx, identity.UserID)
}

func (s *OrderService) ListAllOrders(ctx context.Context, identity domain.Identity) ([]domain.Order, error) {
	if !identity.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	return s.orders.FindAll(ctx)
}

func (s *OrderService) ListOrdersByStatus(ctx context.Context, identity domain.Identity, status domain.OrderStatus) ([]domain.Order, error) {
	if !identity.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	return s.orders.FindByStatus(ctx, status)
}

// UpdateStatus applies an administrative status change. Terminal
// states reject any further transition; moving into CANCELLED restores
// every line's quantity to its product's stock in the same
// transaction.
func (s *OrderService) UpdateStatus(ctx context.Context, identity domain.Identity, orderID string, next domain.OrderStatus) (*domain.Order, error) {
	if !identity.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	return s.transition(ctx, orderID, next)
}

// CancelOrder is the user-facing self-cancel: only the order's owner,
// and only while the order is PENDING or PROCESSING.
func (s *OrderService) CancelOrder(ctx context.Context, identity domain.Identity, orderID string) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !identity.IsAuthenticated() || order.UserID != identity.UserID {
		return nil, fmt.Errorf("%w: you can only cancel your own orders", domain.ErrUnauthorized)
	}
	if order.Status != domain.OrderStatusPending && order.Status != domain.OrderStatusProcessing {
		return nil, fmt.Errorf("%w: order cannot be cancelled in status %s",
			domain.ErrInvalidTransition, order.Status)
	}
	return s.transition(ctx, orderID, domain.OrderStatusCancelled)
}

func (s *OrderService) transition(ctx context.Context, orderID string, next domain.OrderStatus) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, next)
	}

	restock := next == domain.OrderStatusCancelled
	if err := s.orders.UpdateStatus(ctx, orderID, next, restock); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	slog.Info("order status updated",
		"order_id", orderID, "from", order.Status, "to", next, "restocked", restock)
	return s.orders.FindByID(ctx, orderID)
}
