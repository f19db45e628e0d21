package domain

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// ParseOrderStatus converts a wire value into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(strings.ToUpper(s)) {
	case OrderStatusPending:
		return OrderStatusPending, nil
	case OrderStatusProcessing:
		return OrderStatusProcessing, nil
	case OrderStatusShipped:
		return OrderStatusShipped, nil
	case OrderStatusDelivered:
		return OrderStatusDelivered, nil
	case OrderStatusCancelled:
		return OrderStatusCancelled, nil
	}
	return "", fmt.Errorf("%w: unknown order status %q", ErrValidation, s)
}

// IsTerminal reports whether no further transition is permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransition reports whether the state machine permits moving from s
// to next. Forward moves follow PENDING -> PROCESSING -> SHIPPED ->
// DELIVERED one step at a time; CANCELLED is reachable only from
// PENDING and PROCESSING.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case OrderStatusProcessing:
		return s == OrderStatusPending
	case OrderStatusShipped:
		return s == OrderStatusProcessing
	case OrderStatusDelivered:
		return s == OrderStatusShipped
	case OrderStatusCancelled:
		return s == OrderStatusPending || s == OrderStatusProcessing
	}
	return false
}

type OrderItem struct {
	ProductID   string
	ProductName string // captured at order creation, not linked live
	Price       decimal.Decimal
	Quantity    int
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID              string
	Number          string
	UserID          string // empty for guest orders
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	PaymentMethod   string
	Notes           string
	TotalAmount     decimal.Decimal
	Status          OrderStatus
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

var (
	phonePattern  = regexp.MustCompile(`^[+]?[0-9]{10,15}$`)
	postalPattern = regexp.MustCompile(`^[0-9]{5,10}$`)
)

// CheckoutDetails carries the customer-supplied fields required to turn
// a cart into an order.
type CheckoutDetails struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	City            string
	PostalCode      string
	Country         string
	PaymentMethod   string
	Notes           string
}

func (d CheckoutDetails) Validate() error {
	name := strings.TrimSpace(d.CustomerName)
	if len(name) < 2 || len(name) > 100 {
		return fmt.Errorf("%w: customer name must be between 2 and 100 characters", ErrValidation)
	}
	if _, err := mail.ParseAddress(d.CustomerEmail); err != nil {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if !phonePattern.MatchString(d.CustomerPhone) {
		return fmt.Errorf("%w: invalid phone number", ErrValidation)
	}
	addr := strings.TrimSpace(d.ShippingAddress)
	if len(addr) < 10 || len(addr) > 500 {
		return fmt.Errorf("%w: shipping address must be between 10 and 500 characters", ErrValidation)
	}
	if d.PostalCode != "" && !postalPattern.MatchString(d.PostalCode) {
		return fmt.Errorf("%w: invalid postal code", ErrValidation)
	}
	if strings.TrimSpace(d.PaymentMethod) == "" {
		return fmt.Errorf("%w: payment method is required", ErrValidation)
	}
	return nil
}

// FullAddress joins the address parts into the single shipping line
// stored on the order.
func (d CheckoutDetails) FullAddress() string {
	parts := []string{strings.TrimSpace(d.ShippingAddress)}
	for _, p := range []string{d.City, d.PostalCode, d.Country} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
