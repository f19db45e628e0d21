package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartStatus string

const (
	CartStatusActive    CartStatus = "ACTIVE"
	CartStatusCompleted CartStatus = "COMPLETED"
	CartStatusAbandoned CartStatus = "ABANDONED"
)

// CartOwner identifies who a cart belongs to: a guest session or an
// authenticated user, never both.
type CartOwner struct {
	SessionID string
	UserID    string
}

func (o CartOwner) IsUser() bool {
	return o.UserID != ""
}

type CartItem struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal // unit price snapshot taken when the line was added
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	ID        string
	SessionID string
	UserID    string
	Status    CartStatus
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemFor returns a pointer to the line holding productID, or nil.
func (c *Cart) ItemFor(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}
