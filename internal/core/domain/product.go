package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string
	Name        string
	Description string
	ImageURL    string
	Price       decimal.Decimal
	Quantity    int // on-hand stock, never negative
	CategoryID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CategoryWithProductCount pairs a category with the number of
// products currently assigned to it.
type CategoryWithProductCount struct {
	Category     Category
	ProductCount int64
}
