package port

import (
	"context"

	"github.com/rl1809/webshop/internal/core/domain"
)

// ProductRepository persists products. Find methods return a typed
// not-found error when the id cannot be resolved.
type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) error
	Update(ctx context.Context, product domain.Product) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// FindByIDs returns the products for the given ids; missing ids are
	// simply absent from the result.
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
	FindByCategory(ctx context.Context, categoryID string) ([]domain.Product, error)
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
	SearchByName(ctx context.Context, namePart string) ([]domain.Product, error)
	FindByPriceRange(ctx context.Context, min, max string) ([]domain.Product, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category domain.Category) error
	Update(ctx context.Context, category domain.Category) error
	// Delete removes an empty category.
	Delete(ctx context.Context, id string) error
	// DeleteWithReassign atomically moves every product of the category
	// to targetID (nil detaches them) and deletes the category.
	DeleteWithReassign(ctx context.Context, id string, targetID *string) error
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	FindByName(ctx context.Context, name string) (*domain.Category, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	FindAll(ctx context.Context) ([]domain.Category, error)
}

type CartRepository interface {
	Create(ctx context.Context, cart domain.Cart) error
	// FindActive returns the single ACTIVE cart for the owner, or nil
	// when none exists.
	FindActive(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	// UpsertItem inserts the line or overwrites its quantity and price
	// snapshot when the product is already in the cart.
	UpsertItem(ctx context.Context, cartID string, item domain.CartItem) error
	RemoveItem(ctx context.Context, cartID, productID string) error
	Clear(ctx context.Context, cartID string) error
	// Merge folds every line of the guest cart into the user cart
	// (quantities summed) and marks the guest cart ABANDONED, all in
	// one transaction.
	Merge(ctx context.Context, guestCartID, userCartID string) error
	UpdateStatus(ctx context.Context, cartID string, status domain.CartStatus) error
}

type OrderRepository interface {
	// CreateFromCart writes the order and its items, decrements stock
	// for every line (failing the whole transaction on any shortfall)
	// and marks the source cart COMPLETED.
	CreateFromCart(ctx context.Context, order domain.Order, cartID string) error
	// UpdateStatus persists the new status; when restock is true every
	// line's quantity is first added back to its product, in the same
	// transaction.
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, restock bool) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByNumber(ctx context.Context, number string) (*domain.Order, error)
	FindByUser(ctx context.Context, userID string) ([]domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	FindByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
}
