package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rl1809/webshop/internal/core/domain"
)

// In-memory fakes backing the service tests. They implement the port
// interfaces with just enough semantics to observe the services'
// behavior, including the transactional effects of checkout.

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]domain.Product
}

func newFakeProductRepo(products ...domain.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[string]domain.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) Create(ctx context.Context, p domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return domain.NewNotFoundError("product", p.ID)
	}
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return domain.NewNotFoundError("product", id)
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.NewNotFoundError("product", id)
	}
	return &p, nil
}

func (r *fakeProductRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindAll(ctx context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) FindByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Product
	for _, p := range r.products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	products, _ := r.FindByCategory(ctx, categoryID)
	return int64(len(products)), nil
}

func (r *fakeProductRepo) SearchByName(ctx context.Context, namePart string) ([]domain.Product, error) {
	return r.FindAll(ctx)
}

func (r *fakeProductRepo) FindByPriceRange(ctx context.Context, min, max string) ([]domain.Product, error) {
	return r.FindAll(ctx)
}

func (r *fakeProductRepo) stockOf(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].Quantity
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[string]domain.Category
	reassigned map[string]*string // deleted category id -> reassign target
}

func newFakeCategoryRepo(categories ...domain.Category) *fakeCategoryRepo {
	r := &fakeCategoryRepo{
		categories: make(map[string]domain.Category),
		reassigned: make(map[string]*string),
	}
	for _, c := range categories {
		r.categories[c.ID] = c
	}
	return r
}

func (r *fakeCategoryRepo) Create(ctx context.Context, c domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[c.ID] = c
	return nil
}

func (r *fakeCategoryRepo) Update(ctx context.Context, c domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[c.ID]; !ok {
		return domain.NewNotFoundError("category", c.ID)
	}
	r.categories[c.ID] = c
	return nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return domain.NewNotFoundError("category", id)
	}
	delete(r.categories, id)
	return nil
}

func (r *fakeCategoryRepo) DeleteWithReassign(ctx context.Context, id string, targetID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return domain.NewNotFoundError("category", id)
	}
	delete(r.categories, id)
	r.reassigned[id] = targetID
	return nil
}

func (r *fakeCategoryRepo) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, domain.NewNotFoundError("category", id)
	}
	return &c, nil
}

func (r *fakeCategoryRepo) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, domain.NewNotFoundError("category", name)
}

func (r *fakeCategoryRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCategoryRepo) FindAll(ctx context.Context) ([]domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Category
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[string]*domain.Cart)}
}

func (r *fakeCartRepo) Create(ctx context.Context, cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := cart
	r.carts[c.ID] = &c
	return nil
}

func (r *fakeCartRepo) FindActive(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.carts {
		if c.Status != domain.CartStatusActive {
			continue
		}
		if owner.IsUser() && c.UserID == owner.UserID {
			return copyCart(c), nil
		}
		if !owner.IsUser() && c.UserID == "" && c.SessionID == owner.SessionID {
			return copyCart(c), nil
		}
	}
	return nil, nil
}

func (r *fakeCartRepo) UpsertItem(ctx context.Context, cartID string, item domain.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[cartID]
	if !ok {
		return domain.NewNotFoundError("cart", cartID)
	}
	if line := cart.ItemFor(item.ProductID); line != nil {
		line.Quantity = item.Quantity
		line.Price = item.Price
		return nil
	}
	cart.Items = append(cart.Items, item)
	return nil
}

func (r *fakeCartRepo) RemoveItem(ctx context.Context, cartID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[cartID]
	if !ok {
		return domain.NewNotFoundError("cart", cartID)
	}
	for i, line := range cart.Items {
		if line.ProductID == productID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return nil
		}
	}
	return domain.ErrItemNotInCart
}

func (r *fakeCartRepo) Clear(ctx context.Context, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[cartID]
	if !ok {
		return domain.NewNotFoundError("cart", cartID)
	}
	cart.Items = nil
	return nil
}

func (r *fakeCartRepo) Merge(ctx context.Context, guestCartID, userCartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	guest, ok := r.carts[guestCartID]
	if !ok {
		return domain.NewNotFoundError("cart", guestCartID)
	}
	user, ok := r.carts[userCartID]
	if !ok {
		return domain.NewNotFoundError("cart", userCartID)
	}
	for _, line := range guest.Items {
		if existing := user.ItemFor(line.ProductID); existing != nil {
			existing.Quantity += line.Quantity
		} else {
			user.Items = append(user.Items, line)
		}
	}
	guest.Items = nil
	guest.Status = domain.CartStatusAbandoned
	return nil
}

func (r *fakeCartRepo) UpdateStatus(ctx context.Context, cartID string, status domain.CartStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[cartID]
	if !ok {
		return domain.NewNotFoundError("cart", cartID)
	}
	cart.Status = status
	return nil
}

func copyCart(c *domain.Cart) *domain.Cart {
	out := *c
	out.Items = append([]domain.CartItem(nil), c.Items...)
	return &out
}

// fakeOrderRepo mirrors the transactional behavior of the real adapter:
// CreateFromCart decrements stock per line and completes the cart as a
// single all-or-nothing step, UpdateStatus restocks on demand.
type fakeOrderRepo struct {
	mu       sync.Mutex
	orders   map[string]domain.Order
	products *fakeProductRepo
	carts    *fakeCartRepo
}

func newFakeOrderRepo(products *fakeProductRepo, carts *fakeCartRepo) *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:   make(map[string]domain.Order),
		products: products,
		carts:    carts,
	}
}

func (r *fakeOrderRepo) CreateFromCart(ctx context.Context, order domain.Order, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products.mu.Lock()
	for _, item := range order.Items {
		p := r.products.products[item.ProductID]
		if p.Quantity < item.Quantity {
			r.products.mu.Unlock()
			return fmt.Errorf("%w: product %s", domain.ErrInsufficientStock, item.ProductID)
		}
	}
	for _, item := range order.Items {
		p := r.products.products[item.ProductID]
		p.Quantity -= item.Quantity
		r.products.products[item.ProductID] = p
	}
	r.products.mu.Unlock()

	r.carts.mu.Lock()
	if cart, ok := r.carts.carts[cartID]; ok {
		cart.Items = nil
		cart.Status = domain.CartStatusCompleted
	}
	r.carts.mu.Unlock()

	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, restock bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return domain.NewNotFoundError("order", orderID)
	}
	if restock {
		r.products.mu.Lock()
		for _, item := range order.Items {
			p := r.products.products[item.ProductID]
			p.Quantity += item.Quantity
			r.products.products[item.ProductID] = p
		}
		r.products.mu.Unlock()
	}
	order.Status = status
	r.orders[orderID] = order
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.NewNotFoundError("order", id)
	}
	return &o, nil
}

func (r *fakeOrderRepo) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.Number == number {
			return &o, nil
		}
	}
	return nil, domain.NewNotFoundError("order", number)
}

func (r *fakeOrderRepo) FindByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) FindAll(ctx context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out, nil
}

func (r *fakeOrderRepo) FindByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeSessionStore struct {
	mu      sync.Mutex
	touched map[string]bool
	flashes map[string][]string
	idem    map[string]bool
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		touched: make(map[string]bool),
		flashes: make(map[string][]string),
		idem:    make(map[string]bool),
	}
}

func (s *fakeSessionStore) Touch(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched[sessionID] = true
	return nil
}

func (s *fakeSessionStore) AddFlash(ctx context.Context, sessionID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes[sessionID] = append(s.flashes[sessionID], message)
	return nil
}

func (s *fakeSessionStore) PopFlashes(ctx context.Context, sessionID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.flashes[sessionID]
	delete(s.flashes, sessionID)
	return out, nil
}

func (s *fakeSessionStore) SetIdempotency(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idem[key] {
		return false, nil
	}
	s.idem[key] = true
	return true, nil
}

func (s *fakeSessionStore) ReleaseIdempotency(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.idem, key)
	return nil
}
