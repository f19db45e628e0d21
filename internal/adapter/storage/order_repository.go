package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/webshop/internal/core/domain"
	"github.com/rl1809/webshop/internal/port"
)

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) port.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, user_id, customer_name, customer_email, customer_phone,
	shipping_address, payment_method, notes, total_amount, status, created_at, updated_at`

// CreateFromCart writes the order snapshot and applies its side
// effects in one transaction: conditional stock decrements per line
// (any shortfall aborts everything) and cart completion.
func (r *orderRepository) CreateFromCart(ctx context.Context, order domain.Order, cartID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, order_number, user_id, customer_name, customer_email, customer_phone,
			shipping_address, payment_method, notes, total_amount, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.Number, nullString(order.UserID),
		order.CustomerName, order.CustomerEmail, order.CustomerPhone,
		order.ShippingAddress, order.PaymentMethod, order.Notes,
		order.TotalAmount, order.Status, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, price, quantity)
			VALUES (?, ?, ?, ?, ?)`,
			order.ID, item.ProductID, item.ProductName, item.Price, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET quantity = quantity - ?, updated_at = NOW()
			WHERE id = ? AND quantity >= ?`,
			item.Quantity, item.ProductID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("%w: product %s", domain.ErrInsufficientStock, item.ProductID)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, cartID); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE carts SET status = ?, updated_at = NOW() WHERE id = ?`,
		domain.CartStatusCompleted, cartID,
	)
	if err != nil {
		return fmt.Errorf("complete cart: %w", err)
	}

	return tx.Commit()
}

// UpdateStatus persists the new status. With restock, every line's
// quantity is first added back to its product in the same transaction;
// products deleted since the order was placed are skipped.
func (r *orderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, restock bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if restock {
		items, err := loadOrderItems(ctx, tx, orderID)
		if err != nil {
			return err
		}
		for _, item := range items {
			_, err = tx.ExecContext(ctx, `
				UPDATE products SET quantity = quantity + ?, updated_at = NOW() WHERE id = ?`,
				item.Quantity, item.ProductID,
			)
			if err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ?`, status, orderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.NewNotFoundError("order", orderID)
	}

	return tx.Commit()
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
}

func (r *orderRepository) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = ?`, number)
}

func (r *orderRepository) findOne(ctx context.Context, query, key string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, query, key)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("order", key)
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	items, err := loadOrderItems(ctx, r.db, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepository) FindByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (r *orderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *orderRepository) FindByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status = ? ORDER BY created_at DESC`, status)
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := loadOrderItems(ctx, r.db, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var userID, notes sql.NullString
	err := row.Scan(&o.ID, &o.Number, &userID,
		&o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.ShippingAddress, &o.PaymentMethod, &notes,
		&o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.UserID = userID.String
	o.Notes = notes.String
	return &o, nil
}

// querier lets item loading run against either the pool or an open tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadOrderItems(ctx context.Context, q querier, orderID string) ([]domain.OrderItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT product_id, product_name, price, quantity
		FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
