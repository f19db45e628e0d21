package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/webshop/internal/core/domain"
	"github.com/rl1809/webshop/internal/port"
)

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) port.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(ctx context.Context, cart domain.Cart) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO carts (id, session_id, user_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		cart.ID, nullString(cart.SessionID), nullString(cart.UserID),
		cart.Status, cart.CreatedAt, cart.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cart: %w", err)
	}
	return nil
}

func (r *cartRepository) FindActive(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	var row *sql.Row
	if owner.IsUser() {
		row = r.db.QueryRowContext(ctx, `
			SELECT id, session_id, user_id, status, created_at, updated_at
			FROM carts WHERE user_id = ? AND status = ?`,
			owner.UserID, domain.CartStatusActive)
	} else {
		row = r.db.QueryRowContext(ctx, `
			SELECT id, session_id, user_id, status, created_at, updated_at
			FROM carts WHERE session_id = ? AND status = ?`,
			owner.SessionID, domain.CartStatusActive)
	}

	var cart domain.Cart
	var sessionID, userID sql.NullString
	err := row.Scan(&cart.ID, &sessionID, &userID, &cart.Status, &cart.CreatedAt, &cart.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}
	cart.SessionID = sessionID.String
	cart.UserID = userID.String

	if err := r.loadItems(ctx, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) loadItems(ctx context.Context, cart *domain.Cart) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity, price FROM cart_items WHERE cart_id = ?`, cart.ID)
	if err != nil {
		return fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Price); err != nil {
			return fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	return rows.Err()
}

func (r *cartRepository) UpsertItem(ctx context.Context, cartID string, item domain.CartItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity, price)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = VALUES(quantity), price = VALUES(price)`,
		cartID, item.ProductID, item.Quantity, item.Price,
	)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}
	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?`, cartID, productID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrItemNotInCart
	}
	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *cartRepository) Clear(ctx context.Context, cartID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, cartID); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}
	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit()
}

// Merge folds the guest cart's lines into the user cart, summing
// quantities for shared products, then marks the guest cart ABANDONED.
func (r *cartRepository) Merge(ctx context.Context, guestCartID, userCartID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity, price)
		SELECT ?, product_id, quantity, price FROM cart_items WHERE cart_id = ?
		ON DUPLICATE KEY UPDATE quantity = cart_items.quantity + VALUES(quantity)`,
		userCartID, guestCartID,
	)
	if err != nil {
		return fmt.Errorf("merge cart items: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, guestCartID); err != nil {
		return fmt.Errorf("drop guest cart items: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE carts SET status = ?, updated_at = NOW() WHERE id = ?`,
		domain.CartStatusAbandoned, guestCartID,
	)
	if err != nil {
		return fmt.Errorf("abandon guest cart: %w", err)
	}
	if err := touchCart(ctx, tx, userCartID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *cartRepository) UpdateStatus(ctx context.Context, cartID string, status domain.CartStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE carts SET status = ?, updated_at = NOW() WHERE id = ?`, status, cartID)
	if err != nil {
		return fmt.Errorf("update cart status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.NewNotFoundError("cart", cartID)
	}
	return nil
}

func touchCart(ctx context.Context, tx *sql.Tx, cartID string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE carts SET updated_at = NOW() WHERE id = ?`, cartID); err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}
