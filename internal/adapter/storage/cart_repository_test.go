package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/webshop/internal/core/domain"
)

func TestFindActive_NoCart(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCartRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM carts WHERE session_id").
		WithArgs("sess-1", string(domain.CartStatusActive)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	cart, err := repo.FindActive(context.Background(), domain.CartOwner{SessionID: "sess-1"})
	assert.NoError(t, err)
	assert.Nil(t, cart)
}

func TestFindActive_LoadsItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCartRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM carts WHERE user_id").
		WithArgs("u1", string(domain.CartStatusActive)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "user_id", "status", "created_at", "updated_at"}).
			AddRow("cart-1", nil, "u1", "ACTIVE", now, now))
	mock.ExpectQuery("SELECT product_id, quantity, price FROM cart_items").
		WithArgs("cart-1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity", "price"}).
			AddRow("p1", 2, "7.50"))

	cart, err := repo.FindActive(context.Background(), domain.CartOwner{UserID: "u1"})
	require.NoError(t, err)
	require.NotNil(t, cart)
	assert.Equal(t, "cart-1", cart.ID)
	assert.Equal(t, "u1", cart.UserID)
	assert.Empty(t, cart.SessionID)
	require.Len(t, cart.Items, 1)
	assert.True(t, cart.Items[0].Price.Equal(decimal.NewFromFloat(7.50)))
}

func TestUpsertItem_TouchesCart(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCartRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO cart_items").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE carts SET updated_at").
		WithArgs("cart-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	item := domain.CartItem{ProductID: "p1", Quantity: 2, Price: decimal.NewFromFloat(7.50)}
	err = repo.UpsertItem(context.Background(), "cart-1", item)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveItem_NotInCart(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCartRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM cart_items WHERE cart_id").
		WithArgs("cart-1", "p1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = repo.RemoveItem(context.Background(), "cart-1", "p1")
	assert.ErrorIs(t, err, domain.ErrItemNotInCart)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerge_FoldsGuestIntoUserCart(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCartRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO cart_items").
		WithArgs("user-cart", "guest-cart").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM cart_items WHERE cart_id").
		WithArgs("guest-cart").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE carts SET status").
		WithArgs(string(domain.CartStatusAbandoned), "guest-cart").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE carts SET updated_at").
		WithArgs("user-cart").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = repo.Merge(context.Background(), "guest-cart", "user-cart")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_UnknownCart(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCartRepository(db)

	mock.ExpectExec("UPDATE carts SET status").
		WithArgs(string(domain.CartStatusAbandoned), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateStatus(context.Background(), "missing", domain.CartStatusAbandoned)
	assert.True(t, domain.IsNotFound(err), "got: %v", err)
}
