package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// OpenMySQL opens the connection pool and verifies connectivity.
func OpenMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id CHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id CHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		image_url VARCHAR(512) NOT NULL DEFAULT '',
		price DECIMAL(10,2) NOT NULL DEFAULT 0,
		quantity INT NOT NULL DEFAULT 0,
		category_id CHAR(36) NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		KEY idx_products_category (category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS carts (
		id CHAR(36) PRIMARY KEY,
		session_id VARCHAR(64) NULL,
		user_id CHAR(36) NULL,
		status VARCHAR(16) NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		KEY idx_carts_session (session_id, status),
		KEY idx_carts_user (user_id, status)
	)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		cart_id CHAR(36) NOT NULL,
		product_id CHAR(36) NOT NULL,
		quantity INT NOT NULL,
		price DECIMAL(10,2) NOT NULL,
		PRIMARY KEY (cart_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id CHAR(36) PRIMARY KEY,
		order_number VARCHAR(64) NOT NULL UNIQUE,
		user_id CHAR(36) NULL,
		customer_name VARCHAR(100) NOT NULL,
		customer_email VARCHAR(255) NOT NULL,
		customer_phone VARCHAR(32) NOT NULL,
		shipping_address VARCHAR(512) NOT NULL,
		payment_method VARCHAR(64) NOT NULL,
		notes TEXT,
		total_amount DECIMAL(12,2) NOT NULL,
		status VARCHAR(16) NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		KEY idx_orders_user (user_id),
		KEY idx_orders_status (status)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id CHAR(36) NOT NULL,
		product_id CHAR(36) NOT NULL,
		product_name VARCHAR(255) NOT NULL,
		price DECIMAL(10,2) NOT NULL,
		quantity INT NOT NULL,
		KEY idx_order_items_order (order_id)
	)`,
}

// Migrate creates the schema. Statements run one at a time because the
// driver rejects multi-statement Exec by default.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	slog.Info("database schema ready")
	return nil
}

// nullString maps empty strings to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
