// Package dbtest opens throwaway sqlite databases that mirror the Postgres schema closely enough
// for repository and service tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/angelmondragon/gocart-backend/pkg/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var seq atomic.Int64

var schema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'customer',
		cart TEXT NOT NULL DEFAULT '{}',
		last_login_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE stores (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		username TEXT NOT NULL UNIQUE,
		address TEXT NOT NULL,
		logo TEXT NOT NULL,
		email TEXT NOT NULL,
		contact TEXT NOT NULL,
		status TEXT NOT NULL,
		is_active BOOLEAN NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE products (
		id TEXT PRIMARY KEY,
		store_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		mrp NUMERIC NOT NULL,
		price NUMERIC NOT NULL,
		images TEXT NOT NULL,
		category TEXT NOT NULL,
		in_stock BOOLEAN NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE addresses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		street TEXT NOT NULL,
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		zip TEXT NOT NULL,
		country TEXT NOT NULL,
		phone TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		store_id TEXT NOT NULL,
		address_id TEXT NOT NULL,
		total NUMERIC NOT NULL,
		status TEXT NOT NULL,
		is_paid BOOLEAN NOT NULL,
		payment_method TEXT NOT NULL,
		is_coupon_used BOOLEAN NOT NULL,
		coupon TEXT,
		payment_intent_id TEXT,
		paid_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		price NUMERIC NOT NULL
	)`,
	`CREATE TABLE ratings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		order_id TEXT NOT NULL,
		rating INTEGER NOT NULL,
		review TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (user_id, product_id, order_id)
	)`,
	`CREATE TABLE coupons (
		code TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		discount NUMERIC NOT NULL,
		for_new_user BOOLEAN NOT NULL,
		is_public BOOLEAN NOT NULL,
		expires_at DATETIME NOT NULL,
		created_at DATETIME
	)`,
}

// Open returns a fresh, isolated in-memory database with every application table created.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

// Client wraps Open in the application's db.Client.
func Client(t *testing.T) *db.Client {
	t.Helper()
	return db.NewFromConn(Open(t))
}
