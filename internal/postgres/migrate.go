package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the schema at boot. Statements are idempotent so every
// service can run it on startup.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id          TEXT PRIMARY KEY,
		email       TEXT NOT NULL UNIQUE,
		full_name   TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id           TEXT PRIMARY KEY,
		customer_id  TEXT NOT NULL REFERENCES customers(id),
		line1        TEXT NOT NULL,
		line2        TEXT NOT NULL DEFAULT '',
		city         TEXT NOT NULL,
		country      TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS sellers (
		id           TEXT PRIMARY KEY,
		store_name   TEXT NOT NULL,
		is_verified  BOOLEAN NOT NULL DEFAULT false,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id                  TEXT PRIMARY KEY,
		seller_id           TEXT NOT NULL REFERENCES sellers(id),
		subcategory_id      TEXT NOT NULL DEFAULT '',
		name                TEXT NOT NULL,
		base_price          NUMERIC(12,2) NOT NULL,
		discount_pct        NUMERIC(5,2) NOT NULL DEFAULT 0,
		stock_quantity      INT NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
		is_available        BOOLEAN NOT NULL DEFAULT true,
		approval_status     TEXT NOT NULL DEFAULT 'pending',
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS product_variants (
		id              TEXT PRIMARY KEY,
		product_id      TEXT NOT NULL REFERENCES products(id),
		variant_name    TEXT NOT NULL,
		price           NUMERIC(12,2) NOT NULL,
		discount_pct    NUMERIC(5,2) NOT NULL DEFAULT 0,
		stock_quantity  INT NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
		is_default      BOOLEAN NOT NULL DEFAULT false,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_variants_default
		ON product_variants(product_id) WHERE is_default`,
	`CREATE TABLE IF NOT EXISTS carts (
		id           TEXT PRIMARY KEY,
		customer_id  TEXT NOT NULL UNIQUE REFERENCES customers(id),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		id                 TEXT PRIMARY KEY,
		cart_id            TEXT NOT NULL REFERENCES carts(id),
		product_id         TEXT NOT NULL REFERENCES products(id),
		variant_id         TEXT REFERENCES product_variants(id),
		quantity           INT NOT NULL CHECK (quantity >= 1),
		price_at_addition  NUMERIC(12,2) NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_cart_items_line
		ON cart_items(cart_id, product_id, COALESCE(variant_id, ''))`,
	`CREATE TABLE IF NOT EXISTS wishlist_items (
		id           TEXT PRIMARY KEY,
		customer_id  TEXT NOT NULL REFERENCES customers(id),
		product_id   TEXT NOT NULL REFERENCES products(id),
		variant_id   TEXT REFERENCES product_variants(id),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_wishlist_line
		ON wishlist_items(customer_id, product_id, COALESCE(variant_id, ''))`,
	`CREATE TABLE IF NOT EXISTS coupons (
		id                TEXT PRIMARY KEY,
		code              TEXT NOT NULL UNIQUE,
		discount_type     TEXT NOT NULL,
		discount_amount   NUMERIC(12,2) NOT NULL,
		minimum_purchase  NUMERIC(12,2),
		start_date        TIMESTAMPTZ NOT NULL,
		end_date          TIMESTAMPTZ NOT NULL,
		usage_limit       INT,
		usage_count       INT NOT NULL DEFAULT 0,
		is_active         BOOLEAN NOT NULL DEFAULT true,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS user_coupons (
		customer_id  TEXT NOT NULL REFERENCES customers(id),
		coupon_id    TEXT NOT NULL REFERENCES coupons(id),
		is_used      BOOLEAN NOT NULL DEFAULT false,
		used_at      TIMESTAMPTZ,
		PRIMARY KEY (customer_id, coupon_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id               TEXT PRIMARY KEY,
		customer_id      TEXT NOT NULL REFERENCES customers(id),
		address_id       TEXT NOT NULL REFERENCES addresses(id),
		coupon_id        TEXT REFERENCES coupons(id),
		subtotal         NUMERIC(12,2) NOT NULL,
		discount_amount  NUMERIC(12,2) NOT NULL DEFAULT 0,
		tax_amount       NUMERIC(12,2) NOT NULL DEFAULT 0,
		shipping_fee     NUMERIC(12,2) NOT NULL DEFAULT 0,
		final_amount     NUMERIC(12,2) NOT NULL,
		payment_method   TEXT NOT NULL DEFAULT 'cod',
		payment_status   TEXT NOT NULL DEFAULT 'pending',
		order_status     TEXT NOT NULL DEFAULT 'pending',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS sub_orders (
		id                 TEXT PRIMARY KEY,
		order_id           TEXT NOT NULL REFERENCES orders(id),
		seller_id          TEXT NOT NULL REFERENCES sellers(id),
		subtotal           NUMERIC(12,2) NOT NULL,
		status             TEXT NOT NULL DEFAULT 'pending',
		tracking_number    TEXT,
		shipping_provider  TEXT,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id                 TEXT PRIMARY KEY,
		sub_order_id       TEXT NOT NULL REFERENCES sub_orders(id),
		product_id         TEXT NOT NULL REFERENCES products(id),
		variant_id         TEXT REFERENCES product_variants(id),
		quantity           INT NOT NULL CHECK (quantity >= 1),
		price_at_purchase  NUMERIC(12,2) NOT NULL,
		total_price        NUMERIC(12,2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sub_orders_order ON sub_orders(order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sub_orders_seller ON sub_orders(seller_id)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_sub ON order_items(sub_order_id)`,
}
