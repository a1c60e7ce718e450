// Package inventory is the only code allowed to mutate stock fields.
// Both movements run as conditional updates on the caller's transaction:
// sufficiency is decided by the database at write time, so two concurrent
// placements racing for the last unit cannot both succeed.
package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/soukly/marketplace/internal/fault"
)

// Decrement takes qty units off the variant (when given) or the product's
// own stock. Zero rows updated means the guard `stock_quantity >= qty`
// failed, reported as InsufficientStock with the quantity still available.
func Decrement(ctx context.Context, tx pgx.Tx, productID string, variantID *string, qty int) error {
	if qty < 1 {
		return fault.Validation("quantity must be at least 1")
	}
	if variantID == nil {
		return moveProductStock(ctx, tx, productID, -qty)
	}

	var isDefault bool
	var newStock int
	err := tx.QueryRow(ctx, `
		UPDATE product_variants
		SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE id = $1 AND stock_quantity >= $2
		RETURNING is_default, stock_quantity`, *variantID, qty).
		Scan(&isDefault, &newStock)
	if errors.Is(err, pgx.ErrNoRows) {
		return insufficientOrMissing(ctx, tx, *variantID, qty)
	}
	if err != nil {
		return fault.Storage(err)
	}
	if isDefault {
		return mirrorDefault(ctx, tx, productID, newStock)
	}
	return nil
}

// Restore puts qty units back, symmetric to Decrement. Idempotency is the
// caller's responsibility: cancellation flows are status-guarded so a
// sub-order restocks at most once.
func Restore(ctx context.Context, tx pgx.Tx, productID string, variantID *string, qty int) error {
	if qty < 1 {
		return fault.Validation("quantity must be at least 1")
	}
	if variantID == nil {
		return moveProductStock(ctx, tx, productID, qty)
	}

	var isDefault bool
	var newStock int
	err := tx.QueryRow(ctx, `
		UPDATE product_variants
		SET stock_quantity = stock_quantity + $2, updated_at = now()
		WHERE id = $1
		RETURNING is_default, stock_quantity`, *variantID, qty).
		Scan(&isDefault, &newStock)
	if errors.Is(err, pgx.ErrNoRows) {
		return fault.NotFound("variant", *variantID)
	}
	if err != nil {
		return fault.Storage(err)
	}
	if isDefault {
		return mirrorDefault(ctx, tx, productID, newStock)
	}
	return nil
}

func moveProductStock(ctx context.Context, tx pgx.Tx, productID string, delta int) error {
	ct, err := tx.Exec(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity + $2, updated_at = now()
		WHERE id = $1 AND stock_quantity + $2 >= 0`, productID, delta)
	if err != nil {
		return fault.Storage(err)
	}
	if ct.RowsAffected() == 0 {
		if delta < 0 {
			return insufficientProduct(ctx, tx, productID, -delta)
		}
		return fault.NotFound("product", productID)
	}
	return nil
}

// mirrorDefault keeps the product row equal to its default variant's stock.
func mirrorDefault(ctx context.Context, tx pgx.Tx, productID string, stock int) error {
	if _, err := tx.Exec(ctx, `
		UPDATE products SET stock_quantity = $2, updated_at = now()
		WHERE id = $1`, productID, stock); err != nil {
		return fault.Storage(err)
	}
	return nil
}

func insufficientOrMissing(ctx context.Context, tx pgx.Tx, variantID string, qty int) error {
	var available int
	err := tx.QueryRow(ctx,
		`SELECT stock_quantity FROM product_variants WHERE id=$1`, variantID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return fault.NotFound("variant", variantID)
	}
	if err != nil {
		return fault.Storage(err)
	}
	return fault.InsufficientStock(variantID, qty, available)
}

func insufficientProduct(ctx context.Context, tx pgx.Tx, productID string, qty int) error {
	var available int
	err := tx.QueryRow(ctx,
		`SELECT stock_quantity FROM products WHERE id=$1`, productID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return fault.NotFound("product", productID)
	}
	if err != nil {
		return fault.Storage(err)
	}
	return fault.InsufficientStock(productID, qty, available)
}
