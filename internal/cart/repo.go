package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/soukly/marketplace/internal/fault"
)

// Line is one cart entry as consumed by order pricing. PriceAtAddition is
// a snapshot from add-time; placement re-prices from the catalog.
type Line struct {
	ProductID       string          `json:"product_id"`
	VariantID       *string         `json:"variant_id,omitempty"`
	Quantity        int             `json:"quantity"`
	PriceAtAddition decimal.Decimal `json:"price_at_addition"`
}

type Repo struct{ DB *pgxpool.Pool }

// ensureCart creates the customer's cart on first touch.
func (r *Repo) ensureCart(ctx context.Context, customerID string) (string, error) {
	var id string
	err := r.DB.QueryRow(ctx, `
		INSERT INTO carts(id, customer_id) VALUES ($1, $2)
		ON CONFLICT (customer_id) DO UPDATE SET customer_id = EXCLUDED.customer_id
		RETURNING id`, uuid.NewString(), customerID).Scan(&id)
	if err != nil {
		return "", fault.Storage(err)
	}
	return id, nil
}

func (r *Repo) Lines(ctx context.Context, customerID string) ([]Line, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT ci.product_id, ci.variant_id, ci.quantity, ci.price_at_addition
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		WHERE c.customer_id = $1
		ORDER BY ci.created_at`, customerID)
	if err != nil {
		return nil, fault.Storage(err)
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.VariantID, &l.Quantity, &l.PriceAtAddition); err != nil {
			return nil, fault.Storage(err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Storage(err)
	}
	return out, nil
}

// Add upserts a line. Re-adding the same (product, variant) increments the
// quantity instead of duplicating the row.
func (r *Repo) Add(ctx context.Context, customerID string, l Line) error {
	if l.Quantity < 1 {
		return fault.Validation("quantity must be at least 1")
	}
	cartID, err := r.ensureCart(ctx, customerID)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx, `
		INSERT INTO cart_items(id, cart_id, product_id, variant_id, quantity, price_at_addition)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (cart_id, product_id, COALESCE(variant_id, ''))
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		uuid.NewString(), cartID, l.ProductID, l.VariantID, l.Quantity, l.PriceAtAddition)
	if err != nil {
		return fault.Storage(err)
	}
	return nil
}

// ClearTx empties the customer's cart inside the caller's transaction.
// Order placement calls this as its last write so a rollback leaves the
// cart untouched.
func ClearTx(ctx context.Context, tx pgx.Tx, customerID string) error {
	_, err := tx.Exec(ctx, `
		DELETE FROM cart_items
		WHERE cart_id IN (SELECT id FROM carts WHERE customer_id=$1)`, customerID)
	if err != nil {
		return fault.Storage(err)
	}
	return nil
}
