package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/soukly/marketplace/internal/fault"
)

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, seller_id, subcategory_id, name, base_price, discount_pct,
	stock_quantity, is_available, approval_status, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SellerID, &p.SubcategoryID, &p.Name, &p.BasePrice, &p.DiscountPct,
		&p.StockQuantity, &p.IsAvailable, &p.Approval, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *Repo) GetProduct(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, fault.NotFound("product", id)
	}
	if err != nil {
		return Product{}, fault.Storage(err)
	}
	return p, nil
}

// GetProductForOrder is the placement-path lookup: deleted and
// not-yet-approved products read as missing or unavailable, never as
// orderable rows.
func (r *Repo) GetProductForOrder(ctx context.Context, id string) (Product, error) {
	p, err := r.GetProduct(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if p.Approval == ApprovalDeleted {
		return Product{}, fault.NotFound("product", id)
	}
	if !p.Orderable() {
		return Product{}, fault.Unavailable("product", id)
	}
	return p, nil
}

func (r *Repo) GetVariant(ctx context.Context, id string) (Variant, error) {
	var v Variant
	err := r.DB.QueryRow(ctx, `
		SELECT v.id, v.product_id, v.variant_name, v.price, v.discount_pct, v.stock_quantity,
		       v.is_default,
		       (p.approval_status = 'approved' AND p.is_available AND v.stock_quantity > 0)
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id=$1`, id).
		Scan(&v.ID, &v.ProductID, &v.VariantName, &v.Price, &v.DiscountPct, &v.StockQuantity,
			&v.IsDefault, &v.IsAvailable)
	if errors.Is(err, pgx.ErrNoRows) {
		return Variant{}, fault.NotFound("variant", id)
	}
	if err != nil {
		return Variant{}, fault.Storage(err)
	}
	return v, nil
}

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+`
		FROM products WHERE approval_status <> 'deleted' ORDER BY created_at DESC`)
	if err != nil {
		return nil, fault.Storage(err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fault.Storage(err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Storage(err)
	}
	return out, nil
}

type VariantInput struct {
	VariantName   string          `json:"variant_name"`
	Price         decimal.Decimal `json:"price"`
	DiscountPct   decimal.Decimal `json:"discount_pct"`
	StockQuantity int             `json:"stock_quantity"`
	IsDefault     bool            `json:"is_default"`
}

// CreateVariant inserts a variant. The first variant of a product always
// becomes the default; marking a later one default demotes the current one.
// The product row is re-synced to its default variant either way.
func (r *Repo) CreateVariant(ctx context.Context, productID string, in VariantInput) (string, error) {
	if in.StockQuantity < 0 || in.Price.IsNegative() {
		return "", fault.Validation("variant price and stock must be non-negative")
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", fault.Storage(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var count int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM product_variants WHERE product_id=$1`, productID).Scan(&count); err != nil {
		return "", fault.Storage(err)
	}
	isDefault := in.IsDefault || count == 0
	if isDefault && count > 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE product_variants SET is_default=false, updated_at=now()
			 WHERE product_id=$1 AND is_default`, productID); err != nil {
			return "", fault.Storage(err)
		}
	}

	id := uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO product_variants(id, product_id, variant_name, price, discount_pct, stock_quantity, is_default)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		id, productID, in.VariantName, in.Price, in.DiscountPct, in.StockQuantity, isDefault)
	if err != nil {
		return "", fault.Storage(err)
	}
	if err := syncDefaultMirror(ctx, tx, productID); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fault.Storage(err)
	}
	return id, nil
}

func (r *Repo) UpdateVariant(ctx context.Context, variantID string, in VariantInput) error {
	if in.StockQuantity < 0 || in.Price.IsNegative() {
		return fault.Validation("variant price and stock must be non-negative")
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fault.Storage(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var productID string
	var wasDefault bool
	err = tx.QueryRow(ctx,
		`SELECT product_id, is_default FROM product_variants WHERE id=$1 FOR UPDATE`, variantID).
		Scan(&productID, &wasDefault)
	if errors.Is(err, pgx.ErrNoRows) {
		return fault.NotFound("variant", variantID)
	}
	if err != nil {
		return fault.Storage(err)
	}
	if wasDefault && !in.IsDefault {
		return fault.Validation("cannot demote the default variant directly; promote another variant instead")
	}
	if in.IsDefault && !wasDefault {
		if _, err := tx.Exec(ctx,
			`UPDATE product_variants SET is_default=false, updated_at=now()
			 WHERE product_id=$1 AND is_default`, productID); err != nil {
			return fault.Storage(err)
		}
	}
	_, err = tx.Exec(ctx, `
		UPDATE product_variants
		SET variant_name=$2, price=$3, discount_pct=$4, stock_quantity=$5, is_default=$6, updated_at=now()
		WHERE id=$1`,
		variantID, in.VariantName, in.Price, in.DiscountPct, in.StockQuantity, in.IsDefault || wasDefault)
	if err != nil {
		return fault.Storage(err)
	}
	if err := syncDefaultMirror(ctx, tx, productID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fault.Storage(err)
	}
	return nil
}

// DeleteVariant removes a variant. Deleting the last variant of a product
// is forbidden; deleting the default promotes the oldest remaining variant.
func (r *Repo) DeleteVariant(ctx context.Context, variantID string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fault.Storage(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var productID string
	var wasDefault bool
	err = tx.QueryRow(ctx,
		`SELECT product_id, is_default FROM product_variants WHERE id=$1 FOR UPDATE`, variantID).
		Scan(&productID, &wasDefault)
	if errors.Is(err, pgx.ErrNoRows) {
		return fault.NotFound("variant", variantID)
	}
	if err != nil {
		return fault.Storage(err)
	}

	var count int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM product_variants WHERE product_id=$1`, productID).Scan(&count); err != nil {
		return fault.Storage(err)
	}
	if count <= 1 {
		return fault.Validation("cannot delete the last variant of a product")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE id=$1`, variantID); err != nil {
		return fault.Storage(err)
	}
	if wasDefault {
		if _, err := tx.Exec(ctx, `
			UPDATE product_variants SET is_default=true, updated_at=now()
			WHERE id = (SELECT id FROM product_variants WHERE product_id=$1 ORDER BY created_at LIMIT 1)`,
			productID); err != nil {
			return fault.Storage(err)
		}
	}
	if err := syncDefaultMirror(ctx, tx, productID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fault.Storage(err)
	}
	return nil
}

// SoftDeleteProduct marks a product deleted and unavailable. Rows are never
// hard-deleted once order history may reference them.
func (r *Repo) SoftDeleteProduct(ctx context.Context, productID string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET approval_status='deleted', is_available=false, updated_at=now()
		WHERE id=$1 AND approval_status <> 'deleted'`, productID)
	if err != nil {
		return fault.Storage(err)
	}
	if ct.RowsAffected() == 0 {
		return fault.NotFound("product", productID)
	}
	return nil
}

// syncDefaultMirror copies the default variant's price, discount and stock
// onto the product row. Every variant write path funnels through here so
// the mirror invariant holds at a single call site.
func syncDefaultMirror(ctx context.Context, tx pgx.Tx, productID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE products p
		SET base_price = v.price,
		    discount_pct = v.discount_pct,
		    stock_quantity = v.stock_quantity,
		    updated_at = now()
		FROM product_variants v
		WHERE v.product_id = p.id AND v.is_default AND p.id = $1`, productID)
	if err != nil {
		return fault.Storage(err)
	}
	return nil
}
