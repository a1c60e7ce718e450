package cart

import (
	"context"
	"log"

	"github.com/shopspring/decimal"

	"github.com/soukly/marketplace/internal/catalog"
	"github.com/soukly/marketplace/internal/fault"
)

type Service struct {
	Repo    *Repo
	Catalog *catalog.Repo
}

// AddItem snapshots the current (discounted) price and upserts the line.
func (s *Service) AddItem(ctx context.Context, customerID, productID string, variantID *string, qty int) error {
	p, err := s.Catalog.GetProductForOrder(ctx, productID)
	if err != nil {
		return err
	}
	price := p.BasePrice
	pct := p.DiscountPct
	if variantID != nil {
		v, err := s.Catalog.GetVariant(ctx, *variantID)
		if err != nil {
			return err
		}
		if v.ProductID != productID {
			return fault.Validation("variant does not belong to product")
		}
		if !v.IsAvailable {
			return fault.Unavailable("variant", v.ID)
		}
		price, pct = v.Price, v.DiscountPct
	}
	snapshot := price.Sub(price.Mul(pct).Div(decimal.NewFromInt(100))).Round(2)
	return s.Repo.Add(ctx, customerID, Line{
		ProductID:       productID,
		VariantID:       variantID,
		Quantity:        qty,
		PriceAtAddition: snapshot,
	})
}

// MoveWishlistToCart moves every wishlist item into the cart, best-effort:
// an item that no longer resolves (deleted product, gone variant) is logged
// and skipped, never fails the batch. Returns how many items moved.
func (s *Service) MoveWishlistToCart(ctx context.Context, customerID string) (int, error) {
	items, err := s.wishlistItems(ctx, customerID)
	if err != nil {
		return 0, err
	}
	moved := 0
	for _, it := range items {
		if err := s.AddItem(ctx, customerID, it.ProductID, it.VariantID, 1); err != nil {
			log.Printf("wishlist move skip customer=%s product=%s: %v", customerID, it.ProductID, err)
			continue
		}
		if err := s.removeWishlistItem(ctx, it.ID); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

type wishlistItem struct {
	ID        string
	ProductID string
	VariantID *string
}

func (s *Service) wishlistItems(ctx context.Context, customerID string) ([]wishlistItem, error) {
	rows, err := s.Repo.DB.Query(ctx, `
		SELECT id, product_id, variant_id FROM wishlist_items
		WHERE customer_id=$1 ORDER BY created_at`, customerID)
	if err != nil {
		return nil, fault.Storage(err)
	}
	defer rows.Close()

	var out []wishlistItem
	for rows.Next() {
		var it wishlistItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.VariantID); err != nil {
			return nil, fault.Storage(err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Service) removeWishlistItem(ctx context.Context, id string) error {
	if _, err := s.Repo.DB.Exec(ctx, `DELETE FROM wishlist_items WHERE id=$1`, id); err != nil {
		return fault.Storage(err)
	}
	return nil
}
