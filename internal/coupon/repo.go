package coupon

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soukly/marketplace/internal/fault"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) GetByCode(ctx context.Context, code string) (Coupon, error) {
	var c Coupon
	err := r.DB.QueryRow(ctx, `
		SELECT id, code, discount_type, discount_amount, minimum_purchase,
		       start_date, end_date, usage_limit, usage_count, is_active
		FROM coupons WHERE code=$1`, code).
		Scan(&c.ID, &c.Code, &c.DiscountType, &c.DiscountAmount, &c.MinimumPurchase,
			&c.StartDate, &c.EndDate, &c.UsageLimit, &c.UsageCount, &c.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return Coupon{}, fault.NotFound("coupon", code)
	}
	if err != nil {
		return Coupon{}, fault.Storage(err)
	}
	return c, nil
}

// UsedBy reports whether the customer has already consumed this coupon.
func (r *Repo) UsedBy(ctx context.Context, customerID, couponID string) (bool, error) {
	var used bool
	err := r.DB.QueryRow(ctx, `
		SELECT COALESCE(bool_or(is_used), false)
		FROM user_coupons WHERE customer_id=$1 AND coupon_id=$2`, customerID, couponID).
		Scan(&used)
	if err != nil {
		return false, fault.Storage(err)
	}
	return used, nil
}

// IncrementUsageTx bumps the global usage counter and auto-deactivates the
// coupon when the limit is hit. Runs inside the caller's transaction so the
// counter moves exactly with the order that consumed it.
func IncrementUsageTx(ctx context.Context, tx pgx.Tx, couponID string) error {
	ct, err := tx.Exec(ctx, `
		UPDATE coupons
		SET usage_count = usage_count + 1,
		    is_active = CASE
		        WHEN usage_limit IS NOT NULL AND usage_count + 1 >= usage_limit THEN false
		        ELSE is_active
		    END
		WHERE id=$1 AND is_active
		  AND (usage_limit IS NULL OR usage_count < usage_limit)`, couponID)
	if err != nil {
		return fault.Storage(err)
	}
	if ct.RowsAffected() == 0 {
		// Lost the race to the last use.
		return fault.InvalidCoupon("usage limit reached")
	}
	return nil
}

// MarkUsedTx records the single-use grant for this customer.
func MarkUsedTx(ctx context.Context, tx pgx.Tx, customerID, couponID string) error {
	ct, err := tx.Exec(ctx, `
		INSERT INTO user_coupons(customer_id, coupon_id, is_used, used_at)
		VALUES ($1, $2, true, now())
		ON CONFLICT (customer_id, coupon_id)
		DO UPDATE SET is_used=true, used_at=now()
		WHERE NOT user_coupons.is_used`, customerID, couponID)
	if err != nil {
		return fault.Storage(err)
	}
	if ct.RowsAffected() == 0 {
		return fault.InvalidCoupon("already used")
	}
	return nil
}
