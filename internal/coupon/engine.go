package coupon

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/soukly/marketplace/internal/fault"
)

// Engine runs coupon eligibility. The check sequence is ordered; the first
// failing check decides the user-facing reason.
type Engine struct{ Repo *Repo }

// Validate loads the coupon by code and evaluates it for the customer and
// subtotal. A missing code reports the same InvalidCoupon kind as the other
// checks so callers get one error family.
func (e *Engine) Validate(ctx context.Context, code, customerID string, subtotal decimal.Decimal) (Result, error) {
	c, err := e.Repo.GetByCode(ctx, code)
	if err != nil {
		if fault.Is(err, fault.KindNotFound) {
			return Result{}, fault.InvalidCoupon("not found")
		}
		return Result{}, err
	}
	used, err := e.Repo.UsedBy(ctx, customerID, c.ID)
	if err != nil {
		return Result{}, err
	}
	return Evaluate(c, used, subtotal, time.Now())
}

// Evaluate is the pure core of validation. Check order matters:
// active -> date range -> minimum purchase -> usage limit -> per-customer use.
func Evaluate(c Coupon, usedByCustomer bool, subtotal decimal.Decimal, now time.Time) (Result, error) {
	if !c.IsActive {
		return Result{}, fault.InvalidCoupon("not active")
	}
	if now.Before(c.StartDate) || now.After(c.EndDate) {
		return Result{}, fault.InvalidCoupon("not valid at this time")
	}
	if c.MinimumPurchase != nil && subtotal.LessThan(*c.MinimumPurchase) {
		return Result{}, fault.InvalidCoupon(fmt.Sprintf("minimum purchase of %s required", c.MinimumPurchase.StringFixed(2)))
	}
	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		return Result{}, fault.InvalidCoupon("usage limit reached")
	}
	if usedByCustomer {
		return Result{}, fault.InvalidCoupon("already used")
	}
	return Result{Coupon: c, Discount: discountFor(c, subtotal)}, nil
}

func discountFor(c Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if c.DiscountType == Percentage {
		return subtotal.Mul(c.DiscountAmount).Div(decimal.NewFromInt(100)).Round(2)
	}
	return c.DiscountAmount.Round(2)
}
