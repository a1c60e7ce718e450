package coupon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soukly/marketplace/internal/fault"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func validCoupon() Coupon {
	min := dec("50.00")
	limit := 100
	return Coupon{
		ID:              "c-1",
		Code:            "SAVE20",
		DiscountType:    Fixed,
		DiscountAmount:  dec("20.00"),
		MinimumPurchase: &min,
		StartDate:       time.Now().Add(-24 * time.Hour),
		EndDate:         time.Now().Add(24 * time.Hour),
		UsageLimit:      &limit,
		UsageCount:      3,
		IsActive:        true,
	}
}

func TestEvaluateFixedDiscount(t *testing.T) {
	res, err := Evaluate(validCoupon(), false, dec("90.00"), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "20.00", res.Discount.StringFixed(2))
}

func TestEvaluatePercentageDiscount(t *testing.T) {
	c := validCoupon()
	c.DiscountType = Percentage
	c.DiscountAmount = dec("15")
	res, err := Evaluate(c, false, dec("200.00"), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "30.00", res.Discount.StringFixed(2))
}

func TestEvaluateInactive(t *testing.T) {
	c := validCoupon()
	c.IsActive = false
	_, err := Evaluate(c, false, dec("90.00"), time.Now())
	requireReason(t, err, "not active")
}

func TestEvaluateOutsideDateRange(t *testing.T) {
	c := validCoupon()
	_, err := Evaluate(c, false, dec("90.00"), c.EndDate.Add(time.Hour))
	requireReason(t, err, "not valid at this time")

	_, err = Evaluate(c, false, dec("90.00"), c.StartDate.Add(-time.Hour))
	requireReason(t, err, "not valid at this time")
}

func TestEvaluateBelowMinimumPurchase(t *testing.T) {
	_, err := Evaluate(validCoupon(), false, dec("49.99"), time.Now())
	requireReason(t, err, "minimum purchase of 50.00 required")
}

func TestEvaluateUsageLimitReached(t *testing.T) {
	c := validCoupon()
	c.UsageCount = *c.UsageLimit
	_, err := Evaluate(c, false, dec("90.00"), time.Now())
	requireReason(t, err, "usage limit reached")
}

func TestEvaluateAlreadyUsedByCustomer(t *testing.T) {
	_, err := Evaluate(validCoupon(), true, dec("90.00"), time.Now())
	requireReason(t, err, "already used")
}

// The first failing check decides the reason: an inactive coupon that is
// also expired and over its limit reports "not active".
func TestEvaluateCheckOrder(t *testing.T) {
	c := validCoupon()
	c.IsActive = false
	c.EndDate = time.Now().Add(-time.Hour)
	c.UsageCount = *c.UsageLimit
	_, err := Evaluate(c, true, dec("1.00"), time.Now())
	requireReason(t, err, "not active")
}

func TestEvaluateNoOptionalConstraints(t *testing.T) {
	c := validCoupon()
	c.MinimumPurchase = nil
	c.UsageLimit = nil
	res, err := Evaluate(c, false, dec("1.00"), time.Now())
	require.NoError(t, err)
	// Discount is not capped here; order pricing caps at the subtotal.
	assert.Equal(t, "20.00", res.Discount.StringFixed(2))
}

func requireReason(t *testing.T, err error, reason string) {
	t.Helper()
	require.Error(t, err)
	var fe *fault.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fault.KindInvalidCoupon, fe.Kind)
	assert.Equal(t, reason, fe.Reason)
}
