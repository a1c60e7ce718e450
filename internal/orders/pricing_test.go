package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soukly/marketplace/internal/fault"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(seller, product, price, discountPct string, qty, stock int) ResolvedLine {
	return ResolvedLine{
		ProductID:      product,
		SellerID:       seller,
		Quantity:       qty,
		UnitPrice:      dec(price),
		DiscountPct:    dec(discountPct),
		AvailableStock: stock,
	}
}

func TestBuildQuoteSingleSellerNoCoupon(t *testing.T) {
	// qty 2 at 50.00 with 10% discount: 2 x 45.00 = 90.00
	q, err := BuildQuote([]ResolvedLine{
		line("seller-1", "prod-1", "50.00", "10", 2, 10),
	}, DefaultPolicy(), nil)
	require.NoError(t, err)

	require.Len(t, q.Groups, 1)
	assert.Equal(t, "45.00", q.Groups[0].Items[0].PriceAtPurchase.StringFixed(2))
	assert.Equal(t, "90.00", q.Groups[0].Items[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "90.00", q.Groups[0].Subtotal.StringFixed(2))
	assert.Equal(t, "90.00", q.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", q.DiscountAmount.StringFixed(2))
	assert.Equal(t, "4.50", q.TaxAmount.StringFixed(2))
	assert.Equal(t, "10.00", q.ShippingFee.StringFixed(2))
	assert.Equal(t, "104.50", q.FinalAmount.StringFixed(2))
}

func TestBuildQuoteWithFixedCoupon(t *testing.T) {
	q, err := BuildQuote([]ResolvedLine{
		line("seller-1", "prod-1", "50.00", "10", 2, 10),
	}, DefaultPolicy(), func(subtotal decimal.Decimal) (decimal.Decimal, error) {
		require.Equal(t, "90.00", subtotal.StringFixed(2))
		return dec("20.00"), nil
	})
	require.NoError(t, err)

	assert.Equal(t, "20.00", q.DiscountAmount.StringFixed(2))
	assert.Equal(t, "84.50", q.FinalAmount.StringFixed(2))
}

func TestBuildQuoteCapsDiscountAtSubtotal(t *testing.T) {
	q, err := BuildQuote([]ResolvedLine{
		line("seller-1", "prod-1", "10.00", "0", 1, 10),
	}, DefaultPolicy(), func(decimal.Decimal) (decimal.Decimal, error) {
		return dec("50.00"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "10.00", q.DiscountAmount.StringFixed(2))
	// 10.00 - 10.00 + 0.50 tax + 10.00 shipping
	assert.Equal(t, "10.50", q.FinalAmount.StringFixed(2))
}

func TestBuildQuotePartitionsBySeller(t *testing.T) {
	q, err := BuildQuote([]ResolvedLine{
		line("seller-a", "prod-1", "30.00", "0", 1, 5),
		line("seller-b", "prod-2", "20.00", "0", 2, 5),
		line("seller-a", "prod-3", "10.00", "0", 1, 5),
	}, DefaultPolicy(), nil)
	require.NoError(t, err)

	require.Len(t, q.Groups, 2)
	assert.Equal(t, "seller-a", q.Groups[0].SellerID)
	assert.Len(t, q.Groups[0].Items, 2)
	assert.Equal(t, "40.00", q.Groups[0].Subtotal.StringFixed(2))
	assert.Equal(t, "seller-b", q.Groups[1].SellerID)
	assert.Equal(t, "40.00", q.Groups[1].Subtotal.StringFixed(2))

	// Order subtotal equals the sum of the seller subtotals, and each
	// group subtotal equals the sum of its item totals.
	sum := decimal.Zero
	for _, g := range q.Groups {
		itemSum := decimal.Zero
		for _, it := range g.Items {
			itemSum = itemSum.Add(it.TotalPrice)
		}
		assert.True(t, itemSum.Equal(g.Subtotal))
		sum = sum.Add(g.Subtotal)
	}
	assert.True(t, sum.Equal(q.Subtotal))
}

func TestBuildQuoteInsufficientStock(t *testing.T) {
	_, err := BuildQuote([]ResolvedLine{
		line("seller-1", "prod-1", "10.00", "0", 5, 3),
	}, DefaultPolicy(), nil)
	require.Error(t, err)

	var fe *fault.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fault.KindInsufficientStock, fe.Kind)
	assert.Equal(t, 5, fe.Requested)
	assert.Equal(t, 3, fe.Available)
}

func TestBuildQuoteCouponFailureAborts(t *testing.T) {
	_, err := BuildQuote([]ResolvedLine{
		line("seller-1", "prod-1", "60.00", "0", 1, 3),
	}, DefaultPolicy(), func(decimal.Decimal) (decimal.Decimal, error) {
		return decimal.Zero, fault.InvalidCoupon("usage limit reached")
	})
	require.Error(t, err)
	assert.Equal(t, fault.KindInvalidCoupon, fault.KindOf(err))
}

func TestBuildQuoteEmptyCart(t *testing.T) {
	_, err := BuildQuote(nil, DefaultPolicy(), nil)
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))
}

func TestShippingFeeBoundaries(t *testing.T) {
	policy := DefaultPolicy()
	cases := []struct {
		subtotal string
		fee      string
	}{
		{"100.00", "10.00"}, // exactly at the reduced threshold pays full
		{"100.01", "5.00"},
		{"200.00", "5.00"},
		{"200.01", "0.00"},
		{"99.99", "10.00"},
	}
	for _, tc := range cases {
		q, err := BuildQuote([]ResolvedLine{
			line("s", "p", tc.subtotal, "0", 1, 1),
		}, policy, nil)
		require.NoError(t, err, tc.subtotal)
		assert.Equal(t, tc.fee, q.ShippingFee.StringFixed(2), "subtotal %s", tc.subtotal)
	}
}

func TestUnitNetRoundsHalfAwayFromZero(t *testing.T) {
	// 33.33 with 15% off = 28.3305 -> 28.33; 10.05 with 50% = 5.025 -> 5.03
	assert.Equal(t, "28.33", unitNet(dec("33.33"), dec("15")).StringFixed(2))
	assert.Equal(t, "5.03", unitNet(dec("10.05"), dec("50")).StringFixed(2))
}
