package orders

import (
	"github.com/shopspring/decimal"

	"github.com/soukly/marketplace/internal/fault"
)

// PricingPolicy carries the tax rate and shipping tiers. Values are policy
// constants fed from configuration, never hardcoded at call sites.
type PricingPolicy struct {
	TaxRatePct      decimal.Decimal
	FreeShipOver    decimal.Decimal
	ReducedShipOver decimal.Decimal
	ReducedShipFee  decimal.Decimal
	BaseShipFee     decimal.Decimal
}

func DefaultPolicy() PricingPolicy {
	return PricingPolicy{
		TaxRatePct:      decimal.NewFromInt(5),
		FreeShipOver:    decimal.NewFromInt(200),
		ReducedShipOver: decimal.NewFromInt(100),
		ReducedShipFee:  decimal.NewFromInt(5),
		BaseShipFee:     decimal.NewFromInt(10),
	}
}

// ResolvedLine is a cart line after catalog resolution: owning seller,
// current unit price and discount, and the stock visible at read time.
// The stock check here is a fast pre-check; the ledger re-validates
// atomically at write time.
type ResolvedLine struct {
	ProductID      string
	VariantID      *string
	SellerID       string
	Quantity       int
	UnitPrice      decimal.Decimal
	DiscountPct    decimal.Decimal
	AvailableStock int
}

type QuoteItem struct {
	ProductID       string
	VariantID       *string
	Quantity        int
	PriceAtPurchase decimal.Decimal
	TotalPrice      decimal.Decimal
}

// QuoteGroup is the priced portion of the order belonging to one seller.
type QuoteGroup struct {
	SellerID string
	Subtotal decimal.Decimal
	Items    []QuoteItem
}

type Quote struct {
	Groups         []QuoteGroup
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	ShippingFee    decimal.Decimal
	FinalAmount    decimal.Decimal
}

// round2 rounds half away from zero to two decimal places (shopspring's
// Round). All persisted money passes through it.
func round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

var hundred = decimal.NewFromInt(100)

// unitNet is the effective unit price after the percentage discount.
func unitNet(price, discountPct decimal.Decimal) decimal.Decimal {
	return round2(price.Sub(price.Mul(discountPct).Div(hundred)))
}

// BuildQuote prices and partitions resolved lines into a quote. discount,
// when non-nil, is invoked once with the order subtotal and returns the
// coupon's discount value; its error aborts the whole quote. No writes
// happen here: the quote is pure computation over the inputs.
func BuildQuote(lines []ResolvedLine, policy PricingPolicy, discount func(subtotal decimal.Decimal) (decimal.Decimal, error)) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, fault.Validation("order has no items")
	}

	// Group by seller, preserving first-seen order. Every line for seller S
	// lands in exactly one group.
	index := map[string]int{}
	var groups []QuoteGroup
	for _, l := range lines {
		if l.Quantity < 1 {
			return Quote{}, fault.Validation("quantity must be at least 1")
		}
		if l.Quantity > l.AvailableStock {
			id := l.ProductID
			if l.VariantID != nil {
				id = *l.VariantID
			}
			return Quote{}, fault.InsufficientStock(id, l.Quantity, l.AvailableStock)
		}

		unit := unitNet(l.UnitPrice, l.DiscountPct)
		item := QuoteItem{
			ProductID:       l.ProductID,
			VariantID:       l.VariantID,
			Quantity:        l.Quantity,
			PriceAtPurchase: unit,
			TotalPrice:      round2(unit.Mul(decimal.NewFromInt(int64(l.Quantity)))),
		}

		i, ok := index[l.SellerID]
		if !ok {
			i = len(groups)
			index[l.SellerID] = i
			groups = append(groups, QuoteGroup{SellerID: l.SellerID})
		}
		groups[i].Items = append(groups[i].Items, item)
		groups[i].Subtotal = round2(groups[i].Subtotal.Add(item.TotalPrice))
	}

	subtotal := decimal.Zero
	for _, g := range groups {
		subtotal = subtotal.Add(g.Subtotal)
	}
	subtotal = round2(subtotal)

	q := Quote{Groups: groups, Subtotal: subtotal}

	if discount != nil {
		d, err := discount(subtotal)
		if err != nil {
			return Quote{}, err
		}
		// Never discount below zero: cap at order subtotal.
		if d.GreaterThan(subtotal) {
			d = subtotal
		}
		q.DiscountAmount = round2(d)
	}

	q.TaxAmount = round2(subtotal.Mul(policy.TaxRatePct).Div(hundred))
	q.ShippingFee = shippingFee(subtotal, policy)
	q.FinalAmount = round2(subtotal.Sub(q.DiscountAmount).Add(q.TaxAmount).Add(q.ShippingFee))
	return q, nil
}

// shippingFee tiers on the pre-discount subtotal. Boundaries are strict:
// a subtotal of exactly ReducedShipOver still pays the base fee.
func shippingFee(subtotal decimal.Decimal, policy PricingPolicy) decimal.Decimal {
	switch {
	case subtotal.GreaterThan(policy.FreeShipOver):
		return decimal.Zero.Round(2)
	case subtotal.GreaterThan(policy.ReducedShipOver):
		return round2(policy.ReducedShipFee)
	default:
		return round2(policy.BaseShipFee)
	}
}
