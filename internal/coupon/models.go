package coupon

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	Fixed      DiscountType = "fixed"
	Percentage DiscountType = "percentage"
)

type Coupon struct {
	ID              string           `json:"id"`
	Code            string           `json:"code"`
	DiscountType    DiscountType     `json:"discount_type"`
	DiscountAmount  decimal.Decimal  `json:"discount_amount"`
	MinimumPurchase *decimal.Decimal `json:"minimum_purchase,omitempty"`
	StartDate       time.Time        `json:"start_date"`
	EndDate         time.Time        `json:"end_date"`
	UsageLimit      *int             `json:"usage_limit,omitempty"`
	UsageCount      int              `json:"usage_count"`
	IsActive        bool             `json:"is_active"`
}

// Result is a successful validation: the coupon plus the discount it yields
// for the subtotal it was validated against. The discount is uncapped here;
// order pricing caps it at the order subtotal.
type Result struct {
	Coupon   Coupon
	Discount decimal.Decimal
}
