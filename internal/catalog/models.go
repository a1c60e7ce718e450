package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type ApprovalStatus string

const (
	ApprovalPending       ApprovalStatus = "pending"
	ApprovalPendingReview ApprovalStatus = "pending_review"
	ApprovalApproved      ApprovalStatus = "approved"
	ApprovalRejected      ApprovalStatus = "rejected"
	ApprovalDeleted       ApprovalStatus = "deleted"
)

type Product struct {
	ID            string          `json:"id"`
	SellerID      string          `json:"seller_id"`
	SubcategoryID string          `json:"subcategory_id"`
	Name          string          `json:"name"`
	BasePrice     decimal.Decimal `json:"base_price"`
	DiscountPct   decimal.Decimal `json:"discount_pct"`
	StockQuantity int             `json:"stock_quantity"`
	IsAvailable   bool            `json:"is_available"`
	Approval      ApprovalStatus  `json:"approval_status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Variant struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	VariantName   string          `json:"variant_name"`
	Price         decimal.Decimal `json:"price"`
	DiscountPct   decimal.Decimal `json:"discount_pct"`
	StockQuantity int             `json:"stock_quantity"`
	IsDefault     bool            `json:"is_default"`
	// Derived: product approved and stock above zero.
	IsAvailable bool `json:"is_available"`
}

// Orderable reports whether the product may appear on a new order.
func (p Product) Orderable() bool {
	return p.IsAvailable && p.Approval == ApprovalApproved
}
