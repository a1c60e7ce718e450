package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID             string          `json:"id"`
	CustomerID     string          `json:"customer_id"`
	AddressID      string          `json:"address_id"`
	CouponID       *string         `json:"coupon_id,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	ShippingFee    decimal.Decimal `json:"shipping_fee"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	PaymentMethod  string          `json:"payment_method"`
	PaymentStatus  PaymentStatus   `json:"payment_status"`
	Status         Status          `json:"order_status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	SubOrders      []SubOrder      `json:"sub_orders,omitempty"`
}

type SubOrder struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"order_id"`
	SellerID         string          `json:"seller_id"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Status           Status          `json:"status"`
	TrackingNumber   *string         `json:"tracking_number,omitempty"`
	ShippingProvider *string         `json:"shipping_provider,omitempty"`
	Items            []OrderItem     `json:"items,omitempty"`
}

type OrderItem struct {
	ID              string          `json:"id"`
	SubOrderID      string          `json:"sub_order_id"`
	ProductID       string          `json:"product_id"`
	VariantID       *string         `json:"variant_id,omitempty"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	TotalPrice      decimal.Decimal `json:"total_price"`
}

// PlacementInput is what checkout hands the service; line items come from
// the customer's cart, totals are always recomputed server-side.
type PlacementInput struct {
	CustomerID    string
	AddressID     string
	CouponCode    string // empty means no coupon
	PaymentMethod string
}
