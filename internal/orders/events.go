package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced       = "OrderPlaced"
	EventOrderCanceled     = "OrderCanceled"
	EventSubOrderCanceled  = "SubOrderCanceled"
	EventSubOrderStatusSet = "SubOrderStatusSet"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type SubOrderSummary struct {
	SubOrderID string `json:"sub_order_id"`
	SellerID   string `json:"seller_id"`
	Subtotal   string `json:"subtotal"`
	ItemCount  int    `json:"item_count"`
}

type OrderPlacedPayload struct {
	OrderID     string            `json:"order_id"`
	CustomerID  string            `json:"customer_id"`
	FinalAmount string            `json:"final_amount"`
	Currency    string            `json:"currency"`
	SubOrders   []SubOrderSummary `json:"sub_orders"`
}

type OrderCanceledPayload struct {
	OrderID    string            `json:"order_id"`
	CustomerID string            `json:"customer_id"`
	SubOrders  []SubOrderSummary `json:"sub_orders"`
}

type SubOrderCanceledPayload struct {
	OrderID       string `json:"order_id"`
	SubOrderID    string `json:"sub_order_id"`
	SellerID      string `json:"seller_id"`
	OrderCanceled bool   `json:"order_canceled"` // cascade hit the parent
}

type SubOrderStatusPayload struct {
	OrderID    string `json:"order_id"`
	SubOrderID string `json:"sub_order_id"`
	SellerID   string `json:"seller_id"`
	Status     string `json:"status"`
}
