package redisx

import "time"

const (
	// Cache of order status payload: order_status:{order_id}
	KeyOrderStatus = "order_status:%s"

	// Dedup for event consumers: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Pending sub-order counter per seller (fulfillment dashboard feed):
	// seller:pending:{seller_id}
	KeySellerPending = "seller:pending:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
