package orders

const (
	TopicOrderPlaced      = "order.placed"
	TopicOrderCanceled    = "order.canceled"
	TopicSubOrderCanceled = "order.suborder.canceled"
	TopicSubOrderStatus   = "order.suborder.status"
)

// Partition key = order id so every event of one order keeps its order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
