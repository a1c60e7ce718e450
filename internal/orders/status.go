package orders

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCanceled   Status = "canceled"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusProcessing: true, StatusCanceled: true},
	StatusProcessing: {StatusShipped: true, StatusCanceled: true},
	StatusShipped:    {StatusDelivered: true},
	StatusDelivered:  {},
	StatusCanceled:   {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Cancelable statuses: cancellation is compensating (restock), so it is
// only legal before the goods ship.
func (s Status) Cancelable() bool {
	return s == StatusPending || s == StatusProcessing
}

func (s Status) Terminal() bool {
	return len(validNext[s]) == 0
}

func ValidStatus(s Status) bool {
	_, ok := validNext[s]
	return ok
}

// BlockingSubOrderStatus returns the first sub-order status that forbids
// canceling the parent order. A sub-order that shipped or was delivered
// cannot be restocked by an order-level cancel; already-canceled siblings
// never block.
func BlockingSubOrderStatus(statuses []Status) (Status, bool) {
	for _, s := range statuses {
		if s != StatusCanceled && !s.Cancelable() {
			return s, true
		}
	}
	return "", false
}

// AllCanceled reports whether every sibling sub-order is canceled. When
// the last live sub-order cancels, the parent order cascades to canceled.
func AllCanceled(statuses []Status) bool {
	for _, s := range statuses {
		if s != StatusCanceled {
			return false
		}
	}
	return true
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)
