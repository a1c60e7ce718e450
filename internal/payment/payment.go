// Package payment defines the gateway contract the order path hands off
// to. The real gateway integration lives outside this service; checkout
// only needs the order id, the final amount and the currency.
package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

type Initiator interface {
	// InitiatePayment starts a payment session and returns the URL the
	// customer is redirected to. An empty URL means no redirect is needed.
	InitiatePayment(ctx context.Context, orderID string, amount decimal.Decimal, currency, method string) (redirectURL string, err error)
}

// CashOnDelivery needs no gateway session.
type CashOnDelivery struct{}

func (CashOnDelivery) InitiatePayment(ctx context.Context, orderID string, amount decimal.Decimal, currency, method string) (string, error) {
	return "", nil
}
