package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/soukly/marketplace/internal/accounts"
	"github.com/soukly/marketplace/internal/cart"
	"github.com/soukly/marketplace/internal/catalog"
	"github.com/soukly/marketplace/internal/coupon"
	"github.com/soukly/marketplace/internal/fault"
	kafkax "github.com/soukly/marketplace/internal/kafka"
)

// Publisher is the slice of the kafka producer the service needs.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service drives the order placement and lifecycle workflows. All business
// validation happens before the placement transaction opens; the transaction
// re-validates only what can race (stock, coupon counters).
type Service struct {
	Catalog  *catalog.Repo
	Coupons  *coupon.Engine
	Cart     *cart.Repo
	Accounts *accounts.Repo
	Orders   *Repo
	Policy   PricingPolicy
	Currency string

	ServiceName string
	Placed      Publisher // order.placed
	Canceled    Publisher // order.canceled
	SubCanceled Publisher // order.suborder.canceled
	SubStatus   Publisher // order.suborder.status
}

// PlaceFromCart prices the customer's cart and commits the order graph.
func (s *Service) PlaceFromCart(ctx context.Context, in PlacementInput) (*Order, error) {
	if _, err := s.Accounts.ResolveAddress(ctx, in.CustomerID, in.AddressID); err != nil {
		return nil, err
	}

	lines, err := s.Cart.Lines(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fault.Validation("cart is empty")
	}

	resolved, err := s.resolveLines(ctx, lines)
	if err != nil {
		return nil, err
	}

	var couponID *string
	var discountFn func(decimal.Decimal) (decimal.Decimal, error)
	if in.CouponCode != "" {
		discountFn = func(subtotal decimal.Decimal) (decimal.Decimal, error) {
			res, err := s.Coupons.Validate(ctx, in.CouponCode, in.CustomerID, subtotal)
			if err != nil {
				// A bad coupon aborts the order, never silently ignored.
				return decimal.Zero, err
			}
			couponID = &res.Coupon.ID
			return res.Discount, nil
		}
	}

	quote, err := BuildQuote(resolved, s.Policy, discountFn)
	if err != nil {
		return nil, err
	}

	ord, err := s.Orders.Place(ctx, in, quote, couponID)
	if err != nil {
		return nil, err
	}
	s.publishPlaced(ord)
	return ord, nil
}

// resolveLines turns cart lines into priced, seller-attributed lines.
// Current catalog prices win over the cart's add-time snapshots.
func (s *Service) resolveLines(ctx context.Context, lines []cart.Line) ([]ResolvedLine, error) {
	sellers := map[string]bool{}
	out := make([]ResolvedLine, 0, len(lines))
	for _, l := range lines {
		p, err := s.Catalog.GetProductForOrder(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if ok, seen := sellers[p.SellerID]; !seen {
			sl, err := s.Accounts.Seller(ctx, p.SellerID)
			if err != nil {
				return nil, err
			}
			ok = sl.IsVerified
			sellers[p.SellerID] = ok
			if !ok {
				return nil, fault.Unverified(p.SellerID)
			}
		} else if !ok {
			return nil, fault.Unverified(p.SellerID)
		}

		r := ResolvedLine{
			ProductID:      l.ProductID,
			VariantID:      l.VariantID,
			SellerID:       p.SellerID,
			Quantity:       l.Quantity,
			UnitPrice:      p.BasePrice,
			DiscountPct:    p.DiscountPct,
			AvailableStock: p.StockQuantity,
		}
		if l.VariantID != nil {
			v, err := s.Catalog.GetVariant(ctx, *l.VariantID)
			if err != nil {
				return nil, err
			}
			if v.ProductID != l.ProductID {
				return nil, fault.Validation("variant does not belong to product")
			}
			if !v.IsAvailable {
				return nil, fault.Unavailable("variant", v.ID)
			}
			r.UnitPrice = v.Price
			r.DiscountPct = v.DiscountPct
			r.AvailableStock = v.StockQuantity
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Service) CancelOrder(ctx context.Context, orderID, customerID string) (*Order, error) {
	ord, err := s.Orders.Cancel(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}
	s.publishCanceled(ord)
	return ord, nil
}

func (s *Service) CancelSubOrder(ctx context.Context, subOrderID, sellerID string) (orderID string, orderCanceled bool, err error) {
	orderID, cascaded, err := s.Orders.CancelSubOrder(ctx, subOrderID, sellerID)
	if err != nil {
		return "", false, err
	}
	s.publish(s.SubCanceled, EventSubOrderCanceled, orderID, SubOrderCanceledPayload{
		OrderID:       orderID,
		SubOrderID:    subOrderID,
		SellerID:      sellerID,
		OrderCanceled: cascaded,
	})
	return orderID, cascaded, nil
}

func (s *Service) UpdateSubOrderStatus(ctx context.Context, subOrderID, sellerID string, to Status, trackingNumber, shippingProvider *string) (orderID string, err error) {
	orderID, err = s.Orders.UpdateSubOrderStatus(ctx, subOrderID, sellerID, to, trackingNumber, shippingProvider)
	if err != nil {
		return "", err
	}
	s.publish(s.SubStatus, EventSubOrderStatusSet, orderID, SubOrderStatusPayload{
		OrderID:    orderID,
		SubOrderID: subOrderID,
		SellerID:   sellerID,
		Status:     string(to),
	})
	return orderID, nil
}

func (s *Service) publishPlaced(ord *Order) {
	s.publish(s.Placed, EventOrderPlaced, ord.ID, OrderPlacedPayload{
		OrderID:     ord.ID,
		CustomerID:  ord.CustomerID,
		FinalAmount: ord.FinalAmount.StringFixed(2),
		Currency:    s.Currency,
		SubOrders:   summaries(ord),
	})
}

func (s *Service) publishCanceled(ord *Order) {
	s.publish(s.Canceled, EventOrderCanceled, ord.ID, OrderCanceledPayload{
		OrderID:    ord.ID,
		CustomerID: ord.CustomerID,
		SubOrders:  summaries(ord),
	})
}

func summaries(ord *Order) []SubOrderSummary {
	out := make([]SubOrderSummary, 0, len(ord.SubOrders))
	for _, sub := range ord.SubOrders {
		out = append(out, SubOrderSummary{
			SubOrderID: sub.ID,
			SellerID:   sub.SellerID,
			Subtotal:   sub.Subtotal.StringFixed(2),
			ItemCount:  len(sub.Items),
		})
	}
	return out
}

func (s *Service) publish(p Publisher, eventType, orderID string, payload any) {
	if p == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
