package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soukly/marketplace/internal/cart"
	"github.com/soukly/marketplace/internal/coupon"
	"github.com/soukly/marketplace/internal/fault"
	"github.com/soukly/marketplace/internal/inventory"
)

type Repo struct{ DB *pgxpool.Pool }

// Place persists a priced quote as one transaction: order row, sub-orders,
// items, stock decrements, coupon usage, cart clear. Any failure rolls the
// whole graph back; the customer's cart survives a failed placement.
func (r *Repo) Place(ctx context.Context, in PlacementInput, q Quote, couponID *string) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fault.Storage(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ord := &Order{
		ID:             uuid.NewString(),
		CustomerID:     in.CustomerID,
		AddressID:      in.AddressID,
		CouponID:       couponID,
		Subtotal:       q.Subtotal,
		DiscountAmount: q.DiscountAmount,
		TaxAmount:      q.TaxAmount,
		ShippingFee:    q.ShippingFee,
		FinalAmount:    q.FinalAmount,
		PaymentMethod:  in.PaymentMethod,
		PaymentStatus:  PaymentPending,
		Status:         StatusPending,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, customer_id, address_id, coupon_id, subtotal, discount_amount,
		                   tax_amount, shipping_fee, final_amount, payment_method, payment_status, order_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at, updated_at`,
		ord.ID, ord.CustomerID, ord.AddressID, ord.CouponID, ord.Subtotal, ord.DiscountAmount,
		ord.TaxAmount, ord.ShippingFee, ord.FinalAmount, ord.PaymentMethod, ord.PaymentStatus, ord.Status).
		Scan(&ord.CreatedAt, &ord.UpdatedAt)
	if err != nil {
		return nil, fault.Storage(err)
	}

	for _, g := range q.Groups {
		sub := SubOrder{
			ID:       uuid.NewString(),
			OrderID:  ord.ID,
			SellerID: g.SellerID,
			Subtotal: g.Subtotal,
			Status:   StatusPending,
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO sub_orders(id, order_id, seller_id, subtotal, status)
			VALUES ($1,$2,$3,$4,$5)`,
			sub.ID, sub.OrderID, sub.SellerID, sub.Subtotal, sub.Status); err != nil {
			return nil, fault.Storage(err)
		}
		for _, it := range g.Items {
			item := OrderItem{
				ID:              uuid.NewString(),
				SubOrderID:      sub.ID,
				ProductID:       it.ProductID,
				VariantID:       it.VariantID,
				Quantity:        it.Quantity,
				PriceAtPurchase: it.PriceAtPurchase,
				TotalPrice:      it.TotalPrice,
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO order_items(id, sub_order_id, product_id, variant_id, quantity, price_at_purchase, total_price)
				VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				item.ID, item.SubOrderID, item.ProductID, item.VariantID,
				item.Quantity, item.PriceAtPurchase, item.TotalPrice); err != nil {
				return nil, fault.Storage(err)
			}
			// Stock sufficiency is re-validated here, at write time.
			if err := inventory.Decrement(ctx, tx, it.ProductID, it.VariantID, it.Quantity); err != nil {
				return nil, err
			}
			sub.Items = append(sub.Items, item)
		}
		ord.SubOrders = append(ord.SubOrders, sub)
	}

	if couponID != nil {
		if err := coupon.IncrementUsageTx(ctx, tx, *couponID); err != nil {
			return nil, err
		}
		if err := coupon.MarkUsedTx(ctx, tx, in.CustomerID, *couponID); err != nil {
			return nil, err
		}
	}

	if err := cart.ClearTx(ctx, tx, in.CustomerID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fault.Storage(err)
	}
	return ord, nil
}

func (r *Repo) Get(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		SELECT id, customer_id, address_id, coupon_id, subtotal, discount_amount,
		       tax_amount, shipping_fee, final_amount, payment_method, payment_status,
		       order_status, created_at, updated_at
		FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.CustomerID, &o.AddressID, &o.CouponID, &o.Subtotal, &o.DiscountAmount,
			&o.TaxAmount, &o.ShippingFee, &o.FinalAmount, &o.PaymentMethod, &o.PaymentStatus,
			&o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.NotFound("order", orderID)
	}
	if err != nil {
		return nil, fault.Storage(err)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT s.id, s.order_id, s.seller_id, s.subtotal, s.status, s.tracking_number, s.shipping_provider,
		       i.id, i.product_id, i.variant_id, i.quantity, i.price_at_purchase, i.total_price
		FROM sub_orders s
		JOIN order_items i ON i.sub_order_id = s.id
		WHERE s.order_id=$1
		ORDER BY s.created_at, i.id`, orderID)
	if err != nil {
		return nil, fault.Storage(err)
	}
	defer rows.Close()

	index := map[string]int{}
	for rows.Next() {
		var s SubOrder
		var it OrderItem
		if err := rows.Scan(&s.ID, &s.OrderID, &s.SellerID, &s.Subtotal, &s.Status,
			&s.TrackingNumber, &s.ShippingProvider,
			&it.ID, &it.ProductID, &it.VariantID, &it.Quantity, &it.PriceAtPurchase, &it.TotalPrice); err != nil {
			return nil, fault.Storage(err)
		}
		it.SubOrderID = s.ID
		i, ok := index[s.ID]
		if !ok {
			i = len(o.SubOrders)
			index[s.ID] = i
			o.SubOrders = append(o.SubOrders, s)
		}
		o.SubOrders[i].Items = append(o.SubOrders[i].Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Storage(err)
	}
	return &o, nil
}

// Cancel cancels the whole order and restocks every item. Legal only while
// the order is Pending or Processing; anything later is rejected.
func (r *Repo) Cancel(ctx context.Context, orderID, customerID string) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fault.Storage(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status Status
	err = tx.QueryRow(ctx, `
		SELECT order_status FROM orders
		WHERE id=$1 AND customer_id=$2 FOR UPDATE`, orderID, customerID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.NotFound("order", orderID)
	}
	if err != nil {
		return nil, fault.Storage(err)
	}
	if !status.Cancelable() {
		return nil, fault.IllegalTransition(string(status), string(StatusCanceled))
	}

	// The parent status alone is not enough: sub-orders ship individually,
	// so a shipped sub-order must block the order-level cancel even while
	// the parent still reads processing.
	subStatuses, err := subOrderStatusesTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if blocked, ok := BlockingSubOrderStatus(subStatuses); ok {
		return nil, fault.IllegalTransition(string(blocked), string(StatusCanceled))
	}

	if err := restoreItemsTx(ctx, tx, `
		SELECT i.product_id, i.variant_id, i.quantity
		FROM order_items i
		JOIN sub_orders s ON s.id = i.sub_order_id
		WHERE s.order_id=$1 AND s.status <> 'canceled'`, orderID); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE sub_orders SET status='canceled', updated_at=now()
		WHERE order_id=$1 AND status <> 'canceled'`, orderID); err != nil {
		return nil, fault.Storage(err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE orders SET order_status='canceled', updated_at=now() WHERE id=$1`, orderID); err != nil {
		return nil, fault.Storage(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fault.Storage(err)
	}
	return r.Get(ctx, orderID)
}

// CancelSubOrder cancels one seller's portion and restocks its items. When
// every sibling is already canceled the parent order cascades to canceled.
func (r *Repo) CancelSubOrder(ctx context.Context, subOrderID, sellerID string) (orderID string, orderCanceled bool, err error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", false, fault.Storage(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status Status
	err = tx.QueryRow(ctx, `
		SELECT order_id, status FROM sub_orders
		WHERE id=$1 AND seller_id=$2 FOR UPDATE`, subOrderID, sellerID).Scan(&orderID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, fault.NotFound("sub-order", subOrderID)
	}
	if err != nil {
		return "", false, fault.Storage(err)
	}
	if !status.Cancelable() {
		return "", false, fault.IllegalTransition(string(status), string(StatusCanceled))
	}

	if err := restoreItemsTx(ctx, tx, `
		SELECT product_id, variant_id, quantity
		FROM order_items WHERE sub_order_id=$1`, subOrderID); err != nil {
		return "", false, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE sub_orders SET status='canceled', updated_at=now() WHERE id=$1`, subOrderID); err != nil {
		return "", false, fault.Storage(err)
	}

	siblings, err := subOrderStatusesTx(ctx, tx, orderID)
	if err != nil {
		return "", false, err
	}
	if AllCanceled(siblings) {
		if _, err := tx.Exec(ctx, `
			UPDATE orders SET order_status='canceled', updated_at=now() WHERE id=$1`, orderID); err != nil {
			return "", false, fault.Storage(err)
		}
		orderCanceled = true
	}

	if err := tx.Commit(ctx); err != nil {
		return "", false, fault.Storage(err)
	}
	return orderID, orderCanceled, nil
}

// subOrderStatusesTx locks and returns the statuses of every sub-order of
// the order, so cancel decisions see a consistent sibling set.
func subOrderStatusesTx(ctx context.Context, tx pgx.Tx, orderID string) ([]Status, error) {
	rows, err := tx.Query(ctx,
		`SELECT status FROM sub_orders WHERE order_id=$1 FOR UPDATE`, orderID)
	if err != nil {
		return nil, fault.Storage(err)
	}
	defer rows.Close()

	var out []Status
	for rows.Next() {
		var s Status
		if err := rows.Scan(&s); err != nil {
			return nil, fault.Storage(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Storage(err)
	}
	return out, nil
}

// restoreItemsTx restocks every (product, variant, qty) row the query yields.
func restoreItemsTx(ctx context.Context, tx pgx.Tx, query string, args ...any) error {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return fault.Storage(err)
	}
	type line struct {
		productID string
		variantID *string
		qty       int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.variantID, &l.qty); err != nil {
			rows.Close()
			return fault.Storage(err)
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fault.Storage(err)
	}
	for _, l := range lines {
		if err := inventory.Restore(ctx, tx, l.productID, l.variantID, l.qty); err != nil {
			return err
		}
	}
	return nil
}

// UpdateSubOrderStatus sets the seller-facing status and tracking fields.
// Beyond ownership and the transition table nothing else is enforced.
func (r *Repo) UpdateSubOrderStatus(ctx context.Context, subOrderID, sellerID string, to Status, trackingNumber, shippingProvider *string) (orderID string, err error) {
	if !ValidStatus(to) {
		return "", fault.Validation("unknown status: " + string(to))
	}
	// Canceling restocks inventory and may cascade to the parent order;
	// only the cancel path does that bookkeeping.
	if to == StatusCanceled {
		return "", fault.Validation("use the sub-order cancel endpoint to cancel")
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", fault.Storage(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var from Status
	err = tx.QueryRow(ctx, `
		SELECT order_id, status FROM sub_orders WHERE id=$1 AND seller_id=$2 FOR UPDATE`,
		subOrderID, sellerID).Scan(&orderID, &from)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fault.NotFound("sub-order", subOrderID)
	}
	if err != nil {
		return "", fault.Storage(err)
	}
	if from != to && !CanTransition(from, to) {
		return "", fault.IllegalTransition(string(from), string(to))
	}

	if _, err := tx.Exec(ctx, `
		UPDATE sub_orders
		SET status=$2,
		    tracking_number=COALESCE($3, tracking_number),
		    shipping_provider=COALESCE($4, shipping_provider),
		    updated_at=now()
		WHERE id=$1`, subOrderID, to, trackingNumber, shippingProvider); err != nil {
		return "", fault.Storage(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fault.Storage(err)
	}
	return orderID, nil
}

// UpdatePaymentStatus is the webhook passthrough: no business re-validation.
// A successful payment nudges a pending order into processing.
func (r *Repo) UpdatePaymentStatus(ctx context.Context, orderID string, status PaymentStatus) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders
		SET payment_status=$2,
		    order_status=CASE WHEN $2='paid' AND order_status='pending' THEN 'processing' ELSE order_status END,
		    updated_at=now()
		WHERE id=$1`, orderID, status)
	if err != nil {
		return fault.Storage(err)
	}
	if ct.RowsAffected() == 0 {
		return fault.NotFound("order", orderID)
	}
	return nil
}
