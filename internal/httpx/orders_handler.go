package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/soukly/marketplace/internal/orders"
	"github.com/soukly/marketplace/internal/payment"
	"github.com/soukly/marketplace/internal/redisx"
)

type OrdersHandler struct {
	Svc      *orders.Service
	Payment  payment.Initiator
	Redis    *redis.Client
	Currency string
}

type CheckoutReq struct {
	CustomerID    string `json:"customer_id"`
	AddressID     string `json:"address_id"`
	CouponCode    string `json:"coupon_code,omitempty"`
	PaymentMethod string `json:"payment_method"`
}

type CheckoutResp struct {
	Order       *orders.Order `json:"order"`
	RedirectURL string        `json:"redirect_url,omitempty"`
}

type CancelOrderReq struct {
	CustomerID string `json:"customer_id"`
}

type SellerReq struct {
	SellerID string `json:"seller_id"`
}

type SubOrderStatusReq struct {
	SellerID         string  `json:"seller_id"`
	Status           string  `json:"status"`
	TrackingNumber   *string `json:"tracking_number,omitempty"`
	ShippingProvider *string `json:"shipping_provider,omitempty"`
}

type PaymentWebhookReq struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/checkout", h.checkout)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/cancel", h.cancelOrder)
	r.Post("/suborders/{id}/cancel", h.cancelSubOrder)
	r.Patch("/suborders/{id}/status", h.updateSubOrderStatus)
	r.Post("/payments/webhook", h.paymentWebhook)
}

func (h *OrdersHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.CustomerID == "" || req.AddressID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "cod"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ord, err := h.Svc.PlaceFromCart(ctx, orders.PlacementInput{
		CustomerID:    req.CustomerID,
		AddressID:     req.AddressID,
		CouponCode:    req.CouponCode,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	h.cacheStatus(ctx, ord)

	resp := CheckoutResp{Order: ord}
	if h.Payment != nil {
		url, err := h.Payment.InitiatePayment(ctx, ord.ID, ord.FinalAmount, h.Currency, ord.PaymentMethod)
		if err == nil {
			resp.RedirectURL = url
		}
		// A gateway hiccup does not undo the committed order; payment can
		// be retried via its own flow.
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// Status cache first, DB as fallback.
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	ord, err := h.Svc.Orders.Get(ctx, orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(ctx, ord)
	writeJSON(w, http.StatusOK, ord)
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, ord *orders.Order) {
	b, err := json.Marshal(ord)
	if err != nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, ord.ID)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) invalidateStatus(ctx context.Context, orderID string) {
	_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID)).Err()
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	var req CancelOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CustomerID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing customer_id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ord, err := h.Svc.CancelOrder(ctx, orderID, req.CustomerID)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(ctx, ord)
	writeJSON(w, http.StatusOK, ord)
}

func (h *OrdersHandler) cancelSubOrder(w http.ResponseWriter, r *http.Request) {
	subOrderID := chi.URLParam(r, "id")
	var req SellerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SellerID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing seller_id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orderID, cascaded, err := h.Svc.CancelSubOrder(ctx, subOrderID, req.SellerID)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.invalidateStatus(ctx, orderID)
	writeJSON(w, http.StatusOK, map[string]any{
		"sub_order_id":   subOrderID,
		"status":         orders.StatusCanceled,
		"order_canceled": cascaded,
	})
}

func (h *OrdersHandler) updateSubOrderStatus(w http.ResponseWriter, r *http.Request) {
	subOrderID := chi.URLParam(r, "id")
	var req SubOrderStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SellerID == "" || req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orderID, err := h.Svc.UpdateSubOrderStatus(ctx, subOrderID, req.SellerID,
		orders.Status(req.Status), req.TrackingNumber, req.ShippingProvider)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.invalidateStatus(ctx, orderID)
	writeJSON(w, http.StatusOK, map[string]string{"sub_order_id": subOrderID, "status": req.Status})
}

// paymentWebhook accepts the gateway's status callback as-is; business
// rules were enforced at placement.
func (h *OrdersHandler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	var req PaymentWebhookReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" || req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.Orders.UpdatePaymentStatus(ctx, req.OrderID, orders.PaymentStatus(req.Status)); err != nil {
		writeErr(w, err)
		return
	}
	h.invalidateStatus(ctx, req.OrderID)
	writeJSON(w, http.StatusOK, map[string]string{"order_id": req.OrderID, "payment_status": req.Status})
}
