package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/soukly/marketplace/internal/cart"
	"github.com/soukly/marketplace/internal/catalog"
	"github.com/soukly/marketplace/internal/coupon"
)

type CatalogHandler struct {
	Catalog *catalog.Repo
	Cart    *cart.Service
	Coupons *coupon.Engine
}

type AddCartItemReq struct {
	CustomerID string  `json:"customer_id"`
	ProductID  string  `json:"product_id"`
	VariantID  *string `json:"variant_id,omitempty"`
	Quantity   int     `json:"quantity"`
}

type ValidateCouponReq struct {
	CustomerID string          `json:"customer_id"`
	Code       string          `json:"code"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Get("/cart", h.getCart)
	r.Post("/cart/items", h.addCartItem)
	r.Post("/cart/from-wishlist", h.moveWishlist)
	r.Post("/coupons/validate", h.validateCoupon)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.ListProducts(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *CatalogHandler) getCart(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customer_id")
	if customerID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing customer_id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	lines, err := h.Cart.Repo.Lines(ctx, customerID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": lines})
}

func (h *CatalogHandler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.CustomerID == "" || req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Cart.AddItem(ctx, req.CustomerID, req.ProductID, req.VariantID, req.Quantity); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

func (h *CatalogHandler) moveWishlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID string `json:"customer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CustomerID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing customer_id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	moved, err := h.Cart.MoveWishlistToCart(ctx, req.CustomerID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"moved": moved})
}

func (h *CatalogHandler) validateCoupon(w http.ResponseWriter, r *http.Request) {
	var req ValidateCouponReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.CustomerID == "" || req.Code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	res, err := h.Coupons.Validate(ctx, req.Code, req.CustomerID, req.Subtotal)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":    true,
		"code":     res.Coupon.Code,
		"discount": res.Discount.StringFixed(2),
	})
}
