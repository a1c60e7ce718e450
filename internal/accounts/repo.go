// Package accounts is the customer/address/seller collaborator of the
// order path. Only the lookups order placement needs live here.
package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soukly/marketplace/internal/fault"
)

type Address struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

type Seller struct {
	ID         string `json:"id"`
	StoreName  string `json:"store_name"`
	IsVerified bool   `json:"is_verified"`
}

type Repo struct{ DB *pgxpool.Pool }

// ResolveAddress returns the address only when it belongs to the customer.
func (r *Repo) ResolveAddress(ctx context.Context, customerID, addressID string) (Address, error) {
	var a Address
	err := r.DB.QueryRow(ctx, `
		SELECT id, customer_id, line1, line2, city, country
		FROM addresses WHERE id=$1 AND customer_id=$2`, addressID, customerID).
		Scan(&a.ID, &a.CustomerID, &a.Line1, &a.Line2, &a.City, &a.Country)
	if errors.Is(err, pgx.ErrNoRows) {
		return Address{}, fault.NotFound("address", addressID)
	}
	if err != nil {
		return Address{}, fault.Storage(err)
	}
	return a, nil
}

func (r *Repo) Seller(ctx context.Context, sellerID string) (Seller, error) {
	var s Seller
	err := r.DB.QueryRow(ctx,
		`SELECT id, store_name, is_verified FROM sellers WHERE id=$1`, sellerID).
		Scan(&s.ID, &s.StoreName, &s.IsVerified)
	if errors.Is(err, pgx.ErrNoRows) {
		return Seller{}, fault.NotFound("seller", sellerID)
	}
	if err != nil {
		return Seller{}, fault.Storage(err)
	}
	return s, nil
}
