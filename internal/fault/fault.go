// Package fault defines the error taxonomy shared by the order placement
// and lifecycle paths. Business-rule violations are values of *Error so
// handlers can map them to HTTP codes and user-facing messages.
package fault

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindUnverified
	KindUnavailable
	KindInsufficientStock
	KindInvalidCoupon
	KindIllegalTransition
	KindValidation
	KindStorage
)

type Error struct {
	Kind Kind
	Msg  string

	// Set only for KindInsufficientStock.
	Requested int
	Available int

	// Set only for KindInvalidCoupon.
	Reason string

	wrapped error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.wrapped }

func NotFound(what, id string) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf("%s not found: %s", what, id)}
}

func Unverified(sellerID string) *Error {
	return &Error{Kind: KindUnverified, Msg: fmt.Sprintf("seller not verified: %s", sellerID)}
}

func Unavailable(what, id string) *Error {
	return &Error{Kind: KindUnavailable, Msg: fmt.Sprintf("%s not available: %s", what, id)}
}

func InsufficientStock(itemID string, requested, available int) *Error {
	return &Error{
		Kind:      KindInsufficientStock,
		Msg:       fmt.Sprintf("insufficient stock for %s: requested %d, available %d", itemID, requested, available),
		Requested: requested,
		Available: available,
	}
}

func InvalidCoupon(reason string) *Error {
	return &Error{Kind: KindInvalidCoupon, Msg: "coupon " + reason, Reason: reason}
}

func IllegalTransition(from, to string) *Error {
	return &Error{Kind: KindIllegalTransition, Msg: fmt.Sprintf("illegal status transition %s -> %s", from, to)}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// Storage wraps an unexpected infrastructure error. Nothing was committed,
// so the caller may retry the whole operation.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Msg: "storage failure: " + err.Error(), wrapped: err}
}

// KindOf returns the kind carried by err, or KindUnknown for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, k Kind) bool { return KindOf(err) == k }
