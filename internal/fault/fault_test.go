package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsufficientStockEchoesQuantities(t *testing.T) {
	err := InsufficientStock("var-9", 5, 3)
	assert.Equal(t, "insufficient stock for var-9: requested 5, available 3", err.Error())
	assert.Equal(t, 5, err.Requested)
	assert.Equal(t, 3, err.Available)
	assert.Equal(t, KindInsufficientStock, KindOf(err))
}

func TestInvalidCouponCarriesReason(t *testing.T) {
	err := InvalidCoupon("usage limit reached")
	assert.Equal(t, "coupon usage limit reached", err.Error())
	assert.Equal(t, "usage limit reached", err.Reason)
}

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("placing order: %w", NotFound("product", "p-1"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindValidation))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
}

func TestStorageUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Storage(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindStorage, KindOf(err))
}
