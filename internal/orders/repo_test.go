package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soukly/marketplace/internal/fault"
)

// Both guards fire before the repo touches the pool, so a zero-value Repo
// is enough to exercise them.

func TestUpdateSubOrderStatusRejectsUnknownStatus(t *testing.T) {
	r := &Repo{}
	_, err := r.UpdateSubOrderStatus(context.Background(), "sub-1", "seller-1", Status("lost"), nil, nil)
	require.Error(t, err)
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))
}

func TestUpdateSubOrderStatusRejectsCanceled(t *testing.T) {
	// Cancellation restocks and cascades; the free-form status endpoint
	// must not offer a silent path around that.
	r := &Repo{}
	_, err := r.UpdateSubOrderStatus(context.Background(), "sub-1", "seller-1", StatusCanceled, nil, nil)
	require.Error(t, err)
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))
	assert.Contains(t, err.Error(), "cancel endpoint")
}
