package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusProcessing))
	assert.True(t, CanTransition(StatusPending, StatusCanceled))
	assert.True(t, CanTransition(StatusProcessing, StatusShipped))
	assert.True(t, CanTransition(StatusProcessing, StatusCanceled))
	assert.True(t, CanTransition(StatusShipped, StatusDelivered))

	assert.False(t, CanTransition(StatusShipped, StatusCanceled))
	assert.False(t, CanTransition(StatusDelivered, StatusCanceled))
	assert.False(t, CanTransition(StatusCanceled, StatusPending))
	assert.False(t, CanTransition(StatusPending, StatusDelivered))
}

func TestCancelable(t *testing.T) {
	assert.True(t, StatusPending.Cancelable())
	assert.True(t, StatusProcessing.Cancelable())
	assert.False(t, StatusShipped.Cancelable())
	assert.False(t, StatusDelivered.Cancelable())
	assert.False(t, StatusCanceled.Cancelable())
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCanceled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusShipped.Terminal())
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusShipped))
	assert.False(t, ValidStatus(Status("lost")))
}

// A shipped or delivered sub-order blocks the order-level cancel even when
// the parent order itself still reads pending/processing.
func TestBlockingSubOrderStatus(t *testing.T) {
	blocked, ok := BlockingSubOrderStatus([]Status{StatusPending, StatusShipped})
	assert.True(t, ok)
	assert.Equal(t, StatusShipped, blocked)

	blocked, ok = BlockingSubOrderStatus([]Status{StatusDelivered})
	assert.True(t, ok)
	assert.Equal(t, StatusDelivered, blocked)

	_, ok = BlockingSubOrderStatus([]Status{StatusPending, StatusProcessing})
	assert.False(t, ok)

	// Already-canceled siblings never block.
	_, ok = BlockingSubOrderStatus([]Status{StatusCanceled, StatusPending})
	assert.False(t, ok)
}

// Canceling the only live sub-order cascades the parent to canceled;
// canceling one of two leaves the parent alone.
func TestAllCanceledCascade(t *testing.T) {
	assert.True(t, AllCanceled([]Status{StatusCanceled, StatusCanceled}))
	assert.False(t, AllCanceled([]Status{StatusCanceled, StatusPending}))
	assert.False(t, AllCanceled([]Status{StatusCanceled, StatusShipped}))
	assert.True(t, AllCanceled([]Status{StatusCanceled}))
}
