package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForwardChainIsMonotonic(t *testing.T) {
	chain := []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusDelivered}
	for i := 0; i < len(chain)-1; i++ {
		next, ok := NextStatus(chain[i])
		assert.True(t, ok, "forward step from %s", chain[i])
		assert.Equal(t, chain[i+1], next)
	}
	_, ok := NextStatus(StatusDelivered)
	assert.False(t, ok)
}

func TestFromPendingOnlyConfirmedAndCancelled(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled}
	for _, to := range all {
		got := CanTransition(StatusPending, to)
		want := to == StatusConfirmed || to == StatusCancelled
		assert.Equal(t, want, got, "pending -> %s", to)
	}
}

func TestNoSkipping(t *testing.T) {
	assert.False(t, CanTransition(StatusPending, StatusPreparing))
	assert.False(t, CanTransition(StatusConfirmed, StatusReady))
	assert.False(t, CanTransition(StatusPreparing, StatusDelivered))
}

func TestNoGoingBack(t *testing.T) {
	assert.False(t, CanTransition(StatusReady, StatusPreparing))
	assert.False(t, CanTransition(StatusConfirmed, StatusPending))
}

func TestCancellationReachableUntilDelivered(t *testing.T) {
	for _, from := range []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusReady} {
		assert.True(t, CanCancel(from), "cancel from %s", from)
	}
	assert.False(t, CanCancel(StatusDelivered))
	assert.False(t, CanCancel(StatusCancelled))
}

func TestDeliveredIsTerminal(t *testing.T) {
	for _, to := range []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusCancelled} {
		err := ValidateTransition(StatusDelivered, to)
		assert.Error(t, err, "delivered -> %s", to)
		assert.Contains(t, err.Error(), "terminal")
	}
}
