package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pending(id string, createdAt time.Time) PendingOrder {
	return PendingOrder{
		LocalID:   id,
		State:     StateUnsynced,
		Retryable: true,
		CreatedAt: createdAt,
	}
}

func TestNextEligiblePicksOldestByCreation(t *testing.T) {
	base := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	// Deliberately out of slice order: eligibility follows creation time
	entries := []PendingOrder{
		pending("third", base.Add(2*time.Second)),
		pending("first", base),
		pending("second", base.Add(time.Second)),
	}

	next := nextEligible(entries, base.Add(time.Minute), 30*time.Second)
	require.NotNil(t, next)
	assert.Equal(t, "first", next.LocalID)
}

func TestNextEligibleSkipsBackedOffEntries(t *testing.T) {
	base := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	now := base.Add(10 * time.Second)

	notYet := now.Add(time.Minute)
	elapsed := now.Add(-time.Second)

	oldest := pending("oldest", base)
	oldest.State = StateFailed
	oldest.RetryCount = 2
	oldest.NextAttemptAt = &notYet

	retryReady := pending("retry-ready", base.Add(time.Second))
	retryReady.State = StateFailed
	retryReady.RetryCount = 1
	retryReady.NextAttemptAt = &elapsed

	fresh := pending("fresh", base.Add(2*time.Second))

	next := nextEligible([]PendingOrder{fresh, oldest, retryReady}, now, 30*time.Second)
	require.NotNil(t, next)
	assert.Equal(t, "retry-ready", next.LocalID, "backed-off head must not starve the rest")
}

func TestNextEligibleIgnoresParkedEntries(t *testing.T) {
	base := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	now := base.Add(time.Hour)

	parked := pending("parked", base)
	parked.State = StateFailed
	parked.Retryable = false

	inFlight := pending("in-flight", base.Add(time.Second))
	inFlight.State = StateSyncing
	justDequeued := now.Add(-time.Second)
	inFlight.DequeuedAt = &justDequeued

	next := nextEligible([]PendingOrder{parked, inFlight}, now, 30*time.Second)
	assert.Nil(t, next)
}

func TestNextEligibleRecoversStaleSyncingEntries(t *testing.T) {
	base := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	now := base.Add(time.Hour)

	// A crash between dequeue and the mark call leaves the entry syncing
	// forever; once the attempt window has passed it must become eligible
	// again or the order is silently lost
	orphaned := pending("orphaned", base)
	orphaned.State = StateSyncing
	longAgo := now.Add(-10 * time.Minute)
	orphaned.DequeuedAt = &longAgo

	next := nextEligible([]PendingOrder{orphaned}, now, 30*time.Second)
	require.NotNil(t, next)
	assert.Equal(t, "orphaned", next.LocalID)

	// A record without a dequeue stamp cannot prove it is in flight
	unstamped := pending("unstamped", base)
	unstamped.State = StateSyncing

	next = nextEligible([]PendingOrder{unstamped}, now, 30*time.Second)
	require.NotNil(t, next)
	assert.Equal(t, "unstamped", next.LocalID)

	// A freshly dequeued entry is genuinely in flight and stays untouched
	fresh := pending("fresh", base)
	fresh.State = StateSyncing
	justNow := now.Add(-time.Second)
	fresh.DequeuedAt = &justNow

	assert.Nil(t, nextEligible([]PendingOrder{fresh}, now, 30*time.Second))
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	base := 5 * time.Second
	limit := 5 * time.Minute

	assert.Equal(t, 5*time.Second, Backoff(1, base, limit))
	assert.Equal(t, 10*time.Second, Backoff(2, base, limit))
	assert.Equal(t, 20*time.Second, Backoff(3, base, limit))
	assert.Equal(t, 40*time.Second, Backoff(4, base, limit))

	assert.Equal(t, limit, Backoff(8, base, limit))
	assert.Equal(t, limit, Backoff(50, base, limit), "deep retry counts stay bounded")
}
