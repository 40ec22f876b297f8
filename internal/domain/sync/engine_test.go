package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pos-backend/internal/domain/connectivity"
	"github.com/your-org/pos-backend/internal/domain/customer"
	"github.com/your-org/pos-backend/internal/domain/order"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"github.com/your-org/pos-backend/internal/pkg/events"
)

// memQueue keeps pending orders in a map, mirroring the Redis-backed queue's
// eligibility rules without a Redis server.
type memQueue struct {
	mu      sync.Mutex
	entries map[string]*PendingOrder
	seq     int
	now     time.Time
	history map[string][]State
}

func newMemQueue() *memQueue {
	return &memQueue{
		entries: make(map[string]*PendingOrder),
		now:     time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC),
		history: make(map[string][]State),
	}
}

func (q *memQueue) Enqueue(_ context.Context, draft *order.OrderDraft) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	id := string(rune('a' + q.seq - 1))
	q.entries[id] = &PendingOrder{
		LocalID:   id,
		Draft:     *draft,
		State:     StateUnsynced,
		Retryable: true,
		CreatedAt: q.now.Add(time.Duration(q.seq) * time.Second),
	}
	q.history[id] = append(q.history[id], StateUnsynced)
	return id, nil
}

func (q *memQueue) DequeueNext(_ context.Context) (*PendingOrder, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	all := make([]PendingOrder, 0, len(q.entries))
	for _, e := range q.entries {
		all = append(all, *e)
	}
	next := nextEligible(all, q.now, 30*time.Second)
	if next == nil {
		return nil, nil
	}
	dequeued := q.now
	q.entries[next.LocalID].State = StateSyncing
	q.entries[next.LocalID].DequeuedAt = &dequeued
	q.history[next.LocalID] = append(q.history[next.LocalID], StateSyncing)
	copied := *q.entries[next.LocalID]
	return &copied, nil
}

func (q *memQueue) MarkSynced(_ context.Context, localID string, _ *order.Order) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.entries, localID)
	q.history[localID] = append(q.history[localID], "synced")
	return nil
}

func (q *memQueue) MarkFailed(_ context.Context, localID string, cause error, retryable bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	e := q.entries[localID]
	e.State = StateFailed
	e.RetryCount++
	e.LastError = cause.Error()
	e.Retryable = retryable
	e.NextAttemptAt = nil
	e.DequeuedAt = nil
	if retryable {
		next := q.now.Add(Backoff(e.RetryCount, 5*time.Second, 5*time.Minute))
		e.NextAttemptAt = &next
	}
	q.history[localID] = append(q.history[localID], StateFailed)
	return nil
}

func (q *memQueue) Get(_ context.Context, localID string) (*PendingOrder, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entries[localID]
	if !ok {
		return nil, fmt.Errorf("pending order %s not found", localID)
	}
	copied := *e
	return &copied, nil
}

func (q *memQueue) Backlog(_ context.Context) ([]PendingOrder, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []PendingOrder
	for _, e := range q.entries {
		if e.State == StateFailed {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (q *memQueue) Depth(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.entries)), nil
}

func (q *memQueue) ResolveServerID(_ context.Context, _ string) (uint, bool, error) {
	return 0, false, nil
}

func (q *memQueue) advance(d time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.now = q.now.Add(d)
}

// fakeStore scripts per-attempt outcomes and records every submitted id.
type fakeStore struct {
	mu        sync.Mutex
	outcomes  map[string][]error
	submitted []string
	created   map[string]uint
	nextID    uint
	customers []customer.Record
	ensureErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		outcomes: make(map[string][]error),
		created:  make(map[string]uint),
	}
}

func (s *fakeStore) fail(localID string, errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[localID] = append(s.outcomes[localID], errs...)
}

func (s *fakeStore) Submit(_ context.Context, localID string, _ *order.OrderDraft) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, localID)

	if queued := s.outcomes[localID]; len(queued) > 0 {
		err := queued[0]
		s.outcomes[localID] = queued[1:]
		return nil, err
	}

	if id, ok := s.created[localID]; ok {
		existing := &order.Order{ClientRef: localID}
		existing.ID = id
		return existing, &apperrors.DuplicateError{ServerID: id}
	}

	s.nextID++
	s.created[localID] = s.nextID
	o := &order.Order{ClientRef: localID, Status: order.StatusPending}
	o.ID = s.nextID
	return o, nil
}

func (s *fakeStore) EnsureCustomer(_ context.Context, rec customer.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensureErr != nil {
		return s.ensureErr
	}
	s.customers = append(s.customers, rec)
	return nil
}

func (s *fakeStore) submittedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.submitted...)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testEngine(q Queue, s OrderStore, m *connectivity.Monitor, bus *events.Bus) *Engine {
	return &Engine{
		queue:    q,
		store:    s,
		monitor:  m,
		bus:      bus,
		logger:   quietLogger(),
		interval: time.Hour,
		timeout:  time.Second,
		kick:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

func takeoutDraft() *order.OrderDraft {
	return &order.OrderDraft{
		ServiceType:   order.ServiceTakeout,
		PaymentMethod: order.PaymentCash,
		Items:         []order.DraftItem{{ProductID: 1, ProductName: "Hawaiana", Quantity: 1, UnitPrice: 15000, TotalPrice: 15000}},
		Subtotal:      15000,
		Total:         15000,
		PlacedAt:      time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC),
	}
}

func TestDrainSubmitsOldestFirst(t *testing.T) {
	q := newMemQueue()
	store := newFakeStore()
	monitor := connectivity.NewMonitor(nil)
	engine := testEngine(q, store, monitor, nil)

	ctx := context.Background()
	a, _ := q.Enqueue(ctx, takeoutDraft())
	b, _ := q.Enqueue(ctx, takeoutDraft())
	c, _ := q.Enqueue(ctx, takeoutDraft())

	engine.DrainOnce(ctx)

	assert.Equal(t, []string{a, b, c}, store.submittedIDs())
	depth, _ := q.Depth(ctx)
	assert.Zero(t, depth)
}

func TestTransportFailureEndsPassAndRecovers(t *testing.T) {
	q := newMemQueue()
	store := newFakeStore()
	monitor := connectivity.NewMonitor(nil)
	bus := events.NewBus()
	engine := testEngine(q, store, monitor, bus)

	synced, unsubscribe := bus.Subscribe(events.TopicOrderSynced)
	defer unsubscribe()

	ctx := context.Background()
	a, _ := q.Enqueue(ctx, takeoutDraft())
	b, _ := q.Enqueue(ctx, takeoutDraft())
	store.fail(a, &apperrors.TransportError{Err: errors.New("connection refused")})

	engine.DrainOnce(ctx)

	// The pass stops at the transport failure; b is never attempted out of order
	assert.Equal(t, []string{a}, store.submittedIDs())
	assert.False(t, monitor.Online())
	assert.Equal(t, []State{StateUnsynced, StateSyncing, StateFailed}, q.history[a])

	// Backoff elapses, the link is back, the next pass drains everything
	q.advance(time.Minute)
	monitor.SetOnline(true)
	engine.DrainOnce(ctx)

	assert.Equal(t, []string{a, a, b}, store.submittedIDs())
	depth, _ := q.Depth(ctx)
	assert.Zero(t, depth)
	assert.Equal(t, uint(1), store.created[a], "exactly one server order for the failed-then-retried submit")

	ev := <-synced
	assert.Equal(t, a, ev.LocalID)
}

func TestOfflineMonitorSkipsPass(t *testing.T) {
	q := newMemQueue()
	store := newFakeStore()
	monitor := connectivity.NewMonitor(nil)
	monitor.SetOnline(false)
	engine := testEngine(q, store, monitor, nil)

	ctx := context.Background()
	q.Enqueue(ctx, takeoutDraft())

	engine.DrainOnce(ctx)
	assert.Empty(t, store.submittedIDs())
}

func TestRejectedOrderIsParkedNotRetried(t *testing.T) {
	q := newMemQueue()
	store := newFakeStore()
	monitor := connectivity.NewMonitor(nil)
	engine := testEngine(q, store, monitor, nil)

	ctx := context.Background()
	a, _ := q.Enqueue(ctx, takeoutDraft())
	b, _ := q.Enqueue(ctx, takeoutDraft())
	store.fail(a, &apperrors.ValidationError{Reason: "unknown product"})

	engine.DrainOnce(ctx)

	// The bad order is parked; the one behind it still syncs
	assert.Equal(t, []string{a, b}, store.submittedIDs())
	backlog, err := q.Backlog(ctx)
	require.NoError(t, err)
	require.Len(t, backlog, 1)
	assert.Equal(t, a, backlog[0].LocalID)
	assert.False(t, backlog[0].Retryable)

	// Later passes leave the parked entry alone
	q.advance(time.Hour)
	engine.DrainOnce(ctx)
	assert.Equal(t, []string{a, b}, store.submittedIDs())
}

func TestIntegrityFailureRemediatesCustomerInline(t *testing.T) {
	q := newMemQueue()
	store := newFakeStore()
	monitor := connectivity.NewMonitor(nil)
	engine := testEngine(q, store, monitor, nil)

	draft := takeoutDraft()
	draft.ServiceType = order.ServiceDelivery
	draft.Contact = &order.DeliveryContact{Name: "Ana", Phone: "5551112222", Address: "Calle 5 #10"}

	ctx := context.Background()
	a, _ := q.Enqueue(ctx, draft)
	store.fail(a, &apperrors.IntegrityError{Constraint: "fk_orders_customer"})

	engine.DrainOnce(ctx)

	require.Len(t, store.customers, 1)
	assert.Equal(t, "5551112222", store.customers[0].Phone)
	assert.Equal(t, []string{a, a}, store.submittedIDs(), "one retry inside the same pass")
	depth, _ := q.Depth(ctx)
	assert.Zero(t, depth)
}

func TestDrainRecoversOrphanedSyncingEntry(t *testing.T) {
	q := newMemQueue()
	store := newFakeStore()
	monitor := connectivity.NewMonitor(nil)
	engine := testEngine(q, store, monitor, nil)

	ctx := context.Background()
	a, _ := q.Enqueue(ctx, takeoutDraft())

	// The previous process died after dequeue, before any mark call
	q.mu.Lock()
	longAgo := q.now.Add(-time.Minute)
	q.entries[a].State = StateSyncing
	q.entries[a].DequeuedAt = &longAgo
	q.mu.Unlock()

	engine.DrainOnce(ctx)

	assert.Equal(t, []string{a}, store.submittedIDs())
	depth, _ := q.Depth(ctx)
	assert.Zero(t, depth, "the orphaned order must not be stranded")
}

func TestDuplicateWithoutOrderIsRequeuedNotSynced(t *testing.T) {
	q := newMemQueue()
	store := newFakeStore()
	monitor := connectivity.NewMonitor(nil)
	engine := testEngine(q, store, monitor, nil)

	ctx := context.Background()
	a, _ := q.Enqueue(ctx, takeoutDraft())

	// The store reports the order exists but cannot hand the row back;
	// acknowledging without a server id would be a blind ack
	store.fail(a, fmt.Errorf("failed to create order: %w", &apperrors.DuplicateError{ServerID: 9}))

	engine.DrainOnce(ctx)

	entry, err := q.Get(ctx, a)
	require.NoError(t, err, "the entry must stay queued")
	assert.Equal(t, StateFailed, entry.State)
	assert.True(t, entry.Retryable)
	assert.False(t, monitor.Online(), "an unreadable store counts as unreachable")

	q.advance(time.Minute)
	monitor.SetOnline(true)
	engine.DrainOnce(ctx)

	depth, _ := q.Depth(ctx)
	assert.Zero(t, depth)
	assert.Equal(t, uint(1), store.created[a], "exactly one server order after recovery")
}

func TestRemediationRequiresAPhone(t *testing.T) {
	q := newMemQueue()
	store := newFakeStore()
	monitor := connectivity.NewMonitor(nil)
	engine := testEngine(q, store, monitor, nil)

	draft := takeoutDraft()
	draft.ServiceType = order.ServiceDelivery
	draft.Contact = &order.DeliveryContact{Name: "Ana", Phone: "  ", Address: "Calle 5 #10"}

	ctx := context.Background()
	a, _ := q.Enqueue(ctx, draft)
	store.fail(a, &apperrors.IntegrityError{Constraint: "fk_orders_customer"})

	engine.DrainOnce(ctx)

	assert.Empty(t, store.customers, "no customer row without a phone to key it")
	assert.Equal(t, []string{a}, store.submittedIDs())
	entry, err := q.Get(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, entry.State)
	assert.True(t, entry.Retryable)
}

func TestDuplicateAcknowledgmentCountsAsSynced(t *testing.T) {
	q := newMemQueue()
	store := newFakeStore()
	monitor := connectivity.NewMonitor(nil)
	engine := testEngine(q, store, monitor, nil)

	ctx := context.Background()
	a, _ := q.Enqueue(ctx, takeoutDraft())

	// First attempt lands server-side but the acknowledgment is lost
	store.created[a] = 7
	store.nextID = 7

	engine.DrainOnce(ctx)

	depth, _ := q.Depth(ctx)
	assert.Zero(t, depth)
	assert.Equal(t, uint(7), store.created[a], "no second server order created")
}

func TestKickCoalesces(t *testing.T) {
	q := newMemQueue()
	store := newFakeStore()
	monitor := connectivity.NewMonitor(nil)
	engine := testEngine(q, store, monitor, nil)

	engine.Kick()
	engine.Kick()
	engine.Kick()

	assert.Len(t, engine.kick, 1, "pending kicks collapse into one pass")
}

func TestStartDrainsOnConnectivityRestored(t *testing.T) {
	q := newMemQueue()
	store := newFakeStore()
	monitor := connectivity.NewMonitor(nil)
	monitor.SetOnline(false)
	engine := testEngine(q, store, monitor, nil)

	ctx := context.Background()
	a, _ := q.Enqueue(ctx, takeoutDraft())

	engine.Start(ctx)
	defer engine.Stop()

	monitor.SetOnline(true)

	require.Eventually(t, func() bool {
		depth, _ := q.Depth(ctx)
		return depth == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{a}, store.submittedIDs())
}
