// internal/domain/sync/queue.go
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/order"
)

// State is a pending order's submission state
type State string

const (
	StateUnsynced State = "unsynced"
	StateSyncing  State = "syncing"
	StateFailed   State = "failed"
)

// PendingOrder is an order the register accepted but the remote store has not
// acknowledged yet. The local queue is authoritative until then.
type PendingOrder struct {
	LocalID       string           `json:"local_id"`
	Draft         order.OrderDraft `json:"draft"`
	State         State            `json:"state"`
	RetryCount    int              `json:"retry_count"`
	LastError     string           `json:"last_error,omitempty"`
	Retryable     bool             `json:"retryable"`
	NextAttemptAt *time.Time       `json:"next_attempt_at,omitempty"`
	DequeuedAt    *time.Time       `json:"dequeued_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Queue is the durable local pending-order store. Written only by the capture
// path (Enqueue) and the sync engine (DequeueNext / Mark*).
type Queue interface {
	Enqueue(ctx context.Context, draft *order.OrderDraft) (string, error)
	DequeueNext(ctx context.Context) (*PendingOrder, error)
	MarkSynced(ctx context.Context, localID string, serverOrder *order.Order) error
	MarkFailed(ctx context.Context, localID string, cause error, retryable bool) error
	Get(ctx context.Context, localID string) (*PendingOrder, error)
	Backlog(ctx context.Context) ([]PendingOrder, error)
	Depth(ctx context.Context) (int64, error)
	ResolveServerID(ctx context.Context, localID string) (uint, bool, error)
}

// Backoff returns the wait before attempt retryCount+1: bounded exponential,
// base doubling per failed attempt, capped.
func Backoff(retryCount int, base, limit time.Duration) time.Duration {
	d := base
	for i := 1; i < retryCount; i++ {
		d *= 2
		if d >= limit {
			return limit
		}
	}
	if d > limit {
		return limit
	}
	return d
}

// nextEligible picks the oldest entry that is ready for an attempt: unsynced,
// failed with its backoff elapsed, or syncing for longer than staleAfter,
// which means the process died between dequeue and the mark call and the
// attempt must be presumed lost. Creation order is the fairness guarantee
// for kitchen prep under recovery, so sorting is by CreatedAt, not by when
// calls happened to land.
func nextEligible(entries []PendingOrder, now time.Time, staleAfter time.Duration) *PendingOrder {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	for i := range entries {
		e := &entries[i]
		switch e.State {
		case StateUnsynced:
			return e
		case StateSyncing:
			if e.DequeuedAt == nil || !e.DequeuedAt.After(now.Add(-staleAfter)) {
				return e
			}
		case StateFailed:
			if e.Retryable && e.NextAttemptAt != nil && !e.NextAttemptAt.After(now) {
				return e
			}
		}
	}
	return nil
}

const (
	pendingIndexKey = "sync:pending:index"
	mappingTTL      = 30 * 24 * time.Hour

	// An attempt makes at most three remote calls (submit, remediation,
	// resubmit), each bounded by the remote timeout; an entry syncing
	// longer than that was orphaned by a crash.
	syncingStaleFactor = 3
)

func pendingKey(localID string) string { return "sync:pending:" + localID }
func mappingKey(localID string) string { return "sync:serverid:" + localID }

// RedisQueue stores pending orders as JSON records in Redis, with a sorted
// set scored by creation time as the FIFO index. Redis runs on the register
// itself, so the queue survives a process restart without depending on the
// network being up.
type RedisQueue struct {
	redisClient *redis.Client
	config      *config.Config
	now         func() time.Time
}

// NewRedisQueue creates a new Redis-backed pending queue
func NewRedisQueue(redisClient *redis.Client, cfg *config.Config) *RedisQueue {
	return &RedisQueue{
		redisClient: redisClient,
		config:      cfg,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Enqueue stores the draft under a fresh local id and returns it immediately;
// the caller confirms to the user without waiting on the network.
func (q *RedisQueue) Enqueue(ctx context.Context, draft *order.OrderDraft) (string, error) {
	entry := PendingOrder{
		LocalID:   uuid.NewString(),
		Draft:     *draft,
		State:     StateUnsynced,
		Retryable: true,
		CreatedAt: q.now(),
	}
	if err := q.store(ctx, &entry); err != nil {
		return "", fmt.Errorf("failed to enqueue order: %w", err)
	}
	err := q.redisClient.ZAdd(ctx, pendingIndexKey, redis.Z{
		Score:  float64(entry.CreatedAt.UnixNano()),
		Member: entry.LocalID,
	}).Err()
	if err != nil {
		return "", fmt.Errorf("failed to index pending order: %w", err)
	}
	return entry.LocalID, nil
}

// DequeueNext returns the oldest eligible entry, marked syncing, or nil when
// nothing is ready.
func (q *RedisQueue) DequeueNext(ctx context.Context) (*PendingOrder, error) {
	entries, err := q.all(ctx)
	if err != nil {
		return nil, err
	}
	next := nextEligible(entries, q.now(), syncingStaleFactor*q.config.Sync.RemoteTimeout)
	if next == nil {
		return nil, nil
	}
	now := q.now()
	next.State = StateSyncing
	next.DequeuedAt = &now
	if err := q.store(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// MarkSynced removes the entry from the pending set and records the
// local-id to server-id mapping for anything still holding the local id.
func (q *RedisQueue) MarkSynced(ctx context.Context, localID string, serverOrder *order.Order) error {
	pipe := q.redisClient.TxPipeline()
	pipe.Del(ctx, pendingKey(localID))
	pipe.ZRem(ctx, pendingIndexKey, localID)
	pipe.Set(ctx, mappingKey(localID), serverOrder.ID, mappingTTL)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark %s synced: %w", localID, err)
	}
	return nil
}

// MarkFailed re-admits the entry to the eligible pool after its backoff, or
// parks it for operator intervention when the failure is not retryable.
func (q *RedisQueue) MarkFailed(ctx context.Context, localID string, cause error, retryable bool) error {
	entry, err := q.get(ctx, localID)
	if err != nil {
		return err
	}
	entry.State = StateFailed
	entry.RetryCount++
	entry.LastError = cause.Error()
	entry.Retryable = retryable
	entry.NextAttemptAt = nil
	entry.DequeuedAt = nil
	if retryable {
		next := q.now().Add(Backoff(entry.RetryCount, q.config.Sync.BackoffBase, q.config.Sync.BackoffCap))
		entry.NextAttemptAt = &next
	}
	return q.store(ctx, entry)
}

// Get returns a single pending entry by local id.
func (q *RedisQueue) Get(ctx context.Context, localID string) (*PendingOrder, error) {
	return q.get(ctx, localID)
}

// Backlog lists failed entries, oldest first, for the operator screen.
func (q *RedisQueue) Backlog(ctx context.Context) ([]PendingOrder, error) {
	entries, err := q.all(ctx)
	if err != nil {
		return nil, err
	}
	backlog := make([]PendingOrder, 0, len(entries))
	for _, e := range entries {
		if e.State == StateFailed {
			backlog = append(backlog, e)
		}
	}
	sort.SliceStable(backlog, func(i, j int) bool {
		return backlog[i].CreatedAt.Before(backlog[j].CreatedAt)
	})
	return backlog, nil
}

// Depth returns the number of orders still awaiting sync.
func (q *RedisQueue) Depth(ctx context.Context) (int64, error) {
	return q.redisClient.ZCard(ctx, pendingIndexKey).Result()
}

// ResolveServerID maps a local id to its server-assigned id once synced.
func (q *RedisQueue) ResolveServerID(ctx context.Context, localID string) (uint, bool, error) {
	id, err := q.redisClient.Get(ctx, mappingKey(localID)).Uint64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return uint(id), true, nil
}

func (q *RedisQueue) all(ctx context.Context) ([]PendingOrder, error) {
	ids, err := q.redisClient.ZRange(ctx, pendingIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read pending index: %w", err)
	}
	entries := make([]PendingOrder, 0, len(ids))
	for _, id := range ids {
		entry, err := q.get(ctx, id)
		if err != nil {
			// Index entry without a record; drop the dangling reference
			q.redisClient.ZRem(ctx, pendingIndexKey, id)
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

func (q *RedisQueue) get(ctx context.Context, localID string) (*PendingOrder, error) {
	data, err := q.redisClient.Get(ctx, pendingKey(localID)).Result()
	if err != nil {
		return nil, fmt.Errorf("pending order %s not found: %w", localID, err)
	}
	var entry PendingOrder
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (q *RedisQueue) store(ctx context.Context, entry *PendingOrder) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	// No TTL: a pending order must outlive any cache policy
	return q.redisClient.Set(ctx, pendingKey(entry.LocalID), data, 0).Err()
}
