// internal/domain/sync/engine.go
package sync

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/connectivity"
	"github.com/your-org/pos-backend/internal/domain/customer"
	"github.com/your-org/pos-backend/internal/domain/order"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"github.com/your-org/pos-backend/internal/pkg/events"
)

// OrderStore is the remote side of a sync attempt.
type OrderStore interface {
	Submit(ctx context.Context, localID string, draft *order.OrderDraft) (*order.Order, error)
	EnsureCustomer(ctx context.Context, rec customer.Record) error
}

// Engine drains the pending queue into the remote store. One drain pass runs
// at a time; triggers that arrive mid-pass coalesce into a single follow-up
// pass instead of stacking.
type Engine struct {
	queue   Queue
	store   OrderStore
	monitor *connectivity.Monitor
	bus     *events.Bus
	logger  *logrus.Logger

	interval time.Duration
	timeout  time.Duration

	kick chan struct{}
	done chan struct{}
	stop context.CancelFunc
}

// NewEngine creates a new sync engine
func NewEngine(queue Queue, store OrderStore, monitor *connectivity.Monitor, bus *events.Bus, logger *logrus.Logger, cfg *config.Config) *Engine {
	return &Engine{
		queue:    queue,
		store:    store,
		monitor:  monitor,
		bus:      bus,
		logger:   logger,
		interval: cfg.Sync.DrainInterval,
		timeout:  cfg.Sync.RemoteTimeout,
		kick:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start runs the drain loop until the context is cancelled or Stop is called.
// Passes are triggered by the periodic tick, by Kick, and by connectivity
// coming back online.
func (e *Engine) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	e.stop = cancel

	online, unsubscribe := e.monitor.Subscribe()

	go func() {
		defer close(e.done)
		defer unsubscribe()

		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		// Boot pass picks up anything left over from a previous run
		e.DrainOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.DrainOnce(ctx)
			case <-e.kick:
				e.DrainOnce(ctx)
			case up, ok := <-online:
				if !ok {
					return
				}
				if up {
					e.logger.Info("connectivity restored, draining pending orders")
					e.DrainOnce(ctx)
				}
			}
		}
	}()
}

// Kick requests a drain pass. Non-blocking; a pending request absorbs
// further kicks until the loop services it.
func (e *Engine) Kick() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

// Stop cancels the loop and waits for the in-flight pass to finish.
func (e *Engine) Stop() {
	if e.stop != nil {
		e.stop()
	}
	<-e.done
}

// DrainOnce submits eligible entries oldest-first until the queue is empty,
// nothing is eligible yet, or a transport failure ends the pass. Later
// entries are never attempted past a transport failure, which keeps
// first-accepted, first-submitted intact when the link comes back.
func (e *Engine) DrainOnce(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if !e.monitor.Online() {
			return
		}

		entry, err := e.queue.DequeueNext(ctx)
		if err != nil {
			e.logger.WithField("error", err).Error("failed to read pending queue")
			return
		}
		if entry == nil {
			return
		}

		if !e.submit(ctx, entry) {
			return
		}
	}
}

// submit performs one attempt and reports whether the pass may continue.
func (e *Engine) submit(ctx context.Context, entry *PendingOrder) bool {
	log := e.logger.WithFields(logrus.Fields{
		"local_id": entry.LocalID,
		"attempt":  entry.RetryCount + 1,
	})

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	serverOrder, err := e.store.Submit(callCtx, entry.LocalID, &entry.Draft)

	var de *apperrors.DuplicateError
	if errors.As(err, &de) {
		if serverOrder == nil {
			// The store says the order exists but could not hand the row
			// back; retry the read later rather than acknowledging blind
			err = &apperrors.TransportError{Err: err}
		} else {
			// Earlier attempt landed; the lost acknowledgment is now recovered
			log.WithField("server_id", de.ServerID).Info("order already synced")
			err = nil
		}
	}

	if err == nil {
		e.monitor.ReportSuccess()
		if markErr := e.queue.MarkSynced(ctx, entry.LocalID, serverOrder); markErr != nil {
			log.WithField("error", markErr).Error("failed to mark order synced")
			return false
		}
		log.WithField("server_id", serverOrder.ID).Info("order synced")
		e.publishSynced(entry.LocalID, serverOrder.ID)
		return true
	}

	switch {
	case apperrors.IsTransport(err):
		e.monitor.ReportFailure()
		log.WithField("error", err).Warn("remote store unreachable, pass ended")
		e.markFailed(ctx, entry, err, true)
		return false

	case apperrors.IsIntegrity(err):
		if e.remediate(ctx, entry, log) {
			return true
		}
		e.markFailed(ctx, entry, err, true)
		return true

	default:
		// Validation and permission failures cannot succeed on retry;
		// park the entry for the operator
		log.WithField("error", err).Error("order rejected, parked for review")
		e.markFailed(ctx, entry, err, false)
		return true
	}
}

// remediate handles a missing-customer reference: create the minimal row and
// resubmit once within the same pass.
func (e *Engine) remediate(ctx context.Context, entry *PendingOrder, log *logrus.Entry) bool {
	var contact *customer.Contact
	if c := entry.Draft.Contact; c != nil {
		contact = &customer.Contact{Name: c.Name, Phone: c.Phone, Address: c.Address}
	}

	// No stored profile exists yet, that is what tripped the constraint;
	// fold what the draft carries through the canonical precedence
	rec := customer.Canonical(nil, contact, nil)
	if rec.Phone == "" {
		return false
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if err := e.store.EnsureCustomer(callCtx, rec); err != nil {
		log.WithField("error", err).Warn("customer remediation failed")
		return false
	}
	log.Info("customer record created, retrying order")

	retryCtx, cancelRetry := context.WithTimeout(ctx, e.timeout)
	defer cancelRetry()

	serverOrder, err := e.store.Submit(retryCtx, entry.LocalID, &entry.Draft)
	var de *apperrors.DuplicateError
	if errors.As(err, &de) {
		if serverOrder == nil {
			err = &apperrors.TransportError{Err: err}
		} else {
			err = nil
		}
	}
	if err != nil {
		log.WithField("error", err).Warn("retry after remediation failed")
		return false
	}

	e.monitor.ReportSuccess()
	if markErr := e.queue.MarkSynced(ctx, entry.LocalID, serverOrder); markErr != nil {
		log.WithField("error", markErr).Error("failed to mark order synced")
		return false
	}
	log.WithField("server_id", serverOrder.ID).Info("order synced after remediation")
	e.publishSynced(entry.LocalID, serverOrder.ID)
	return true
}

func (e *Engine) markFailed(ctx context.Context, entry *PendingOrder, cause error, retryable bool) {
	if err := e.queue.MarkFailed(ctx, entry.LocalID, cause, retryable); err != nil {
		e.logger.WithFields(logrus.Fields{
			"local_id": entry.LocalID,
			"error":    err,
		}).Error("failed to record sync failure")
	}
}

func (e *Engine) publishSynced(localID string, serverID uint) {
	if e.bus != nil {
		e.bus.Publish(events.Event{
			Topic:    events.TopicOrderSynced,
			LocalID:  localID,
			ServerID: serverID,
		})
	}
}
