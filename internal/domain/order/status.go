// internal/domain/order/status.go
package order

import "fmt"

// Status is the kitchen-facing order lifecycle
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// forward is the single valid next step for each state. The chain is strictly
// monotonic; there is no skipping and no way back.
var forward = map[Status]Status{
	StatusPending:   StatusConfirmed,
	StatusConfirmed: StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusDelivered,
}

// NextStatus returns the one forward transition available from s, if any.
func NextStatus(s Status) (Status, bool) {
	next, ok := forward[s]
	return next, ok
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s Status) bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanCancel reports whether cancellation is reachable from s. It is offered
// from every state except the terminal ones.
func CanCancel(s Status) bool {
	return !IsTerminal(s)
}

// CanTransition validates a staff-requested transition.
func CanTransition(from, to Status) bool {
	if to == StatusCancelled {
		return CanCancel(from)
	}
	next, ok := forward[from]
	return ok && next == to
}

// ValidateTransition returns a descriptive error for an invalid transition.
func ValidateTransition(from, to Status) error {
	if IsTerminal(from) {
		return fmt.Errorf("order is %s, a terminal state", from)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid status transition from %s to %s", from, to)
	}
	return nil
}
