// internal/pkg/apperrors/errors.go
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ValidationError blocks a submission before it is enqueued. It is fixed by
// the user, never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// ComposabilityError means a half-and-half combination was requested but the
// second variant has no offering at the selected size.
type ComposabilityError struct {
	ProductName string
	Size        string
}

func (e *ComposabilityError) Error() string {
	if e.ProductName == "" {
		return fmt.Sprintf("both halves must share size %s", e.Size)
	}
	return fmt.Sprintf("%s is not available in size %s", e.ProductName, e.Size)
}

// TransportError covers unreachable hosts and timeouts. The sync engine
// requeues with backoff and demotes the connectivity signal.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("remote store unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IntegrityError is a remote referential failure, e.g. a missing customer
// profile. One remediation attempt is allowed before requeueing.
type IntegrityError struct {
	Constraint string
	Err        error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity failure on %s: %v", e.Constraint, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// PermissionError is an authorization failure on submission or a status
// transition. Surfaced to staff, never auto-retried.
type PermissionError struct {
	Operation string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("not permitted: %s", e.Operation)
}

// DuplicateError reports that the logical order already exists remotely.
// Callers treat it as success and mark the entry synced.
type DuplicateError struct {
	ServerID uint
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("order already exists with id %d", e.ServerID)
}

// IsTransport reports whether err should be handled as a transport failure.
// Context deadlines count: a call that never completes is indistinguishable
// from a dead network at the register.
func IsTransport(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// IsIntegrity reports whether err is a referential-integrity failure.
func IsIntegrity(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// IsDuplicate reports whether err means the order already exists remotely.
func IsDuplicate(err error) bool {
	var de *DuplicateError
	return errors.As(err, &de)
}

// IsPermission reports whether err is an authorization failure.
func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation reports whether err is user-fixable input validation.
func IsValidation(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	var ce *ComposabilityError
	return errors.As(err, &ce)
}

// ClassifyStoreError maps a raw database error onto the taxonomy. Postgres
// wire failures and FK violations arrive as driver errors without stable
// types through gorm, so the SQLSTATE is matched on the message.
func ClassifyStoreError(err error) error {
	if err == nil {
		return nil
	}
	if IsTransport(err) {
		return &TransportError{Err: err}
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "SQLSTATE 23503") || strings.Contains(msg, "foreign key"):
		return &IntegrityError{Constraint: "foreign key", Err: err}
	case strings.Contains(msg, "SQLSTATE 23505") || strings.Contains(msg, "duplicate key"):
		return &DuplicateError{}
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "broken pipe") || strings.Contains(msg, "no such host"):
		return &TransportError{Err: err}
	}
	return err
}
