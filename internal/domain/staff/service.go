// internal/domain/staff/service.go
package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// PINVerifier checks a candidate PIN against a stored hash.
type PINVerifier interface {
	VerifyPIN(pin, hash string) error
}

// Service handles staff lookup and sign-in
type Service struct {
	db   *gorm.DB
	pins PINVerifier
}

// NewService creates a new staff service
func NewService(db *gorm.DB, pins PINVerifier) *Service {
	return &Service{
		db:   db,
		pins: pins,
	}
}

// Authenticate verifies the PIN for an active staff member. The error is the
// same for a missing account and a wrong PIN, so the sign-in screen leaks
// nothing about which ids exist.
func (s *Service) Authenticate(ctx context.Context, staffID uint, pin string) (*Staff, error) {
	var member Staff
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", staffID, true).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid staff id or pin")
		}
		return nil, apperrors.ClassifyStoreError(err)
	}

	if err := s.pins.VerifyPIN(pin, member.PINHash); err != nil {
		return nil, fmt.Errorf("invalid staff id or pin")
	}

	return &member, nil
}

// Get retrieves a staff member by id
func (s *Service) Get(ctx context.Context, staffID uint) (*Staff, error) {
	var member Staff
	err := s.db.WithContext(ctx).First(&member, staffID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("staff %d not found", staffID)
		}
		return nil, apperrors.ClassifyStoreError(err)
	}
	return &member, nil
}

// ListActive returns active staff for the sign-in picker, cashiers first.
func (s *Service) ListActive(ctx context.Context) ([]Staff, error) {
	var members []Staff
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("role, name").
		Find(&members).Error
	if err != nil {
		return nil, apperrors.ClassifyStoreError(err)
	}
	return members, nil
}
