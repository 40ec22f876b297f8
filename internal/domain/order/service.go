// internal/domain/order/service.go
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/customer"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"github.com/your-org/pos-backend/internal/pkg/events"
	"gorm.io/gorm"
)

// Notifier yields a prefilled outbound message link for a customer.
type Notifier interface {
	CancellationLink(phone, orderNumber string) (string, error)
}

// Service is the gateway to the remote order store. Every method takes a
// context because each call may cross an unreliable network; callers bound
// them with timeouts and the sync engine maps failures onto the taxonomy.
type Service struct {
	db       *gorm.DB
	config   *config.Config
	logger   *logrus.Logger
	notifier Notifier
	bus      *events.Bus
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger, notifier Notifier, bus *events.Bus) *Service {
	return &Service{
		db:       db,
		config:   cfg,
		logger:   logger,
		notifier: notifier,
		bus:      bus,
	}
}

// Submit writes a draft to the remote store under the register's local id.
// The client_ref unique index is the duplicate guard: resubmitting the same
// local id after a lost acknowledgment yields a DuplicateError carrying the
// existing order, which callers treat as success.
func (s *Service) Submit(ctx context.Context, localID string, draft *OrderDraft) (*Order, error) {
	if existing, err := s.findByClientRef(ctx, localID); err == nil {
		return existing, &apperrors.DuplicateError{ServerID: existing.ID}
	}

	o := Order{
		ClientRef:      localID,
		Status:         StatusPending,
		ServiceType:    draft.ServiceType,
		TableNumber:    draft.TableNumber,
		PaymentMethod:  draft.PaymentMethod,
		SubtotalAmount: draft.Subtotal,
		TotalAmount:    draft.Total,
		StaffID:        draft.StaffID,
		PlacedAt:       draft.PlacedAt,
	}
	if draft.Contact != nil {
		o.CustomerName = draft.Contact.Name
		o.CustomerPhone = draft.Contact.Phone
		o.DeliveryAddress = draft.Contact.Address
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&o).Error; err != nil {
			return err
		}

		o.OrderNumber = o.GenerateOrderNumber()
		if err := tx.Model(&o).Update("order_number", o.OrderNumber).Error; err != nil {
			return err
		}

		items := make([]OrderItem, len(draft.Items))
		for i, item := range draft.Items {
			mods, _ := json.Marshal(item.Modifiers)
			items[i] = OrderItem{
				OrderID:           o.ID,
				ProductID:         item.ProductID,
				ProductName:       item.ProductName,
				SecondProductID:   item.SecondProductID,
				SecondProductName: item.SecondProductName,
				Size:              item.Size,
				Modifiers:         string(mods),
				Quantity:          item.Quantity,
				Price:             item.UnitPrice,
				TotalPrice:        item.TotalPrice,
			}
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		o.Items = items

		history := OrderStatusHistory{OrderID: o.ID, Status: StatusPending, Comment: "order received"}
		return tx.Create(&history).Error
	})
	if err != nil {
		classified := apperrors.ClassifyStoreError(err)
		var de *apperrors.DuplicateError
		if errors.As(classified, &de) {
			// Lost a race with our own earlier attempt
			existing, ferr := s.findByClientRef(ctx, localID)
			if ferr == nil {
				return existing, &apperrors.DuplicateError{ServerID: existing.ID}
			}
			// The row exists but cannot be read back; a duplicate signal
			// without the order would tempt callers into a blind ack
			return nil, &apperrors.TransportError{Err: ferr}
		}
		return nil, fmt.Errorf("failed to create order: %w", classified)
	}

	return &o, nil
}

// EnsureCustomer is the remediation call for integrity failures: it creates
// the minimal customer row a delivery order references. Idempotent on phone.
func (s *Service) EnsureCustomer(ctx context.Context, rec customer.Record) error {
	if rec.Phone == "" {
		return &apperrors.ValidationError{Reason: "customer record needs a phone"}
	}

	var existing customer.StoredProfile
	err := s.db.WithContext(ctx).Where("phone = ?", rec.Phone).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ClassifyStoreError(err)
	}

	profile := customer.StoredProfile{Name: rec.Name, Phone: rec.Phone, Address: rec.Address}
	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		classified := apperrors.ClassifyStoreError(err)
		if apperrors.IsDuplicate(classified) {
			return nil
		}
		return classified
	}
	return nil
}

// GetOrder retrieves an order with its items and history.
func (s *Service) GetOrder(ctx context.Context, id uint) (*Order, error) {
	var o Order
	err := s.db.WithContext(ctx).Preload("Items").Preload("StatusHistory").First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d not found", id)
		}
		return nil, apperrors.ClassifyStoreError(err)
	}
	return &o, nil
}

// ListActive returns non-terminal orders for the kitchen board, oldest first.
func (s *Service) ListActive(ctx context.Context) ([]Order, error) {
	var orders []Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("status NOT IN ?", []Status{StatusDelivered, StatusCancelled}).
		Order("placed_at").
		Find(&orders).Error
	if err != nil {
		return nil, apperrors.ClassifyStoreError(err)
	}
	return orders, nil
}

// AdvanceStatus moves an order one step forward along the chain. The update
// is guarded on the expected current status; zero rows affected means the
// store's access policy rejected the write, surfaced as a PermissionError
// because retrying cannot succeed without a privilege change.
func (s *Service) AdvanceStatus(ctx context.Context, orderID uint, staffID uint) (Status, error) {
	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}

	next, ok := NextStatus(o.Status)
	if !ok {
		return "", fmt.Errorf("order is %s, a terminal state", o.Status)
	}

	updates := map[string]interface{}{"status": next}
	now := time.Now().UTC()
	switch next {
	case StatusConfirmed:
		updates["confirmed_at"] = now
	case StatusReady:
		updates["ready_at"] = now
	case StatusDelivered:
		updates["delivered_at"] = now
	}

	result := s.db.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND status = ?", orderID, o.Status).
		Updates(updates)
	if result.Error != nil {
		return "", apperrors.ClassifyStoreError(result.Error)
	}
	if result.RowsAffected == 0 {
		return "", &apperrors.PermissionError{Operation: fmt.Sprintf("advance order %d to %s", orderID, next)}
	}

	s.recordHistory(ctx, orderID, next, "", staffID)
	s.publish(events.TopicOrderStatusChanged, orderID)

	return next, nil
}

// Cancel is the escape hatch, reachable from any non-terminal state. It
// removes the order's item rows and fires a best-effort customer
// notification; a failed notification never rolls the cancellation back.
func (s *Service) Cancel(ctx context.Context, orderID uint, reason string, staffID uint) error {
	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !CanCancel(o.Status) {
		return fmt.Errorf("order is %s, a terminal state", o.Status)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&OrderItem{}).Error; err != nil {
			return err
		}

		result := tx.Model(&Order{}).
			Where("id = ? AND status = ?", orderID, o.Status).
			Update("status", StatusCancelled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &apperrors.PermissionError{Operation: fmt.Sprintf("cancel order %d", orderID)}
		}

		history := OrderStatusHistory{
			OrderID:   orderID,
			Status:    StatusCancelled,
			Comment:   fmt.Sprintf("order cancelled: %s", reason),
			CreatedBy: staffID,
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		if apperrors.IsPermission(err) {
			return err
		}
		return apperrors.ClassifyStoreError(err)
	}

	s.notifyCancellation(o)
	s.publish(events.TopicOrderStatusChanged, orderID)

	return nil
}

func (s *Service) notifyCancellation(o *Order) {
	if s.notifier == nil || o.CustomerPhone == "" {
		return
	}
	link, err := s.notifier.CancellationLink(o.CustomerPhone, o.OrderNumber)
	if err != nil {
		s.logger.WithFields(logrus.Fields{"order_id": o.ID, "error": err}).
			Warn("could not build cancellation notice")
		return
	}
	s.logger.WithFields(logrus.Fields{"order_id": o.ID, "link": link}).
		Info("cancellation notice ready")
}

func (s *Service) recordHistory(ctx context.Context, orderID uint, status Status, comment string, staffID uint) {
	history := OrderStatusHistory{OrderID: orderID, Status: status, Comment: comment, CreatedBy: staffID}
	if err := s.db.WithContext(ctx).Create(&history).Error; err != nil {
		s.logger.WithFields(logrus.Fields{"order_id": orderID, "error": err}).
			Warn("failed to record status history")
	}
}

func (s *Service) publish(topic string, orderID uint) {
	if s.bus != nil {
		s.bus.Publish(events.Event{Topic: topic, ServerID: orderID})
	}
}

func (s *Service) findByClientRef(ctx context.Context, localID string) (*Order, error) {
	var existing Order
	err := s.db.WithContext(ctx).Preload("Items").Where("client_ref = ?", localID).First(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}
