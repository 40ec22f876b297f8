// internal/domain/order/assembler.go
package order

import (
	"strings"
	"time"

	"github.com/your-org/pos-backend/internal/domain/cart"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
)

// Typed assembler failures. All are user-fixable validation errors; none of
// them ever reaches the sync engine because they block before enqueue.
var (
	ErrEmptyCart              = &apperrors.ValidationError{Reason: "cart is empty"}
	ErrMissingTableNumber     = &apperrors.ValidationError{Reason: "dine-in orders require a table number"}
	ErrMissingDeliveryContact = &apperrors.ValidationError{Reason: "delivery orders require name, phone and address"}
	ErrUnknownServiceType     = &apperrors.ValidationError{Reason: "unknown service type"}
	ErrUnknownPaymentMethod   = &apperrors.ValidationError{Reason: "unknown payment method"}
)

// ServiceContext is the per-order context collected at checkout.
type ServiceContext struct {
	Type        ServiceType      `json:"type"`
	TableNumber string           `json:"table_number,omitempty"`
	Contact     *DeliveryContact `json:"contact,omitempty"`
}

// BuildDraft validates the service context against the cart snapshot and
// produces the immutable submission payload. Pure: no store access, no
// side effects, and nothing is mutated on failure.
func BuildDraft(snapshot *cart.Cart, svc ServiceContext, payment PaymentMethod, staffID *uint) (*OrderDraft, error) {
	if snapshot == nil || len(snapshot.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	switch svc.Type {
	case ServiceDineIn:
		if strings.TrimSpace(svc.TableNumber) == "" {
			return nil, ErrMissingTableNumber
		}
	case ServiceDelivery:
		if svc.Contact == nil ||
			strings.TrimSpace(svc.Contact.Name) == "" ||
			strings.TrimSpace(svc.Contact.Phone) == "" ||
			strings.TrimSpace(svc.Contact.Address) == "" {
			return nil, ErrMissingDeliveryContact
		}
	case ServiceTakeout:
		// nothing extra
	default:
		return nil, ErrUnknownServiceType
	}

	switch payment {
	case PaymentCash, PaymentCard:
	default:
		return nil, ErrUnknownPaymentMethod
	}

	items := make([]DraftItem, len(snapshot.Lines))
	for i, line := range snapshot.Lines {
		mods := make([]DraftModifier, len(line.Modifiers))
		for j, m := range line.Modifiers {
			mods[j] = DraftModifier{ID: m.ID, Name: m.Name, Price: m.Price}
		}
		items[i] = DraftItem{
			ProductID:         line.ProductID,
			ProductName:       line.ProductName,
			SecondProductID:   line.SecondProductID,
			SecondProductName: line.SecondProductName,
			Size:              line.Size,
			Quantity:          line.Quantity,
			UnitPrice:         line.UnitPrice,
			TotalPrice:        line.UnitPrice * int64(line.Quantity),
			Modifiers:         mods,
		}
	}

	totals := snapshot.Totals()

	draft := &OrderDraft{
		ServiceType:   svc.Type,
		PaymentMethod: payment,
		Items:         items,
		Subtotal:      totals.Subtotal,
		Total:         totals.Total,
		StaffID:       staffID,
		PlacedAt:      time.Now().UTC(),
	}

	switch svc.Type {
	case ServiceDineIn:
		draft.TableNumber = strings.TrimSpace(svc.TableNumber)
	case ServiceDelivery:
		contact := *svc.Contact
		draft.Contact = &contact
	}

	return draft, nil
}
