package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pos-backend/internal/domain/cart"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
)

func snapshot() *cart.Cart {
	c := &cart.Cart{DeviceID: "caja-1"}
	c.Add(cart.CartLine{ProductID: 1, ProductName: "Pizza Grande", VariantID: 3, Size: "grande", Quantity: 2, UnitPrice: 14000})
	c.Add(cart.CartLine{
		ProductID: 1, ProductName: "Pizza Grande", VariantID: 3, Size: "grande",
		Modifiers: []cart.LineModifier{{ID: 7, Name: "Extra Queso", Price: 2000}},
		Quantity:  1, UnitPrice: 16000,
	})
	return c
}

func TestDineInRequiresTableNumber(t *testing.T) {
	_, err := BuildDraft(snapshot(), ServiceContext{Type: ServiceDineIn}, PaymentCash, nil)
	require.ErrorIs(t, err, ErrMissingTableNumber)
	assert.True(t, apperrors.IsValidation(err))

	_, err = BuildDraft(snapshot(), ServiceContext{Type: ServiceDineIn, TableNumber: "   "}, PaymentCash, nil)
	require.ErrorIs(t, err, ErrMissingTableNumber)
}

func TestDeliveryRequiresFullContact(t *testing.T) {
	cases := []*DeliveryContact{
		nil,
		{Phone: "5551112222", Address: "Av. Juárez 10"},
		{Name: "Ana", Address: "Av. Juárez 10"},
		{Name: "Ana", Phone: "5551112222"},
	}
	for _, contact := range cases {
		_, err := BuildDraft(snapshot(), ServiceContext{Type: ServiceDelivery, Contact: contact}, PaymentCash, nil)
		assert.ErrorIs(t, err, ErrMissingDeliveryContact)
	}
}

func TestTakeoutNeedsNothingExtra(t *testing.T) {
	draft, err := BuildDraft(snapshot(), ServiceContext{Type: ServiceTakeout}, PaymentCard, nil)
	require.NoError(t, err)
	assert.Empty(t, draft.TableNumber)
	assert.Nil(t, draft.Contact)
}

func TestEmptyCartBlocksBeforeAnythingElse(t *testing.T) {
	empty := &cart.Cart{DeviceID: "caja-1"}
	_, err := BuildDraft(empty, ServiceContext{Type: ServiceDineIn}, PaymentCash, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = BuildDraft(nil, ServiceContext{Type: ServiceTakeout}, PaymentCash, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestDraftPayloadContents(t *testing.T) {
	staff := uint(3)
	draft, err := BuildDraft(snapshot(), ServiceContext{Type: ServiceDineIn, TableNumber: "12"}, PaymentCash, &staff)
	require.NoError(t, err)

	assert.Equal(t, ServiceDineIn, draft.ServiceType)
	assert.Equal(t, "12", draft.TableNumber)
	assert.Equal(t, PaymentCash, draft.PaymentMethod)
	require.Len(t, draft.Items, 2)

	assert.Equal(t, int64(28000), draft.Items[0].TotalPrice)
	assert.Equal(t, "grande", draft.Items[0].Size)
	require.Len(t, draft.Items[1].Modifiers, 1)
	assert.Equal(t, "Extra Queso", draft.Items[1].Modifiers[0].Name)

	assert.Equal(t, int64(44000), draft.Subtotal)
	assert.Equal(t, draft.Subtotal, draft.Total)
	assert.Equal(t, &staff, draft.StaffID)
	assert.False(t, draft.PlacedAt.IsZero())
}

func TestDraftSnapshotIsolation(t *testing.T) {
	snap := snapshot()
	draft, err := BuildDraft(snap, ServiceContext{Type: ServiceTakeout}, PaymentCash, nil)
	require.NoError(t, err)

	// Later cart mutations must not leak into the built payload
	require.NoError(t, snap.UpdateQuantity(snap.Lines[0].ID, 5))
	assert.Equal(t, 2, draft.Items[0].Quantity)
}
