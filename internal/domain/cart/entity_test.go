package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCart() (*Cart, string, string) {
	c := &Cart{DeviceID: "caja-1"}
	grande := c.Add(CartLine{ProductID: 1, ProductName: "Pizza Grande", VariantID: 3, Size: "grande", Quantity: 2, UnitPrice: 14000})
	conQueso := c.Add(CartLine{
		ProductID:   1,
		ProductName: "Pizza Grande",
		VariantID:   3,
		Size:        "grande",
		Modifiers:   []LineModifier{{ID: 7, Name: "Extra Queso", Price: 2000}},
		Quantity:    1,
		UnitPrice:   16000,
	})
	return c, grande, conQueso
}

func TestAddAssignsFreshIDs(t *testing.T) {
	c, a, b := testCart()
	assert.NotEmpty(t, a)
	assert.NotEmpty(t, b)
	assert.NotEqual(t, a, b)
	assert.Len(t, c.Lines, 2)
}

func TestTotalsDerivedFromLines(t *testing.T) {
	c, _, _ := testCart()
	totals := c.Totals()
	assert.Equal(t, 2, totals.ItemCount)
	assert.Equal(t, 3, totals.TotalQuantity)
	assert.Equal(t, int64(2*14000+16000), totals.Subtotal)
	assert.Equal(t, totals.Subtotal, totals.Total, "no tax layer")
}

func TestRemoveReducesSubtotalExactly(t *testing.T) {
	c, _, conQueso := testCart()
	before := c.Totals().Subtotal
	require.NoError(t, c.Remove(conQueso))
	assert.Equal(t, before-16000, c.Totals().Subtotal)
}

func TestUpdateQuantityDelta(t *testing.T) {
	c, grande, _ := testCart()

	require.NoError(t, c.UpdateQuantity(grande, 1))
	assert.Equal(t, 3, c.Lines[0].Quantity)

	require.NoError(t, c.UpdateQuantity(grande, -2))
	assert.Equal(t, 1, c.Lines[0].Quantity)
}

func TestUpdateQuantityToZeroRemovesLine(t *testing.T) {
	c, grande, _ := testCart()

	require.NoError(t, c.UpdateQuantity(grande, -2))
	assert.Len(t, c.Lines, 1)
	for _, l := range c.Lines {
		assert.GreaterOrEqual(t, l.Quantity, 1)
	}
}

func TestUpdateQuantityByNegativeCurrentEqualsRemove(t *testing.T) {
	left, grandeL, _ := testCart()
	right, grandeR, _ := testCart()

	require.NoError(t, left.UpdateQuantity(grandeL, -left.Lines[0].Quantity))
	require.NoError(t, right.Remove(grandeR))

	assert.Equal(t, len(right.Lines), len(left.Lines))
	assert.Equal(t, right.Totals(), left.Totals())
}

func TestEditPreservesIdentityAndPosition(t *testing.T) {
	c, grande, _ := testCart()

	second := uint(4)
	err := c.Edit(grande, Selection{
		VariantID:         3,
		Size:              "grande",
		SecondProductID:   &second,
		SecondProductName: "Hawaiana",
		Modifiers:         []LineModifier{{ID: 9, Name: "Champiñones", Price: 1500}},
		UnitPrice:         15500,
	})
	require.NoError(t, err)

	assert.Equal(t, grande, c.Lines[0].ID, "external references stay valid")
	assert.Equal(t, 2, c.Lines[0].Quantity, "quantity untouched by edit")
	assert.Equal(t, int64(15500), c.Lines[0].UnitPrice)
	assert.Equal(t, "Hawaiana", c.Lines[0].SecondProductName)
}

func TestMutationsOnUnknownLine(t *testing.T) {
	c, _, _ := testCart()
	assert.Error(t, c.UpdateQuantity("missing", 1))
	assert.Error(t, c.Remove("missing"))
	assert.Error(t, c.Edit("missing", Selection{}))
}
