package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pos-backend/internal/domain/catalog"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
)

func variant(id uint, size string, price int64) catalog.Variant {
	return catalog.Variant{ID: id, Size: size, Price: price, IsActive: true}
}

func TestQuoteSingleVariant(t *testing.T) {
	unit, err := Quote(variant(1, "grande", 14000), nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(14000), unit)
}

func TestQuoteCompositeChargesPricierHalf(t *testing.T) {
	a := variant(1, "grande", 14000)
	b := variant(2, "grande", 15000)
	extraQueso := catalog.Modifier{ID: 7, Name: "Extra Queso", Price: 2000}

	unit, err := Quote(a, &b, []uint{7}, []catalog.Modifier{extraQueso})
	require.NoError(t, err)
	assert.Equal(t, int64(17000), unit, "max(140, 150) + 20")

	// Symmetric: order of halves must not matter
	unit, err = Quote(b, &a, []uint{7}, []catalog.Modifier{extraQueso})
	require.NoError(t, err)
	assert.Equal(t, int64(17000), unit)
}

func TestQuoteCompositeNeverSumsOrAverages(t *testing.T) {
	a := variant(1, "mediana", 10000)
	b := variant(2, "mediana", 12000)

	unit, err := Quote(a, &b, nil, nil)
	require.NoError(t, err)
	assert.NotEqual(t, int64(22000), unit)
	assert.NotEqual(t, int64(11000), unit)
	assert.Equal(t, int64(12000), unit)
}

func TestQuoteSizeMismatch(t *testing.T) {
	a := variant(1, "grande", 14000)
	b := variant(2, "mediana", 9000)

	_, err := Quote(a, &b, nil, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	var ce *apperrors.ComposabilityError
	assert.ErrorAs(t, err, &ce)
}

func TestQuoteIgnoresUnknownModifierIDs(t *testing.T) {
	known := catalog.Modifier{ID: 1, Name: "Champiñones", Price: 1500}

	unit, err := Quote(variant(1, "chica", 8000), nil, []uint{1, 999}, []catalog.Modifier{known})
	require.NoError(t, err)
	assert.Equal(t, int64(9500), unit, "unknown id 999 contributes nothing")
}

func TestResolveSecondHalf(t *testing.T) {
	second := &catalog.Product{
		Name: "Hawaiana",
		Variants: []catalog.Variant{
			variant(10, "mediana", 11000),
			variant(11, "grande", 13000),
		},
	}

	v, err := ResolveSecondHalf(second, "grande")
	require.NoError(t, err)
	assert.Equal(t, uint(11), v.ID)

	_, err = ResolveSecondHalf(second, "familiar")
	require.Error(t, err)
	var ce *apperrors.ComposabilityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Hawaiana", ce.ProductName)
}
