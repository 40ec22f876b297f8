// internal/domain/pricing/engine.go
package pricing

import (
	"github.com/your-org/pos-backend/internal/domain/catalog"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
)

// Quote computes the unit price for a cart line: a chosen variant, an optional
// second variant forming a half-and-half composite, and a set of modifier ids.
//
// Composite policy is "charge the pricier half": the unit price of a composite
// is max(primary, secondary), never the average and never the sum. Modifier
// prices are added on top. Unknown modifier ids are skipped so a register
// holding a stale catalog cannot fail checkout over a removed add-on.
//
// The function is pure; both variants and the modifier list must already be
// resolved from the catalog.
func Quote(primary catalog.Variant, secondary *catalog.Variant, modifierIDs []uint, modifiers []catalog.Modifier) (int64, error) {
	unit := primary.Price

	if secondary != nil {
		if secondary.Size != primary.Size {
			return 0, &apperrors.ComposabilityError{Size: primary.Size}
		}
		if secondary.Price > unit {
			unit = secondary.Price
		}
	}

	byID := make(map[uint]int64, len(modifiers))
	for _, m := range modifiers {
		byID[m.ID] = m.Price
	}
	for _, id := range modifierIDs {
		unit += byID[id]
	}

	return unit, nil
}

// ResolveSecondHalf finds the second product's variant at the size already
// selected for the primary half. A product with no offering at that size
// cannot join the composite.
func ResolveSecondHalf(second *catalog.Product, size string) (*catalog.Variant, error) {
	v, ok := second.VariantAtSize(size)
	if !ok {
		return nil, &apperrors.ComposabilityError{ProductName: second.Name, Size: size}
	}
	return v, nil
}
