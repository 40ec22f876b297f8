// internal/domain/cart/entity.go
package cart

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LineModifier is a modifier as captured on a cart line, priced at add time.
type LineModifier struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// CartLine is one priced entry in the cart. SecondProductID is set for
// half-and-half composites. UnitPrice is computed by the pricing engine
// before the line reaches the aggregator; the cart never prices anything.
type CartLine struct {
	ID                string         `json:"id"`
	ProductID         uint           `json:"product_id"`
	ProductName       string         `json:"product_name"`
	VariantID         uint           `json:"variant_id"`
	Size              string         `json:"size"`
	SecondProductID   *uint          `json:"second_product_id,omitempty"`
	SecondProductName string         `json:"second_product_name,omitempty"`
	Modifiers         []LineModifier `json:"modifiers,omitempty"`
	Quantity          int            `json:"quantity"`
	UnitPrice         int64          `json:"unit_price"`
	AddedAt           time.Time      `json:"added_at"`
}

// ModifierIDs returns the ids of the line's selected modifiers.
func (l *CartLine) ModifierIDs() []uint {
	ids := make([]uint, len(l.Modifiers))
	for i, m := range l.Modifiers {
		ids[i] = m.ID
	}
	return ids
}

// Selection is the replacement payload for Edit: new variant, new modifier
// set, new unit price. Line identity and quantity are preserved.
type Selection struct {
	VariantID         uint
	Size              string
	SecondProductID   *uint
	SecondProductName string
	Modifiers         []LineModifier
	UnitPrice         int64
}

// CartTotals represents derived cart totals. Total equals Subtotal: this core
// carries no tax layer, a deliberate choice rather than an omission.
type CartTotals struct {
	ItemCount     int   `json:"item_count"`
	TotalQuantity int   `json:"total_quantity"`
	Subtotal      int64 `json:"subtotal"`
	Total         int64 `json:"total"`
}

// Cart is the ordered collection of lines for one register. All state is in
// Lines; totals are always derived.
type Cart struct {
	DeviceID  string     `json:"device_id"`
	Lines     []CartLine `json:"lines"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Add appends a priced line and assigns it a fresh collision-free id.
func (c *Cart) Add(line CartLine) string {
	line.ID = uuid.NewString()
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	line.AddedAt = time.Now().UTC()
	c.Lines = append(c.Lines, line)
	return line.ID
}

// UpdateQuantity applies a delta to a line's quantity. A result at or below
// zero removes the line, so a non-positive quantity is never observable.
func (c *Cart) UpdateQuantity(lineID string, delta int) error {
	idx, err := c.indexOf(lineID)
	if err != nil {
		return err
	}
	next := c.Lines[idx].Quantity + delta
	if next <= 0 {
		c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
		return nil
	}
	c.Lines[idx].Quantity = next
	return nil
}

// Remove deletes a line.
func (c *Cart) Remove(lineID string) error {
	idx, err := c.indexOf(lineID)
	if err != nil {
		return err
	}
	c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
	return nil
}

// Edit replaces a line's selection in place. The line id and position are
// kept stable so an open edit panel keeps pointing at a valid line.
func (c *Cart) Edit(lineID string, sel Selection) error {
	idx, err := c.indexOf(lineID)
	if err != nil {
		return err
	}
	line := &c.Lines[idx]
	line.VariantID = sel.VariantID
	line.Size = sel.Size
	line.SecondProductID = sel.SecondProductID
	line.SecondProductName = sel.SecondProductName
	line.Modifiers = sel.Modifiers
	line.UnitPrice = sel.UnitPrice
	return nil
}

// Totals recomputes subtotal and total from the lines.
func (c *Cart) Totals() CartTotals {
	var totals CartTotals
	totals.ItemCount = len(c.Lines)
	for _, line := range c.Lines {
		totals.TotalQuantity += line.Quantity
		totals.Subtotal += line.UnitPrice * int64(line.Quantity)
	}
	totals.Total = totals.Subtotal
	return totals
}

func (c *Cart) indexOf(lineID string) (int, error) {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return i, nil
		}
	}
	return 0, fmt.Errorf("line %s not found in cart", lineID)
}
