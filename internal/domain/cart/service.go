// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/catalog"
	"github.com/your-org/pos-backend/internal/domain/pricing"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
)

// Service handles cart business logic. The active cart for each register is a
// JSON blob in Redis so it survives a process restart mid-order.
type Service struct {
	redisClient *redis.Client
	catalog     *catalog.Service
	config      *config.Config
}

// NewService creates a new cart service
func NewService(redisClient *redis.Client, catalogService *catalog.Service, cfg *config.Config) *Service {
	return &Service{
		redisClient: redisClient,
		catalog:     catalogService,
		config:      cfg,
	}
}

// AddLineRequest represents an add-to-cart request
type AddLineRequest struct {
	ProductID       uint   `json:"product_id" binding:"required"`
	Size            string `json:"size" binding:"required"`
	SecondProductID *uint  `json:"second_product_id"`
	ModifierIDs     []uint `json:"modifier_ids"`
	Quantity        int    `json:"quantity" binding:"required,min=1"`
}

// EditLineRequest represents a line edit request
type EditLineRequest struct {
	Size            string `json:"size" binding:"required"`
	SecondProductID *uint  `json:"second_product_id"`
	ModifierIDs     []uint `json:"modifier_ids"`
}

// CartResponse represents the cart with derived totals
type CartResponse struct {
	DeviceID string     `json:"device_id"`
	Lines    []CartLine `json:"lines"`
	Totals   CartTotals `json:"totals"`
}

// Get returns the register's current cart with totals.
func (s *Service) Get(ctx context.Context, deviceID string) (*CartResponse, error) {
	c, err := s.load(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return s.respond(c), nil
}

// AddLine validates the selection against the catalog, prices it, and appends
// it to the cart. Composability and validation failures block here, before
// anything is persisted.
func (s *Service) AddLine(ctx context.Context, deviceID string, req *AddLineRequest) (*CartResponse, error) {
	line, err := s.priceSelection(ctx, req.ProductID, req.Size, req.SecondProductID, req.ModifierIDs)
	if err != nil {
		return nil, err
	}
	line.Quantity = req.Quantity

	c, err := s.load(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	c.Add(*line)
	if err := s.save(ctx, deviceID, c); err != nil {
		return nil, err
	}
	return s.respond(c), nil
}

// UpdateQuantity applies a quantity delta; a result at or below zero removes
// the line.
func (s *Service) UpdateQuantity(ctx context.Context, deviceID, lineID string, delta int) (*CartResponse, error) {
	c, err := s.load(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateQuantity(lineID, delta); err != nil {
		return nil, err
	}
	if err := s.save(ctx, deviceID, c); err != nil {
		return nil, err
	}
	return s.respond(c), nil
}

// RemoveLine removes a line.
func (s *Service) RemoveLine(ctx context.Context, deviceID, lineID string) (*CartResponse, error) {
	c, err := s.load(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if err := c.Remove(lineID); err != nil {
		return nil, err
	}
	if err := s.save(ctx, deviceID, c); err != nil {
		return nil, err
	}
	return s.respond(c), nil
}

// EditLine re-prices the line under a new selection, keeping its identity.
func (s *Service) EditLine(ctx context.Context, deviceID, lineID string, req *EditLineRequest) (*CartResponse, error) {
	c, err := s.load(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("line %s not found in cart", lineID)
	}

	priced, err := s.priceSelection(ctx, c.Lines[idx].ProductID, req.Size, req.SecondProductID, req.ModifierIDs)
	if err != nil {
		return nil, err
	}

	sel := Selection{
		VariantID:         priced.VariantID,
		Size:              priced.Size,
		SecondProductID:   priced.SecondProductID,
		SecondProductName: priced.SecondProductName,
		Modifiers:         priced.Modifiers,
		UnitPrice:         priced.UnitPrice,
	}
	if err := c.Edit(lineID, sel); err != nil {
		return nil, err
	}
	if err := s.save(ctx, deviceID, c); err != nil {
		return nil, err
	}
	return s.respond(c), nil
}

// Snapshot returns the raw cart for order assembly.
func (s *Service) Snapshot(ctx context.Context, deviceID string) (*Cart, error) {
	return s.load(ctx, deviceID)
}

// Clear empties the register's cart, called after a successful local enqueue.
func (s *Service) Clear(ctx context.Context, deviceID string) error {
	return s.redisClient.Del(ctx, cartKey(deviceID)).Err()
}

// priceSelection resolves catalog entities and runs the pricing engine.
func (s *Service) priceSelection(ctx context.Context, productID uint, size string, secondProductID *uint, modifierIDs []uint) (*CartLine, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	variant, ok := product.VariantAtSize(size)
	if !ok {
		return nil, fmt.Errorf("%s is not offered in size %s", product.Name, size)
	}

	var secondVariant *catalog.Variant
	var secondName string
	if secondProductID != nil {
		if !product.Combinable {
			return nil, &apperrors.ValidationError{Reason: product.Name + " cannot be split half-and-half"}
		}
		second, err := s.catalog.GetProduct(ctx, *secondProductID)
		if err != nil {
			return nil, err
		}
		if !second.Combinable {
			return nil, &apperrors.ValidationError{Reason: second.Name + " cannot be split half-and-half"}
		}
		secondVariant, err = pricing.ResolveSecondHalf(second, size)
		if err != nil {
			return nil, err
		}
		secondName = second.Name
	}

	allModifiers, err := s.catalog.GetModifiers(ctx)
	if err != nil {
		return nil, err
	}
	unit, err := pricing.Quote(*variant, secondVariant, modifierIDs, allModifiers)
	if err != nil {
		return nil, err
	}

	selected := make([]LineModifier, 0, len(modifierIDs))
	for _, id := range modifierIDs {
		for _, m := range allModifiers {
			if m.ID == id {
				selected = append(selected, LineModifier{ID: m.ID, Name: m.Name, Price: m.Price})
				break
			}
		}
	}

	return &CartLine{
		ProductID:         product.ID,
		ProductName:       product.Name,
		VariantID:         variant.ID,
		Size:              size,
		SecondProductID:   secondProductID,
		SecondProductName: secondName,
		Modifiers:         selected,
		UnitPrice:         unit,
	}, nil
}

func (s *Service) respond(c *Cart) *CartResponse {
	return &CartResponse{
		DeviceID: c.DeviceID,
		Lines:    c.Lines,
		Totals:   c.Totals(),
	}
}

func cartKey(deviceID string) string {
	return fmt.Sprintf("cart:device:%s", deviceID)
}

func (s *Service) load(ctx context.Context, deviceID string) (*Cart, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device ID required")
	}

	data, err := s.redisClient.Get(ctx, cartKey(deviceID)).Result()
	if err == redis.Nil {
		now := time.Now().UTC()
		return &Cart{DeviceID: deviceID, Lines: []CartLine{}, CreatedAt: now, UpdatedAt: now}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var c Cart
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) save(ctx context.Context, deviceID string, c *Cart) error {
	c.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.redisClient.Set(ctx, cartKey(deviceID), data, s.config.Sync.CartTTL).Err()
}
