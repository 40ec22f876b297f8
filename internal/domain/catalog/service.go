// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/pos-backend/internal/config"
	"gorm.io/gorm"
)

const (
	productsCacheKey  = "catalog:products"
	modifiersCacheKey = "catalog:modifiers"
	cacheTTL          = 15 * time.Minute
)

// Service exposes the read-only catalog. The order core never writes these
// tables; admin tooling owns them. Reads go through a Redis cache so the
// register keeps rendering the menu while the database is unreachable.
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// GetProducts returns all active products with variants, cache-first.
func (s *Service) GetProducts(ctx context.Context) ([]Product, error) {
	if cached, err := s.redisClient.Get(ctx, productsCacheKey).Result(); err == nil {
		var products []Product
		if err := json.Unmarshal([]byte(cached), &products); err == nil {
			return products, nil
		}
	}

	var products []Product
	err := s.db.WithContext(ctx).Preload("Variants").Preload("Category").
		Where("is_active = ?", true).
		Order("category_id, name").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	s.cache(ctx, productsCacheKey, products)
	return products, nil
}

// GetProduct returns a single active product with its variants.
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	products, err := s.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, fmt.Errorf("product %d not found or inactive", id)
}

// GetModifiers returns all active modifiers, cache-first.
func (s *Service) GetModifiers(ctx context.Context) ([]Modifier, error) {
	if cached, err := s.redisClient.Get(ctx, modifiersCacheKey).Result(); err == nil {
		var modifiers []Modifier
		if err := json.Unmarshal([]byte(cached), &modifiers); err == nil {
			return modifiers, nil
		}
	}

	var modifiers []Modifier
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&modifiers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load modifiers: %w", err)
	}

	s.cache(ctx, modifiersCacheKey, modifiers)
	return modifiers, nil
}

// Refresh drops the cached catalog so the next read hits the database. Wired
// to the admin-side "catalog changed" notification.
func (s *Service) Refresh(ctx context.Context) error {
	return s.redisClient.Del(ctx, productsCacheKey, modifiersCacheKey).Err()
}

func (s *Service) cache(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	// Best effort; a cold cache only costs a database read
	s.redisClient.Set(ctx, key, data, cacheTTL)
}
