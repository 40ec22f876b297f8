// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"gorm.io/gorm"
)

// Category represents a menu category (pizzas, drinks, sides)
type Category struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	SortOrder int            `gorm:"default:0" json:"sort_order"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// Product represents a base menu product. Prices live on variants; a product
// without variants is not orderable.
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	CategoryID  uint           `gorm:"not null;index" json:"category_id"`
	Combinable  bool           `gorm:"default:false" json:"combinable"` // eligible for half-and-half
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Category Category  `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Variants []Variant `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants,omitempty"`
}

// Variant is a priced size of a product
type Variant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	Size      string         `gorm:"not null;size:50" json:"size"` // chica, mediana, grande
	Price     int64          `gorm:"not null" json:"price"`        // Price in cents
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Modifier is an optional priced add-on applied to a cart line
type Modifier struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Price     int64          `gorm:"not null" json:"price"` // Price in cents
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Category) TableName() string { return "categories" }
func (Product) TableName() string  { return "products" }
func (Variant) TableName() string  { return "product_variants" }
func (Modifier) TableName() string { return "modifiers" }

// VariantAtSize returns the product's variant carrying the given size label.
func (p *Product) VariantAtSize(size string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].Size == size && p.Variants[i].IsActive {
			return &p.Variants[i], true
		}
	}
	return nil, false
}
