// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ServiceType determines which context fields an order requires
type ServiceType string

const (
	ServiceDineIn   ServiceType = "dine_in"
	ServiceTakeout  ServiceType = "takeout"
	ServiceDelivery ServiceType = "delivery"
)

// PaymentMethod is recorded only; charging is handled at the register
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// DeliveryContact is the customer block required for delivery orders
type DeliveryContact struct {
	Name    string `gorm:"size:255" json:"name"`
	Phone   string `gorm:"size:20" json:"phone"`
	Address string `gorm:"size:500" json:"address"`
}

// DraftModifier is a modifier captured on a draft item
type DraftModifier struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// DraftItem is one line of an order submission payload
type DraftItem struct {
	ProductID         uint            `json:"product_id"`
	ProductName       string          `json:"product_name"`
	SecondProductID   *uint           `json:"second_product_id,omitempty"`
	SecondProductName string          `json:"second_product_name,omitempty"`
	Size              string          `json:"size"`
	Quantity          int             `json:"quantity"`
	UnitPrice         int64           `json:"unit_price"`
	TotalPrice        int64           `json:"total_price"`
	Modifiers         []DraftModifier `json:"modifiers,omitempty"`
}

// OrderDraft is the immutable submission payload built by the assembler. It
// is what the pending queue persists and the sync engine submits.
type OrderDraft struct {
	ServiceType   ServiceType      `json:"service_type"`
	TableNumber   string           `json:"table_number,omitempty"`
	Contact       *DeliveryContact `json:"contact,omitempty"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	Items         []DraftItem      `json:"items"`
	Subtotal      int64            `json:"subtotal"`
	Total         int64            `json:"total"`
	StaffID       *uint            `json:"staff_id,omitempty"`
	PlacedAt      time.Time        `json:"placed_at"`
}

// Order is the server-side order row, owned by the remote store once created.
// ClientRef holds the local id the register generated, and is the duplicate
// guard: one local id maps to at most one server order.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	ClientRef   string      `gorm:"uniqueIndex;not null;size:64" json:"client_ref"`
	Status      Status      `gorm:"not null;default:'pending'" json:"status"`
	ServiceType ServiceType `gorm:"not null;size:20" json:"service_type"`

	TableNumber     string          `gorm:"size:20" json:"table_number"`
	CustomerName    string          `gorm:"size:255" json:"customer_name"`
	CustomerPhone   string          `gorm:"size:20;index" json:"customer_phone"`
	DeliveryAddress string          `gorm:"size:500" json:"delivery_address"`
	PaymentMethod   PaymentMethod   `gorm:"not null;size:20" json:"payment_method"`

	SubtotalAmount int64 `gorm:"not null" json:"subtotal_amount"` // In cents
	TotalAmount    int64 `gorm:"not null" json:"total_amount"`

	StaffID *uint `gorm:"index" json:"staff_id"`

	PlacedAt    time.Time      `json:"placed_at"`
	ConfirmedAt *time.Time     `json:"confirmed_at"`
	ReadyAt     *time.Time     `json:"ready_at"`
	DeliveredAt *time.Time     `json:"delivered_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem represents items in an order
type OrderItem struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	OrderID           uint      `gorm:"not null;index" json:"order_id"`
	ProductID         uint      `gorm:"not null;index" json:"product_id"`
	ProductName       string    `gorm:"not null;size:255" json:"product_name"`
	SecondProductID   *uint     `gorm:"index" json:"second_product_id"`
	SecondProductName string    `gorm:"size:255" json:"second_product_name"`
	Size              string    `gorm:"not null;size:50" json:"size"`
	Modifiers         string    `gorm:"type:text" json:"modifiers"` // JSON-encoded DraftModifier list
	Quantity          int       `gorm:"not null" json:"quantity"`
	Price             int64     `gorm:"not null" json:"price"`       // Price per unit in cents
	TotalPrice        int64     `gorm:"not null" json:"total_price"` // Quantity * Price
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Status    Status    `gorm:"not null" json:"status"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedBy uint      `gorm:"index" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// GenerateOrderNumber derives the human-facing number from the server id.
func (o *Order) GenerateOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%05d", o.CreatedAt.Format("20060102"), o.ID)
}
