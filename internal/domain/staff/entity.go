// internal/domain/staff/entity.go
package staff

import (
	"time"

	"gorm.io/gorm"
)

// Role gates the operations a staff member can perform at the register
type Role string

const (
	RoleCashier Role = "cashier"
	RoleKitchen Role = "kitchen"
	RoleManager Role = "manager"
)

// Staff is a register operator. Sign-in is by numeric PIN, which suits a
// shared terminal better than typed passwords.
type Staff struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	PINHash   string         `gorm:"not null;size:255;column:pin_hash" json:"-"`
	Role      Role           `gorm:"not null;size:20;default:'cashier'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Staff) TableName() string {
	return "staff"
}

// CanManage reports whether the role may cancel orders and clear the backlog.
func (s *Staff) CanManage() bool {
	return s.Role == RoleManager
}
