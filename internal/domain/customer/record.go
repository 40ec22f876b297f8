// internal/domain/customer/record.go
package customer

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// StoredProfile is the customer row in the remote store. Orders reference it
// by phone; the sync engine creates it on demand when a submission trips the
// foreign key (the remediation path).
type StoredProfile struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:255" json:"name"`
	Phone     string         `gorm:"uniqueIndex;not null;size:20" json:"phone"`
	Address   string         `gorm:"size:500" json:"address"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (StoredProfile) TableName() string { return "customers" }

// Record is the canonical customer view assembled from the legacy shapes.
type Record struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Contact is the delivery block captured at checkout.
type Contact struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// WalkIn is the minimal shape embedded on dine-in and takeout orders.
type WalkIn struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Canonical folds the known record shapes into one view. Precedence is fixed,
// most authoritative source first: the stored profile, then the checkout
// delivery contact, then the walk-in fields embedded on the order. Each field
// falls back independently so a profile missing an address still borrows the
// delivery block's.
func Canonical(profile *StoredProfile, contact *Contact, walkIn *WalkIn) Record {
	var r Record
	if profile != nil {
		r.Name = profile.Name
		r.Phone = profile.Phone
		r.Address = profile.Address
	}
	if contact != nil {
		r.Name = firstNonEmpty(r.Name, contact.Name)
		r.Phone = firstNonEmpty(r.Phone, contact.Phone)
		r.Address = firstNonEmpty(r.Address, contact.Address)
	}
	if walkIn != nil {
		r.Name = firstNonEmpty(r.Name, walkIn.Name)
		r.Phone = firstNonEmpty(r.Phone, walkIn.Phone)
	}
	return r
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
