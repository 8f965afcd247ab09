package models

import (
	"time"

	"github.com/google/uuid"
)

// UserAddress is a saved shipping destination. At most one row per user is primary.
type UserAddress struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Label         string    `gorm:"column:label;not null"`
	RecipientName string    `gorm:"column:recipient_name;not null"`
	Phone         string    `gorm:"column:phone;not null"`
	Line1         string    `gorm:"column:line1;not null"`
	Line2         *string   `gorm:"column:line2"`
	City          string    `gorm:"column:city;not null"`
	Province      string    `gorm:"column:province;not null"`
	PostalCode    string    `gorm:"column:postal_code;not null"`
	Country       string    `gorm:"column:country;not null;default:'ID'"`
	Lat           float64   `gorm:"column:lat;not null"`
	Lng           float64   `gorm:"column:lng;not null"`
	IsPrimary     bool      `gorm:"column:is_primary;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
