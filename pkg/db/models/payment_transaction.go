package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-checkout/pkg/enums"
)

// PaymentTransaction is the local record of a gateway transaction created at checkout.
type PaymentTransaction struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         string                  `gorm:"column:order_id;not null;uniqueIndex"`
	UserID          uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	SessionID       *string                 `gorm:"column:session_id"`
	GrossAmount     int64                   `gorm:"column:gross_amount;not null"`
	Status          enums.TransactionStatus `gorm:"column:status;not null;default:'pending'"`
	SnapToken       string                  `gorm:"column:snap_token;not null"`
	RedirectURL     string                  `gorm:"column:redirect_url;not null"`
	PaymentType     *string                 `gorm:"column:payment_type"`
	RawNotification json.RawMessage         `gorm:"column:raw_notification;type:jsonb"`
	PaidAt          *time.Time              `gorm:"column:paid_at"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
