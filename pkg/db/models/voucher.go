package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-checkout/pkg/enums"
)

// Voucher is a discount rule redeemable by code at checkout.
type Voucher struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Code         string              `gorm:"column:code;not null;uniqueIndex"`
	Title        string              `gorm:"column:title;not null"`
	DiscountType enums.DiscountType  `gorm:"column:discount_type;not null"`
	Discount     decimal.Decimal     `gorm:"column:discount;type:numeric(14,2);not null"`
	MinPurchase  decimal.Decimal     `gorm:"column:min_purchase;type:numeric(14,2);not null;default:0"`
	MaxDiscount  decimal.NullDecimal `gorm:"column:max_discount;type:numeric(14,2)"`
	ValidUntil   time.Time           `gorm:"column:valid_until;not null"`
	Active       bool                `gorm:"column:active;not null;default:true"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
