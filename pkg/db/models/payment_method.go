package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-checkout/pkg/enums"
)

// PaymentMethod is a selectable payment channel offered through the gateway.
type PaymentMethod struct {
	Code            string                `gorm:"column:code;primaryKey"`
	Name            string                `gorm:"column:name;not null"`
	Category        enums.PaymentCategory `gorm:"column:category;not null"`
	CashbackPercent decimal.NullDecimal   `gorm:"column:cashback_percent;type:numeric(5,2)"`
	Enabled         bool                  `gorm:"column:enabled;not null;default:true"`
	SortOrder       int                   `gorm:"column:sort_order;not null;default:0"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
