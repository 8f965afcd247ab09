// Package weight estimates shipping weight for cart items that carry no measured weight.
package weight

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-checkout/pkg/enums"
)

const (
	lightMaxKg  = 1.5
	mediumMaxKg = 4.0
)

// price ceilings (inclusive, rupiah) mapped to the placeholder weight for that tier.
var priceTiers = []struct {
	ceiling decimal.Decimal
	kg      float64
}{
	{decimal.NewFromInt(100_000), 0.8},
	{decimal.NewFromInt(300_000), 1.6},
	{decimal.NewFromInt(600_000), 2.8},
}

const topTierKg = 4.5

// Item is the slice of a cart line the estimator needs.
type Item struct {
	UnitPrice decimal.Decimal
	Quantity  int
	WeightKg  *float64
}

// EstimateWeightKg returns the explicit weight when positive, otherwise a price-tier guess.
func EstimateWeightKg(item Item) float64 {
	if item.WeightKg != nil && *item.WeightKg > 0 {
		return *item.WeightKg
	}
	for _, tier := range priceTiers {
		if item.UnitPrice.LessThanOrEqual(tier.ceiling) {
			return tier.kg
		}
	}
	return topTierKg
}

// GetWeightCategory buckets kilograms into light (<=1.5), medium (<=4) or heavy.
func GetWeightCategory(kg float64) enums.WeightCategory {
	switch {
	case kg <= lightMaxKg:
		return enums.WeightCategoryLight
	case kg <= mediumMaxKg:
		return enums.WeightCategoryMedium
	default:
		return enums.WeightCategoryHeavy
	}
}

// FormatWeightLabel renders "1.6 kg • Medium", or just "1.6 kg" when omitCategory is set.
func FormatWeightLabel(kg float64, omitCategory bool) string {
	base := fmt.Sprintf("%.1f kg", kg)
	if omitCategory {
		return base
	}
	return base + " • " + GetWeightCategory(kg).Label()
}

// TotalWeightKg sums the per-unit estimate times quantity over every line.
func TotalWeightKg(items []Item) float64 {
	var total float64
	for _, item := range items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		total += EstimateWeightKg(item) * float64(qty)
	}
	return total
}
