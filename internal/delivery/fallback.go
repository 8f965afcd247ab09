package delivery

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-checkout/pkg/enums"
)

type fallbackRow struct {
	id       string
	typ      enums.DeliveryType
	service  string
	eta      string
	cod      bool
	byWeight map[enums.WeightCategory]int64
}

// Rough list prices for when no courier API answers. Heavier parcels cost more.
var fallbackTable = []fallbackRow{
	{
		id: "fallback:same_day", typ: enums.DeliveryTypeSameDay, service: "Same Day", eta: "Today, 6-8 hours",
		byWeight: map[enums.WeightCategory]int64{
			enums.WeightCategoryLight:  25_000,
			enums.WeightCategoryMedium: 38_000,
			enums.WeightCategoryHeavy:  60_000,
		},
	},
	{
		id: "fallback:regular", typ: enums.DeliveryTypeRegular, service: "Regular", eta: "2-4 days", cod: true,
		byWeight: map[enums.WeightCategory]int64{
			enums.WeightCategoryLight:  12_000,
			enums.WeightCategoryMedium: 20_000,
			enums.WeightCategoryHeavy:  35_000,
		},
	},
	{
		id: "fallback:economy", typ: enums.DeliveryTypeRegular, service: "Economy", eta: "4-7 days",
		byWeight: map[enums.WeightCategory]int64{
			enums.WeightCategoryLight:  9_000,
			enums.WeightCategoryMedium: 15_000,
			enums.WeightCategoryHeavy:  28_000,
		},
	},
}

// FallbackOptions returns the static options for a weight category, already ordered.
func FallbackOptions(category enums.WeightCategory) []Option {
	out := make([]Option, 0, len(fallbackTable))
	for _, row := range fallbackTable {
		price, ok := row.byWeight[category]
		if !ok {
			price = row.byWeight[enums.WeightCategoryHeavy]
		}
		out = append(out, Option{
			ID:            row.id,
			Type:          row.typ,
			Provider:      "Standard Courier",
			Service:       row.service,
			Price:         decimal.NewFromInt(price),
			EstimatedTime: row.eta,
			IsCOD:         row.cod,
			Source:        enums.DeliverySourceFallback,
		})
	}
	return mergeOptions(out)
}
