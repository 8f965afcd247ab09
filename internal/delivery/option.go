// Package delivery merges courier quotes from several sources into one ranked list.
package delivery

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-checkout/pkg/enums"
	"github.com/angelmondragon/storefront-checkout/pkg/types"
)

// Option is one fulfillment choice shown at checkout. Options are never persisted.
type Option struct {
	ID            string               `json:"id"`
	Type          enums.DeliveryType   `json:"type"`
	Provider      string               `json:"provider"`
	Service       string               `json:"service"`
	Price         decimal.Decimal      `json:"price"`
	EstimatedTime string               `json:"estimated_time"`
	IsCOD         bool                 `json:"is_cod"`
	DistanceKm    *float64             `json:"distance_km,omitempty"`
	Source        enums.DeliverySource `json:"source"`
}

// Request is the shipment being quoted.
type Request struct {
	Origin                types.GeoPoint
	OriginPostalCode      string
	Destination           types.GeoPoint
	DestinationPostalCode string
	WeightKg              float64
	ItemValue             decimal.Decimal
}

// Result is the merged list. Approximate is set when every option came from the fallback table.
type Result struct {
	Options        []Option             `json:"options"`
	Approximate    bool                 `json:"approximate"`
	WeightKg       float64              `json:"weight_kg"`
	WeightCategory enums.WeightCategory `json:"weight_category"`
	WeightLabel    string               `json:"weight_label"`
}

// Find returns the option with the given id.
func (r Result) Find(id string) (Option, bool) {
	for _, opt := range r.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// HasCOD reports whether any option accepts cash on delivery.
func (r Result) HasCOD() bool {
	for _, opt := range r.Options {
		if opt.IsCOD {
			return true
		}
	}
	return false
}

// mergeOptions keeps the first option per id in priority order, then sorts by speed and price.
func mergeOptions(groups ...[]Option) []Option {
	seen := make(map[string]struct{})
	merged := make([]Option, 0)
	for _, group := range groups {
		for _, opt := range group {
			if opt.ID == "" {
				continue
			}
			if _, dup := seen[opt.ID]; dup {
				continue
			}
			seen[opt.ID] = struct{}{}
			merged = append(merged, opt)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		ri, rj := merged[i].Type.Rank(), merged[j].Type.Rank()
		if ri != rj {
			return ri < rj
		}
		return merged[i].Price.LessThan(merged[j].Price)
	})
	return merged
}
