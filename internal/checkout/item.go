package checkout

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-checkout/internal/weight"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
	"github.com/angelmondragon/storefront-checkout/pkg/types"
)

// Item is one cart line carried into checkout.
type Item struct {
	ProductID      string          `json:"product_id"`
	StoreID        string          `json:"store_id"`
	Name           string          `json:"name"`
	ImageURL       string          `json:"image_url,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	SellerLocation *types.GeoPoint `json:"seller_location,omitempty"`
	SellerPostal   string          `json:"seller_postal_code,omitempty"`
	WeightKg       *float64        `json:"weight_kg,omitempty"`
}

// LineTotal is price × quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Subtotal sums every line before discount and delivery.
func Subtotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func weightItems(items []Item) []weight.Item {
	out := make([]weight.Item, 0, len(items))
	for _, item := range items {
		out = append(out, weight.Item{UnitPrice: item.Price, Quantity: item.Quantity, WeightKg: item.WeightKg})
	}
	return out
}

func validateItems(items []Item) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{
			"items": "at least one item is required",
		})
	}
	details := map[string]string{}
	for idx, item := range items {
		prefix := fmt.Sprintf("items[%d]", idx)
		if strings.TrimSpace(item.ProductID) == "" {
			details[prefix+".product_id"] = "is required"
		}
		if strings.TrimSpace(item.Name) == "" {
			details[prefix+".name"] = "is required"
		}
		if item.Quantity < 1 {
			details[prefix+".quantity"] = "must be at least 1"
		}
		if item.Price.IsNegative() {
			details[prefix+".price"] = "must not be negative"
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

// origin picks the first seller location in the cart, falling back to the default warehouse.
func origin(items []Item, fallback types.GeoPoint, fallbackPostal string) (types.GeoPoint, string) {
	for _, item := range items {
		if item.SellerLocation != nil && !item.SellerLocation.IsZero() {
			return *item.SellerLocation, item.SellerPostal
		}
	}
	return fallback, fallbackPostal
}
