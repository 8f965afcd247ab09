package delivery

import (
	"context"

	"github.com/angelmondragon/storefront-checkout/pkg/enums"
)

// RateProvider is a live source of delivery quotes. Implementations pass provider prices
// through unchanged and tag every option with their Source.
type RateProvider interface {
	Name() string
	Source() enums.DeliverySource
	Quote(ctx context.Context, req Request) ([]Option, error)
}
