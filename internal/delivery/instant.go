package delivery

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-checkout/pkg/courier"
	"github.com/angelmondragon/storefront-checkout/pkg/enums"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
	"github.com/angelmondragon/storefront-checkout/pkg/maps"
)

type instantQuoter interface {
	Quote(ctx context.Context, req courier.QuoteRequest) ([]courier.Quote, error)
}

type routeDistancer interface {
	RouteDistanceKm(ctx context.Context, origin, destination maps.LatLng) (float64, error)
}

// InstantProvider quotes motorbike couriers, but only inside the service radius.
type InstantProvider struct {
	client   instantQuoter
	routes   routeDistancer
	radiusKm float64
	logg     *logger.Logger
}

// NewInstantProvider builds the instant courier source. routes may be nil, in which case
// straight-line distance decides the radius check.
func NewInstantProvider(client instantQuoter, routes routeDistancer, radiusKm float64, logg *logger.Logger) (*InstantProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("instant courier client required")
	}
	if radiusKm <= 0 {
		return nil, fmt.Errorf("instant radius must be positive")
	}
	return &InstantProvider{client: client, routes: routes, radiusKm: radiusKm, logg: logg}, nil
}

func (p *InstantProvider) Name() string { return "instant_courier" }

func (p *InstantProvider) Source() enums.DeliverySource { return enums.DeliverySourceInstantCourier }

// Quote returns no options, and no error, when the destination is outside the radius.
func (p *InstantProvider) Quote(ctx context.Context, req Request) ([]Option, error) {
	if req.Origin.IsZero() || req.Destination.IsZero() {
		return nil, nil
	}

	distance := p.distanceKm(ctx, req)
	if distance > p.radiusKm {
		return nil, nil
	}

	quotes, err := p.client.Quote(ctx, courier.QuoteRequest{
		Origin:      courier.Point{Lat: req.Origin.Lat, Lng: req.Origin.Lng},
		Destination: courier.Point{Lat: req.Destination.Lat, Lng: req.Destination.Lng},
		WeightKg:    req.WeightKg,
		ItemValue:   req.ItemValue.Round(0).IntPart(),
	})
	if err != nil {
		return nil, err
	}

	out := make([]Option, 0, len(quotes))
	for _, q := range quotes {
		if q.Price < 0 {
			continue
		}
		d := distance
		out = append(out, Option{
			ID:            "instant:" + strings.ToLower(q.Provider) + ":" + strings.ToLower(q.ServiceCode),
			Type:          enums.DeliveryTypeInstant,
			Provider:      q.Provider,
			Service:       q.ServiceName,
			Price:         decimal.NewFromFloat(q.Price),
			EstimatedTime: formatETAMinutes(q.ETAMinutes),
			IsCOD:         q.CODAvailable,
			DistanceKm:    &d,
			Source:        enums.DeliverySourceInstantCourier,
		})
	}
	return out, nil
}

func (p *InstantProvider) distanceKm(ctx context.Context, req Request) float64 {
	origin := maps.LatLng{Latitude: req.Origin.Lat, Longitude: req.Origin.Lng}
	dest := maps.LatLng{Latitude: req.Destination.Lat, Longitude: req.Destination.Lng}
	if p.routes != nil {
		km, err := p.routes.RouteDistanceKm(ctx, origin, dest)
		if err == nil {
			return km
		}
		if p.logg != nil {
			p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "delivery.instant.route_distance_failed")
		}
	}
	return maps.HaversineKm(origin, dest)
}

func formatETAMinutes(minutes int) string {
	switch {
	case minutes <= 0:
		return "1-3 hours"
	case minutes < 60:
		return fmt.Sprintf("%d min", minutes)
	default:
		hours := (minutes + 59) / 60
		if hours == 1 {
			return "within 1 hour"
		}
		return fmt.Sprintf("within %d hours", hours)
	}
}
