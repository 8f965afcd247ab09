package delivery

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-checkout/pkg/biteship"
	"github.com/angelmondragon/storefront-checkout/pkg/enums"
)

type ratesClient interface {
	Rates(ctx context.Context, req biteship.RatesRequest) ([]biteship.Rate, error)
}

// RateAPIProvider quotes regular and same-day couriers through the rate comparison API.
type RateAPIProvider struct {
	client   ratesClient
	couriers []string
}

// NewRateAPIProvider builds the rate comparison source for the given courier codes.
func NewRateAPIProvider(client ratesClient, couriers []string) (*RateAPIProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("rates client required")
	}
	if len(couriers) == 0 {
		return nil, fmt.Errorf("at least one courier code required")
	}
	return &RateAPIProvider{client: client, couriers: couriers}, nil
}

func (p *RateAPIProvider) Name() string { return "rate_api" }

func (p *RateAPIProvider) Source() enums.DeliverySource { return enums.DeliverySourceRateAPI }

func (p *RateAPIProvider) Quote(ctx context.Context, req Request) ([]Option, error) {
	grams := int64(math.Ceil(req.WeightKg * 1000))
	if grams <= 0 {
		return nil, fmt.Errorf("shipment weight must be positive")
	}

	payload := biteship.RatesRequest{
		OriginPostalCode:      req.OriginPostalCode,
		DestinationPostalCode: req.DestinationPostalCode,
		OriginLatitude:        req.Origin.Lat,
		OriginLongitude:       req.Origin.Lng,
		DestinationLatitude:   req.Destination.Lat,
		DestinationLongitude:  req.Destination.Lng,
		Couriers:              strings.Join(p.couriers, ","),
		Items: []biteship.Item{{
			Name:     "checkout parcel",
			Value:    req.ItemValue.Round(0).IntPart(),
			Weight:   grams,
			Quantity: 1,
		}},
	}

	rates, err := p.client.Rates(ctx, payload)
	if err != nil {
		return nil, err
	}

	out := make([]Option, 0, len(rates))
	for _, r := range rates {
		if r.Price < 0 {
			continue
		}
		out = append(out, Option{
			ID:            "rate:" + strings.ToLower(r.CourierCode) + ":" + strings.ToLower(r.CourierServiceCode),
			Type:          deliveryTypeFromService(r.ServiceType),
			Provider:      r.CourierName,
			Service:       r.CourierServiceName,
			Price:         decimal.NewFromFloat(r.Price),
			EstimatedTime: r.Duration,
			IsCOD:         r.AvailableForCOD,
			Source:        enums.DeliverySourceRateAPI,
		})
	}
	return out, nil
}

func deliveryTypeFromService(serviceType string) enums.DeliveryType {
	switch strings.ToLower(strings.TrimSpace(serviceType)) {
	case "instant":
		return enums.DeliveryTypeInstant
	case "same_day", "sameday":
		return enums.DeliveryTypeSameDay
	default:
		return enums.DeliveryTypeRegular
	}
}
