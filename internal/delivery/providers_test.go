package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-checkout/pkg/biteship"
	"github.com/angelmondragon/storefront-checkout/pkg/courier"
	"github.com/angelmondragon/storefront-checkout/pkg/enums"
	"github.com/angelmondragon/storefront-checkout/pkg/maps"
	"github.com/angelmondragon/storefront-checkout/pkg/types"
)

type stubCourier struct {
	quotes []courier.Quote
	calls  int
	last   courier.QuoteRequest
}

func (s *stubCourier) Quote(_ context.Context, req courier.QuoteRequest) ([]courier.Quote, error) {
	s.calls++
	s.last = req
	return s.quotes, nil
}

type stubRoutes struct {
	km  float64
	err error
}

func (s stubRoutes) RouteDistanceKm(context.Context, maps.LatLng, maps.LatLng) (float64, error) {
	return s.km, s.err
}

type stubRates struct {
	rates []biteship.Rate
	last  biteship.RatesRequest
}

func (s *stubRates) Rates(_ context.Context, req biteship.RatesRequest) ([]biteship.Rate, error) {
	s.last = req
	return s.rates, nil
}

var (
	jakarta = types.GeoPoint{Lat: -6.2088, Lng: 106.8456}
	depok   = types.GeoPoint{Lat: -6.4025, Lng: 106.7942}
	bandung = types.GeoPoint{Lat: -6.9175, Lng: 107.6191}
)

func TestInstantProviderWithinRadius(t *testing.T) {
	client := &stubCourier{quotes: []courier.Quote{{Provider: "GoSend", ServiceCode: "Instant", ServiceName: "Instant", Price: 32000, ETAMinutes: 45, CODAvailable: true}}}
	p, err := NewInstantProvider(client, stubRoutes{km: 24.3}, 40, testLogger())
	require.NoError(t, err)

	opts, err := p.Quote(context.Background(), Request{Origin: jakarta, Destination: depok, WeightKg: 1.6, ItemValue: decimal.NewFromInt(250_000)})
	require.NoError(t, err)
	require.Len(t, opts, 1)

	o := opts[0]
	assert.Equal(t, "instant:gosend:instant", o.ID)
	assert.Equal(t, enums.DeliveryTypeInstant, o.Type)
	assert.Equal(t, "45 min", o.EstimatedTime)
	assert.True(t, o.IsCOD)
	require.NotNil(t, o.DistanceKm)
	assert.Equal(t, 24.3, *o.DistanceKm)
	assert.Equal(t, int64(250_000), client.last.ItemValue)
}

func TestInstantProviderOutsideRadiusSkipsCall(t *testing.T) {
	client := &stubCourier{}
	p, err := NewInstantProvider(client, stubRoutes{err: errors.New("quota")}, 40, testLogger())
	require.NoError(t, err)

	opts, err := p.Quote(context.Background(), Request{Origin: jakarta, Destination: bandung, WeightKg: 1})
	require.NoError(t, err)
	assert.Empty(t, opts)
	assert.Zero(t, client.calls, "haversine fallback should put Bandung outside 40km")
}

func TestRateAPIProviderMapsRates(t *testing.T) {
	client := &stubRates{rates: []biteship.Rate{
		{CourierName: "JNE", CourierCode: "jne", CourierServiceName: "Reguler", CourierServiceCode: "REG", Duration: "2 - 3 days", ServiceType: "standard", Price: 18000, AvailableForCOD: true},
		{CourierName: "Grab", CourierCode: "grab", CourierServiceName: "Same Day", CourierServiceCode: "same_day", Duration: "6 - 8 hours", ServiceType: "same_day", Price: 29000},
	}}
	p, err := NewRateAPIProvider(client, []string{"jne", "grab"})
	require.NoError(t, err)

	opts, err := p.Quote(context.Background(), Request{OriginPostalCode: "10110", DestinationPostalCode: "16411", WeightKg: 1.25, ItemValue: decimal.NewFromInt(99_999)})
	require.NoError(t, err)
	require.Len(t, opts, 2)

	assert.Equal(t, "jne,grab", client.last.Couriers)
	assert.Equal(t, int64(1250), client.last.Items[0].Weight)
	assert.Equal(t, "rate:jne:reg", opts[0].ID)
	assert.Equal(t, enums.DeliveryTypeRegular, opts[0].Type)
	assert.True(t, opts[0].IsCOD)
	assert.Equal(t, enums.DeliveryTypeSameDay, opts[1].Type)
	assert.Equal(t, enums.DeliverySourceRateAPI, opts[1].Source)

	_, err = p.Quote(context.Background(), Request{WeightKg: 0})
	assert.Error(t, err)
}

func TestFormatETAMinutes(t *testing.T) {
	assert.Equal(t, "1-3 hours", formatETAMinutes(0))
	assert.Equal(t, "30 min", formatETAMinutes(30))
	assert.Equal(t, "within 1 hour", formatETAMinutes(60))
	assert.Equal(t, "within 2 hours", formatETAMinutes(61))
}
