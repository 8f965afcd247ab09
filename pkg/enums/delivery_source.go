package enums

// DeliverySource records where a delivery option came from.
type DeliverySource string

const (
	DeliverySourceInstantCourier DeliverySource = "instant_courier"
	DeliverySourceRateAPI        DeliverySource = "rate_api"
	DeliverySourceFallback       DeliverySource = "fallback"
)

// String implements fmt.Stringer.
func (d DeliverySource) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliverySource.
func (d DeliverySource) IsValid() bool {
	switch d {
	case DeliverySourceInstantCourier, DeliverySourceRateAPI, DeliverySourceFallback:
		return true
	default:
		return false
	}
}
