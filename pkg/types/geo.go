package types

// GeoPoint is a WGS84 coordinate as sent by storefront clients.
type GeoPoint struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// IsZero reports whether the point was left unset.
func (g GeoPoint) IsZero() bool {
	return g.Lat == 0 && g.Lng == 0
}
