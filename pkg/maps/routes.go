package maps

import (
	"context"
	"math"
	"net/http"

	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
)

const (
	routesFieldMask   = "routes.distanceMeters,routes.duration"
	earthRadiusKm     = 6371.0
	computeRoutesPath = "directions/v2:computeRoutes"
)

// RouteDistanceKm asks the Routes API for the driving distance between two points.
func (c *Client) RouteDistanceKm(ctx context.Context, origin, destination LatLng) (float64, error) {
	if c == nil {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
	}

	type waypoint struct {
		Location struct {
			LatLng struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"latLng"`
		} `json:"location"`
	}
	toWaypoint := func(p LatLng) waypoint {
		var w waypoint
		w.Location.LatLng.Latitude = p.Latitude
		w.Location.LatLng.Longitude = p.Longitude
		return w
	}

	body := struct {
		Origin      waypoint `json:"origin"`
		Destination waypoint `json:"destination"`
		TravelMode  string   `json:"travelMode"`
	}{
		Origin:      toWaypoint(origin),
		Destination: toWaypoint(destination),
		TravelMode:  "TWO_WHEELER",
	}

	var apiResp struct {
		Routes []struct {
			DistanceMeters int64 `json:"distanceMeters"`
		} `json:"routes"`
	}
	if err := c.do(ctx, http.MethodPost, joinURL(c.routesBaseURL, computeRoutesPath), routesFieldMask, body, &apiResp, "compute routes"); err != nil {
		return 0, err
	}
	if len(apiResp.Routes) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "compute routes returned no route")
	}
	return float64(apiResp.Routes[0].DistanceMeters) / 1000, nil
}

// HaversineKm is the great-circle distance between two points.
func HaversineKm(a, b LatLng) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
