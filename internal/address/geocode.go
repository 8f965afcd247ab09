package address

import (
	"context"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
	"github.com/angelmondragon/storefront-checkout/pkg/maps"
)

type placesClient interface {
	Autocomplete(ctx context.Context, req maps.AutocompleteRequest) ([]maps.AutocompleteSuggestion, error)
	ResolvePlace(ctx context.Context, placeID string) (*maps.PlaceDetails, error)
}

// Suggestion is one autocomplete hit.
type Suggestion struct {
	PlaceID     string `json:"place_id"`
	Description string `json:"description"`
}

// Resolved is a geocoded address ready to prefill the create form.
type Resolved struct {
	PlaceID          string  `json:"place_id"`
	FormattedAddress string  `json:"formatted_address"`
	Line1            string  `json:"line1"`
	Line2            *string `json:"line2,omitempty"`
	City             string  `json:"city"`
	Province         string  `json:"province"`
	PostalCode       string  `json:"postal_code"`
	Country          string  `json:"country"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
}

// Geocoder looks up addresses through Google Places.
type Geocoder struct {
	places   placesClient
	region   string
	language string
}

// NewGeocoder binds the places client to a region and language.
func NewGeocoder(places placesClient, region, language string) *Geocoder {
	return &Geocoder{
		places:   places,
		region:   strings.ToUpper(strings.TrimSpace(region)),
		language: strings.TrimSpace(language),
	}
}

func (g *Geocoder) Suggest(ctx context.Context, query string) ([]Suggestion, error) {
	if g == nil || g.places == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "maps client unavailable")
	}
	if strings.TrimSpace(query) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query is required")
	}

	payload := maps.AutocompleteRequest{Input: query, LanguageCode: g.language}
	if g.region != "" {
		payload.IncludedRegionCodes = []string{g.region}
	}

	resp, err := g.places.Autocomplete(ctx, payload)
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(resp))
	for _, item := range resp {
		suggestions = append(suggestions, Suggestion{PlaceID: item.PlaceID, Description: item.Description})
	}
	return suggestions, nil
}

func (g *Geocoder) Resolve(ctx context.Context, placeID string) (*Resolved, error) {
	if g == nil || g.places == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "maps client unavailable")
	}
	if strings.TrimSpace(placeID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "place_id is required")
	}

	details, err := g.places.ResolvePlace(ctx, placeID)
	if err != nil {
		return nil, err
	}
	return mapPlaceDetails(details)
}

func mapPlaceDetails(details *maps.PlaceDetails) (*Resolved, error) {
	if details == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "place details missing")
	}
	if details.Location.Latitude == 0 && details.Location.Longitude == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "place location missing")
	}

	line1 := strings.TrimSpace(strings.Join(nonEmpty(details.Component("route"), details.Component("street_number")), " "))
	if line1 == "" && strings.TrimSpace(details.FormattedAddress) != "" {
		parts := strings.Split(details.FormattedAddress, ",")
		line1 = strings.TrimSpace(parts[0])
	}
	if line1 == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "address line1 missing")
	}

	// Kelurahan and kecamatan land in line2 when Places returns them.
	var line2 *string
	if district := strings.Join(nonEmpty(details.Component("administrative_area_level_4"), details.Component("administrative_area_level_3")), ", "); district != "" {
		line2 = &district
	}

	city := details.Component("administrative_area_level_2")
	if city == "" {
		city = details.Component("locality")
	}
	if city == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "city missing")
	}

	province := details.Component("administrative_area_level_1")
	if province == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "province missing")
	}

	postalCode := details.Component("postal_code")
	if postalCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "postal code missing")
	}

	country := "ID"
	for _, comp := range details.AddressComponents {
		for _, t := range comp.Types {
			if t == "country" && comp.ShortName != "" {
				country = comp.ShortName
			}
		}
	}

	return &Resolved{
		PlaceID:          details.PlaceID,
		FormattedAddress: details.FormattedAddress,
		Line1:            line1,
		Line2:            line2,
		City:             city,
		Province:         province,
		PostalCode:       postalCode,
		Country:          country,
		Lat:              details.Location.Latitude,
		Lng:              details.Location.Longitude,
	}, nil
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
