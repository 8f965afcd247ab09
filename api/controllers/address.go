package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-checkout/api/responses"
	"github.com/angelmondragon/storefront-checkout/api/validators"
	"github.com/angelmondragon/storefront-checkout/internal/address"
	"github.com/angelmondragon/storefront-checkout/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
)

// AddressGeocoder backs the suggest and resolve endpoints.
type AddressGeocoder interface {
	Suggest(ctx context.Context, query string) ([]address.Suggestion, error)
	Resolve(ctx context.Context, placeID string) (*address.Resolved, error)
}

type createAddressRequest struct {
	Label         string  `json:"label" validate:"required,max=40"`
	RecipientName string  `json:"recipient_name" validate:"required,max=100"`
	Phone         string  `json:"phone" validate:"required,min=8,max=20"`
	Line1         string  `json:"line1" validate:"required,max=200"`
	Line2         *string `json:"line2" validate:"omitempty,max=200"`
	City          string  `json:"city" validate:"required"`
	Province      string  `json:"province" validate:"required"`
	PostalCode    string  `json:"postal_code" validate:"required,min=5,max=10"`
	Country       string  `json:"country" validate:"omitempty,len=2"`
	Lat           float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng           float64 `json:"lng" validate:"gte=-180,lte=180"`
	MakePrimary   bool    `json:"make_primary"`
}

type resolveAddressRequest struct {
	PlaceID string `json:"place_id" validate:"required"`
}

type addressResponse struct {
	ID            uuid.UUID `json:"id"`
	Label         string    `json:"label"`
	RecipientName string    `json:"recipient_name"`
	Phone         string    `json:"phone"`
	Line1         string    `json:"line1"`
	Line2         *string   `json:"line2,omitempty"`
	City          string    `json:"city"`
	Province      string    `json:"province"`
	PostalCode    string    `json:"postal_code"`
	Country       string    `json:"country"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
	IsPrimary     bool      `json:"is_primary"`
}

func toAddressResponse(m models.UserAddress) addressResponse {
	return addressResponse{
		ID:            m.ID,
		Label:         m.Label,
		RecipientName: m.RecipientName,
		Phone:         m.Phone,
		Line1:         m.Line1,
		Line2:         m.Line2,
		City:          m.City,
		Province:      m.Province,
		PostalCode:    m.PostalCode,
		Country:       m.Country,
		Lat:           m.Lat,
		Lng:           m.Lng,
		IsPrimary:     m.IsPrimary,
	}
}

// AddressList returns the caller's saved addresses, primary first.
func AddressList(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.List(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		out := make([]addressResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, toAddressResponse(row))
		}
		responses.WriteSuccess(w, map[string]any{"addresses": out})
	}
}

// AddressCreate saves a new address for the caller.
func AddressCreate(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body createAddressRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		created, err := svc.Create(ctx, userID, address.CreateInput{
			Label:         validators.SanitizeString(body.Label, 40),
			RecipientName: validators.SanitizeString(body.RecipientName, 100),
			Phone:         body.Phone,
			Line1:         body.Line1,
			Line2:         body.Line2,
			City:          body.City,
			Province:      body.Province,
			PostalCode:    body.PostalCode,
			Country:       body.Country,
			Lat:           body.Lat,
			Lng:           body.Lng,
			MakePrimary:   body.MakePrimary,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toAddressResponse(*created))
	}
}

// AddressSetPrimary moves the primary flag to the addressed row.
func AddressSetPrimary(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		addressID, err := pathUUID(r, "addressID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		updated, err := svc.SetPrimary(ctx, userID, addressID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toAddressResponse(*updated))
	}
}

func AddressDelete(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		addressID, err := pathUUID(r, "addressID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, userID, addressID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AddressSuggest returns autocomplete suggestions for the frontend.
func AddressSuggest(geo AddressGeocoder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if geo == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "geocoder unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 5, 1, 10)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		query := validators.SanitizeString(r.URL.Query().Get("query"), 200)

		suggestions, err := geo.Suggest(ctx, query)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if len(suggestions) > limit {
			suggestions = suggestions[:limit]
		}
		responses.WriteSuccess(w, map[string]any{"suggestions": suggestions})
	}
}

// AddressResolve resolves a place ID into a canonical address.
func AddressResolve(geo AddressGeocoder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if geo == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "geocoder unavailable"))
			return
		}

		var body resolveAddressRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resolved, err := geo.Resolve(ctx, body.PlaceID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resolved)
	}
}
