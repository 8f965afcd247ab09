package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-checkout/api/responses"
	"github.com/angelmondragon/storefront-checkout/api/validators"
	"github.com/angelmondragon/storefront-checkout/internal/checkout"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
	"github.com/angelmondragon/storefront-checkout/pkg/types"
)

type deliveryQuoteRequest struct {
	Items                 []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	Destination           types.GeoPoint        `json:"destination"`
	DestinationPostalCode string                `json:"destination_postal_code" validate:"omitempty,min=5,max=10"`
}

// DeliveryQuote prices delivery for a cart and destination without a session.
func DeliveryQuote(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body deliveryQuoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Quote(ctx, checkout.QuoteInput{
			Items:               toItems(body.Items),
			Destination:         body.Destination,
			DestinationPostCode: body.DestinationPostalCode,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
