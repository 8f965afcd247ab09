package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-checkout/api/middleware"
	"github.com/angelmondragon/storefront-checkout/api/responses"
	"github.com/angelmondragon/storefront-checkout/api/validators"
	"github.com/angelmondragon/storefront-checkout/internal/checkout"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
	"github.com/angelmondragon/storefront-checkout/pkg/types"
)

type checkoutItemRequest struct {
	ProductID        string          `json:"product_id" validate:"required"`
	StoreID          string          `json:"store_id"`
	Name             string          `json:"name" validate:"required,max=200"`
	ImageURL         string          `json:"image_url" validate:"omitempty,url"`
	Price            decimal.Decimal `json:"price"`
	Quantity         int             `json:"quantity" validate:"min=1,max=999"`
	SellerLocation   *types.GeoPoint `json:"seller_location"`
	SellerPostalCode string          `json:"seller_postal_code"`
	WeightKg         *float64        `json:"weight_kg" validate:"omitempty,gt=0"`
}

type startSessionRequest struct {
	Items []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
}

type selectAddressRequest struct {
	AddressID string `json:"address_id" validate:"required,uuid"`
}

type applyVoucherRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

type selectDeliveryRequest struct {
	OptionID string `json:"option_id" validate:"required"`
}

type selectPaymentMethodRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

func (i checkoutItemRequest) toItem() checkout.Item {
	return checkout.Item{
		ProductID:      strings.TrimSpace(i.ProductID),
		StoreID:        strings.TrimSpace(i.StoreID),
		Name:           validators.SanitizeString(i.Name, 200),
		ImageURL:       i.ImageURL,
		Price:          i.Price,
		Quantity:       i.Quantity,
		SellerLocation: i.SellerLocation,
		SellerPostal:   strings.TrimSpace(i.SellerPostalCode),
		WeightKg:       i.WeightKg,
	}
}

func toItems(in []checkoutItemRequest) []checkout.Item {
	out := make([]checkout.Item, 0, len(in))
	for _, item := range in {
		out = append(out, item.toItem())
	}
	return out
}

// sessionAction resolves the caller and the session id, then runs fn.
func sessionAction(svc checkout.Service, logg *logger.Logger, fn func(r *http.Request, userID uuid.UUID, sessionID string) (*checkout.View, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session id required"))
			return
		}
		if logg != nil {
			ctx = logg.WithSessionID(ctx, sessionID)
			r = r.WithContext(ctx)
		}

		view, err := fn(r, userID, sessionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CheckoutStart opens a session for the submitted cart.
func CheckoutStart(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body startSessionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := svc.Start(ctx, userID, checkout.StartInput{Items: toItems(body.Items)})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func CheckoutGet(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionAction(svc, logg, func(r *http.Request, userID uuid.UUID, sessionID string) (*checkout.View, error) {
		return svc.Get(r.Context(), userID, sessionID)
	})
}

// CheckoutSelectAddress stores the address and returns the freshly quoted delivery options.
func CheckoutSelectAddress(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionAction(svc, logg, func(r *http.Request, userID uuid.UUID, sessionID string) (*checkout.View, error) {
		var body selectAddressRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		addressID, err := uuid.Parse(body.AddressID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address id")
		}
		return svc.SelectAddress(r.Context(), userID, sessionID, addressID)
	})
}

func CheckoutApplyVoucher(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionAction(svc, logg, func(r *http.Request, userID uuid.UUID, sessionID string) (*checkout.View, error) {
		var body applyVoucherRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.ApplyVoucher(r.Context(), userID, sessionID, body.Code)
	})
}

func CheckoutRemoveVoucher(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionAction(svc, logg, func(r *http.Request, userID uuid.UUID, sessionID string) (*checkout.View, error) {
		return svc.RemoveVoucher(r.Context(), userID, sessionID)
	})
}

func CheckoutSelectDelivery(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionAction(svc, logg, func(r *http.Request, userID uuid.UUID, sessionID string) (*checkout.View, error) {
		var body selectDeliveryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.SelectDelivery(r.Context(), userID, sessionID, body.OptionID)
	})
}

func CheckoutSelectPaymentMethod(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionAction(svc, logg, func(r *http.Request, userID uuid.UUID, sessionID string) (*checkout.View, error) {
		var body selectPaymentMethodRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.SelectPaymentMethod(r.Context(), userID, sessionID, body.Code)
	})
}

// CheckoutPay opens the gateway transaction. Buyer email and name come from the token.
func CheckoutPay(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionAction(svc, logg, func(r *http.Request, userID uuid.UUID, sessionID string) (*checkout.View, error) {
		return svc.Pay(r.Context(), userID, sessionID, checkout.PayInput{
			Email:    middleware.UserEmailFromContext(r.Context()),
			FullName: middleware.UserNameFromContext(r.Context()),
		})
	})
}

func CheckoutDismissWarning(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionAction(svc, logg, func(r *http.Request, userID uuid.UUID, sessionID string) (*checkout.View, error) {
		return svc.DismissWarning(r.Context(), userID, sessionID)
	})
}
