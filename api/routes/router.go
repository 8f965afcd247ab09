package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-checkout/api/controllers"
	webhookcontrollers "github.com/angelmondragon/storefront-checkout/api/controllers/webhooks"
	"github.com/angelmondragon/storefront-checkout/api/middleware"
	"github.com/angelmondragon/storefront-checkout/internal/address"
	checkoutsvc "github.com/angelmondragon/storefront-checkout/internal/checkout"
	"github.com/angelmondragon/storefront-checkout/internal/paymentmethods"
	"github.com/angelmondragon/storefront-checkout/pkg/config"
	"github.com/angelmondragon/storefront-checkout/pkg/db"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
	"github.com/angelmondragon/storefront-checkout/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	addressService address.Service,
	geocoder *address.Geocoder,
	paymentMethodService paymentmethods.Service,
	checkoutService checkoutsvc.Service,
	midtransWebhookService webhookcontrollers.MidtransWebhookService,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	quotePolicy := middleware.NewRateLimitPolicy(
		"delivery_quote",
		cfg.RateLimit.Window,
		cfg.RateLimit.IPLimit,
		cfg.RateLimit.UserLimit,
	)
	suggestPolicy := middleware.NewRateLimitPolicy(
		"address_suggest",
		cfg.RateLimit.Window,
		cfg.RateLimit.IPLimit,
		cfg.RateLimit.UserLimit,
	)

	// typed nils must not reach the readiness check
	deps := map[string]controllers.Pinger{}
	if dbP != nil {
		deps["database"] = dbP
	}
	if redisClient != nil {
		deps["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps, logg))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/midtrans", webhookcontrollers.MidtransWebhook(midtransWebhookService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisStore(redisClient), logg))

		r.Get("/addresses", controllers.AddressList(addressService, logg))
		r.Post("/addresses", controllers.AddressCreate(addressService, logg))
		r.With(middleware.RateLimit(suggestPolicy, rateStore(redisClient), logg)).Get("/addresses/suggest", controllers.AddressSuggest(geocoderOrNil(geocoder), logg))
		r.Post("/addresses/resolve", controllers.AddressResolve(geocoderOrNil(geocoder), logg))
		r.Post("/addresses/{addressID}/primary", controllers.AddressSetPrimary(addressService, logg))
		r.Delete("/addresses/{addressID}", controllers.AddressDelete(addressService, logg))

		r.Get("/payment-methods", controllers.PaymentMethodList(paymentMethodService, logg))

		r.With(middleware.RateLimit(quotePolicy, rateStore(redisClient), logg)).Post("/delivery/quote", controllers.DeliveryQuote(checkoutService, logg))

		r.Post("/checkout/sessions", controllers.CheckoutStart(checkoutService, logg))
		r.Route("/checkout/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", controllers.CheckoutGet(checkoutService, logg))
			r.Put("/address", controllers.CheckoutSelectAddress(checkoutService, logg))
			r.Post("/voucher", controllers.CheckoutApplyVoucher(checkoutService, logg))
			r.Delete("/voucher", controllers.CheckoutRemoveVoucher(checkoutService, logg))
			r.Put("/delivery", controllers.CheckoutSelectDelivery(checkoutService, logg))
			r.Put("/payment-method", controllers.CheckoutSelectPaymentMethod(checkoutService, logg))
			r.Post("/pay", controllers.CheckoutPay(checkoutService, logg))
			r.Post("/warning/dismiss", controllers.CheckoutDismissWarning(checkoutService, logg))
		})
	})

	return r
}

// The helpers below keep nil clients from turning into non-nil interfaces.

func redisStore(client *redis.Client) redis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}

func rateStore(client *redis.Client) middleware.RateLimitStore {
	if client == nil {
		return nil
	}
	return client
}

func geocoderOrNil(geo *address.Geocoder) controllers.AddressGeocoder {
	if geo == nil {
		return nil
	}
	return geo
}
