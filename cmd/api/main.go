package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/storefront-checkout/api/routes"
	"github.com/angelmondragon/storefront-checkout/internal/address"
	"github.com/angelmondragon/storefront-checkout/internal/checkout"
	"github.com/angelmondragon/storefront-checkout/internal/delivery"
	"github.com/angelmondragon/storefront-checkout/internal/payment"
	"github.com/angelmondragon/storefront-checkout/internal/paymentmethods"
	"github.com/angelmondragon/storefront-checkout/internal/voucher"
	midtranswebhook "github.com/angelmondragon/storefront-checkout/internal/webhooks/midtrans"
	"github.com/angelmondragon/storefront-checkout/pkg/biteship"
	"github.com/angelmondragon/storefront-checkout/pkg/config"
	"github.com/angelmondragon/storefront-checkout/pkg/courier"
	"github.com/angelmondragon/storefront-checkout/pkg/db"
	"github.com/angelmondragon/storefront-checkout/pkg/instance"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
	"github.com/angelmondragon/storefront-checkout/pkg/maps"
	"github.com/angelmondragon/storefront-checkout/pkg/metrics"
	"github.com/angelmondragon/storefront-checkout/pkg/midtrans"
	"github.com/angelmondragon/storefront-checkout/pkg/migrate"
	"github.com/angelmondragon/storefront-checkout/pkg/redis"
	"github.com/angelmondragon/storefront-checkout/pkg/types"
)

const (
	shutdownTimeout      = 15 * time.Second
	notificationDedupTTL = 72 * time.Hour
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	providerMetrics := metrics.NewProviderMetrics(registry)

	// addresses
	addressService, err := address.NewService(address.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		return err
	}
	var mapsClient *maps.Client
	var geocoder *address.Geocoder
	if cfg.GoogleMaps.APIKey != "" {
		mapsClient, err = maps.NewClient(cfg.GoogleMaps.APIKey, maps.WithRoutesBaseURL(cfg.GoogleMaps.RoutesBaseURL))
		if err != nil {
			return err
		}
		geocoder = address.NewGeocoder(mapsClient, cfg.GoogleMaps.RegionCode, cfg.GoogleMaps.LanguageCode)
	} else {
		logg.Warn(ctx, "google maps api key missing; address suggest and route distance disabled")
	}

	// payment methods
	methodRepo := paymentmethods.NewRepository(dbClient.DB())
	if cfg.App.IsDev() && cfg.DB.UseSQLite {
		if err := methodRepo.Seed(ctx, paymentmethods.DefaultCatalog()); err != nil {
			return err
		}
	}
	methodService, err := paymentmethods.NewService(methodRepo)
	if err != nil {
		return err
	}

	// delivery
	aggregator, err := buildAggregator(cfg, logg, mapsClient, providerMetrics)
	if err != nil {
		return err
	}

	// vouchers
	voucherService, err := voucher.NewService(voucher.NewRepository(dbClient.DB()), time.Now)
	if err != nil {
		return err
	}

	// payments
	gateway, err := midtrans.NewClient(cfg.Midtrans.ServerKey, cfg.Midtrans.Environment(), midtrans.WithTimeout(cfg.Midtrans.Timeout))
	if err != nil {
		return err
	}
	paymentService, err := payment.NewService(payment.ServiceParams{
		Gateway:   gateway,
		Repo:      payment.NewRepository(dbClient.DB()),
		ServerKey: cfg.Midtrans.ServerKey,
		Logger:    logg,
		Metrics:   providerMetrics,
	})
	if err != nil {
		return err
	}

	// checkout
	sessionStore, err := checkout.NewRedisSessionStore(redisClient, cfg.Checkout.SessionTTL)
	if err != nil {
		return err
	}
	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Store:            sessionStore,
		Addresses:        addressService,
		Delivery:         aggregator,
		Vouchers:         voucherService,
		PaymentMethods:   methodService,
		Payments:         paymentService,
		Origin:           types.GeoPoint{Lat: cfg.Delivery.DefaultOriginLat, Lng: cfg.Delivery.DefaultOriginLng},
		OriginPostalCode: cfg.Delivery.DefaultOriginPostal,
		FinishURL:        cfg.Midtrans.FinishURL,
		Logger:           logg,
	})
	if err != nil {
		return err
	}

	// webhooks
	notificationGuard, err := midtranswebhook.NewIdempotencyGuard(redisClient, notificationDedupTTL, "midtrans_notification")
	if err != nil {
		return err
	}
	webhookService, err := midtranswebhook.NewService(midtranswebhook.ServiceParams{
		Payments: paymentService,
		Sessions: checkoutService,
		Guard:    notificationGuard,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"instance":     instance.GetID(),
		"midtrans_env": cfg.Midtrans.Environment(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			addressService,
			geocoder,
			methodService,
			checkoutService,
			webhookService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildAggregator registers the providers whose credentials are configured. With none,
// the aggregator serves the static fallback table.
func buildAggregator(cfg *config.Config, logg *logger.Logger, mapsClient *maps.Client, providerMetrics *metrics.ProviderMetrics) (*delivery.Aggregator, error) {
	var providers []delivery.RateProvider

	if cfg.InstantCourier.APIKey != "" && cfg.InstantCourier.BaseURL != "" {
		client, err := courier.NewClient(cfg.InstantCourier.APIKey, cfg.InstantCourier.BaseURL)
		if err != nil {
			return nil, err
		}
		var provider *delivery.InstantProvider
		if mapsClient != nil {
			provider, err = delivery.NewInstantProvider(client, mapsClient, cfg.Delivery.InstantRadiusKm, logg)
		} else {
			provider, err = delivery.NewInstantProvider(client, nil, cfg.Delivery.InstantRadiusKm, logg)
		}
		if err != nil {
			return nil, err
		}
		providers = append(providers, provider)
	}

	if cfg.Biteship.APIKey != "" {
		client, err := biteship.NewClient(cfg.Biteship.APIKey, biteship.WithBaseURL(cfg.Biteship.BaseURL))
		if err != nil {
			return nil, err
		}
		provider, err := delivery.NewRateAPIProvider(client, cfg.Biteship.CourierList())
		if err != nil {
			return nil, err
		}
		providers = append(providers, provider)
	}

	return delivery.NewAggregator(delivery.AggregatorParams{
		Providers: providers,
		Timeout:   cfg.Delivery.ProviderTimeout,
		Logger:    logg,
		Metrics:   providerMetrics,
	})
}
