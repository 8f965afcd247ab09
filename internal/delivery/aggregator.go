package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/storefront-checkout/internal/weight"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
	"github.com/angelmondragon/storefront-checkout/pkg/metrics"
)

const defaultProviderTimeout = 6 * time.Second

// AggregatorParams groups the aggregator dependencies. Providers are listed in priority
// order; nil entries are skipped.
type AggregatorParams struct {
	Providers []RateProvider
	Timeout   time.Duration
	Logger    *logger.Logger
	Metrics   *metrics.ProviderMetrics
}

// Aggregator fans out to every live provider and merges what comes back in time.
type Aggregator struct {
	providers []RateProvider
	timeout   time.Duration
	logg      *logger.Logger
	metrics   *metrics.ProviderMetrics
}

// NewAggregator constructs the aggregator.
func NewAggregator(params AggregatorParams) (*Aggregator, error) {
	providers := make([]RateProvider, 0, len(params.Providers))
	for _, p := range params.Providers {
		if p != nil {
			providers = append(providers, p)
		}
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Aggregator{
		providers: providers,
		timeout:   timeout,
		logg:      params.Logger,
		metrics:   params.Metrics,
	}, nil
}

// Options never fails. Provider errors and timeouts are logged and dropped, and when no
// provider yields anything the static fallback list is returned flagged as approximate.
func (a *Aggregator) Options(ctx context.Context, req Request) Result {
	category := weight.GetWeightCategory(req.WeightKg)
	result := Result{
		WeightKg:       req.WeightKg,
		WeightCategory: category,
		WeightLabel:    weight.FormatWeightLabel(req.WeightKg, false),
	}

	groups := make([][]Option, len(a.providers))
	errs := make([]error, len(a.providers))

	var g errgroup.Group
	for i, provider := range a.providers {
		i, provider := i, provider
		g.Go(func() error {
			groups[i], errs[i] = a.quote(ctx, provider, req)
			return nil
		})
	}
	_ = g.Wait()

	var combined error
	for i, err := range errs {
		if err != nil {
			combined = multierr.Append(combined, fmt.Errorf("%s: %w", a.providers[i].Name(), err))
		}
	}
	if combined != nil {
		a.logg.Warn(a.logg.WithField(ctx, "error", combined.Error()), "delivery.providers.degraded")
	}

	merged := mergeOptions(groups...)
	if len(merged) == 0 {
		a.metrics.IncFallback()
		a.logg.Info(a.logg.WithField(ctx, "weight_category", category.String()), "delivery.fallback.used")
		result.Options = FallbackOptions(category)
		result.Approximate = true
		return result
	}

	result.Options = merged
	return result
}

func (a *Aggregator) quote(ctx context.Context, provider RateProvider, req Request) ([]Option, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	name := provider.Name()
	started := time.Now()

	type outcome struct {
		opts []Option
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		opts, err := provider.Quote(callCtx, req)
		done <- outcome{opts: opts, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-callCtx.Done():
		out = outcome{err: callCtx.Err()}
	}
	a.metrics.ObserveDuration(name, time.Since(started))

	if out.err != nil {
		reason := "error"
		if errors.Is(out.err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		a.metrics.IncFailure(name, reason)
		return nil, out.err
	}

	a.metrics.IncSuccess(name)
	source := provider.Source()
	opts := make([]Option, 0, len(out.opts))
	for _, opt := range out.opts {
		opt.Source = source
		opts = append(opts, opt)
	}
	return opts, nil
}
