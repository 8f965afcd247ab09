package voucher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
)

// Service resolves voucher codes against the catalog and evaluates them.
type Service interface {
	Apply(ctx context.Context, code string, subtotal decimal.Decimal) (Result, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs the voucher service. now may be nil to use the wall clock.
func NewService(repo Repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("voucher repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

// Apply never reports an unusable voucher as an error; only lookup failures are errors.
func (s *service) Apply(ctx context.Context, code string, subtotal decimal.Decimal) (Result, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "voucher code is required")
	}

	v, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load voucher")
	}
	if v == nil {
		return NotFound(normalized), nil
	}
	return Evaluate(subtotal, *v, s.now()), nil
}
