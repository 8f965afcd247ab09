package voucher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-checkout/pkg/db/models"
	"github.com/angelmondragon/storefront-checkout/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
)

type stubRepo struct {
	vouchers map[string]models.Voucher
	err      error
	lookups  []string
}

func (s *stubRepo) FindByCode(_ context.Context, code string) (*models.Voucher, error) {
	s.lookups = append(s.lookups, code)
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.vouchers[code]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (s *stubRepo) Create(context.Context, *models.Voucher) error { return nil }

func TestServiceApply(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	repo := &stubRepo{vouchers: map[string]models.Voucher{
		"ONGKIR": {
			Code:         "ONGKIR",
			DiscountType: enums.DiscountTypeFixed,
			Discount:     decimal.NewFromInt(20_000),
			MinPurchase:  decimal.NewFromInt(50_000),
			ValidUntil:   now.Add(time.Hour),
			Active:       true,
		},
	}}
	svc, err := NewService(repo, func() time.Time { return now })
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	res, err := svc.Apply(context.Background(), " ongkir ", decimal.NewFromInt(80_000))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !res.Applicable || !res.Discount.Equal(decimal.NewFromInt(20_000)) {
		t.Fatalf("unexpected result %+v", res)
	}
	if repo.lookups[0] != "ONGKIR" {
		t.Fatalf("code should be normalized before lookup, got %q", repo.lookups[0])
	}

	res, err = svc.Apply(context.Background(), "UNKNOWN", decimal.NewFromInt(80_000))
	if err != nil {
		t.Fatalf("unknown code must not be an error: %v", err)
	}
	if res.Applicable || res.Reason != ReasonNotFound {
		t.Fatalf("expected not_found, got %+v", res)
	}
}

func TestServiceApplyErrors(t *testing.T) {
	svc, err := NewService(&stubRepo{err: errors.New("db down")}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.Apply(context.Background(), "  ", decimal.Zero); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Apply(context.Background(), "ANY", decimal.Zero); !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if _, err := NewService(nil, nil); err == nil {
		t.Fatalf("expected constructor error")
	}
}
