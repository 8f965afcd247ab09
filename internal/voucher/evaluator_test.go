package voucher

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-checkout/pkg/db/models"
	"github.com/angelmondragon/storefront-checkout/pkg/enums"
)

var evalNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func rp(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func percentVoucher(pct, minPurchase int64, cap *int64) models.Voucher {
	v := models.Voucher{
		Code:         "HEMAT",
		DiscountType: enums.DiscountTypePercentage,
		Discount:     rp(pct),
		MinPurchase:  rp(minPurchase),
		ValidUntil:   evalNow.Add(24 * time.Hour),
		Active:       true,
	}
	if cap != nil {
		v.MaxDiscount = decimal.NewNullDecimal(rp(*cap))
	}
	return v
}

func TestEvaluateZeroBelowMinimumOrExpired(t *testing.T) {
	t.Parallel()

	cap := int64(50_000)
	v := percentVoucher(10, 200_000, &cap)

	for _, subtotal := range []int64{0, 1, 150_000, 199_999} {
		res := Evaluate(rp(subtotal), v, evalNow)
		if res.Applicable || !res.Discount.IsZero() || res.Reason != ReasonBelowMinimum {
			t.Fatalf("subtotal %d: expected below_minimum zero discount, got %+v", subtotal, res)
		}
	}

	expired := v
	expired.ValidUntil = evalNow.Add(-time.Minute)
	res := Evaluate(rp(1_000_000), expired, evalNow)
	if res.Applicable || !res.Discount.IsZero() || res.Reason != ReasonExpired {
		t.Fatalf("expected expired zero discount, got %+v", res)
	}

	atExpiry := v
	atExpiry.ValidUntil = evalNow
	if res := Evaluate(rp(1_000_000), atExpiry, evalNow); res.Applicable {
		t.Fatalf("voucher must not apply at the expiry instant")
	}

	inactive := v
	inactive.Active = false
	if res := Evaluate(rp(1_000_000), inactive, evalNow); res.Reason != ReasonInactive || !res.Discount.IsZero() {
		t.Fatalf("expected inactive zero discount, got %+v", res)
	}
}

func TestEvaluatePercentageIsMinOfRateAndCap(t *testing.T) {
	t.Parallel()

	cap := int64(50_000)
	v := percentVoucher(10, 0, &cap)

	for _, subtotal := range []int64{10_000, 123_456, 499_999, 500_000, 500_001, 2_000_000} {
		s := rp(subtotal)
		want := decimal.Min(s.Mul(rp(10)).Div(rp(100)), rp(cap))
		got := Evaluate(s, v, evalNow)
		if !got.Applicable || !got.Discount.Equal(want) {
			t.Fatalf("subtotal %d: expected %s got %s", subtotal, want, got.Discount)
		}
	}

	uncapped := percentVoucher(15, 0, nil)
	if got := Evaluate(rp(1_000_000), uncapped, evalNow); !got.Discount.Equal(rp(150_000)) {
		t.Fatalf("uncapped percentage should be 150000, got %s", got.Discount)
	}
}

func TestEvaluateFixedNeverExceedsSubtotal(t *testing.T) {
	t.Parallel()

	v := models.Voucher{
		Code:         "POTONG25",
		DiscountType: enums.DiscountTypeFixed,
		Discount:     rp(25_000),
		ValidUntil:   evalNow.Add(time.Hour),
		Active:       true,
	}

	if got := Evaluate(rp(100_000), v, evalNow); !got.Discount.Equal(rp(25_000)) {
		t.Fatalf("expected fixed 25000, got %s", got.Discount)
	}
	if got := Evaluate(rp(10_000), v, evalNow); !got.Discount.Equal(rp(10_000)) {
		t.Fatalf("discount must be clipped to subtotal, got %s", got.Discount)
	}
}

func TestResultMessage(t *testing.T) {
	t.Parallel()

	res := Result{Reason: ReasonBelowMinimum, MinPurchase: rp(200_000)}
	if got := res.Message(); !strings.HasSuffix(got, "(Rp200000).") {
		t.Fatalf("unexpected message %q", got)
	}
	if (Result{Applicable: true}).Message() != "" {
		t.Fatalf("applicable result has no message")
	}
	if NotFound("X").Message() == "" {
		t.Fatalf("not found should explain itself")
	}
}
