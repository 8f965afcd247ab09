package voucher

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-checkout/pkg/db/models"
	"github.com/angelmondragon/storefront-checkout/pkg/enums"
)

// Reason explains why a voucher produced no discount.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonNotFound     Reason = "not_found"
	ReasonInactive     Reason = "inactive"
	ReasonExpired      Reason = "expired"
	ReasonBelowMinimum Reason = "below_minimum"
)

var hundred = decimal.NewFromInt(100)

// Result is the outcome of evaluating one voucher against one subtotal.
type Result struct {
	Code        string          `json:"code"`
	Title       string          `json:"title,omitempty"`
	Applicable  bool            `json:"applicable"`
	Discount    decimal.Decimal `json:"discount"`
	Reason      Reason          `json:"reason,omitempty"`
	MinPurchase decimal.Decimal `json:"min_purchase"`
}

// Message is the buyer-facing explanation for an inapplicable voucher.
func (r Result) Message() string {
	switch r.Reason {
	case ReasonNotFound:
		return "Voucher code was not recognised."
	case ReasonInactive:
		return "This voucher is no longer available."
	case ReasonExpired:
		return "This voucher has expired."
	case ReasonBelowMinimum:
		return "Your order does not reach the minimum purchase for this voucher (Rp" + r.MinPurchase.StringFixed(0) + ")."
	default:
		return ""
	}
}

// Evaluate computes the discount v grants on subtotal at time now. It never fails: an
// unusable voucher yields a zero discount with a Reason.
func Evaluate(subtotal decimal.Decimal, v models.Voucher, now time.Time) Result {
	res := Result{
		Code:        v.Code,
		Title:       v.Title,
		Discount:    decimal.Zero,
		MinPurchase: v.MinPurchase,
	}

	switch {
	case !v.Active:
		res.Reason = ReasonInactive
		return res
	case !now.Before(v.ValidUntil):
		res.Reason = ReasonExpired
		return res
	case subtotal.LessThan(v.MinPurchase):
		res.Reason = ReasonBelowMinimum
		return res
	}

	discount := v.Discount
	if v.DiscountType == enums.DiscountTypePercentage {
		discount = subtotal.Mul(v.Discount).Div(hundred)
	}
	if v.MaxDiscount.Valid && discount.GreaterThan(v.MaxDiscount.Decimal) {
		discount = v.MaxDiscount.Decimal
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	res.Applicable = true
	res.Discount = discount
	return res
}

// NotFound is the result for a code that matches no voucher.
func NotFound(code string) Result {
	return Result{Code: code, Discount: decimal.Zero, Reason: ReasonNotFound}
}
