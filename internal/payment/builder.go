// Package payment builds gateway transactions and tracks their lifecycle.
package payment

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
	"github.com/angelmondragon/storefront-checkout/pkg/midtrans"
)

// MaxItemNameLength is the gateway's limit on item_details[].name, in characters.
const MaxItemNameLength = 50

// LineItem is one priced line of the order. Discounts are negative lines.
type LineItem struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Quantity int
}

type Customer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

type ShippingAddress struct {
	RecipientName string
	Phone         string
	Line          string
	City          string
	PostalCode    string
	CountryCode   string
}

// TransactionInput is everything needed to open a gateway transaction.
type TransactionInput struct {
	OrderID         string
	GrossAmount     decimal.Decimal
	Items           []LineItem
	Customer        Customer
	ShippingAddress *ShippingAddress
	EnabledPayments []string
	FinishURL       string
}

// BuildTransaction validates input and converts it to the Snap request shape. Amounts are
// rounded half away from zero to whole rupiah. No network I/O happens here.
func BuildTransaction(in TransactionInput) (midtrans.SnapRequest, error) {
	if err := validateInput(in); err != nil {
		return midtrans.SnapRequest{}, err
	}

	items := make([]midtrans.ItemDetail, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, midtrans.ItemDetail{
			ID:       item.ID,
			Price:    roundRupiah(item.Price),
			Quantity: item.Quantity,
			Name:     truncateRunes(strings.TrimSpace(item.Name), MaxItemNameLength),
		})
	}

	req := midtrans.SnapRequest{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:     strings.TrimSpace(in.OrderID),
			GrossAmount: roundRupiah(in.GrossAmount),
		},
		ItemDetails: items,
		CustomerDetails: midtrans.CustomerDetails{
			FirstName: in.Customer.FirstName,
			LastName:  in.Customer.LastName,
			Email:     strings.TrimSpace(in.Customer.Email),
			Phone:     in.Customer.Phone,
		},
		EnabledPayments: in.EnabledPayments,
	}

	if addr := in.ShippingAddress; addr != nil {
		first, last := SplitName(addr.RecipientName)
		req.CustomerDetails.ShippingAddress = &midtrans.Address{
			FirstName:   first,
			LastName:    last,
			Phone:       addr.Phone,
			Address:     addr.Line,
			City:        addr.City,
			PostalCode:  addr.PostalCode,
			CountryCode: countryCode(addr.CountryCode),
		}
	}

	if in.FinishURL != "" {
		req.Callbacks = &midtrans.Callbacks{Finish: in.FinishURL}
	}

	return req, nil
}

func validateInput(in TransactionInput) error {
	details := map[string]string{}
	if strings.TrimSpace(in.OrderID) == "" {
		details["order_id"] = "is required"
	}
	if !in.GrossAmount.IsPositive() {
		details["gross_amount"] = "must be greater than 0"
	}
	if len(in.Items) == 0 {
		details["items"] = "must not be empty"
	}
	for _, item := range in.Items {
		if item.Quantity < 1 {
			details["items.quantity"] = "must be at least 1"
			break
		}
	}
	email := strings.TrimSpace(in.Customer.Email)
	if email == "" {
		details["customer.email"] = "is required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		details["customer.email"] = "must be a valid email"
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func roundRupiah(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// SplitName splits a full name into first name and the remainder.
func SplitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// Snap expects ISO 3166-1 alpha-3.
func countryCode(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "", "ID", "IDN":
		return "IDN"
	default:
		return strings.ToUpper(code)
	}
}
